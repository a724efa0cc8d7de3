package transport

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/tophatmonocle/halpsync/pkg/errors"
)

// ReadBody drains and closes the response body. Callers that need the
// service's rejection payload (merge and update errors keep it verbatim)
// use this instead of DecodeResponse.
func ReadBody(resp *http.Response) ([]byte, error) {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.WrapAPI("", resp.StatusCode, err)
	}
	return body, nil
}

// DecodeResponse decodes a 200 JSON response into the target structure.
// Any other status becomes an APIError carrying the response body.
func DecodeResponse(service string, resp *http.Response, target any) error {
	body, err := ReadBody(resp)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return &errors.APIError{
			Service:    service,
			StatusCode: resp.StatusCode,
			Message:    string(body),
		}
	}

	if err := json.Unmarshal(body, target); err != nil {
		return &errors.APIError{
			Service: service,
			Message: "decoding response: " + err.Error(),
			Err:     err,
		}
	}

	return nil
}
