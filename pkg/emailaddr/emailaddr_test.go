package emailaddr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tophatmonocle/halpsync/pkg/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Address
		wantErr bool
	}{
		{
			name:  "simple address",
			input: "jane@tophat.com",
			want:  Address{Local: "jane", Domain: "tophat", TLD: "com"},
		},
		{
			name:  "multi-label domain",
			input: "jane.doe@mail.tophatmonocle.com",
			want:  Address{Local: "jane.doe", Domain: "mail.tophatmonocle", TLD: "com"},
		},
		{
			name:  "halp alias parses back",
			input: "jane@halp.tophat.com",
			want:  Address{Local: "jane", Domain: "halp.tophat", TLD: "com"},
		},
		{
			name:    "no at sign",
			input:   "jane.tophat.com",
			wantErr: true,
		},
		{
			name:    "no tld",
			input:   "jane@tophat",
			wantErr: true,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsMalformedEmail(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.input, got.String())
		})
	}
}

func TestHalpAliasRoundTrip(t *testing.T) {
	addr, err := Parse("jane.doe@tophatmonocle.com")
	require.NoError(t, err)
	assert.Equal(t, "jane.doe@halp.tophatmonocle.com", addr.HalpAlias())

	// The alias must itself tokenize.
	alias, err := Parse(addr.HalpAlias())
	require.NoError(t, err)
	assert.Equal(t, "halp.tophatmonocle", alias.Domain)
}

func TestResolverCanonicalize(t *testing.T) {
	r := DefaultResolver()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"legacy domain rewritten", "jane@tophat.com", "jane@tophatmonocle.com"},
		{"canonical form untouched", "jane@tophatmonocle.com", "jane@tophatmonocle.com"},
		{"unrelated domain untouched", "personal@gmail.com", "personal@gmail.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Canonicalize(tt.input))
		})
	}
}

func TestResolverRestore(t *testing.T) {
	r := DefaultResolver()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"corporate rewrite undone", "jane@tophatmonocle.com", "jane@tophat.com"},
		{"bluedoor rewrite", "ed@bluedoorpublishing.com", "ed@bluedoorcloud.com"},
		{"halp alias restored", "jane@halp.tophatmonocle.com", "jane@halp.tophat.com"},
		{"unrelated domain untouched", "personal@gmail.com", "personal@gmail.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Restore(tt.input))
		})
	}
}

// Canonicalize then Restore must hand back an address that started in
// public form unchanged.
func TestResolverIdempotence(t *testing.T) {
	r := DefaultResolver()

	for _, email := range []string{
		"jane@tophat.com",
		"jane.doe@tophat.com",
	} {
		assert.Equal(t, email, r.Restore(r.Canonicalize(email)))
	}
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("jane@tophat.com"))
	assert.False(t, Valid("jane"))
	assert.False(t, Valid("@tophat.com"))
}
