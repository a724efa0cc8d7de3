package app

import (
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/tophatmonocle/halpsync"
	"github.com/tophatmonocle/halpsync/pkg/errors"
)

// Config holds the application configuration loaded from config files,
// environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool

	// Config file
	ConfigFile string

	// Service credentials
	DirectoryToken     string
	ContactStoreHost   string
	ContactStoreAPIKey string

	// Reconciliation configuration
	InboundAddress      string
	AgentRequesterEmail string
	NameRemapFile       string
	DomainRulesFile     string

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// command-line flags (applied later by cobra), environment variables,
// .env files, config file (~/.halpsync.yaml), then defaults.
func LoadConfig() (*Config, error) {
	loadEnvFiles()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	bindCredentials()

	configFile := viper.GetString("config")
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.AddConfigPath(".")
			viper.SetConfigType("yaml")
			viper.SetConfigName(".halpsync")
		}
	}
	// A missing config file is fine; env vars and flags cover everything.
	_ = viper.ReadInConfig()

	config := &Config{
		Verbose: viper.GetBool("verbose"),
		Quiet:   viper.GetBool("quiet"),

		ConfigFile: viper.ConfigFileUsed(),

		DirectoryToken:     viper.GetString("directory_token"),
		ContactStoreHost:   viper.GetString("contact_store_host"),
		ContactStoreAPIKey: viper.GetString("contact_store_api_key"),

		InboundAddress:      viper.GetString("inbound_address"),
		AgentRequesterEmail: viper.GetString("agent_requester_email"),
		NameRemapFile:       viper.GetString("name_remap_file"),
		DomainRulesFile:     viper.GetString("domain_rules_file"),

		LogLevel:  viper.GetString("log_level"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput: getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}

	return config, nil
}

// UpdateFromFlags updates config values from parsed command flags so
// flags take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet bool, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// LoadNameRemap reads a YAML file mapping recorded names to the names
// the directory actually knows.
func LoadNameRemap(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigError("name remap", path, err)
	}
	var remap map[string]string
	if err := yaml.Unmarshal(data, &remap); err != nil {
		return nil, errors.NewConfigError("name remap", path, err)
	}
	return remap, nil
}

// LoadDomainRules reads a YAML file with canonical and restore
// domain-rewrite tables.
func LoadDomainRules(path string) (*halpsync.DomainRules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigError("domain rules", path, err)
	}
	var rules halpsync.DomainRules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, errors.NewConfigError("domain rules", path, err)
	}
	return &rules, nil
}

// loadEnvFiles loads environment variables from .env files. .env.local
// overrides .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Load(envFile)
	}
}

// bindCredentials explicitly binds credential environment variables to
// Viper so they resolve even before first use.
func bindCredentials() {
	keys := []string{
		"DIRECTORY_TOKEN",
		"CONTACT_STORE_HOST",
		"CONTACT_STORE_API_KEY",
		"INBOUND_ADDRESS",
		"AGENT_REQUESTER_EMAIL",
	}
	for _, key := range keys {
		_ = viper.BindEnv(strings.ToLower(key), key)
	}
}

// getEnvOrDefault returns the environment variable value or the default
// if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
