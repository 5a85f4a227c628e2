package holded

import "errors"

// ProductionAPIBaseURL is the invoicing API endpoint
const ProductionAPIBaseURL = "https://api.holded.com/api/invoicing/v1"

// Errors for Holded configuration
var (
	ErrConfigMissingAPIKey = errors.New("holded: api key is required")
)

// Config holds configuration for one Holded account. Primary and secondary
// ledger accounts are two Configs with disjoint credentials.
type Config struct {
	// APIKey is the account API key sent in the "key" header
	APIKey string
	// APIBaseURL is the base URL for the invoicing API
	APIBaseURL string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

// NewConfig creates a new Holded configuration with defaults
func NewConfig(apiKey string) *Config {
	return &Config{
		APIKey:         apiKey,
		APIBaseURL:     ProductionAPIBaseURL,
		TimeoutSeconds: 30,
	}
}

// Validate validates the configuration and fills defaults
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrConfigMissingAPIKey
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = ProductionAPIBaseURL
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}
