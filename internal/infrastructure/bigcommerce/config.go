package bigcommerce

import (
	"errors"
	"strings"
	"time"
)

// Config validation errors
var (
	ErrConfigMissingStoreHash   = errors.New("bigcommerce: store hash is required")
	ErrConfigMissingAccessToken = errors.New("bigcommerce: access token is required")
)

// Config holds the connection settings for one destination store
type Config struct {
	// APIBaseURL defaults to the public API host
	APIBaseURL  string
	StoreHash   string
	AccessToken string
	Timeout     time.Duration
}

// Validate checks required fields and applies defaults
func (c *Config) Validate() error {
	if c.StoreHash == "" {
		return ErrConfigMissingStoreHash
	}
	if c.AccessToken == "" {
		return ErrConfigMissingAccessToken
	}

	if c.APIBaseURL == "" {
		c.APIBaseURL = "https://api.bigcommerce.com"
	}
	c.APIBaseURL = strings.TrimRight(c.APIBaseURL, "/")
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	return nil
}

// StorePrefix returns the v3 route prefix for this store
func (c *Config) StorePrefix() string {
	return "/stores/" + c.StoreHash + "/v3"
}
