package woocommerce

import (
	"errors"
	"strings"
	"time"
)

// Config validation errors
var (
	ErrConfigMissingBaseURL        = errors.New("woocommerce: base URL is required")
	ErrConfigMissingConsumerKey    = errors.New("woocommerce: consumer key is required")
	ErrConfigMissingConsumerSecret = errors.New("woocommerce: consumer secret is required")
)

// Config holds the connection settings for one source store
type Config struct {
	// BaseURL is the store root, e.g. https://shop.example.com
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	// PageSize for list endpoints, capped at 100 by the API
	PageSize int
	Timeout  time.Duration
}

// Validate checks required fields and applies defaults
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrConfigMissingBaseURL
	}
	if c.ConsumerKey == "" {
		return ErrConfigMissingConsumerKey
	}
	if c.ConsumerSecret == "" {
		return ErrConfigMissingConsumerSecret
	}

	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.PageSize < 1 || c.PageSize > 100 {
		c.PageSize = 100
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	return nil
}
