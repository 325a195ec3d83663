package payment

import (
	"errors"
	"strings"
	"time"
)

// DarajaConfig contains configuration for the Safaricom Daraja API
type DarajaConfig struct {
	// Env selects the API environment, "sandbox" or "production"
	Env string
	// ConsumerKey is the OAuth consumer key
	ConsumerKey string
	// ConsumerSecret is the OAuth consumer secret
	ConsumerSecret string
	// ShortCode is the business paybill or till number
	ShortCode string
	// Passkey is the Lipa na M-Pesa online passkey
	Passkey string
	// CallbackURL receives the asynchronous STK push result
	CallbackURL string
	// BaseURL overrides the environment base URL, used in tests
	BaseURL string
	// Timeout bounds each HTTP call to the API
	Timeout time.Duration
}

// Errors for configuration validation
var (
	ErrDarajaInvalidEnv            = errors.New("daraja: env must be sandbox or production")
	ErrDarajaMissingConsumerKey    = errors.New("daraja: missing consumer key")
	ErrDarajaMissingConsumerSecret = errors.New("daraja: missing consumer secret")
	ErrDarajaMissingShortCode      = errors.New("daraja: missing short code")
	ErrDarajaMissingPasskey        = errors.New("daraja: missing passkey")
	ErrDarajaMissingCallbackURL    = errors.New("daraja: missing callback URL")
)

// Validate validates the configuration
func (c *DarajaConfig) Validate() error {
	if c.Env != "sandbox" && c.Env != "production" {
		return ErrDarajaInvalidEnv
	}
	if c.ConsumerKey == "" {
		return ErrDarajaMissingConsumerKey
	}
	if c.ConsumerSecret == "" {
		return ErrDarajaMissingConsumerSecret
	}
	if c.ShortCode == "" {
		return ErrDarajaMissingShortCode
	}
	if c.Passkey == "" {
		return ErrDarajaMissingPasskey
	}
	if strings.TrimSpace(c.CallbackURL) == "" {
		return ErrDarajaMissingCallbackURL
	}
	return nil
}
