package payment

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/afyapos/backend/internal/domain/payment"
)

const (
	darajaAPIBaseURL        = "https://api.safaricom.co.ke"
	darajaSandboxAPIBaseURL = "https://sandbox.safaricom.co.ke"
	darajaAuthPath          = "/oauth/v1/generate?grant_type=client_credentials"
	darajaStkPushPath       = "/mpesa/stkpush/v1/processrequest"

	darajaTimestampLayout = "20060102150405"
	darajaTransactionType = "CustomerPayBillOnline"

	// token is refreshed this long before Daraja's stated expiry
	darajaTokenSafetyMargin = 30 * time.Second
)

// Gateway call errors
var (
	ErrDarajaUnavailable   = errors.New("daraja: gateway unavailable")
	ErrDarajaAuthFailed    = errors.New("daraja: authentication failed")
	ErrDarajaRequestFailed = errors.New("daraja: request rejected")
)

// DarajaAdapter implements the payment Gateway interface against the
// Safaricom Daraja API. The OAuth token is cached until shortly before
// its expiry; concurrent initiations share one token.
type DarajaAdapter struct {
	config     *DarajaConfig
	httpClient *http.Client
	now        func() time.Time

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewDarajaAdapter creates a new Daraja adapter
func NewDarajaAdapter(config *DarajaConfig) (*DarajaAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &DarajaAdapter{
		config:     config,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}, nil
}

// InitiateStkPush sends a Lipa na M-Pesa online payment request. Daraja
// accepts whole shillings only, so the amount is rounded to zero decimal
// places before sending.
func (a *DarajaAdapter) InitiateStkPush(ctx context.Context, req payment.StkPushRequest) (*payment.StkPushResponse, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrDarajaRequestFailed)
	}

	phone, err := normalizeMsisdn(req.PhoneNumber)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDarajaRequestFailed, err)
	}

	token, err := a.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	timestamp := a.now().Format(darajaTimestampLayout)
	body := darajaStkPushRequest{
		BusinessShortCode: a.config.ShortCode,
		Password:          a.stkPassword(timestamp),
		Timestamp:         timestamp,
		TransactionType:   darajaTransactionType,
		Amount:            req.Amount.Round(0).IntPart(),
		PartyA:            phone,
		PartyB:            a.config.ShortCode,
		PhoneNumber:       phone,
		CallBackURL:       a.config.CallbackURL,
		AccountReference:  req.AccountReference,
		TransactionDesc:   req.Description,
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("daraja: failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL()+darajaStkPushPath, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("daraja: failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDarajaUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("daraja: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp darajaErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.ErrorCode != "" {
			return nil, fmt.Errorf("%w: %s - %s", ErrDarajaRequestFailed, errResp.ErrorCode, errResp.ErrorMessage)
		}
		return nil, fmt.Errorf("%w: HTTP %d", ErrDarajaRequestFailed, resp.StatusCode)
	}

	var pushResp darajaStkPushResponse
	if err := json.Unmarshal(respBody, &pushResp); err != nil {
		return nil, fmt.Errorf("daraja: failed to parse response: %w", err)
	}
	if pushResp.ResponseCode != "0" {
		return nil, fmt.Errorf("%w: %s - %s", ErrDarajaRequestFailed, pushResp.ResponseCode, pushResp.ResponseDescription)
	}

	return &payment.StkPushResponse{
		MerchantRequestID: pushResp.MerchantRequestID,
		CheckoutRequestID: pushResp.CheckoutRequestID,
		ResponseCode:      pushResp.ResponseCode,
		CustomerMessage:   pushResp.CustomerMessage,
	}, nil
}

// accessToken returns a cached OAuth token, fetching a fresh one when the
// cached token is missing or about to expire.
func (a *DarajaAdapter) accessToken(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.token != "" && a.now().Before(a.tokenExpiry) {
		return a.token, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL()+darajaAuthPath, nil)
	if err != nil {
		return "", fmt.Errorf("daraja: failed to create auth request: %w", err)
	}
	req.SetBasicAuth(a.config.ConsumerKey, a.config.ConsumerSecret)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDarajaUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: HTTP %d", ErrDarajaAuthFailed, resp.StatusCode)
	}

	var auth darajaAuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		return "", fmt.Errorf("daraja: failed to parse auth response: %w", err)
	}
	if auth.AccessToken == "" {
		return "", ErrDarajaAuthFailed
	}

	ttl := 3600 * time.Second
	if secs, err := strconv.Atoi(auth.ExpiresIn); err == nil && secs > 0 {
		ttl = time.Duration(secs) * time.Second
	}

	a.token = auth.AccessToken
	a.tokenExpiry = a.now().Add(ttl - darajaTokenSafetyMargin)
	return a.token, nil
}

// stkPassword builds the Lipa na M-Pesa password for the given timestamp
func (a *DarajaAdapter) stkPassword(timestamp string) string {
	return base64.StdEncoding.EncodeToString([]byte(a.config.ShortCode + a.config.Passkey + timestamp))
}

func (a *DarajaAdapter) baseURL() string {
	if a.config.BaseURL != "" {
		return a.config.BaseURL
	}
	if a.config.Env == "production" {
		return darajaAPIBaseURL
	}
	return darajaSandboxAPIBaseURL
}

// normalizeMsisdn converts Kenyan phone formats (07XX, +2547XX, 2547XX)
// to the 2547XXXXXXXX form Daraja requires.
func normalizeMsisdn(phone string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		if r == ' ' || r == '-' || r == '+' {
			return -1
		}
		return r
	}, strings.TrimSpace(phone))

	switch {
	case len(cleaned) == 12 && strings.HasPrefix(cleaned, "254"):
	case len(cleaned) == 10 && strings.HasPrefix(cleaned, "0"):
		cleaned = "254" + cleaned[1:]
	case len(cleaned) == 9 && (strings.HasPrefix(cleaned, "7") || strings.HasPrefix(cleaned, "1")):
		cleaned = "254" + cleaned
	default:
		return "", fmt.Errorf("invalid phone number %q", phone)
	}

	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("invalid phone number %q", phone)
		}
	}
	return cleaned, nil
}

// Ensure DarajaAdapter implements the Gateway interface
var _ payment.Gateway = (*DarajaAdapter)(nil)
