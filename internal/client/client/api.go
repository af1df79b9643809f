// Package client implements the HTTP client for the WhisperVault server API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/whispervault/whispervault/internal/common"
)

// APIClient talks to the server's JSON API. It is stateless: tokens are
// passed per call so the CLI decides what to hold on to.
type APIClient struct {
	baseURL string
	http    *http.Client
}

func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// RegisterRequest is the registration payload.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone,omitempty"`
}

// ConfirmResponse carries the authenticator enrollment material together
// with the challenge token.
type ConfirmResponse struct {
	Status     string `json:"status"`
	OtpauthURL string `json:"otpauthUrl"`
	QRImg      string `json:"qrImg"`
	ManualCode string `json:"manualCode"`
	TempToken  string `json:"tempToken"`
}

// Session is the result of a successful second-factor verification.
type Session struct {
	Token string         `json:"token"`
	User  map[string]any `json:"user"`
}

func (c *APIClient) Register(ctx context.Context, req RegisterRequest) error {
	return c.do(ctx, http.MethodPost, "/register", "", req, nil)
}

func (c *APIClient) Confirm(ctx context.Context, token string) (*ConfirmResponse, error) {
	out := &ConfirmResponse{}
	if err := c.do(ctx, http.MethodGet, "/confirm/"+url.PathEscape(token), "", nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *APIClient) Login(ctx context.Context, email, password string) (string, error) {
	var out struct {
		TempToken string `json:"tempToken"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/login", "", body, &out); err != nil {
		return "", err
	}
	return out.TempToken, nil
}

func (c *APIClient) VerifyTOTP(ctx context.Context, tempToken, code string) (*Session, error) {
	out := &Session{}
	if err := c.do(ctx, http.MethodPost, "/2fa/verify", tempToken, map[string]string{"code": code}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *APIClient) SendSMS(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/2fa/send-sms", token, nil, nil)
}

func (c *APIClient) VerifySMS(ctx context.Context, tempToken, code string) (*Session, error) {
	out := &Session{}
	if err := c.do(ctx, http.MethodPost, "/2fa/verify-sms", tempToken, map[string]string{"code": code}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *APIClient) ResendConfirmation(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/resend-confirmation", "", map[string]string{"email": email}, nil)
}

func (c *APIClient) PublishKey(ctx context.Context, sessionToken, publicKey string) error {
	return c.do(ctx, http.MethodPost, "/keys", sessionToken, map[string]string{"publicKey": publicKey}, nil)
}

// FetchKey returns the published key of userID, or nil when none exists.
func (c *APIClient) FetchKey(ctx context.Context, sessionToken, userID string) (*string, error) {
	var out struct {
		PublicKey *string `json:"publicKey"`
	}
	if err := c.do(ctx, http.MethodGet, "/keys/"+url.PathEscape(userID), sessionToken, nil, &out); err != nil {
		return nil, err
	}
	return out.PublicKey, nil
}

func (c *APIClient) do(ctx context.Context, method, path, bearer string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(in); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set(common.AuthorizationHeader, common.BearerPrefix+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.mapStatus(resp)
	}
	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// mapStatus turns an error response into a client sentinel, keeping the
// server's message for display.
func (c *APIClient) mapStatus(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	msg := payload.Error
	if msg == "" {
		msg = resp.Status
	}

	var sentinel error
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		sentinel = ErrUnauthorized
	case http.StatusForbidden:
		sentinel = ErrEmailNotConfirmed
	case http.StatusNotFound:
		sentinel = ErrNotFound
	case http.StatusConflict:
		sentinel = ErrConflict
	case http.StatusBadRequest:
		sentinel = ErrInvalidInput
	default:
		return fmt.Errorf("server error: %s", msg)
	}
	return fmt.Errorf("%w: %s", sentinel, msg)
}
