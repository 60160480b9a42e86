package contact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultRecaptchaURL = "https://www.google.com/recaptcha/api/siteverify"
	minRecaptchaScore   = 0.5
)

var ErrVerifierNotConfigured = errors.New("recaptcha secret not configured")

type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) error
}

type RecaptchaVerifier struct {
	secret    string
	verifyURL string
	client    *http.Client
}

type recaptchaResponse struct {
	Success    bool     `json:"success"`
	Score      *float64 `json:"score"`
	ErrorCodes []string `json:"error-codes"`
}

func NewRecaptchaVerifier(secret, verifyURL string, client *http.Client) *RecaptchaVerifier {
	if verifyURL == "" {
		verifyURL = DefaultRecaptchaURL
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &RecaptchaVerifier{secret: secret, verifyURL: verifyURL, client: client}
}

func (v *RecaptchaVerifier) Verify(ctx context.Context, token, remoteIP string) error {
	if v.secret == "" {
		return ErrVerifierNotConfigured
	}
	if token == "" {
		return errors.New("recaptcha token missing")
	}

	form := url.Values{"secret": {v.secret}, "response": {token}}
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("recaptcha request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("recaptcha status %d", resp.StatusCode)
	}

	var result recaptchaResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("recaptcha decode: %w", err)
	}
	if !result.Success {
		if len(result.ErrorCodes) > 0 {
			return fmt.Errorf("recaptcha rejected: %s", strings.Join(result.ErrorCodes, ", "))
		}
		return errors.New("recaptcha rejected")
	}
	if result.Score != nil && *result.Score < minRecaptchaScore {
		return fmt.Errorf("recaptcha score %.2f below %.2f", *result.Score, minRecaptchaScore)
	}
	return nil
}
