package client

import (
	"context"
	"net/http"

	"github.com/Sternrassler/swecha-admin/pkg/entity"
)

// SendOTP asks the backend to text a one-time password to phone.
func (c *Client) SendOTP(ctx context.Context, phone string) (Result, error) {
	status, _, err := c.sendJSON(ctx, http.MethodPost, "/auth/send-otp", entity.SendOTPRequest{PhoneNumber: phone},
		"auth", "Unknown error", http.StatusOK, http.StatusCreated)
	if err != nil {
		return Result{StatusCode: status}, err
	}
	return Result{Message: "OTP sent to " + phone, StatusCode: status}, nil
}

// VerifyOTP exchanges a one-time password for an access token. The token is
// not installed on the client; callers decide whether the session is allowed.
func (c *Client) VerifyOTP(ctx context.Context, phone, code string) (*entity.AuthSession, error) {
	req := entity.VerifyOTPRequest{PhoneNumber: phone, OTPCode: code, HasGivenConsent: true}
	_, body, err := c.sendJSON(ctx, http.MethodPost, "/auth/verify-otp", req, "auth", "Invalid OTP", http.StatusOK)
	if err != nil {
		return nil, err
	}

	var session entity.AuthSession
	if err := c.decode(body, "auth", shapeObject, &session); err != nil {
		return nil, err
	}
	if session.PhoneNumber == "" {
		session.PhoneNumber = phone
	}
	return &session, nil
}

// Me returns the operator the current token belongs to.
func (c *Client) Me(ctx context.Context) (*entity.Me, error) {
	if c.Token() == "" {
		return nil, ErrNoToken
	}
	var me entity.Me
	if err := c.getJSON(ctx, "/auth/me", nil, "auth", &me); err != nil {
		return nil, err
	}
	return &me, nil
}

// TokenValid reports whether the current token is accepted by /auth/me.
func (c *Client) TokenValid(ctx context.Context) bool {
	_, err := c.Me(ctx)
	return err == nil
}
