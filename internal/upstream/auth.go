package upstream

import (
	"context"

	"github.com/noah-isme/edu-admin-gateway/internal/models"
)

// AuthClient talks to the backend's admin auth endpoints.
type AuthClient struct {
	c *Client
}

// NewAuthClient constructs an AuthClient.
func NewAuthClient(c *Client) *AuthClient {
	return &AuthClient{c: c}
}

// SignInRequest carries admin credentials.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// VerifyOTPRequest confirms a one-time password challenge.
type VerifyOTPRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// SignInResponse is the backend's token grant.
type SignInResponse struct {
	Token string `json:"token"`
	User  struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"user"`
	OTPRequired bool `json:"otpRequired"`
}

// SignIn exchanges credentials for a bearer token (or an OTP challenge).
func (a *AuthClient) SignIn(ctx context.Context, req SignInRequest) (*SignInResponse, error) {
	var out SignInResponse
	if err := a.c.Post(ctx, "/api/admin/login", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyOTP completes the OTP challenge and returns the token grant.
func (a *AuthClient) VerifyOTP(ctx context.Context, req VerifyOTPRequest) (*SignInResponse, error) {
	var out SignInResponse
	if err := a.c.Post(ctx, "/api/admin/verify-otp", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SignOut revokes the session upstream.
func (a *AuthClient) SignOut(ctx context.Context, token string) error {
	return a.c.Post(ctx, "/api/admin/logout", token, nil, nil)
}

// Me returns the identity behind a token.
func (a *AuthClient) Me(ctx context.Context, token string) (*models.Session, error) {
	var out struct {
		User models.Session `json:"user"`
	}
	if err := a.c.Get(ctx, "/api/admin/me", token, nil, &out); err != nil {
		return nil, err
	}
	out.User.Token = token
	return &out.User, nil
}
