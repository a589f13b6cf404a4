package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/edu-admin-gateway/internal/models"
	"github.com/noah-isme/edu-admin-gateway/internal/upstream"
	appErrors "github.com/noah-isme/edu-admin-gateway/pkg/errors"
)

type authClient interface {
	SignIn(ctx context.Context, req upstream.SignInRequest) (*upstream.SignInResponse, error)
	VerifyOTP(ctx context.Context, req upstream.VerifyOTPRequest) (*upstream.SignInResponse, error)
	SignOut(ctx context.Context, token string) error
	Me(ctx context.Context, token string) (*models.Session, error)
}

type tokenStore interface {
	Save(ctx context.Context, userID, token string) error
	Delete(ctx context.Context, userID string) error
}

// SignInRequest carries admin credentials.
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// VerifyOTPRequest completes a one-time password challenge.
type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6"`
}

// SignInResult is what the sign-in screen receives.
type SignInResult struct {
	Token       string          `json:"token,omitempty"`
	OTPRequired bool            `json:"otpRequired,omitempty"`
	User        *models.Session `json:"user,omitempty"`
}

// AuthService forwards credential flows to the backend and persists the
// granted token. It never verifies passwords itself.
type AuthService struct {
	client    authClient
	tokens    tokenStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAuthService constructs an AuthService.
func NewAuthService(client authClient, tokens tokenStore, validate *validator.Validate, logger *zap.Logger) *AuthService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{client: client, tokens: tokens, validator: validate, logger: logger}
}

// SignIn exchanges credentials for a token grant or an OTP challenge.
func (s *AuthService) SignIn(ctx context.Context, req SignInRequest) (*SignInResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid sign-in payload")
	}

	resp, err := s.client.SignIn(ctx, upstream.SignInRequest{Email: req.Email, Password: req.Password})
	if err != nil {
		return nil, err
	}
	if resp.OTPRequired {
		return &SignInResult{OTPRequired: true}, nil
	}
	return s.grant(ctx, resp)
}

// VerifyOTP finishes the challenge and persists the granted token.
func (s *AuthService) VerifyOTP(ctx context.Context, req VerifyOTPRequest) (*SignInResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid otp payload")
	}

	resp, err := s.client.VerifyOTP(ctx, upstream.VerifyOTPRequest{Email: req.Email, Code: req.Code})
	if err != nil {
		return nil, err
	}
	return s.grant(ctx, resp)
}

// SignOut revokes the session upstream and clears the persisted token. The
// upstream call is best effort: a dead backend must not trap the user in a
// signed-in state.
func (s *AuthService) SignOut(ctx context.Context, sess *models.Session) error {
	if err := s.client.SignOut(ctx, sess.Token); err != nil {
		s.logger.Warn("upstream sign-out failed", zap.String("user", sess.UserID), zap.Error(err))
	}
	return s.tokens.Delete(ctx, sess.UserID)
}

// Me returns the identity behind the current session token.
func (s *AuthService) Me(ctx context.Context, sess *models.Session) (*models.Session, error) {
	return s.client.Me(ctx, sess.Token)
}

func (s *AuthService) grant(ctx context.Context, resp *upstream.SignInResponse) (*SignInResult, error) {
	user := &models.Session{
		UserID: resp.User.ID,
		Email:  resp.User.Email,
		Role:   models.UserRole(resp.User.Role),
		Token:  resp.Token,
	}
	if err := s.tokens.Save(ctx, user.UserID, resp.Token); err != nil {
		return nil, err
	}
	return &SignInResult{Token: resp.Token, User: user}, nil
}
