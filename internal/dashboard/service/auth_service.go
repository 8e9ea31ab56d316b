package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"financial-news-ai/internal/dashboard/dto"
	"financial-news-ai/internal/dashboard/repository"
	"financial-news-ai/internal/entity"
	"financial-news-ai/pkg/logger"
	"financial-news-ai/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrPasswordMismatch is returned when the confirmation differs from the password.
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrInvalidForm is returned when a required form field is empty.
	ErrInvalidForm = errors.New("invalid form")
	// ErrUnauthenticated is returned for a missing, invalid or expired session token.
	ErrUnauthenticated = errors.New("not logged in")
)

const (
	defaultUserName      = "User"
	passwordResetMessage = "Password has been reset successfully"
)

// SessionReleaser drops the in-memory state tied to a session.
type SessionReleaser interface {
	Release(sessionID string)
}

// AuthService handles the login, signup and reset forms and the session lifecycle.
// No credential is ever checked.
type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error)
	Signup(ctx context.Context, req dto.SignupRequest) (*dto.AuthResponse, error)
	ResetPassword(ctx context.Context, req dto.PasswordResetRequest) (*dto.MessageResponse, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*entity.Session, error)
}

// AuthConfig holds the session settings used by AuthService.
type AuthConfig struct {
	JWTSecret      string
	TTL            time.Duration
	SimulatedDelay time.Duration
}

// NewAuthService creates a new AuthService. An empty secret is replaced by a random one,
// which invalidates tokens on restart.
func NewAuthService(cfg AuthConfig, sessions repository.SessionRepository, releaser SessionReleaser, log *logger.Logger) AuthService {
	secret := cfg.JWTSecret
	if secret == "" {
		log.Warn("session.jwt_secret is empty, using a random secret")
		secret = uuid.NewString() + uuid.NewString()
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}

	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	return &authService{
		secret:   []byte(secret),
		ttl:      cfg.TTL,
		delay:    cfg.SimulatedDelay,
		sessions: sessions,
		releaser: releaser,
		validate: validate,
		logger:   log,
		now:      time.Now,
	}
}

type authService struct {
	secret   []byte
	ttl      time.Duration
	delay    time.Duration
	sessions repository.SessionRepository
	releaser SessionReleaser
	validate *validator.Validate
	logger   *logger.Logger
	now      func() time.Time
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validateForm(&req); err != nil {
		return nil, err
	}
	if err := utils.SleepContext(ctx, s.delay); err != nil {
		return nil, err
	}

	resp, err := s.createSession(ctx, nameFromEmail(req.Email), req.Email)
	if err != nil {
		return nil, err
	}
	authEventsTotal.WithLabelValues("login").Inc()
	return resp, nil
}

func (s *authService) Signup(ctx context.Context, req dto.SignupRequest) (*dto.AuthResponse, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validateForm(&req); err != nil {
		return nil, err
	}
	if req.Password != req.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}
	if err := utils.SleepContext(ctx, s.delay); err != nil {
		return nil, err
	}

	name := req.Name
	if name == "" {
		name = defaultUserName
	}
	resp, err := s.createSession(ctx, name, req.Email)
	if err != nil {
		return nil, err
	}
	authEventsTotal.WithLabelValues("signup").Inc()
	return resp, nil
}

// ResetPassword only checks the confirmation. Nothing is stored.
func (s *authService) ResetPassword(ctx context.Context, req dto.PasswordResetRequest) (*dto.MessageResponse, error) {
	if err := s.validateForm(&req); err != nil {
		return nil, err
	}
	if req.NewPassword != req.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}
	if err := utils.SleepContext(ctx, s.delay); err != nil {
		return nil, err
	}
	authEventsTotal.WithLabelValues("password_reset").Inc()
	return &dto.MessageResponse{Message: passwordResetMessage}, nil
}

// Logout destroys the session. An unknown or invalid token is not an error.
func (s *authService) Logout(ctx context.Context, token string) error {
	sessionID, err := s.parseToken(token)
	if err != nil {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return err
	}
	if s.releaser != nil {
		s.releaser.Release(sessionID)
	}
	authEventsTotal.WithLabelValues("logout").Inc()
	s.logger.Info("Session destroyed", logger.StringField("session_id", sessionID))
	return nil
}

// Authenticate resolves a token to its live session. The session store is the only gate.
func (s *authService) Authenticate(ctx context.Context, token string) (*entity.Session, error) {
	sessionID, err := s.parseToken(token)
	if err != nil {
		return nil, err
	}
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session.Expired(s.now()) {
		return nil, ErrUnauthenticated
	}
	return session, nil
}

func (s *authService) createSession(ctx context.Context, name, email string) (*dto.AuthResponse, error) {
	now := s.now().UTC()
	session := &entity.Session{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": session.ID,
		"sub": session.Email,
		"iat": now.Unix(),
		"exp": session.ExpiresAt.Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	s.logger.Info("Session created", logger.StringField("session_id", session.ID), logger.StringField("email", email))
	return &dto.AuthResponse{
		Token:     signed,
		ExpiresAt: session.ExpiresAt.Format(time.RFC3339),
		User: dto.UserResponse{
			LoggedIn: true,
			Name:     session.Name,
			Email:    session.Email,
		},
	}, nil
}

func (s *authService) parseToken(token string) (string, error) {
	if token == "" {
		return "", ErrUnauthenticated
	}
	tok, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithExpirationRequired(), jwt.WithTimeFunc(s.now))
	if err != nil || !tok.Valid {
		return "", ErrUnauthenticated
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrUnauthenticated
	}
	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return "", ErrUnauthenticated
	}
	return sid, nil
}

func (s *authService) validateForm(form interface{}) error {
	if err := s.validate.Struct(form); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s is required", ErrInvalidForm, verrs[0].Field())
		}
		return fmt.Errorf("%w: %v", ErrInvalidForm, err)
	}
	return nil
}

// nameFromEmail returns the local part of an email, or "User" when there is none.
func nameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	if local == "" {
		return defaultUserName
	}
	return local
}
