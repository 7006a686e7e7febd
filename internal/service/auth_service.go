package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/blogai/internal/apiclient"
	"github.com/blogai/internal/form"
)

var (
	ErrMissingToken       = errors.New("the server did not issue a session token")
	ErrTooManyLoginTrials = errors.New("too many login attempts, please try again later")
)

// AuthResult is the outcome of a successful login or signup.
type AuthResult struct {
	User  Profile
	Token string
}

type authResponse struct {
	Token string   `json:"token"`
	User  *Profile `json:"user"`
	Data  *struct {
		Token string   `json:"token"`
		User  *Profile `json:"user"`
	} `json:"data"`
}

// AuthService talks to the backend auth endpoints.
type AuthService struct {
	api *apiclient.Client
}

func NewAuthService(api *apiclient.Client) *AuthService {
	return &AuthService{api: api}
}

// Login exchanges credentials for a session token.
func (s *AuthService) Login(ctx context.Context, f form.LoginForm) (*AuthResult, error) {
	return s.authenticate(ctx, "auth/login", f, f.Email, "")
}

// Signup creates an account and returns its session token.
func (s *AuthService) Signup(ctx context.Context, f form.SignupForm) (*AuthResult, error) {
	return s.authenticate(ctx, "auth/signup", f, f.Email, f.Name)
}

func (s *AuthService) authenticate(ctx context.Context, path string, payload any, email, name string) (*AuthResult, error) {
	var body authResponse
	resp, err := s.api.Post(ctx, path, payload, &body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	token := body.Token
	user := body.User
	if body.Data != nil {
		token = firstNonEmpty(token, body.Data.Token)
		if user == nil {
			user = body.Data.User
		}
	}
	token = firstNonEmpty(token, resp.Cookie(apiclient.TokenCookieName))
	if token == "" {
		return nil, ErrMissingToken
	}

	result := &AuthResult{Token: token, User: Profile{Name: name, Email: email}}
	if user != nil {
		result.User.Name = firstNonEmpty(user.Name, name)
		result.User.Email = firstNonEmpty(user.Email, email)
	}
	if result.User.Name == "" {
		result.User.Name = strings.SplitN(result.User.Email, "@", 2)[0]
	}
	log.Printf("[AUTH] %s succeeded for %s", path, result.User.Email)
	return result, nil
}

// Logout tells the backend to drop the session. Failures are logged only,
// the local session is cleared regardless.
func (s *AuthService) Logout(ctx context.Context) {
	if _, err := s.api.Post(ctx, "auth/logout", struct{}{}, nil); err != nil {
		log.Printf("[AUTH] logout call failed: %v", err)
	}
}
