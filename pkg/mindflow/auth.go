package mindflow

import (
	"context"
	"fmt"
	"net/http"
)

// AuthService wraps the /auth endpoints and owns the token lifecycle.
type AuthService struct {
	client *Client
}

// RegisterRequest is the body of POST /auth/register. Unset plan fields are
// sent as null.
type RegisterRequest struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	FullName string      `json:"full_name"`
	PlanID   interface{} `json:"plan_id"`
	PlanData interface{} `json:"plan_data"`
}

// LogoutResult is returned by Logout.
type LogoutResult struct {
	Message string `json:"message"`
}

// Register creates an account. It does not require a stored token.
func (a *AuthService) Register(ctx context.Context, req RegisterRequest) (Record, error) {
	var result Record
	if err := a.client.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/auth/register",
		Body:   req,
	}, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Login authenticates and persists the returned token.
func (a *AuthService) Login(ctx context.Context, email, password string) (Record, error) {
	var result Record
	if err := a.client.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Body: map[string]string{
			"email":    email,
			"password": password,
		},
	}, &result); err != nil {
		return nil, err
	}

	if token := result.String("token"); token != "" {
		if err := a.client.tokens.Set(token); err != nil {
			return nil, fmt.Errorf("failed to persist auth token: %w", err)
		}
	}

	return result, nil
}

// Me returns the current user.
func (a *AuthService) Me(ctx context.Context) (Record, error) {
	var user Record
	if err := a.client.Do(ctx, Request{
		Path:         "/auth/me",
		RequiresAuth: a.client.RequiresAuth(),
	}, &user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateMe updates the current user. The body is not scoped to the board.
func (a *AuthService) UpdateMe(ctx context.Context, data interface{}) (Record, error) {
	var user Record
	if err := a.client.Do(ctx, Request{
		Method:       http.MethodPut,
		Path:         "/auth/me",
		Body:         data,
		RequiresAuth: a.client.RequiresAuth(),
	}, &user); err != nil {
		return nil, err
	}
	return user, nil
}

// Logout forgets the stored token. No request is made.
func (a *AuthService) Logout(ctx context.Context) (*LogoutResult, error) {
	if err := a.client.tokens.Clear(); err != nil {
		return nil, fmt.Errorf("failed to clear auth token: %w", err)
	}
	return &LogoutResult{Message: "Logged out successfully"}, nil
}

// IsAuthenticated reports whether a token is stored. The token is not
// checked with the backend, so a later call may still fail with 401.
func (a *AuthService) IsAuthenticated() bool {
	token, err := a.client.tokens.Get()
	return err == nil && token != ""
}
