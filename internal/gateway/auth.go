package gateway

import (
	"context"

	"github.com/openrla/rlaclient/internal/model"
)

// Authentication stages reported by the service.
const (
	StageTraditional  = "TRADITIONALLY_AUTHENTICATED"
	StageSecondFactor = "SECOND_FACTOR_AUTHENTICATED"
)

// AuthResponse is the auth-admin response for either stage. Role and
// Token are populated once the second factor is accepted.
type AuthResponse struct {
	Stage string `json:"stage"`
	Role  string `json:"role"`
	Token string `json:"token"`
}

// AuthenticateFirstFactor submits username and password.
func (c *Client) AuthenticateFirstFactor(ctx context.Context, username, password string) (*AuthResponse, error) {
	body := struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{Username: username, Password: password}

	var out AuthResponse
	if err := c.post(ctx, "/auth-admin", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AuthenticateSecondFactor submits the grid challenge answer. On success
// the returned token is installed on the client for subsequent calls.
func (c *Client) AuthenticateSecondFactor(ctx context.Context, username, secondFactor string) (*AuthResponse, error) {
	body := struct {
		Username     string `json:"username"`
		SecondFactor string `json:"second_factor"`
	}{Username: username, SecondFactor: secondFactor}

	var out AuthResponse
	if err := c.post(ctx, "/auth-admin", body, &out); err != nil {
		return nil, err
	}
	if out.Stage == StageSecondFactor && out.Token != "" {
		c.SetToken(out.Token)
	}
	return &out, nil
}

// RoleFromWire maps the service's role string onto the local Role.
func RoleFromWire(role string) model.Role {
	switch role {
	case "STATE":
		return model.RoleDOS
	case "COUNTY":
		return model.RoleCounty
	default:
		return model.RoleNone
	}
}

// Unauthenticate ends the server-side session. The local token is cleared
// regardless of the outcome; a dead session is not worth retrying.
func (c *Client) Unauthenticate(ctx context.Context) error {
	err := c.post(ctx, "/unauthenticate", nil, nil)
	c.SetToken("")
	return err
}
