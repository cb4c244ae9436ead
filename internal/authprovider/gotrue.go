// Package authprovider talks to the hosted authentication collaborator over
// its GoTrue-style REST API. The application never stores credentials; it only
// forwards them here and works with the opaque user records that come back.
package authprovider

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/jp3/expedientes-api/internal/models"
	appErrors "github.com/jp3/expedientes-api/pkg/errors"
)

// Config carries the collaborator endpoint and its two API keys: the anon key
// for user-scoped calls and the service-role key for admin calls.
type Config struct {
	BaseURL        string
	AnonKey        string
	ServiceRoleKey string
	Timeout        time.Duration
}

// Client is a GoTrue REST client.
type Client struct {
	http           *resty.Client
	anonKey        string
	serviceRoleKey string
}

// New constructs a Client.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	return &Client{http: httpClient, anonKey: cfg.AnonKey, serviceRoleKey: cfg.ServiceRoleKey}
}

type userMetadata struct {
	Username string          `json:"username,omitempty"`
	Role     models.UserRole `json:"role,omitempty"`
}

type gotrueUser struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	CreatedAt    string       `json:"created_at"`
	UpdatedAt    string       `json:"updated_at"`
	UserMetadata userMetadata `json:"user_metadata"`
}

type gotrueError struct {
	Message          string `json:"msg"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (e gotrueError) text() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.ErrorDescription != "":
		return e.ErrorDescription
	case e.Error != "":
		return e.Error
	}
	return "authentication service error"
}

// CreateUser provisions a user via the admin endpoint with its role and
// username stored as metadata. Requires the service-role key.
func (c *Client) CreateUser(ctx context.Context, req models.RegisterRequest) (*models.AuthUser, error) {
	if c.serviceRoleKey == "" {
		return nil, appErrors.Clone(appErrors.ErrInternal, "authentication service not configured")
	}

	body := map[string]interface{}{
		"email":         req.Email,
		"password":      req.Password,
		"email_confirm": true,
		"user_metadata": userMetadata{Username: req.Username, Role: req.Role},
	}

	var created gotrueUser
	var apiErr gotrueError
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("apikey", c.anonKey).
		SetAuthToken(c.serviceRoleKey).
		SetBody(body).
		SetResult(&created).
		SetError(&apiErr).
		Post("/admin/users")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "authentication service unreachable")
	}
	if resp.IsError() {
		return nil, providerError(resp.StatusCode(), apiErr)
	}

	return toAuthUser(created), nil
}

// SignIn exchanges email+password for the collaborator's session and returns
// the authenticated user record.
func (c *Client) SignIn(ctx context.Context, email, password string) (*models.AuthUser, error) {
	var session struct {
		AccessToken string     `json:"access_token"`
		User        gotrueUser `json:"user"`
	}
	var apiErr gotrueError
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("apikey", c.anonKey).
		SetQueryParam("grant_type", "password").
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&session).
		SetError(&apiErr).
		Post("/token")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "authentication service unreachable")
	}
	if resp.IsError() {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid credentials")
	}

	return toAuthUser(session.User), nil
}

// ListUsers returns every user the collaborator knows about. Requires the
// service-role key.
func (c *Client) ListUsers(ctx context.Context) ([]models.AuthUser, error) {
	if c.serviceRoleKey == "" {
		return nil, appErrors.Clone(appErrors.ErrInternal, "operation unavailable: service-role key not configured")
	}

	var listing struct {
		Users []gotrueUser `json:"users"`
	}
	var apiErr gotrueError
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("apikey", c.anonKey).
		SetAuthToken(c.serviceRoleKey).
		SetResult(&listing).
		SetError(&apiErr).
		Get("/admin/users")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "authentication service unreachable")
	}
	if resp.IsError() {
		return nil, providerError(resp.StatusCode(), apiErr)
	}

	users := make([]models.AuthUser, 0, len(listing.Users))
	for _, u := range listing.Users {
		users = append(users, *toAuthUser(u))
	}
	return users, nil
}

func toAuthUser(u gotrueUser) *models.AuthUser {
	username := u.UserMetadata.Username
	if username == "" {
		username = u.Email
	}
	role := u.UserMetadata.Role
	if role == "" {
		role = models.RoleUser
	}
	return &models.AuthUser{
		ID:        u.ID,
		Username:  username,
		Email:     u.Email,
		Role:      role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func providerError(status int, apiErr gotrueError) error {
	message := apiErr.text()
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return appErrors.New(appErrors.ErrUnauthorized.Code, status, message)
	case status >= 400 && status < 500:
		return appErrors.New(appErrors.ErrValidation.Code, status, message)
	}
	return appErrors.New(appErrors.ErrInternal.Code, http.StatusInternalServerError, fmt.Sprintf("authentication service failed: %s", message))
}
