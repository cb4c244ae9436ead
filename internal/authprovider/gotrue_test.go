package authprovider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jp3/expedientes-api/internal/models"
	appErrors "github.com/jp3/expedientes-api/pkg/errors"
)

func TestClientSignIn(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/token", r.URL.Path)
		require.Equal(t, "password", r.URL.Query().Get("grant_type"))
		require.Equal(t, "anon-key", r.Header.Get("apikey"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != "secret1" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error_description": "Invalid login credentials"}) //nolint:errcheck
			return
		}

		json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
			"access_token": "provider-token",
			"user": map[string]interface{}{
				"id":    "u1",
				"email": "admin@example.com",
				"user_metadata": map[string]string{
					"username": "admin",
					"role":     "admin",
				},
			},
		})
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL, AnonKey: "anon-key"})

	user, err := client.SignIn(context.Background(), "admin@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "admin", user.Username)
	assert.Equal(t, models.RoleAdmin, user.Role)

	_, err = client.SignIn(context.Background(), "admin@example.com", "wrong")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusUnauthorized, appErr.Status)
}

func TestClientCreateUserRequiresServiceKey(t *testing.T) {
	client := New(Config{BaseURL: "http://localhost", AnonKey: "anon-key"})

	_, err := client.CreateUser(context.Background(), models.RegisterRequest{
		Username: "nuevo",
		Email:    "nuevo@example.com",
		Password: "secret1",
	})
	require.Error(t, err)
}

func TestClientCreateUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/admin/users", r.URL.Path)
		require.Equal(t, "Bearer service-key", r.Header.Get("Authorization"))

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
			"id":    "u2",
			"email": "nuevo@example.com",
			"user_metadata": map[string]string{
				"username": "nuevo",
				"role":     "user",
			},
		})
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL, AnonKey: "anon-key", ServiceRoleKey: "service-key"})

	user, err := client.CreateUser(context.Background(), models.RegisterRequest{
		Username: "nuevo",
		Email:    "nuevo@example.com",
		Password: "secret1",
		Role:     models.RoleUser,
	})
	require.NoError(t, err)
	assert.Equal(t, "u2", user.ID)
	assert.Equal(t, models.RoleUser, user.Role)
}

func TestClientListUsers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/admin/users", r.URL.Path)

		json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
			"users": []map[string]interface{}{
				{"id": "u1", "email": "admin@example.com", "user_metadata": map[string]string{"username": "admin", "role": "admin"}},
				{"id": "u2", "email": "otro@example.com"},
			},
		})
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL, AnonKey: "anon-key", ServiceRoleKey: "service-key"})

	users, err := client.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "admin", users[0].Username)
	// Missing metadata falls back to the email and the default role.
	assert.Equal(t, "otro@example.com", users[1].Username)
	assert.Equal(t, models.RoleUser, users[1].Role)
}
