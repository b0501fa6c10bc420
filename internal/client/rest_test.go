package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Recipe-Web-App/system-operations-manager/internal/entity"
	"github.com/Recipe-Web-App/system-operations-manager/internal/errors"
)

func TestListFollowsPagination(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		require.Equal(t, "/services", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("offset") == "" {
			json.NewEncoder(w).Encode(map[string]any{
				"data":   []map[string]any{{"id": "s1", "name": "billing", "host": "a.com"}},
				"offset": "page2",
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"id": "s2", "name": "users", "host": "u.com"}},
		})
	}))
	defer server.Close()

	gw := NewGateway(server.URL)
	snaps, err := gw.List(context.Background(), entity.TypeService)
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "s1", snaps[0].ID)
	assert.Equal(t, "billing", snaps[0].Name())
	assert.Equal(t, "users", snaps[1].Name())
}

func TestGetNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	gw := NewGateway(server.URL)
	_, err := gw.Get(context.Background(), entity.TypeService, "ghost")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestLookupAbsenceIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/services/billing" {
			json.NewEncoder(w).Encode(map[string]any{"id": "s1", "name": "billing"})
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	gw := NewGateway(server.URL)

	found, err := gw.Lookup(context.Background(), entity.TypeService, "billing")
	require.NoError(t, err)
	assert.True(t, found.Found)
	assert.Equal(t, "s1", found.Entity.ID)

	missing, err := gw.Lookup(context.Background(), entity.TypeService, "ghost")
	require.NoError(t, err, "absence must not surface as an error")
	assert.False(t, missing.Found)
}

func TestCreateAndUpdateAndDelete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/services":
			var body map[string]any
			json.NewDecoder(r.Body).Decode(&body)
			body["id"] = "created-1"
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(body)
		case r.Method == http.MethodPatch && r.URL.Path == "/services/created-1":
			json.NewEncoder(w).Encode(map[string]any{"id": "created-1", "host": "b.com"})
		case r.Method == http.MethodDelete && r.URL.Path == "/services/created-1":
			w.WriteHeader(http.StatusNoContent)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	gw := NewGateway(server.URL)
	ctx := context.Background()

	created, err := gw.Create(ctx, entity.TypeService, entity.Fields{"name": "billing", "host": "a.com"})
	require.NoError(t, err)
	assert.Equal(t, "created-1", created.ID)

	updated, err := gw.Update(ctx, entity.TypeService, "created-1", entity.Fields{"host": "b.com"})
	require.NoError(t, err)
	assert.Equal(t, "b.com", updated.Fields["host"])

	assert.NoError(t, gw.Delete(ctx, entity.TypeService, "created-1"))
}

func TestErrorKindMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		code   errors.ErrorCode
	}{
		{"unauthorized", http.StatusUnauthorized, errors.ErrCodeGatewayAuth},
		{"forbidden", http.StatusForbidden, errors.ErrCodeGatewayAuth},
		{"bad request", http.StatusBadRequest, errors.ErrCodeSchemaInvalid},
		{"conflict", http.StatusConflict, errors.ErrCodeSchemaInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			gw := NewGateway(server.URL)
			_, err := gw.List(context.Background(), entity.TypeService)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, tt.code), "status %d should map to %s", tt.status, tt.code)
		})
	}
}

func TestConnectionFailure(t *testing.T) {
	gw := NewGateway("http://127.0.0.1:1") // nothing listens here
	_, err := gw.List(context.Background(), entity.TypeService)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeGatewayUnreachable))
}

func TestKonnectAuthHeaderAndPath(t *testing.T) {
	var gotAuth, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{}})
	}))
	defer server.Close()

	kn := NewKonnect(server.URL, "cp-123", "secret-token")
	_, err := kn.List(context.Background(), entity.TypeRoute)
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, "/v2/control-planes/cp-123/core-entities/routes", gotPath)
}
