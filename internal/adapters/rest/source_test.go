package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/olusolaa/oneroster-parity/internal/adapters/limiter"
	"github.com/olusolaa/oneroster-parity/internal/core/domain"
	"github.com/olusolaa/oneroster-parity/internal/errors"
	"github.com/olusolaa/oneroster-parity/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSource(baseURL, token string) *Source {
	return New("pg-api", Config{BaseURL: baseURL, Token: token}, nil,
		limiter.New(limiter.MaxRPS, 10, log.Discard()), 5*time.Second, log.Discard())
}

func TestSource_URL(t *testing.T) {
	s := newTestSource("http://localhost:3000/", "")

	assert.Equal(t, "http://localhost:3000/ims/oneroster/rostering/v1p2/orgs",
		s.URL(domain.Endpoint{Name: "orgs", Path: "/ims/oneroster/rostering/v1p2/orgs"}))
	assert.Equal(t, "http://localhost:3000/classes", s.URL(domain.Endpoint{Name: "classes"}))
	assert.Equal(t, "http://localhost:3000/users?role=parent", s.URL(domain.Endpoint{Name: "parents", Path: "users?role=parent"}))
}

func TestSource_FetchEnvelope(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		status   int
		body     string
		errCode  errors.Code
		expected string
	}{
		{
			name:     "success with bearer token",
			token:    "abc",
			status:   http.StatusOK,
			body:     `{"orgs":[]}`,
			expected: `{"orgs":[]}`,
		},
		{
			name:    "unauthorized",
			status:  http.StatusUnauthorized,
			body:    `{"imsx_codeMajor":"failure"}`,
			errCode: errors.CodeBackendAuth,
		},
		{
			name:    "server error",
			status:  http.StatusInternalServerError,
			body:    `oops`,
			errCode: errors.CodeBackendError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotAuth, gotAccept, gotPath string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotAuth = r.Header.Get("Authorization")
				gotAccept = r.Header.Get("Accept")
				gotPath = r.URL.RequestURI()
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			s := newTestSource(srv.URL, tt.token)
			body, err := s.FetchEnvelope(context.Background(), domain.Endpoint{Name: "orgs", Path: "/orgs?limit=100"})

			assert.Equal(t, "/orgs?limit=100", gotPath)
			assert.Equal(t, "application/json", gotAccept)
			if tt.token != "" {
				assert.Equal(t, "Bearer "+tt.token, gotAuth)
			} else {
				assert.Empty(t, gotAuth)
			}

			if tt.errCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.errCode, errors.GetCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(body))
		})
	}
}

func TestSource_FetchEnvelope_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestSource(url, "").FetchEnvelope(context.Background(), domain.Endpoint{Name: "orgs"})
	require.Error(t, err)
	assert.Equal(t, errors.CodeBackendError, errors.GetCode(err))
}

func TestSource_FetchEnvelope_Cancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestSource(srv.URL, "").FetchEnvelope(ctx, domain.Endpoint{Name: "orgs"})
	require.Error(t, err)
	assert.True(t, errors.IsTimeout(err) || errors.Is(err, errors.CodeTimeout))
}
