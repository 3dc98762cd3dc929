package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"thermo_relay/internal/service"
)

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header  string
		want    string
		wantErr error
	}{
		{"", "", errMissingAuthHeader},
		{"Token abc", "", errBadAuthHeader},
		{"Bearer", "", errBadAuthHeader},
		{"Bearer    ", "", errBadAuthHeader},
		{"Bearer abc", "abc", nil},
		{"bearer abc", "abc", nil},
	}
	for _, tc := range cases {
		got, err := bearerToken(tc.header)
		if !errors.Is(err, tc.wantErr) || got != tc.want {
			t.Errorf("bearerToken(%q) = (%q, %v), want (%q, %v)", tc.header, got, err, tc.want, tc.wantErr)
		}
	}
}

// newSecureRouter mounts the middleware in front of a handler that echoes the operator id.
func newSecureRouter(auth *mockAuth) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(&service.Service{Authorization: auth}, nil)
	r := gin.New()
	r.GET("/secure", h.operatorMiddleware, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"operator_id": c.GetInt(operatorIDKey)})
	})
	return r
}

func TestOperatorMiddleware(t *testing.T) {
	cases := []struct {
		name     string
		header   string
		parseErr error
		wantCode int
		wantErr  string
	}{
		{"missing header", "", nil, http.StatusUnauthorized, "missing Authorization header"},
		{"wrong scheme", "Token abc", nil, http.StatusUnauthorized, "invalid Authorization header format"},
		{"rejected token", "Bearer expired", service.ErrInvalidToken, http.StatusUnauthorized, "invalid or expired token"},
		{"accepted", "Bearer good-token", nil, http.StatusOK, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			auth := &mockAuth{parseID: 123, parseErr: tc.parseErr}
			r := newSecureRouter(auth)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/secure", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			r.ServeHTTP(w, req)

			if w.Code != tc.wantCode {
				t.Fatalf("status = %d, want %d (body=%s)", w.Code, tc.wantCode, w.Body.String())
			}
			var out struct {
				Error      string `json:"error"`
				OperatorID int    `json:"operator_id"`
			}
			_ = json.Unmarshal(w.Body.Bytes(), &out)
			if out.Error != tc.wantErr {
				t.Fatalf("error = %q, want %q", out.Error, tc.wantErr)
			}
			if tc.wantCode == http.StatusOK {
				if out.OperatorID != 123 {
					t.Fatalf("operator_id = %d, want 123", out.OperatorID)
				}
				if auth.lastParseToken != "good-token" {
					t.Fatalf("ParseToken got %q", auth.lastParseToken)
				}
			}
		})
	}
}
