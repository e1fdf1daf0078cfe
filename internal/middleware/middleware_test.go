package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/uuid"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func doRequest(r *gin.Engine, method string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/test", http.NoBody)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse response body: %v", err)
	}
	return result
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	errObj, ok := parseBody(t, rec)["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object, got %s", rec.Body.String())
	}
	code, _ := errObj["code"].(string)
	return code
}

func TestAdminKey(t *testing.T) {
	tests := []struct {
		name          string
		configuredKey string
		requestKey    string
		wantStatus    int
		wantErrorCode string
	}{
		{
			name:          "valid_api_key",
			configuredKey: "secret-admin-key",
			requestKey:    "secret-admin-key",
			wantStatus:    http.StatusOK,
		},
		{
			name:          "invalid_api_key",
			configuredKey: "secret-admin-key",
			requestKey:    "wrong-key",
			wantStatus:    http.StatusUnauthorized,
			wantErrorCode: "INVALID_API_KEY",
		},
		{
			name:          "missing_api_key",
			configuredKey: "secret-admin-key",
			wantStatus:    http.StatusUnauthorized,
			wantErrorCode: "INVALID_API_KEY",
		},
		{
			name:       "no_key_configured_leaves_route_open",
			requestKey: "anything",
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(AdminKey(tt.configuredKey))
			r.POST("/test", func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"status": "ok"})
			})

			headers := map[string]string{}
			if tt.requestKey != "" {
				headers["X-API-Key"] = tt.requestKey
			}
			rec := doRequest(r, http.MethodPost, headers)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if tt.wantErrorCode != "" {
				if code := errorCode(t, rec); code != tt.wantErrorCode {
					t.Errorf("expected error code %s, got %s", tt.wantErrorCode, code)
				}
			}
		})
	}
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"app_error", apperrors.ErrAccountNotFound, http.StatusNotFound, "ACCOUNT_NOT_FOUND"},
		{"wrapped_storage_error", apperrors.Wrap(apperrors.ErrStorage, errors.New("disk full")), http.StatusInternalServerError, "STORAGE_ERROR"},
		{"plain_error", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(ErrorHandler())
			r.GET("/test", func(c *gin.Context) {
				_ = c.Error(tt.err)
			})

			rec := doRequest(r, http.MethodGet, nil)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if code := errorCode(t, rec); code != tt.wantCode {
				t.Errorf("expected error code %s, got %s", tt.wantCode, code)
			}
		})
	}

	t.Run("leaves_written_responses_alone", func(t *testing.T) {
		r := gin.New()
		r.Use(ErrorHandler())
		r.GET("/test", func(c *gin.Context) {
			c.JSON(http.StatusTeapot, gin.H{"status": "brewing"})
			_ = c.Error(errors.New("late failure"))
		})

		rec := doRequest(r, http.MethodGet, nil)

		if rec.Code != http.StatusTeapot {
			t.Fatalf("expected 418, got %d", rec.Code)
		}
		if parseBody(t, rec)["status"] != "brewing" {
			t.Errorf("response was overwritten: %s", rec.Body.String())
		}
	})
}

func TestRequestLogging(t *testing.T) {
	newRouter := func(seen *string) *gin.Engine {
		r := gin.New()
		r.Use(RequestLogging())
		r.GET("/test", func(c *gin.Context) {
			*seen = RequestID(c)
			c.Status(http.StatusNoContent)
		})
		return r
	}

	t.Run("issues_a_uuidv7", func(t *testing.T) {
		var seen string
		rec := doRequest(newRouter(&seen), http.MethodGet, nil)

		id := rec.Header().Get("X-Request-ID")
		if uuid.Version(id) != 7 {
			t.Fatalf("expected a UUIDv7 request id, got %q", id)
		}
		if seen != id {
			t.Errorf("context id %q does not match header %q", seen, id)
		}
	})

	t.Run("reuses_a_valid_incoming_id", func(t *testing.T) {
		var seen string
		incoming := uuid.New()
		rec := doRequest(newRouter(&seen), http.MethodGet, map[string]string{"X-Request-ID": incoming})

		if got := rec.Header().Get("X-Request-ID"); got != incoming {
			t.Errorf("expected %s, got %s", incoming, got)
		}
	})

	t.Run("replaces_a_malformed_incoming_id", func(t *testing.T) {
		var seen string
		rec := doRequest(newRouter(&seen), http.MethodGet, map[string]string{"X-Request-ID": "not-a-uuid"})

		if got := rec.Header().Get("X-Request-ID"); got == "not-a-uuid" || !uuid.IsValid(got) {
			t.Errorf("expected a fresh id, got %q", got)
		}
	})
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS())
	r.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	t.Run("answers_preflight", func(t *testing.T) {
		rec := doRequest(r, http.MethodOptions, nil)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
		if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Error("missing Access-Control-Allow-Origin")
		}
	})

	t.Run("decorates_normal_requests", func(t *testing.T) {
		rec := doRequest(r, http.MethodGet, nil)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if rec.Header().Get("Access-Control-Expose-Headers") == "" {
			t.Error("missing Access-Control-Expose-Headers")
		}
	})
}
