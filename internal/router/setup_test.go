package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"pennywise/internal/events"
	"pennywise/internal/logger"
	"pennywise/internal/services"
	"pennywise/internal/testutil"
	"pennywise/internal/validator"
)

// testApp holds the full application stack for flow tests.
type testApp struct {
	DB     *gorm.DB
	Ledger *services.Ledger
	Router *gin.Engine
}

func init() {
	gin.SetMode(gin.TestMode)
	logger.Replace(zap.NewNop().Sugar())
	validator.Register()
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T, mode services.TransferMode, opts Options) *testApp {
	t.Helper()
	return setupAppWith(t, services.Options{TransferMode: mode}, opts)
}

// setupAppWith is setupApp with explicit ledger options.
func setupAppWith(t *testing.T, ledgerOpts services.Options, opts Options) *testApp {
	t.Helper()

	db := testutil.SetupTestDB(t)
	broker := events.NewBroker(256)
	t.Cleanup(func() {
		broker.Close()
		testutil.TeardownTestDB(t, db)
	})

	ledger := services.NewLedger(db, broker, ledgerOpts)
	return &testApp{DB: db, Ledger: ledger, Router: New(ledger, opts)}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// mustCreate posts body to path, expects 201 and returns the id of the
// object stored under key.
func (app *testApp) mustCreate(t *testing.T, path, key, body string) float64 {
	t.Helper()
	rec := app.request("POST", path, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST %s: expected 201, got %d: %s", path, rec.Code, rec.Body.String())
	}
	obj := parseJSON(t, rec)[key].(map[string]interface{})
	return obj["id"].(float64)
}

// balance fetches an account and returns its balance as rendered in JSON.
func (app *testApp) balance(t *testing.T, accountID float64) string {
	t.Helper()
	rec := app.request("GET", fmt.Sprintf("/api/v1/accounts/%.0f", accountID), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	account := parseJSON(t, rec)["account"].(map[string]interface{})
	return account["balance"].(string)
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}
