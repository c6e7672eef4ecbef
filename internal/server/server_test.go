package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	adminservice "github.com/evalworks/vendoreval/internal/admin/service"
	authservice "github.com/evalworks/vendoreval/internal/auth/service"
	"github.com/evalworks/vendoreval/internal/auth/session"
	"github.com/evalworks/vendoreval/internal/authz"
	"github.com/evalworks/vendoreval/internal/catalog"
	"github.com/evalworks/vendoreval/internal/clock"
	"github.com/evalworks/vendoreval/internal/config"
	evaluationservice "github.com/evalworks/vendoreval/internal/evaluation/service"
	"github.com/evalworks/vendoreval/internal/ledger/repository"
	"github.com/evalworks/vendoreval/internal/project"
	reportservice "github.com/evalworks/vendoreval/internal/report/service"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testClient struct {
	t      *testing.T
	srv    *httptest.Server
	client *http.Client
}

func newTestServer(t *testing.T, admins ...string) *testClient {
	t.Helper()

	cfg := config.Config{
		HTTPAddr:        ":0",
		SessionTTLHours: 2,
		AdminUsers:      admins,
		ReviewTimezone:  "UTC",
		ReviewYear:      2026,
		LedgerBackend:   config.LedgerBackendCSV,
		LedgerCSVPath:   filepath.Join(t.TempDir(), "votes.csv"),
	}
	log := zap.NewNop()

	holder, err := catalog.NewHolder(cfg, log)
	require.NoError(t, err)

	store := repository.NewCSVStore(cfg.LedgerCSVPath, log)
	fake := clock.NewFakeClock(time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC))

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	enforcer, err := authz.NewEnforcer(conn, cfg)
	require.NoError(t, err)
	authzSvc := authz.NewService(authz.Params{Cfg: cfg, Log: log, Enforcer: enforcer})

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	NewServer(ServerParams{
		Engine:   engine,
		Cfg:      cfg,
		Log:      log,
		Sessions: session.NewManager(cfg),
		Auth:     authservice.New(authservice.Params{Cfg: cfg, Log: log, Clock: fake, Authz: authzSvc}),
		Authz:    authzSvc,
		Catalog:  holder,
		Eval: evaluationservice.New(evaluationservice.Params{
			Cfg: cfg, Log: log, Store: store, Catalog: holder, Clock: fake,
		}),
		Report: reportservice.New(reportservice.Params{Log: log, Store: store, Catalog: holder}),
		Admin:  adminservice.New(adminservice.Params{Log: log, Store: store}),
		Projects: project.New(project.Params{
			Cfg: cfg, Log: log,
		}),
	})

	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testClient{
		t:      t,
		srv:    srv,
		client: &http.Client{Jar: jar},
	}
}

func (tc *testClient) do(method, path string, body any) *http.Response {
	tc.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(tc.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, tc.srv.URL+path, reader)
	require.NoError(tc.t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := tc.client.Do(req)
	require.NoError(tc.t, err)
	return resp
}

func (tc *testClient) decode(resp *http.Response, out any) {
	tc.t.Helper()
	defer resp.Body.Close()
	require.NoError(tc.t, json.NewDecoder(resp.Body).Decode(out))
}

func (tc *testClient) login(name string) {
	tc.t.Helper()
	resp := tc.do(http.MethodPost, "/auth/login", map[string]string{"name": name})
	require.Equal(tc.t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

// fullBallot builds a complete submission from the served catalog.
func (tc *testClient) fullBallot() map[string]map[string]string {
	tc.t.Helper()

	var doc struct {
		Categories []struct {
			Name      string `json:"name"`
			Questions []struct {
				ID string `json:"id"`
			} `json:"questions"`
		} `json:"categories"`
	}
	resp := tc.do(http.MethodGet, "/api/catalog", nil)
	require.Equal(tc.t, http.StatusOK, resp.StatusCode)
	tc.decode(resp, &doc)
	require.NotEmpty(tc.t, doc.Categories)

	votes := map[string]map[string]string{}
	score := 0
	for _, category := range doc.Categories {
		votes[category.Name] = map[string]string{}
		for _, question := range category.Questions {
			votes[category.Name][question.ID] = fmt.Sprintf("%d", score%5+1)
			score++
		}
	}
	return votes
}

func supplierName(tc *testClient) string {
	var payload struct {
		Suppliers []struct {
			Name string `json:"name"`
		} `json:"suppliers"`
	}
	resp := tc.do(http.MethodGet, "/api/suppliers", nil)
	require.Equal(tc.t, http.StatusOK, resp.StatusCode)
	tc.decode(resp, &payload)
	require.NotEmpty(tc.t, payload.Suppliers)
	return payload.Suppliers[0].Name
}

func TestRoutesRequireSession(t *testing.T) {
	tc := newTestServer(t)

	for _, path := range []string{"/api/catalog", "/api/reports/rankings", "/api/admin/records"} {
		resp := tc.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
		resp.Body.Close()
	}
}

func TestLoginAndMe(t *testing.T) {
	tc := newTestServer(t, "MARIA SILVA")

	tc.login("  maria   silva ")

	var me struct {
		UserName string `json:"user_name"`
		IsAdmin  bool   `json:"is_admin"`
	}
	resp := tc.do(http.MethodGet, "/auth/me", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	tc.decode(resp, &me)
	assert.Equal(t, "MARIA SILVA", me.UserName)
	assert.True(t, me.IsAdmin)

	resp = tc.do(http.MethodPost, "/auth/logout", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = tc.do(http.MethodGet, "/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestLogin_RejectsBlankName(t *testing.T) {
	tc := newTestServer(t)

	resp := tc.do(http.MethodPost, "/auth/login", map[string]string{"name": "  "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestSubmitAndReport(t *testing.T) {
	tc := newTestServer(t)
	tc.login("ALICE DA SILVA")

	supplier := supplierName(tc)
	votes := tc.fullBallot()

	var receipt struct {
		EvaluationID string `json:"evaluation_id"`
		Records      int    `json:"records"`
		Year         int    `json:"year"`
	}
	resp := tc.do(http.MethodPost, "/api/evaluations", map[string]any{
		"supplier": supplier,
		"project":  "C-1001 - NEW LINE",
		"votes":    votes,
		"comments": map[string]string{},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	tc.decode(resp, &receipt)
	assert.NotEmpty(t, receipt.EvaluationID)
	assert.Equal(t, 16, receipt.Records)
	assert.Equal(t, 2026, receipt.Year)

	// Same supplier+project again: conflict.
	resp = tc.do(http.MethodPost, "/api/evaluations", map[string]any{
		"supplier": supplier,
		"project":  "C-1001 - NEW LINE",
		"votes":    votes,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	var rankings struct {
		Rankings []struct {
			Rank        int     `json:"rank"`
			Supplier    string  `json:"supplier"`
			Mean        float64 `json:"mean"`
			Evaluations int     `json:"evaluations"`
		} `json:"rankings"`
	}
	resp = tc.do(http.MethodGet, "/api/reports/rankings?year=2026", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	tc.decode(resp, &rankings)
	require.Len(t, rankings.Rankings, 1)
	assert.Equal(t, 1, rankings.Rankings[0].Rank)
	assert.Equal(t, supplier, rankings.Rankings[0].Supplier)
	assert.Equal(t, 1, rankings.Rankings[0].Evaluations)

	var years struct {
		Years []int `json:"years"`
	}
	resp = tc.do(http.MethodGet, "/api/reports/years", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	tc.decode(resp, &years)
	assert.Equal(t, []int{2026}, years.Years)
}

func TestSubmit_UnknownSupplier(t *testing.T) {
	tc := newTestServer(t)
	tc.login("ALICE DA SILVA")

	resp := tc.do(http.MethodPost, "/api/evaluations", map[string]any{
		"supplier": "NOT A REAL SUPPLIER",
		"votes":    tc.fullBallot(),
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestAdminRoutes(t *testing.T) {
	tc := newTestServer(t, "MARIA SILVA")

	// Seed one evaluation as a regular user.
	tc.login("ALICE DA SILVA")
	supplier := supplierName(tc)
	var receipt struct {
		EvaluationID string `json:"evaluation_id"`
	}
	resp := tc.do(http.MethodPost, "/api/evaluations", map[string]any{
		"supplier": supplier,
		"votes":    tc.fullBallot(),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	tc.decode(resp, &receipt)

	// Regular user cannot reach admin routes.
	resp = tc.do(http.MethodGet, "/api/admin/records", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	tc.login("MARIA SILVA")

	var records struct {
		Total int `json:"total"`
	}
	resp = tc.do(http.MethodGet, "/api/admin/records", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	tc.decode(resp, &records)
	assert.Equal(t, 16, records.Total)

	var participation struct {
		Participation []struct {
			UserName    string `json:"user_name"`
			Evaluations int    `json:"evaluations"`
		} `json:"participation"`
	}
	resp = tc.do(http.MethodGet, "/api/admin/participation", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	tc.decode(resp, &participation)
	require.Len(t, participation.Participation, 1)
	assert.Equal(t, "ALICE DA SILVA", participation.Participation[0].UserName)

	var deleted struct {
		RowsRemoved int `json:"rows_removed"`
	}
	resp = tc.do(http.MethodDelete, "/api/admin/evaluations/"+receipt.EvaluationID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	tc.decode(resp, &deleted)
	assert.Equal(t, 16, deleted.RowsRemoved)

	// Purge refuses without confirmation.
	resp = tc.do(http.MethodPost, "/api/admin/purge", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = tc.do(http.MethodPost, "/api/admin/purge?confirm=true", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}
