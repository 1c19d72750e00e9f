package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/event-finance/internal/application/dispatcher"
	"github.com/garyjia/event-finance/internal/application/service"
	"github.com/garyjia/event-finance/internal/domain/permission"
	"github.com/garyjia/event-finance/internal/infrastructure/persistence/repository"
	"github.com/garyjia/event-finance/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/event-finance/internal/infrastructure/report"
	"github.com/garyjia/event-finance/pkg/database"
	"github.com/garyjia/event-finance/pkg/utils"
)

type testAPI struct {
	server *Server
	tokens *TokenIssuer
}

func newTestAPI(t *testing.T, demoMode bool) *testAPI {
	t.Helper()
	path := filepath.Join(t.TempDir(), "api.db")
	logger := zap.NewNop()
	kv := utils.NewKVLogger(logger)

	db, err := database.New(database.Config{Path: path}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.NewMigrator(path, logger).Up())

	eventRepo := repository.NewEventRepository(db.DB, logger)
	itemRepo := repository.NewBudgetItemRepository(db.DB, logger)
	expenseRepo := repository.NewExpenseRepository(db.DB, logger)
	workflowRepo := repository.NewWorkflowRepository(db.DB, logger)
	txManager := sqlite.NewDB(db.DB, logger)

	disp := dispatcher.NewDispatcher(dispatcher.WithLogger(kv))
	t.Cleanup(func() { _ = disp.Close() })

	auth := service.NewAuthorizer(permission.DefaultPolicy(), demoMode)
	summaries := service.NewSummaryService(eventRepo, itemRepo, expenseRepo, kv)
	services := Services{
		Events:      service.NewEventService(eventRepo, auth, disp, kv),
		BudgetItems: service.NewBudgetItemService(eventRepo, itemRepo, auth, service.NewDeletionRegistry(time.Minute), disp, kv),
		Expenses:    service.NewExpenseService(eventRepo, expenseRepo, workflowRepo, txManager, auth, disp, kv),
		Summaries:   summaries,
		Exports:     service.NewExportService(summaries, expenseRepo, report.NewWorkbookRenderer(logger), nil, kv),
	}

	tokens, err := NewTokenIssuer("test-secret", "eventfin", time.Hour)
	require.NoError(t, err)

	return &testAPI{
		server: NewServer(DefaultServerConfig(), services, auth, tokens, db.Health, kv),
		tokens: tokens,
	}
}

func (a *testAPI) token(t *testing.T, user, role string) string {
	t.Helper()
	tok, err := a.tokens.Issue(user, role)
	require.NoError(t, err)
	return tok
}

func (a *testAPI) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.server.Router().ServeHTTP(w, req)

	var resp Response
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func dataMap(t *testing.T, resp Response) map[string]interface{} {
	t.Helper()
	m, ok := resp.Data.(map[string]interface{})
	require.True(t, ok, "data is %T", resp.Data)
	return m
}

func idOf(t *testing.T, resp Response) int64 {
	t.Helper()
	return int64(dataMap(t, resp)["id"].(float64))
}

func (a *testAPI) createEvent(t *testing.T, token string) int64 {
	t.Helper()
	w, resp := a.do(t, http.MethodPost, "/api/events", token, map[string]interface{}{
		"name":   "Product Launch",
		"budget": "5000",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return idOf(t, resp)
}

func TestHealthCheck(t *testing.T) {
	api := newTestAPI(t, false)

	w, resp := api.do(t, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	assert.NotEmpty(t, w.Header().Get(headerRequestID))
}

func TestRequestIDIsPropagated(t *testing.T) {
	api := newTestAPI(t, false)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(headerRequestID, "req-123")
	w := httptest.NewRecorder()
	api.server.Router().ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get(headerRequestID))
}

func TestAuthentication(t *testing.T) {
	api := newTestAPI(t, false)

	t.Run("missing token", func(t *testing.T) {
		w, resp := api.do(t, http.MethodGet, "/api/events", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, resp.Success)
	})

	t.Run("forged token", func(t *testing.T) {
		other, err := NewTokenIssuer("other-secret", "eventfin", time.Hour)
		require.NoError(t, err)
		forged, err := other.Issue("mallory", "Admin")
		require.NoError(t, err)

		w, _ := api.do(t, http.MethodGet, "/api/events", forged, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		w, resp := api.do(t, http.MethodGet, "/api/events", api.token(t, "alice", "Viewer"), nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, resp.Success)
	})
}

func TestMyPermissions(t *testing.T) {
	api := newTestAPI(t, false)

	w, resp := api.do(t, http.MethodGet, "/api/me/permissions", api.token(t, "fin", "FinanceManager"), nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := dataMap(t, resp)
	assert.Equal(t, "fin", data["user_id"])
	perms := data["permissions"].(map[string]interface{})
	assert.Equal(t, true, perms["can_edit_budget"])
	assert.Equal(t, true, perms["can_edit_actual"])
	assert.Equal(t, false, perms["can_approve"])
	assert.Equal(t, false, perms["is_viewer"])
}

func TestDemoModeAllowsAnonymousActor(t *testing.T) {
	api := newTestAPI(t, true)

	w, resp := api.do(t, http.MethodGet, "/api/me/permissions", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := dataMap(t, resp)
	assert.Equal(t, demoUserID, data["user_id"])
	assert.Equal(t, true, data["demo_mode"])

	eventID := api.createEvent(t, "")
	assert.Positive(t, eventID)
}

func TestBudgetItemFlow(t *testing.T) {
	api := newTestAPI(t, false)
	admin := api.token(t, "admin", "Admin")
	eventID := api.createEvent(t, admin)
	itemsPath := fmt.Sprintf("/api/events/%d/budget-items", eventID)

	w, resp := api.do(t, http.MethodPost, itemsPath, admin, map[string]interface{}{
		"category":       "Venue",
		"description":    "Main hall",
		"estimated_cost": 1000,
		"actual_cost":    "1200.50",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	item := dataMap(t, resp)
	itemID := int64(item["id"].(float64))
	assert.Equal(t, "Pending", item["status"])
	assert.Equal(t, "1000", item["estimated_cost"])
	assert.Equal(t, "1200.5", item["actual_cost"])

	t.Run("summary reflects the item", func(t *testing.T) {
		w, resp := api.do(t, http.MethodGet, fmt.Sprintf("/api/events/%d/summary", eventID), admin, nil)
		require.Equal(t, http.StatusOK, w.Code)
		data := dataMap(t, resp)
		totals := data["budget"].(map[string]interface{})
		assert.Equal(t, "1000", totals["total_allocated"])
		assert.Equal(t, "1200.5", totals["total_spent"])
		assert.Equal(t, "Over Budget", data["budget_status"].(map[string]interface{})["tier"])
	})

	t.Run("explicit null clears a cost", func(t *testing.T) {
		w, resp := api.do(t, http.MethodPatch, fmt.Sprintf("%s/%d", itemsPath, itemID), admin, map[string]interface{}{
			"actual_cost": nil,
			"notes":       "deposit paid",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		data := dataMap(t, resp)
		assert.Nil(t, data["actual_cost"])
		assert.Equal(t, "1000", data["estimated_cost"])
		assert.Equal(t, "deposit paid", data["notes"])
	})

	t.Run("two-phase delete", func(t *testing.T) {
		itemPath := fmt.Sprintf("%s/%d", itemsPath, itemID)

		w, resp := api.do(t, http.MethodPost, itemPath+"/delete-request", admin, nil)
		require.Equal(t, http.StatusAccepted, w.Code)
		token := dataMap(t, resp)["token"].(string)
		require.NotEmpty(t, token)

		w, resp = api.do(t, http.MethodDelete, itemPath+"?token=wrong", admin, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		require.Len(t, resp.Fields, 1)
		assert.Equal(t, "token", resp.Fields[0].Field)

		w, _ = api.do(t, http.MethodDelete, itemPath, admin, map[string]string{"token": token})
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w, _ = api.do(t, http.MethodGet, itemPath, admin, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestBudgetItemErrors(t *testing.T) {
	api := newTestAPI(t, false)
	admin := api.token(t, "admin", "Admin")
	eventID := api.createEvent(t, admin)
	itemsPath := fmt.Sprintf("/api/events/%d/budget-items", eventID)

	t.Run("validation lists every field", func(t *testing.T) {
		w, resp := api.do(t, http.MethodPost, itemsPath, admin, map[string]interface{}{
			"category":       "Fireworks",
			"estimated_cost": "lots",
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
		fields := map[string]bool{}
		for _, f := range resp.Fields {
			fields[f.Field] = true
		}
		assert.True(t, fields["category"])
		assert.True(t, fields["description"])
		assert.True(t, fields["estimated_cost"])
	})

	t.Run("staff cannot set actual cost", func(t *testing.T) {
		w, resp := api.do(t, http.MethodPost, itemsPath, api.token(t, "sam", "Staff"), map[string]interface{}{
			"category":    "Catering",
			"description": "Lunch",
			"actual_cost": 300,
		})
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.False(t, resp.Success)
	})

	t.Run("viewer cannot edit", func(t *testing.T) {
		w, _ := api.do(t, http.MethodPost, itemsPath, api.token(t, "vic", "Viewer"), map[string]interface{}{
			"category":    "Catering",
			"description": "Lunch",
		})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("unknown event", func(t *testing.T) {
		w, _ := api.do(t, http.MethodPost, "/api/events/999/budget-items", admin, map[string]interface{}{
			"category":    "Catering",
			"description": "Lunch",
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("bad id", func(t *testing.T) {
		w, _ := api.do(t, http.MethodGet, "/api/events/abc/budget-items", admin, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestExpenseApproval(t *testing.T) {
	api := newTestAPI(t, false)
	admin := api.token(t, "admin", "Admin")
	manager := api.token(t, "meg", "EventManager")
	eventID := api.createEvent(t, admin)

	w, resp := api.do(t, http.MethodPost, fmt.Sprintf("/api/events/%d/expenses", eventID), admin, map[string]interface{}{
		"category": "Logistics",
		"title":    "Shuttle bus",
		"amount":   "450.25",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	expenseID := idOf(t, resp)
	expensePath := fmt.Sprintf("/api/events/%d/expenses/%d", eventID, expenseID)

	w, _ = api.do(t, http.MethodPost, expensePath+"/approve", api.token(t, "sam", "Staff"), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	otherEvent := api.createEvent(t, admin)
	foreignPath := fmt.Sprintf("/api/events/%d/expenses/%d", otherEvent, expenseID)
	w, _ = api.do(t, http.MethodPost, foreignPath+"/approve", manager, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = api.do(t, http.MethodGet, foreignPath, admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, resp = api.do(t, http.MethodGet, expensePath, admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Pending", dataMap(t, resp)["status"])

	w, resp = api.do(t, http.MethodPost, expensePath+"/approve", manager, map[string]string{"comments": "ok"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Approved", dataMap(t, resp)["status"])

	w, _ = api.do(t, http.MethodPost, expensePath+"/reject", manager, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, resp = api.do(t, http.MethodGet, expensePath+"/history", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	history, ok := resp.Data.([]interface{})
	require.True(t, ok)
	require.Len(t, history, 1)
	entry := history[0].(map[string]interface{})
	assert.Equal(t, "meg", entry["approver"])
	assert.Equal(t, "Approved", entry["new_status"])

	w, _ = api.do(t, http.MethodGet, fmt.Sprintf("/api/events/%d/expenses/999", eventID), admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEventStatusAndExport(t *testing.T) {
	api := newTestAPI(t, false)
	admin := api.token(t, "admin", "Admin")
	eventID := api.createEvent(t, admin)

	w, resp := api.do(t, http.MethodPatch, fmt.Sprintf("/api/events/%d/status", eventID), admin, map[string]string{"status": "Active"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Active", dataMap(t, resp)["status"])

	w, _ = api.do(t, http.MethodPatch, fmt.Sprintf("/api/events/%d/status", eventID), api.token(t, "meg", "EventManager"), map[string]string{"status": "Completed"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = api.do(t, http.MethodGet, fmt.Sprintf("/api/events/%d/budget/export", eventID), admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), fmt.Sprintf("event-%d-budget-", eventID))
	assert.NotZero(t, w.Body.Len())
}
