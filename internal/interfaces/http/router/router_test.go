package router

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pms/backend/internal/application/partnersync"
	"github.com/pms/backend/internal/application/syncqueue"
	"github.com/pms/backend/internal/domain/outbox"
	"github.com/pms/backend/internal/domain/shared"
	"github.com/pms/backend/internal/domain/tenant"
	"github.com/pms/backend/internal/infrastructure/directory"
	"github.com/pms/backend/internal/infrastructure/queue"
	"github.com/pms/backend/internal/interfaces/http/handler"
	"github.com/pms/backend/internal/interfaces/http/middleware"
)

func boolPtr(b bool) *bool { return &b }

type staticDirectory struct {
	tenants []*tenant.Tenant
}

func (d *staticDirectory) FindByCode(ctx context.Context, code string) (*tenant.Tenant, error) {
	for _, t := range d.tenants {
		if t.Code == code {
			return t, nil
		}
	}
	return nil, shared.NewTenantNotFoundError(code)
}

func (d *staticDirectory) All(ctx context.Context) ([]*tenant.Tenant, error) {
	return d.tenants, nil
}

type apiFixture struct {
	engine *gin.Engine
	pool   *directory.ConnectionPool
	tn     *tenant.Tenant
}

func newAPIFixture(t *testing.T, queueMode bool) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tn := &tenant.Tenant{Code: "alfa", Database: "pms_alfa"}
	if queueMode {
		tn.EnableQueueMode = boolPtr(true)
	}

	pool := directory.NewConnectionPool(
		func(database string) (string, error) {
			return fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", t.Name(), database), nil
		},
		func(dsn string) (*gorm.DB, error) {
			return gorm.Open(sqlite.Open(dsn), &gorm.Config{
				Logger: gormlogger.Default.LogMode(gormlogger.Silent),
			})
		},
		nil,
	)
	t.Cleanup(func() { _ = pool.Close() })

	resolver := directory.NewResolver(&staticDirectory{tenants: []*tenant.Tenant{tn}})
	defaults := tenant.QueueSettings{
		WorkerIntervalSeconds: 180,
		WorkerBatchSize:       50,
		DefaultPartner:        "channelmgr",
	}

	registry := queue.NewRegistry()
	partnersync.RegisterAll(registry, nil)

	enqueuer := queue.NewEnqueuer(resolver, pool, defaults)
	dispatcher := queue.NewDispatcher(enqueuer, resolver, pool, registry)
	service := syncqueue.NewService(resolver, pool, defaults, outbox.DefaultMaxAttempts, nil)

	directoryDB, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s_dir?mode=memory&cache=shared", t.Name())), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	engine := New(Config{Mode: gin.TestMode},
		handler.NewSyncHandler(dispatcher, service),
		handler.NewSystemHandler(directoryDB))

	return &apiFixture{engine: engine, pool: pool, tn: tn}
}

func (f *apiFixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(middleware.TenantHeaderKey, "alfa")

	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body struct {
		Success bool           `json:"success"`
		Data    map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Data
}

func TestRouter_Health(t *testing.T) {
	f := newAPIFixture(t, true)

	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestRouter_SubmitQueued(t *testing.T) {
	f := newAPIFixture(t, true)

	w := f.do(t, http.MethodPost, "/api/v1/sync/enqueue", `{
		"request_ref": "ref-1",
		"operation": "reservations/create",
		"operation_key": "Reservation.Upsert",
		"payload": {"external_ref": "R100", "guest_name": "Jane"}
	}`)

	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	data := decodeData(t, w)
	assert.Equal(t, "ref-1", data["request_ref"])
	assert.Equal(t, true, data["queued"])
}

func TestRouter_SubmitInline(t *testing.T) {
	f := newAPIFixture(t, false)

	w := f.do(t, http.MethodPost, "/api/v1/sync/enqueue", `{
		"request_ref": "ref-1",
		"operation": "customers/update",
		"operation_key": "Customer.Upsert",
		"payload": {"external_ref": "C1", "name": "John"}
	}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decodeData(t, w)
	assert.Equal(t, false, data["queued"])
	assert.Equal(t, string(outbox.StatusSucceeded), data["status"])
}

func TestRouter_SubmitInline_UnknownKey(t *testing.T) {
	f := newAPIFixture(t, false)

	w := f.do(t, http.MethodPost, "/api/v1/sync/enqueue", `{
		"operation": "op",
		"operation_key": "Ghost.Key"
	}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), shared.CodeUnknownOperationKey)
}

func TestRouter_SubmitValidation(t *testing.T) {
	f := newAPIFixture(t, true)

	w := f.do(t, http.MethodPost, "/api/v1/sync/enqueue", `{"operation": "op"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "operation_key is required at the API surface")
}

func TestRouter_MissingTenantHeader(t *testing.T) {
	f := newAPIFixture(t, true)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sync/settings", nil)
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), shared.CodeTenantNotFound)
}

func TestRouter_Settings(t *testing.T) {
	f := newAPIFixture(t, true)

	w := f.do(t, http.MethodGet, "/api/v1/sync/settings", "")
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeData(t, w)
	assert.Equal(t, "alfa", data["tenant_code"])
	assert.Equal(t, true, data["enable_queue_mode"])
	assert.Equal(t, "channelmgr", data["default_partner"])
}

func TestRouter_QueueLifecycle(t *testing.T) {
	f := newAPIFixture(t, true)

	w := f.do(t, http.MethodPost, "/api/v1/sync/enqueue", `{
		"request_ref": "ref-1",
		"operation": "op",
		"operation_key": "Reservation.Upsert"
	}`)
	require.Equal(t, http.StatusAccepted, w.Code)

	w = f.do(t, http.MethodGet, "/api/v1/sync/queue", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ref-1"`)

	w = f.do(t, http.MethodGet, "/api/v1/sync/queue/ref-1", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/api/v1/sync/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.EqualValues(t, 1, data["queued"])

	// retry of a queued item is rejected
	w = f.do(t, http.MethodPost, "/api/v1/sync/queue/ref-1/retry", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = f.do(t, http.MethodGet, "/api/v1/sync/queue/ghost", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
