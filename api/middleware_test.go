package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/d-oit/do-multitenant-prompt-manager-sub000/internal/fault"
	"github.com/d-oit/do-multitenant-prompt-manager-sub000/internal/seed"
	"github.com/d-oit/do-multitenant-prompt-manager-sub000/internal/store"
)

func TestRequestLoggerCarriesRequestContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)

	s := store.New()
	require.NoError(t, seed.Apply(s, ""))
	faults := fault.New(nil)
	require.NoError(t, faults.Configure(fault.Rule{Capability: fault.Dashboard, Count: 1}))

	router, err := SetupRouter(Deps{Store: s, Faults: faults, Logger: zap.New(core)})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/analytics/overview", nil)
	req.Header.Set("X-Tenant-ID", "tenant_acme")
	req.Header.Set("X-Request-ID", "req-42")
	req.Header.Set("X-Trace-ID", "trace-42")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusInternalServerError, resp.Code)

	entries := logs.FilterMessage("HTTP Request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)

	fields := entries[0].ContextMap()
	assert.Equal(t, "req-42", fields["request_id"])
	assert.Equal(t, "trace-42", fields["trace_id"])
	assert.Equal(t, "tenant_acme", fields["tenant_id"])
	assert.Equal(t, fault.Dashboard, fields["injected_fault"])
}
