package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/carelinkhq/carelink/internal/app"
	"github.com/carelinkhq/carelink/internal/database/testutil"
	"github.com/carelinkhq/carelink/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *app.Config {
	cfg := &app.Config{}
	cfg.Liquidity.Target = 3
	cfg.Monitoring.Prometheus.Enabled = true
	return cfg
}

func testAdmissionService(t *testing.T, db *gorm.DB) *services.AdmissionService {
	t.Helper()

	svc, err := services.NewAdmissionService(db, nil)
	require.NoError(t, err)
	return svc
}

func TestNewRouterRequiresDependencies(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	admissions := testAdmissionService(t, db)

	_, err := NewRouter(nil, testConfig(), admissions)
	require.Error(t, err)

	_, err = NewRouter(db, nil, admissions)
	require.Error(t, err)

	_, err = NewRouter(db, testConfig(), nil)
	require.Error(t, err)
}

func TestRouterServesHealthAndMetrics(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	r, err := NewRouter(db, testConfig(), testAdmissionService(t, db))
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
}
