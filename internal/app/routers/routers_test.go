package routers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"valsia/internal/app/middleware"
	"valsia/internal/app/services"
	"valsia/internal/pkg/metrics"
	"valsia/pkg/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(limit int) *gin.Engine {
	conf := &config.Config{Dify: config.Dify{BaseURL: "http://127.0.0.1:1"}}
	return SetUp(Deps{
		Learning:   services.NewLearningService(services.NewDifyClient(conf.Dify), nil, conf),
		Limiter:    middleware.NewMemoryLimiter(limit, time.Minute),
		RateWindow: time.Minute,
		Locker:     middleware.NewMemoryLocker(),
	})
}

func TestHealthCarriesRequestID(t *testing.T) {
	w := httptest.NewRecorder()
	newEngine(10).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"code":0,"msg":"Success","data":""}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	metrics.Register()
	metrics.UpstreamRequestsTotal.WithLabelValues("chat", "ok").Inc()

	w := httptest.NewRecorder()
	newEngine(10).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "valsia_upstream_requests_total")
}

func TestGenerationRoutesAreRateLimited(t *testing.T) {
	engine := newEngine(1)

	// 校验失败不访问上游，但同样计入限流
	first := httptest.NewRecorder()
	engine.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/api/roadmap", strings.NewReader(`{}`)))
	second := httptest.NewRecorder()
	engine.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/api/project", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusBadRequest, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestPreflight(t *testing.T) {
	w := httptest.NewRecorder()
	newEngine(10).ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/chat", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHistoryDisabled(t *testing.T) {
	w := httptest.NewRecorder()
	newEngine(10).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/history?kind=roadmap", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"code":503`)
}
