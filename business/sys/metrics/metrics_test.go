package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ardanlabs/utxochain/business/sys/metrics"
	"github.com/stretchr/testify/require"
)

func Test_Handler(t *testing.T) {
	metrics.AddRequest(http.MethodGet, "/v1/blocks/list", http.StatusOK, 5*time.Millisecond)
	metrics.AddError()
	metrics.AddPanic()

	w := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	require.Contains(t, body, `utxochain_http_requests_total{code="200",method="GET",route="/v1/blocks/list"} 1`)
	require.Contains(t, body, "utxochain_http_errors_total 1")
	require.Contains(t, body, "utxochain_http_panics_total 1")
}
