package web_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/ardanlabs/utxochain/foundation/web"
	"github.com/stretchr/testify/require"
)

func Test_HandleAndRespond(t *testing.T) {
	var order []string
	mw := func(name string) web.Middleware {
		return func(handler web.Handler) web.Handler {
			return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
				order = append(order, name)
				return handler(ctx, w, r)
			}
		}
	}

	app := web.NewApp(make(chan os.Signal, 1), mw("app"))

	h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		v, err := web.GetValues(ctx)
		require.NoError(t, err)
		require.NotEmpty(t, v.TraceID)

		resp := struct {
			Address string `json:"address"`
		}{
			Address: web.Param(r, "address"),
		}
		return web.Respond(ctx, w, resp, http.StatusOK)
	}
	app.Handle(http.MethodGet, "v1", "/balances/list/:address", h, mw("route"))

	r := httptest.NewRequest(http.MethodGet, "/v1/balances/list/0x04ab", nil)
	w := httptest.NewRecorder()
	app.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "application/json", w.Header().Get("Content-Type"))
	require.JSONEq(t, `{"address":"0x04ab"}`, w.Body.String())
	require.Equal(t, []string{"app", "route"}, order)
}

func Test_Decode(t *testing.T) {
	var payload struct {
		Amount uint64 `json:"amount"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"amount":50}`))
	require.NoError(t, web.Decode(r, &payload))
	require.Equal(t, uint64(50), payload.Amount)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"amount":50,"tip":1}`))
	require.Error(t, web.Decode(r, &payload))
}

func Test_ShutdownError(t *testing.T) {
	shutdown := make(chan os.Signal, 1)
	app := web.NewApp(shutdown)

	h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return web.NewShutdownError("integrity issue")
	}
	app.Handle(http.MethodGet, "", "/fail", h)

	app.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fail", nil))

	require.Len(t, shutdown, 1)
	require.True(t, web.IsShutdown(errors.Join(errors.New("wrapped"), web.NewShutdownError("x"))))
	require.False(t, web.IsShutdown(errors.New("plain")))
}
