package mid

import (
	"context"
	"net/http"
	"time"

	"github.com/ardanlabs/utxochain/business/sys/metrics"
	"github.com/ardanlabs/utxochain/foundation/web"
	"github.com/dimfeld/httptreemux/v5"
)

// Metrics updates program counters. Requests are labeled by their route
// pattern so addresses in the path do not become labels.
func Metrics() web.Middleware {

	// This is the actual middleware function to be executed.
	m := func(handler web.Handler) web.Handler {

		// Create the handler that will be attached in the middleware chain.
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			// Call the next handler.
			err := handler(ctx, w, r)

			// Handle updating the metrics that can be handled here.
			var status int
			var took time.Duration
			if v, verr := web.GetValues(ctx); verr == nil {
				status = v.StatusCode
				took = time.Since(v.Now)
			}

			route := r.URL.Path
			if data := httptreemux.ContextData(r.Context()); data != nil {
				route = data.Route()
			}

			metrics.AddRequest(r.Method, route, status, took)
			if err != nil {
				metrics.AddError()
			}

			// Return the error so it can be handled further up the chain.
			return err
		}

		return h
	}

	return m
}
