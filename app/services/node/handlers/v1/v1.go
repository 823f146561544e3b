// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"
	"time"

	"github.com/ardanlabs/utxochain/app/services/node/handlers/v1/private"
	"github.com/ardanlabs/utxochain/app/services/node/handlers/v1/public"
	"github.com/ardanlabs/utxochain/foundation/blockchain/state"
	"github.com/ardanlabs/utxochain/foundation/blockchain/worker"
	"github.com/ardanlabs/utxochain/foundation/events"
	"github.com/ardanlabs/utxochain/foundation/nameservice"
	"github.com/ardanlabs/utxochain/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log         *zap.SugaredLogger
	State       *state.State
	Worker      *worker.Worker
	MineTimeout time.Duration
	NS          *nameservice.NameService
	Evts        *events.Events
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:         cfg.Log,
		State:       cfg.State,
		Worker:      cfg.Worker,
		MineTimeout: cfg.MineTimeout,
		NS:          cfg.NS,
		WS:          websocket.Upgrader{},
		Evts:        cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/events", pbl.Events)
	app.Handle(http.MethodGet, version, "/blocks/list", pbl.Blocks)
	app.Handle(http.MethodGet, version, "/blocks/latest", pbl.LatestBlock)
	app.Handle(http.MethodPost, version, "/mining/mine", pbl.Mine)
	app.Handle(http.MethodGet, version, "/utxos/list/:address", pbl.UTxOs)
	app.Handle(http.MethodGet, version, "/balances/list/:address", pbl.Balance)
	app.Handle(http.MethodGet, version, "/peers/list", pbl.Peers)
	app.Handle(http.MethodPost, version, "/peers/add", pbl.AddPeer)
}

// PrivateRoutes binds all the version 1 private routes.
func PrivateRoutes(app *web.App, cfg Config) {
	prv := private.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
	}

	app.Handle(http.MethodGet, version, "/node/status", prv.Status)
	app.Handle(http.MethodGet, version, "/node/chain/list", prv.Chain)
	app.Handle(http.MethodGet, version, "/node/block/list/:from/:to", prv.BlocksByIndex)
	app.Handle(http.MethodPost, version, "/node/chain/propose", prv.ProposeChain)
	app.Handle(http.MethodPost, version, "/node/peers", prv.AddPeer)
}
