// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ardanlabs/utxochain/business/sys/validate"
	"github.com/ardanlabs/utxochain/business/web/errs"
	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/blockchain/peer"
	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
	"github.com/ardanlabs/utxochain/foundation/blockchain/state"
	"github.com/ardanlabs/utxochain/foundation/blockchain/worker"
	"github.com/ardanlabs/utxochain/foundation/events"
	"github.com/ardanlabs/utxochain/foundation/nameservice"
	"github.com/ardanlabs/utxochain/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of public node endpoints.
type Handlers struct {
	Log         *zap.SugaredLogger
	State       *state.State
	Worker      *worker.Worker
	MineTimeout time.Duration
	NS          *nameservice.NameService
	WS          websocket.Upgrader
	Evts        *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Blocks returns the full chain.
func (h Handlers) Blocks(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveBlocks(), http.StatusOK)
}

// LatestBlock returns the block at the tail of the chain.
func (h Handlers) LatestBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveLatestBlock(), http.StatusOK)
}

// Mine mines a block carrying the submitted transactions. The coinbase is
// paid to this node's miner address.
func (h Handlers) Mine(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var req MineRequest
	if err := web.Decode(r, &req); err != nil {
		return errs.NewTrusted(fmt.Errorf("unable to decode payload: %w", err), http.StatusBadRequest)
	}

	if err := validate.Check(req); err != nil {
		return err
	}

	h.Log.Infow("mine block", "traceid", v.TraceID, "transactions", len(req.Transactions))

	if h.MineTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.MineTimeout)
		defer cancel()
	}

	block, err := h.Worker.Mine(ctx, req.Transactions)
	if err != nil {
		return mineError(err)
	}

	resp := mined{
		Block:      block,
		MinerName:  h.NS.Lookup(h.State.RetrieveMinerAddress()),
		Difficulty: block.Difficulty,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// UTxOs returns the unspent outputs owned by the address.
func (h Handlers) UTxOs(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	address := web.Param(r, "address")

	found := h.State.QueryUTxOs(address)

	utxos := make([]utxo, len(found))
	for i, u := range found {
		utxos[i] = utxo{
			TxOutID:    u.TxOutID,
			TxOutIndex: u.TxOutIndex,
			Address:    u.Address,
			Name:       h.NS.Lookup(u.Address),
			Amount:     u.Amount,
		}
	}

	info := utxoInfo{
		LatestBlock: h.State.RetrieveLatestBlock().Hash,
		UTxOs:       utxos,
	}

	return web.Respond(ctx, w, info, http.StatusOK)
}

// Balance returns the amount owned by the address.
func (h Handlers) Balance(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	address := web.Param(r, "address")

	bal := balance{
		Address: address,
		Name:    h.NS.Lookup(address),
		Balance: h.State.QueryBalance(address),
	}

	return web.Respond(ctx, w, bal, http.StatusOK)
}

// Peers returns the peers known to this node.
func (h Handlers) Peers(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveKnownPeers(), http.StatusOK)
}

// AddPeer adds a peer to the known peer list.
func (h Handlers) AddPeer(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var pr peer.Peer
	if err := web.Decode(r, &pr); err != nil {
		return errs.NewTrusted(fmt.Errorf("unable to decode payload: %w", err), http.StatusBadRequest)
	}
	pr = peer.New(pr.Host)

	if err := validate.Check(pr); err != nil {
		return err
	}

	resp := peerAdded{
		Host:  pr.Host,
		Added: h.State.AddKnownPeer(pr),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// =============================================================================

// mineError maps the failure of a mining run to the response status.
func mineError(err error) error {
	switch {
	case errors.Is(err, state.ErrMiningDisabled):
		return errs.NewTrusted(err, http.StatusForbidden)

	case errors.Is(err, worker.ErrShutdown),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return errs.NewTrusted(err, http.StatusServiceUnavailable)

	case errors.Is(err, state.ErrChainChanged):
		return errs.NewTrusted(err, http.StatusConflict)

	case errors.Is(err, database.ErrInvalidTxID),
		errors.Is(err, database.ErrAmountMismatch),
		errors.Is(err, database.ErrInvalidCoinbase),
		errors.Is(err, database.ErrUTxONotFound),
		errors.Is(err, database.ErrNotOwner),
		errors.Is(err, database.ErrDoubleSpend),
		errors.Is(err, database.ErrInputIndex),
		errors.Is(err, signature.ErrInvalidSignature):
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	return err
}
