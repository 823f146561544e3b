// Package private maintains the group of handlers for node to node access.
package private

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ardanlabs/utxochain/business/sys/validate"
	"github.com/ardanlabs/utxochain/business/web/errs"
	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/blockchain/peer"
	"github.com/ardanlabs/utxochain/foundation/blockchain/state"
	"github.com/ardanlabs/utxochain/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of node to node endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
}

// Status returns the current status of the node.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrievePeerStatus(), http.StatusOK)
}

// Chain returns the full chain of the node.
func (h Handlers) Chain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveBlocks(), http.StatusOK)
}

// ProposeChain takes a chain received from a peer, validates it and if that
// passes and the chain is longer, replaces the local chain.
func (h Handlers) ProposeChain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var blocks []database.Block
	if err := web.Decode(r, &blocks); err != nil {
		return errs.NewTrusted(fmt.Errorf("unable to decode payload: %w", err), http.StatusBadRequest)
	}

	if err := h.State.ProcessPeerChain(blocks); err != nil {
		h.Log.Infow("propose chain", "traceid", v.TraceID, "status", "rejected", "blocks", len(blocks), "ERROR", err)

		if errors.Is(err, database.ErrChainRejected) {
			return errs.NewTrusted(err, http.StatusNotAcceptable)
		}
		return err
	}

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "accepted",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// BlocksByIndex returns the blocks in the inclusive from/to range. The
// value "latest" names the tail of the chain.
func (h Handlers) BlocksByIndex(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	latest := h.State.RetrieveLatestBlock().Index

	from, err := parseIndex(web.Param(r, "from"), latest)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	to, err := parseIndex(web.Param(r, "to"), latest)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if from > to {
		return errs.NewTrusted(errors.New("from greater than to"), http.StatusBadRequest)
	}

	blocks := h.State.QueryBlocksByIndex(from, to)
	if len(blocks) == 0 {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	return web.Respond(ctx, w, blocks, http.StatusOK)
}

// AddPeer records a peer announcing itself to this node.
func (h Handlers) AddPeer(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var pr peer.Peer
	if err := web.Decode(r, &pr); err != nil {
		return errs.NewTrusted(fmt.Errorf("unable to decode payload: %w", err), http.StatusBadRequest)
	}
	pr = peer.New(pr.Host)

	if err := validate.Check(pr); err != nil {
		return err
	}

	if h.State.AddKnownPeer(pr) {
		h.Log.Infow("add peer", "traceid", web.GetTraceID(ctx), "host", pr.Host)
	}

	return web.Respond(ctx, w, nil, http.StatusNoContent)
}

// =============================================================================

func parseIndex(s string, latest uint64) (uint64, error) {
	if s == "latest" || s == "" {
		return latest, nil
	}

	return strconv.ParseUint(s, 10, 64)
}
