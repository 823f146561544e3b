package worker

import (
	"context"
)

// Sync asks every known peer for its status, learns the peers it knows and
// adopts the chain of any peer reporting a longer one.
func (w *Worker) Sync() {
	w.evHandler("worker: sync: started")
	defer w.evHandler("worker: sync: completed")

	ctx := context.Background()

	for _, pr := range w.state.RetrieveKnownPeers() {

		// Retrieve the status of this peer.
		status, err := w.state.NetRequestPeerStatus(ctx, pr)
		if err != nil {
			w.evHandler("worker: sync: queryPeerStatus: %s: ERROR: %s", pr.Host, err)
			continue
		}

		// Add new peers to this nodes list.
		w.addNewPeers(status.KnownPeers)

		// If this peer has a longer chain, we need to consider it.
		length := w.state.RetrieveChainLength()
		if !status.Longer(length) {
			continue
		}

		w.evHandler("worker: sync: retrievePeerChain: %s: length[%d] local[%d]", pr.Host, status.ChainLength, length)

		blocks, err := w.state.NetRequestPeerChain(ctx, pr)
		if err != nil {
			w.evHandler("worker: sync: retrievePeerChain: %s: ERROR: %s", pr.Host, err)
			continue
		}

		if err := w.state.ProcessPeerChain(blocks); err != nil {
			syncs.WithLabelValues("rejected").Inc()
			w.evHandler("worker: sync: processPeerChain: %s: REJECTED: %s", pr.Host, err)
			continue
		}
		syncs.WithLabelValues("adopted").Inc()
	}

	w.announce(ctx)
}
