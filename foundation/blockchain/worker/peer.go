package worker

import (
	"context"

	"github.com/ardanlabs/utxochain/foundation/blockchain/peer"
)

// peerOperations handles the periodic peer synchronization.
func (w *Worker) peerOperations() {
	w.evHandler("worker: peerOperations: G started")
	defer w.evHandler("worker: peerOperations: G completed")

	for {
		select {
		case <-w.ticker.C:
			if !w.isShutdown() {
				w.Sync()
			}
		case <-w.shut:
			w.evHandler("worker: peerOperations: received shut signal")
			return
		}
	}
}

// addNewPeers takes the list of known peers and makes sure they are included
// in the nodes list of know peers.
func (w *Worker) addNewPeers(knownPeers []peer.Peer) {
	for _, pr := range knownPeers {
		if w.state.AddKnownPeer(pr) {
			w.evHandler("worker: addNewPeers: adding peer-node %s", pr.Host)
		}
	}
}

// announce lets every known peer know this node is available.
func (w *Worker) announce(ctx context.Context) {
	for _, pr := range w.state.RetrieveKnownPeers() {
		if err := w.state.NetRequestAddPeer(ctx, pr); err != nil {
			w.evHandler("worker: announce: %s: ERROR: %s", pr.Host, err)
		}
	}
}
