package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/blockchain/state"
)

// ErrShutdown is returned when mining is requested after shutdown started.
var ErrShutdown = errors.New("worker is shutting down")

// Mine runs one mining operation for the specified transactions. The run is
// cancelled by the context, by a cancel signal or by shutdown. Runs are
// executed one at a time. A mined block is proposed to the known peers.
func (w *Worker) Mine(ctx context.Context, trans []database.Transaction) (database.Block, error) {
	w.evHandler("worker: Mine: MINING: started")
	defer w.evHandler("worker: Mine: MINING: completed")

	if !w.state.IsMiningAllowed() {
		return database.Block{}, state.ErrMiningDisabled
	}

	w.mineMu.Lock()
	defer w.mineMu.Unlock()

	if w.isShutdown() {
		return database.Block{}, ErrShutdown
	}

	// Drain the cancel mining channel before starting.
	select {
	case <-w.cancelMining:
		w.evHandler("worker: Mine: MINING: drained cancel channel")
	default:
	}

	// Create a context so mining can be cancelled.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var block database.Block
	var mineErr error

	// Can't return from this function until these G's are complete.
	var wg sync.WaitGroup
	wg.Add(2)

	// This G exists to cancel the mining operation.
	go func() {
		defer func() {
			cancel()
			wg.Done()
		}()

		select {
		case <-w.cancelMining:
			w.evHandler("worker: Mine: MINING: CANCEL: requested")
		case <-w.shut:
			w.evHandler("worker: Mine: MINING: CANCEL: shutdown")
		case <-ctx.Done():
		}
	}()

	// This G is performing the mining.
	go func() {
		defer func() {
			cancel()
			wg.Done()
		}()

		t := time.Now()
		block, mineErr = w.state.MineNewBlock(ctx, trans)
		duration := time.Since(t)

		observeMining(duration, mineErr)
		w.evHandler("worker: Mine: MINING: mining duration[%v]", duration)

		if mineErr != nil {
			switch {
			case ctx.Err() != nil:
				w.evHandler("worker: Mine: MINING: CANCEL: complete")
			default:
				w.evHandler("worker: Mine: MINING: ERROR: %s", mineErr)
			}
			return
		}

		// WOW, we mined a block. Propose the new chain to the network.
		w.state.NetSendChainToPeers(context.Background())
	}()

	// Wait for both G's to terminate.
	wg.Wait()

	if mineErr != nil {
		return database.Block{}, mineErr
	}

	return block, nil
}
