// Package worker implements cancellable mining runs and the periodic peer
// synchronization for the blockchain.
package worker

import (
	"sync"
	"time"

	"github.com/ardanlabs/utxochain/foundation/blockchain/state"
)

// DefaultSyncInterval represents the interval of asking peers for their status
// and adopting a longer chain.
const DefaultSyncInterval = time.Minute

// =============================================================================

// Worker manages the POW workflows for the blockchain.
type Worker struct {
	state        *state.State
	wg           sync.WaitGroup
	ticker       *time.Ticker
	shut         chan struct{}
	shutOnce     sync.Once
	mineMu       sync.Mutex
	cancelMining chan bool
	evHandler    state.EventHandler
}

// Run creates a worker, registers the worker with the state package, and
// starts up all the background processes.
func Run(st *state.State, syncInterval time.Duration, evHandler state.EventHandler) *Worker {
	if syncInterval <= 0 {
		syncInterval = DefaultSyncInterval
	}

	if evHandler == nil {
		evHandler = func(string, ...any) {}
	}

	w := Worker{
		state:        st,
		ticker:       time.NewTicker(syncInterval),
		shut:         make(chan struct{}),
		cancelMining: make(chan bool, 1),
		evHandler:    evHandler,
	}

	// Register this worker with the state package.
	st.Worker = &w

	// Update this node before starting any support G's.
	w.Sync()

	// Load the set of operations we need to run.
	operations := []func(){
		w.peerOperations,
	}

	// Set waitgroup to match the number of G's we need for the set
	// of operations we have.
	g := len(operations)
	w.wg.Add(g)

	// We don't want to return until we know all the G's are up and running.
	hasStarted := make(chan bool)

	// Start all the operational G's.
	for _, op := range operations {
		go func(op func()) {
			defer w.wg.Done()
			hasStarted <- true
			op()
		}(op)
	}

	// Wait for the G's to report they are running.
	for range g {
		<-hasStarted
	}

	return &w
}

// =============================================================================
// These methods implement the state.Worker interface.

// Shutdown terminates the goroutines performing work. It is safe to call
// more than once.
func (w *Worker) Shutdown() {
	w.shutOnce.Do(func() {
		w.evHandler("worker: shutdown: started")
		defer w.evHandler("worker: shutdown: completed")

		w.evHandler("worker: shutdown: stop ticker")
		w.ticker.Stop()

		w.evHandler("worker: shutdown: signal cancel mining")
		w.SignalCancelMining()

		w.evHandler("worker: shutdown: terminate goroutines")
		close(w.shut)
		w.wg.Wait()
	})
}

// SignalCancelMining signals the G executing a mining run to stop
// immediately. A signal with no mining in flight is drained by the next run.
func (w *Worker) SignalCancelMining() {
	select {
	case w.cancelMining <- true:
	default:
	}
	w.evHandler("worker: SignalCancelMining: MINING: CANCEL: signaled")
}

// =============================================================================

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}
