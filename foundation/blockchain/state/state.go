// Package state is the core API for the blockchain and implements all the
// business rules and processing. It owns the chain, the unspent output set
// and the storage behind a single writer.
package state

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/blockchain/peer"
)

// ErrChainChanged is returned when a mined block no longer follows the
// latest block because the chain was replaced while mining.
var ErrChainChanged = errors.New("chain changed while mining")

// ErrMiningDisabled is returned when mining is requested from a node that
// does not accept mining requests.
var ErrMiningDisabled = errors.New("mining is disabled on this node")

// =============================================================================

// EventHandler defines a function that is called when events
// occur in the processing of persisting blocks.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for mining and peer updates.
type Worker interface {
	Shutdown()
	SignalCancelMining()
}

// =============================================================================

// Config represents the configuration required to start
// the blockchain node.
type Config struct {
	MinerAddress string
	Host         string
	Storage      database.Storage
	KnownPeers   *peer.PeerSet
	AllowMining  bool
	EvHandler    EventHandler
}

// State manages the blockchain database.
type State struct {
	minerAddress string
	host         string
	allowMining  bool
	evHandler    EventHandler

	knownPeers *peer.PeerSet
	storage    database.Storage

	mu       sync.RWMutex
	chain    *database.BlockChain
	utxos    database.UTxOSet
	miningMu sync.Mutex

	Worker Worker
}

// New constructs the state by loading the chain from storage. Empty storage
// is initialized with the genesis block. A stored chain is validated and its
// transactions are replayed to rebuild the unspent output set.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	blocks, err := database.LoadBlocks(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("load blocks: %w", err)
	}

	if len(blocks) == 0 {
		ev("state: New: storage is empty: writing genesis")

		genesis := database.Genesis()
		if err := cfg.Storage.Write(genesis); err != nil {
			return nil, fmt.Errorf("write genesis: %w", err)
		}
		blocks = []database.Block{genesis}
	}

	chain, err := database.FromBlocks(blocks)
	if err != nil {
		return nil, fmt.Errorf("stored chain: %w", err)
	}

	utxos, err := database.ReplayBlocks(blocks)
	if err != nil {
		return nil, fmt.Errorf("stored transactions: %w", err)
	}

	ev("state: New: loaded: blocks[%d]: utxos[%d]", chain.Len(), len(utxos))

	knownPeers := cfg.KnownPeers
	if knownPeers == nil {
		knownPeers = peer.NewPeerSet()
	}

	state := State{
		minerAddress: cfg.MinerAddress,
		host:         cfg.Host,
		allowMining:  cfg.AllowMining,
		evHandler:    ev,

		knownPeers: knownPeers,
		storage:    cfg.Storage,

		chain: chain,
		utxos: utxos,
	}

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the node.

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Make sure the database is properly closed.
	defer func() {
		s.storage.Close()
	}()

	// Stop all blockchain writing activity.
	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	return nil
}

// IsMiningAllowed identifies if this node accepts mining requests.
func (s *State) IsMiningAllowed() bool {
	return s.allowMining
}
