// Package memory implements the ability to read and write blocks to memory
// using a slice.
package memory

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
)

// Memory represents the storage implementation for reading and storing
// blocks in memory using a slice. This implements the database.Storage
// interface.
type Memory struct {
	mu     sync.RWMutex
	blocks []database.Block
}

// New constructs an Memory value for use.
func New() *Memory {
	return &Memory{}
}

// Close in this implementation has nothing to do since everything
// is in memory.
func (m *Memory) Close() error {
	return nil
}

// Write takes the specified block and stores it in memory. Blocks must be
// written in index order starting with genesis.
func (m *Memory) Write(block database.Block) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if uint64(len(m.blocks)) != block.Index {
		return fmt.Errorf("block[%d] is out of order, next[%d]", block.Index, len(m.blocks))
	}

	m.blocks = append(m.blocks, block)

	return nil
}

// GetBlock returns the block stored at the specified index.
func (m *Memory) GetBlock(index uint64) (database.Block, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if index >= uint64(len(m.blocks)) {
		return database.Block{}, fmt.Errorf("block[%d]: %w", index, database.ErrBlockNotFound)
	}

	return m.blocks[index], nil
}

// ForEach returns an iterator to walk through all the blocks starting
// with genesis.
func (m *Memory) ForEach() database.Iterator {
	return &memoryIterator{storage: m}
}

// Replace swaps the stored blocks for the specified blocks.
func (m *Memory) Replace(blocks []database.Block) error {
	for i, b := range blocks {
		if b.Index != uint64(i) {
			return fmt.Errorf("block[%d] is out of order at position[%d]", b.Index, i)
		}
	}

	cp := make([]database.Block, len(blocks))
	copy(cp, blocks)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.blocks = cp

	return nil
}

// Len returns the number of stored blocks.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.blocks)
}

// =============================================================================

// memoryIterator represents the iteration implementation for walking
// through and reading blocks in memory. This implements the database
// Iterator interface.
type memoryIterator struct {
	storage *Memory // Access to the storage API.
	current uint64  // Current block index being iterated over.
}

// Next retrieves the next block from memory.
func (mi *memoryIterator) Next() (database.Block, error) {
	if mi.Done() {
		return database.Block{}, errors.New("end of chain")
	}

	block, err := mi.storage.GetBlock(mi.current)
	if err != nil {
		return database.Block{}, err
	}

	mi.current++

	return block, nil
}

// Done returns the end of chain value.
func (mi *memoryIterator) Done() bool {
	return mi.current >= uint64(mi.storage.Len())
}
