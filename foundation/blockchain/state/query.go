package state

import (
	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
)

// QueryUTxOs returns the unspent outputs owned by the address.
func (s *State) QueryUTxOs(address string) []database.UTxO {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.utxos.ForAddress(address)
}

// QueryBalance returns the total amount owned by the address.
func (s *State) QueryBalance(address string) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.utxos.Balance(address)
}

// QueryBlocksByIndex returns the blocks with an index in the inclusive
// range. The range is clamped to the chain.
func (s *State) QueryBlocksByIndex(from uint64, to uint64) []database.Block {
	blocks := s.RetrieveBlocks()

	last := uint64(len(blocks) - 1)
	if to > last {
		to = last
	}
	if from > to {
		return nil
	}

	return blocks[from : to+1]
}
