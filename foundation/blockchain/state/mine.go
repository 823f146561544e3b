package state

import (
	"context"
	"fmt"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
)

// MineNewBlock mines a block paying the coinbase to the miner address and
// carrying the specified spending transactions, then persists and appends it.
// Mining runs without holding the chain lock so queries keep working. Only
// one mining operation runs at a time.
func (s *State) MineNewBlock(ctx context.Context, trans []database.Transaction) (database.Block, error) {
	s.evHandler("state: MineNewBlock: MINING: started: txs[%d]", len(trans))
	defer s.evHandler("state: MineNewBlock: MINING: completed")

	if !s.allowMining {
		return database.Block{}, ErrMiningDisabled
	}

	s.miningMu.Lock()
	defer s.miningMu.Unlock()

	s.mu.RLock()
	prev := s.chain.Latest()
	difficulty := s.chain.AdjustedDifficulty()
	utxos := s.utxos
	s.mu.RUnlock()

	s.evHandler("state: MineNewBlock: MINING: validate transactions")

	if err := database.ValidateTransactions(trans, utxos); err != nil {
		return database.Block{}, err
	}

	data := make([]database.Transaction, 0, len(trans)+1)
	data = append(data, database.NewCoinbase(prev.Index+1, s.minerAddress))
	data = append(data, trans...)

	s.evHandler("state: MineNewBlock: MINING: perform POW: difficulty[%d]", difficulty)

	block, err := database.MineNext(ctx, prev, data, difficulty, s.evHandler)
	if err != nil {
		return database.Block{}, err
	}

	// Just check one more time we were not cancelled.
	if ctx.Err() != nil {
		return database.Block{}, ctx.Err()
	}

	s.evHandler("state: MineNewBlock: MINING: update local state: blk[%d]", block.Index)

	if err := s.commitBlock(block); err != nil {
		return database.Block{}, err
	}

	return block, nil
}

// commitBlock validates the block against the current tail, writes it to
// storage and only then appends it and applies its transactions.
func (s *State) commitBlock(block database.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.chain.Latest().Hash != block.PreviousHash {
		return fmt.Errorf("blk[%d]: %w", block.Index, ErrChainChanged)
	}

	if err := s.chain.Latest().ValidateSuccessor(block); err != nil {
		return err
	}

	utxos, err := database.ValidateBlockTransactions(block, s.utxos)
	if err != nil {
		return err
	}

	if err := s.storage.Write(block); err != nil {
		return fmt.Errorf("write blk[%d]: %w", block.Index, err)
	}

	if err := s.chain.AddBlock(block); err != nil {
		return err
	}
	s.utxos = utxos

	return nil
}

// =============================================================================

// ProcessPeerChain takes a chain received from a peer and adopts it when it
// is valid and strictly longer than the local chain. Validation and the
// transaction replay run before the chain lock is taken. An adopted chain
// cancels any mining in flight since its tail is no longer the latest block.
func (s *State) ProcessPeerChain(blocks []database.Block) error {
	s.evHandler("state: ProcessPeerChain: started: blocks[%d]", len(blocks))
	defer s.evHandler("state: ProcessPeerChain: completed")

	if length := s.RetrieveChainLength(); len(blocks) <= length {
		return fmt.Errorf("length[%d] current[%d]: %w", len(blocks), length, database.ErrChainRejected)
	}

	if err := database.IsValid(blocks); err != nil {
		return fmt.Errorf("%w: %w", database.ErrChainRejected, err)
	}

	utxos, err := database.ReplayBlocks(blocks)
	if err != nil {
		return fmt.Errorf("%w: %w", database.ErrChainRejected, err)
	}

	if err := s.replaceChain(blocks, utxos); err != nil {
		return err
	}

	s.evHandler("state: ProcessPeerChain: adopted: latest[%s]", blocks[len(blocks)-1])

	if s.Worker != nil {
		s.Worker.SignalCancelMining()
	}

	return nil
}

func (s *State) replaceChain(blocks []database.Block, utxos database.UTxOSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// The chain may have grown while the candidate was being validated.
	if len(blocks) <= s.chain.Len() {
		return fmt.Errorf("length[%d] current[%d]: %w", len(blocks), s.chain.Len(), database.ErrChainRejected)
	}

	if err := s.storage.Replace(blocks); err != nil {
		return fmt.Errorf("replace storage: %w", err)
	}

	if err := s.chain.Replace(blocks); err != nil {
		return err
	}
	s.utxos = utxos

	return nil
}
