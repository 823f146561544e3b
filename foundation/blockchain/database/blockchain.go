package database

import (
	"context"
	"fmt"
)

// Retarget schedule. Difficulty is reconsidered every DifficultyAdjustmentInterval
// blocks against an expected BlockGenerationInterval seconds per block.
const (
	BlockGenerationInterval      = 10
	DifficultyAdjustmentInterval = 10
)

// BlockChain is a non-empty ordered sequence of blocks starting at genesis.
// It is not safe for concurrent use, the state package owns the writer.
type BlockChain struct {
	blocks []Block
}

// NewBlockChain returns the chain holding only the genesis block.
func NewBlockChain() *BlockChain {
	return &BlockChain{
		blocks: []Block{Genesis()},
	}
}

// FromBlocks constructs a chain from the specified blocks after checking the
// chain is valid.
func FromBlocks(blocks []Block) (*BlockChain, error) {
	if err := IsValid(blocks); err != nil {
		return nil, err
	}

	cp := make([]Block, len(blocks))
	copy(cp, blocks)

	return &BlockChain{blocks: cp}, nil
}

// Latest returns the last block in the chain.
func (bc *BlockChain) Latest() Block {
	return bc.blocks[len(bc.blocks)-1]
}

// Len returns the number of blocks in the chain.
func (bc *BlockChain) Len() int {
	return len(bc.blocks)
}

// Blocks returns a copy of the blocks in the chain.
func (bc *BlockChain) Blocks() []Block {
	cp := make([]Block, len(bc.blocks))
	copy(cp, bc.blocks)

	return cp
}

// AdjustedDifficulty returns the difficulty the next block must carry.
func (bc *BlockChain) AdjustedDifficulty() uint {
	return AdjustedDifficulty(bc.blocks)
}

// Append mines a successor to the latest block carrying the transactions at
// the adjusted difficulty, adds it to the chain and returns it.
func (bc *BlockChain) Append(ctx context.Context, trans []Transaction, ev func(v string, args ...any)) (Block, error) {
	nb, err := MineNext(ctx, bc.Latest(), trans, bc.AdjustedDifficulty(), ev)
	if err != nil {
		return Block{}, err
	}

	bc.blocks = append(bc.blocks, nb)

	return nb, nil
}

// AddBlock validates the block as the successor of the latest block and adds
// it to the chain. The block must carry the adjusted difficulty.
func (bc *BlockChain) AddBlock(b Block) error {
	if want := bc.AdjustedDifficulty(); b.Difficulty != want {
		return fmt.Errorf("blk[%d]: difficulty[%d] expected[%d]: %w", b.Index, b.Difficulty, want, ErrInvalidDifficulty)
	}

	if err := bc.Latest().ValidateSuccessor(b); err != nil {
		return err
	}

	bc.blocks = append(bc.blocks, b)

	return nil
}

// Replace adopts the candidate blocks iff they form a valid chain strictly
// longer than the current one. Equal length keeps the current chain.
func (bc *BlockChain) Replace(candidate []Block) error {
	if len(candidate) <= len(bc.blocks) {
		return fmt.Errorf("length[%d] current[%d]: %w", len(candidate), len(bc.blocks), ErrChainRejected)
	}

	if err := IsValid(candidate); err != nil {
		return fmt.Errorf("%w: %w", ErrChainRejected, err)
	}

	cp := make([]Block, len(candidate))
	copy(cp, candidate)
	bc.blocks = cp

	return nil
}

// =============================================================================

// IsValid checks the blocks start at genesis, carry the scheduled difficulty
// and that every block is a valid successor of the one before it. The first
// failure is returned.
func IsValid(blocks []Block) error {
	if len(blocks) == 0 || !isGenesis(blocks[0]) {
		return ErrInvalidGenesis
	}

	for i := 1; i < len(blocks); i++ {
		if want := AdjustedDifficulty(blocks[:i]); blocks[i].Difficulty != want {
			return fmt.Errorf("blk[%d]: difficulty[%d] expected[%d]: %w", blocks[i].Index, blocks[i].Difficulty, want, ErrInvalidDifficulty)
		}

		if err := blocks[i-1].ValidateSuccessor(blocks[i]); err != nil {
			return err
		}
	}

	return nil
}

// AdjustedDifficulty returns the difficulty for the block following the
// specified blocks. Off the retarget boundary the latest difficulty carries
// forward. On the boundary the time taken since the previous adjustment block
// is compared to the expected time: at most half raises the difficulty by one,
// at least double lowers it by one with a floor of zero.
func AdjustedDifficulty(blocks []Block) uint {
	latest := blocks[len(blocks)-1]
	if latest.Index == 0 || latest.Index%DifficultyAdjustmentInterval != 0 || len(blocks) <= DifficultyAdjustmentInterval {
		return latest.Difficulty
	}

	prevAdjustment := blocks[len(blocks)-1-DifficultyAdjustmentInterval]
	expected := int64(BlockGenerationInterval * DifficultyAdjustmentInterval)
	taken := latest.Timestamp - prevAdjustment.Timestamp

	switch {
	case taken <= expected/2:
		return prevAdjustment.Difficulty + 1
	case taken >= expected*2:
		if prevAdjustment.Difficulty == 0 {
			return 0
		}
		return prevAdjustment.Difficulty - 1
	default:
		return prevAdjustment.Difficulty
	}
}

func isGenesis(b Block) bool {
	g := Genesis()
	return b.Index == g.Index &&
		b.Hash == g.Hash &&
		b.PreviousHash == g.PreviousHash &&
		b.Timestamp == g.Timestamp &&
		b.Difficulty == g.Difficulty &&
		b.Nonce == g.Nonce &&
		len(b.Data) == 0
}
