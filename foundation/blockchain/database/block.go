package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
)

// TimestampTolerance is the number of seconds a block's timestamp may trail
// its predecessor or lead the wall clock.
const TimestampTolerance = 60

// Values of the canonical genesis block.
const (
	genesisTimestamp  = 1736325055
	genesisDifficulty = 4
	genesisNonce      = 11836
	genesisHash       = "00002d1eb55c72b56c3497d65f3385bc047b2336cd2c0288f4c190df8987d995"
)

// =============================================================================

// Block represents a group of transactions sealed by proof of work.
type Block struct {
	Index        uint64        `json:"index"`
	Hash         string        `json:"hash"`
	PreviousHash string        `json:"previous_hash"`
	Timestamp    int64         `json:"timestamp"`
	Data         []Transaction `json:"data"`
	Difficulty   uint          `json:"difficulty"`
	Nonce        uint64        `json:"nonce"`
}

// Genesis returns the fixed first block of every chain.
func Genesis() Block {
	return Block{
		Index:        0,
		Hash:         genesisHash,
		PreviousHash: "",
		Timestamp:    genesisTimestamp,
		Data:         []Transaction{},
		Difficulty:   genesisDifficulty,
		Nonce:        genesisNonce,
	}
}

// HashOf returns the digest of the block fields. The transaction list is
// rendered with each transaction's canonical encoding in list order.
func HashOf(index uint64, previousHash string, timestamp int64, data []Transaction, difficulty uint, nonce uint64) string {
	var b strings.Builder
	for _, tx := range data {
		tx.encode(&b)
	}

	s := fmt.Sprintf("%d%s%d%s%d%d", index, previousHash, timestamp, b.String(), difficulty, nonce)
	return signature.Hash([]byte(s))
}

// CalculateHash recomputes the hash of the block from its own fields.
func (b Block) CalculateHash() string {
	return HashOf(b.Index, b.PreviousHash, b.Timestamp, b.Data, b.Difficulty, b.Nonce)
}

// MeetsDifficulty reports whether the first difficulty characters of the hex
// hash are all '0'. A difficulty beyond the hash length never succeeds.
func MeetsDifficulty(hash string, difficulty uint) bool {
	if difficulty > uint(len(hash)) {
		return false
	}

	for i := range difficulty {
		if hash[i] != '0' {
			return false
		}
	}

	return true
}

// MineNext constructs the successor of the previous block carrying the
// transactions and performs the work to find a nonce that solves the proof
// of work puzzle. The search stops when the context is cancelled.
func MineNext(ctx context.Context, prev Block, trans []Transaction, difficulty uint, ev func(v string, args ...any)) (Block, error) {
	if ev == nil {
		ev = func(string, ...any) {}
	}

	if trans == nil {
		trans = []Transaction{}
	}

	nb := Block{
		Index:        prev.Index + 1,
		PreviousHash: prev.Hash,
		Data:         trans,
		Difficulty:   difficulty,
	}

	if err := nb.performPOW(ctx, time.Now, ev); err != nil {
		return Block{}, err
	}

	return nb, nil
}

// MineGenesis searches for a genesis block with the specified timestamp and
// difficulty. It is used to produce new genesis constants.
func MineGenesis(ctx context.Context, timestamp int64, difficulty uint, ev func(v string, args ...any)) (Block, error) {
	if ev == nil {
		ev = func(string, ...any) {}
	}

	nb := Block{
		Data:       []Transaction{},
		Difficulty: difficulty,
	}

	fixed := func() time.Time { return time.Unix(timestamp, 0) }
	if err := nb.performPOW(ctx, fixed, ev); err != nil {
		return Block{}, err
	}

	return nb, nil
}

// performPOW does the work of mining to find a valid hash for the block.
// The nonce starts at 0 and the timestamp is refreshed every attempt.
func (b *Block) performPOW(ctx context.Context, now func() time.Time, ev func(v string, args ...any)) error {
	ev("database: PerformPOW: MINING: started: blk[%d]: difficulty[%d]", b.Index, b.Difficulty)
	defer ev("database: PerformPOW: MINING: completed: blk[%d]", b.Index)

	for _, tx := range b.Data {
		ev("database: PerformPOW: MINING: tx[%s]", tx)
	}

	var attempts uint64
	for b.Nonce = 0; ; b.Nonce++ {
		attempts++
		if attempts%1_000_000 == 0 {
			ev("database: PerformPOW: MINING: attempts[%d]", attempts)
		}

		if ctx.Err() != nil {
			ev("database: PerformPOW: MINING: CANCELLED")
			return ctx.Err()
		}

		b.Timestamp = now().Unix()
		hash := b.CalculateHash()
		if !MeetsDifficulty(hash, b.Difficulty) {
			continue
		}

		b.Hash = hash

		ev("database: PerformPOW: MINING: SOLVED: prevBlk[%s]: newBlk[%s]", b.PreviousHash, hash)
		ev("database: PerformPOW: MINING: attempts[%d]", attempts)

		return nil
	}
}

// ValidateSuccessor checks the candidate can follow this block. The checks run
// in order: index, previous hash, recomputed hash, proof of work, timestamp.
func (b Block) ValidateSuccessor(candidate Block) error {
	if candidate.Index != b.Index+1 {
		return fmt.Errorf("blk[%d]: expected index[%d]: %w", candidate.Index, b.Index+1, ErrInvalidIndex)
	}

	if candidate.PreviousHash != b.Hash {
		return fmt.Errorf("blk[%d]: previous[%s] expected[%s]: %w", candidate.Index, candidate.PreviousHash, b.Hash, ErrInvalidPreviousHash)
	}

	if hash := candidate.CalculateHash(); hash != candidate.Hash {
		return fmt.Errorf("blk[%d]: hash[%s] calculated[%s]: %w", candidate.Index, candidate.Hash, hash, ErrInvalidHash)
	}

	if !MeetsDifficulty(candidate.Hash, candidate.Difficulty) {
		return fmt.Errorf("blk[%d]: hash[%s] difficulty[%d]: %w", candidate.Index, candidate.Hash, candidate.Difficulty, ErrInvalidProofOfWork)
	}

	now := time.Now().Unix()
	if b.Timestamp-TimestampTolerance > candidate.Timestamp || candidate.Timestamp-TimestampTolerance > now {
		return fmt.Errorf("blk[%d]: timestamp[%d] previous[%d] now[%d]: %w", candidate.Index, candidate.Timestamp, b.Timestamp, now, ErrInvalidTimestamp)
	}

	return nil
}

// String implements the fmt.Stringer interface for logging.
func (b Block) String() string {
	return fmt.Sprintf("%d:%s:%d", b.Index, b.Hash, len(b.Data))
}
