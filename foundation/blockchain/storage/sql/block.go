package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/google/uuid"
)

// Write stores the block and its transactions in a single database
// transaction. Blocks must be written in index order starting with genesis.
func (s *SQL) Write(block database.Block) error {
	start := time.Now()
	defer func() { observeDuration("write", start) }()

	ctx := context.Background()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var next uint64
	const q = `SELECT COUNT(*) FROM blocks WHERE block_chain_id = $1`
	if err := tx.QueryRowContext(ctx, q, s.chainID).Scan(&next); err != nil {
		return fmt.Errorf("count blocks: %w", err)
	}

	if next != block.Index {
		return fmt.Errorf("block[%d] is out of order, next[%d]", block.Index, next)
	}

	if err := s.insertBlock(ctx, tx, block); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	writesTotal.Inc()

	return nil
}

// GetBlock returns the block stored at the specified index.
func (s *SQL) GetBlock(index uint64) (database.Block, error) {
	blocks, err := s.load(context.Background(), index, index)
	if err != nil {
		return database.Block{}, err
	}

	if len(blocks) == 0 {
		return database.Block{}, fmt.Errorf("block[%d]: %w", index, database.ErrBlockNotFound)
	}

	return blocks[0], nil
}

// ForEach returns an iterator over a snapshot of the stored blocks taken
// when the iterator is created.
func (s *SQL) ForEach() database.Iterator {
	blocks, err := s.load(context.Background(), 0, math.MaxInt64)
	return &sqlIterator{blocks: blocks, err: err}
}

// Replace swaps the stored blocks of the chain for the specified blocks in a
// single database transaction.
func (s *SQL) Replace(blocks []database.Block) error {
	start := time.Now()
	defer func() { observeDuration("replace", start) }()

	for i, b := range blocks {
		if b.Index != uint64(i) {
			return fmt.Errorf("block[%d] is out of order at position[%d]", b.Index, i)
		}
	}

	ctx := context.Background()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	deletes := []string{
		`DELETE FROM tx_ins WHERE transaction_id IN (
			SELECT t.transaction_id FROM transactions t JOIN blocks b ON b.block_id = t.block_id WHERE b.block_chain_id = $1)`,
		`DELETE FROM tx_outs WHERE transaction_id IN (
			SELECT t.transaction_id FROM transactions t JOIN blocks b ON b.block_id = t.block_id WHERE b.block_chain_id = $1)`,
		`DELETE FROM transactions WHERE block_id IN (SELECT block_id FROM blocks WHERE block_chain_id = $1)`,
		`DELETE FROM blocks WHERE block_chain_id = $1`,
	}

	for _, q := range deletes {
		if _, err := tx.ExecContext(ctx, q, s.chainID); err != nil {
			return fmt.Errorf("delete chain: %w", err)
		}
	}

	for _, b := range blocks {
		if err := s.insertBlock(ctx, tx, b); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	replacesTotal.Inc()

	return nil
}

// =============================================================================

// insertBlock decomposes the block into rows with new surrogate ids.
func (s *SQL) insertBlock(ctx context.Context, tx *sql.Tx, block database.Block) error {
	blockID := uuid.NewString()

	const qb = `
	INSERT INTO blocks
		(block_id, block_chain_id, block_index, hash, previous_hash, generate_timestamp, difficulty, nonce)
	VALUES
		($1, $2, $3, $4, $5, $6, $7, $8)`

	if _, err := tx.ExecContext(ctx, qb, blockID, s.chainID, int64(block.Index), block.Hash, block.PreviousHash, block.Timestamp, int64(block.Difficulty), int64(block.Nonce)); err != nil {
		return fmt.Errorf("insert block[%d]: %w", block.Index, err)
	}

	const qt = `INSERT INTO transactions (transaction_id, block_id, tx_hash, seq) VALUES ($1, $2, $3, $4)`
	const qi = `INSERT INTO tx_ins (tx_in_id, transaction_id, tx_out_id, tx_out_index, signature, seq) VALUES ($1, $2, $3, $4, $5, $6)`
	const qo = `INSERT INTO tx_outs (tx_out_id, transaction_id, address, amount, seq) VALUES ($1, $2, $3, $4, $5)`

	for i, trn := range block.Data {
		transactionID := uuid.NewString()

		if _, err := tx.ExecContext(ctx, qt, transactionID, blockID, trn.ID, i); err != nil {
			return fmt.Errorf("insert tx[%s]: %w", trn.ID, err)
		}

		for j, in := range trn.TxIns {
			if _, err := tx.ExecContext(ctx, qi, uuid.NewString(), transactionID, in.TxOutID, int64(in.TxOutIndex), in.Signature, j); err != nil {
				return fmt.Errorf("insert tx[%s] input[%d]: %w", trn.ID, j, err)
			}
		}

		for j, out := range trn.TxOuts {
			if _, err := tx.ExecContext(ctx, qo, uuid.NewString(), transactionID, out.Address, int64(out.Amount), j); err != nil {
				return fmt.Errorf("insert tx[%s] output[%d]: %w", trn.ID, j, err)
			}
		}
	}

	return nil
}

// load reconstructs the blocks with an index in the inclusive range. Each
// table is read completely before the next query runs.
func (s *SQL) load(ctx context.Context, from uint64, to uint64) ([]database.Block, error) {
	lo, hi := int64(from), int64(min(to, math.MaxInt64))

	const qb = `
	SELECT block_id, block_index, hash, previous_hash, generate_timestamp, difficulty, nonce
	FROM blocks
	WHERE block_chain_id = $1 AND block_index BETWEEN $2 AND $3
	ORDER BY block_index`

	var blockIDs []string
	byBlock := make(map[string]*database.Block)
	var blocks []*database.Block

	err := s.query(ctx, qb, []any{s.chainID, lo, hi}, func(rows *sql.Rows) error {
		var id string
		var index, difficulty, nonce int64
		var b database.Block
		if err := rows.Scan(&id, &index, &b.Hash, &b.PreviousHash, &b.Timestamp, &difficulty, &nonce); err != nil {
			return err
		}
		b.Index, b.Difficulty, b.Nonce = uint64(index), uint(difficulty), uint64(nonce)
		b.Data = []database.Transaction{}

		blockIDs = append(blockIDs, id)
		byBlock[id] = &b
		blocks = append(blocks, &b)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load blocks: %w", err)
	}

	const qt = `
	SELECT t.transaction_id, t.block_id, t.tx_hash
	FROM transactions t JOIN blocks b ON b.block_id = t.block_id
	WHERE b.block_chain_id = $1 AND b.block_index BETWEEN $2 AND $3
	ORDER BY b.block_index, t.seq`

	type txRef struct {
		block *database.Block
		pos   int
	}
	byTx := make(map[string]txRef)

	err = s.query(ctx, qt, []any{s.chainID, lo, hi}, func(rows *sql.Rows) error {
		var id, blockID, hash string
		if err := rows.Scan(&id, &blockID, &hash); err != nil {
			return err
		}
		b, exists := byBlock[blockID]
		if !exists {
			return fmt.Errorf("transaction[%s] references unknown block[%s]", id, blockID)
		}
		b.Data = append(b.Data, database.Transaction{ID: hash, TxIns: []database.TxIn{}, TxOuts: []database.TxOut{}})
		byTx[id] = txRef{block: b, pos: len(b.Data) - 1}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}

	const qi = `
	SELECT i.transaction_id, i.tx_out_id, i.tx_out_index, i.signature
	FROM tx_ins i JOIN transactions t ON t.transaction_id = i.transaction_id JOIN blocks b ON b.block_id = t.block_id
	WHERE b.block_chain_id = $1 AND b.block_index BETWEEN $2 AND $3
	ORDER BY b.block_index, t.seq, i.seq`

	err = s.query(ctx, qi, []any{s.chainID, lo, hi}, func(rows *sql.Rows) error {
		var transactionID string
		var index int64
		var in database.TxIn
		if err := rows.Scan(&transactionID, &in.TxOutID, &index, &in.Signature); err != nil {
			return err
		}
		in.TxOutIndex = uint64(index)

		ref, exists := byTx[transactionID]
		if !exists {
			return fmt.Errorf("input references unknown transaction[%s]", transactionID)
		}
		trn := &ref.block.Data[ref.pos]
		trn.TxIns = append(trn.TxIns, in)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load inputs: %w", err)
	}

	const qo = `
	SELECT o.transaction_id, o.address, o.amount
	FROM tx_outs o JOIN transactions t ON t.transaction_id = o.transaction_id JOIN blocks b ON b.block_id = t.block_id
	WHERE b.block_chain_id = $1 AND b.block_index BETWEEN $2 AND $3
	ORDER BY b.block_index, t.seq, o.seq`

	err = s.query(ctx, qo, []any{s.chainID, lo, hi}, func(rows *sql.Rows) error {
		var transactionID string
		var amount int64
		var out database.TxOut
		if err := rows.Scan(&transactionID, &out.Address, &amount); err != nil {
			return err
		}
		out.Amount = uint64(amount)

		ref, exists := byTx[transactionID]
		if !exists {
			return fmt.Errorf("output references unknown transaction[%s]", transactionID)
		}
		trn := &ref.block.Data[ref.pos]
		trn.TxOuts = append(trn.TxOuts, out)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load outputs: %w", err)
	}

	result := make([]database.Block, len(blocks))
	for i, b := range blocks {
		result[i] = *b
	}

	return result, nil
}

// query runs the statement and calls fn for every row. The rows are closed
// before query returns.
func (s *SQL) query(ctx context.Context, q string, args []any, fn func(rows *sql.Rows) error) error {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}

	return rows.Err()
}

// =============================================================================

// sqlIterator walks a snapshot of blocks read from the database. This
// implements the database Iterator interface.
type sqlIterator struct {
	blocks  []database.Block
	err     error
	current int
}

// Next returns the next block of the snapshot or the error hit while taking it.
func (si *sqlIterator) Next() (database.Block, error) {
	if si.err != nil {
		err := si.err
		si.err = nil
		si.blocks = nil
		return database.Block{}, err
	}

	if si.Done() {
		return database.Block{}, errors.New("end of chain")
	}

	b := si.blocks[si.current]
	si.current++

	return b, nil
}

// Done returns the end of chain value.
func (si *sqlIterator) Done() bool {
	return si.err == nil && si.current >= len(si.blocks)
}
