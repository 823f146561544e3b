package database

import (
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ValidateBlockTransactions checks the transactions carried by the block
// against the unspent set as of the previous block and returns the set with
// the block applied. On failure the specified set is untouched.
//
// A block may carry no transactions. Otherwise the first transaction must be
// the coinbase for the block's index and the rest must pass ValidateTransactions.
func ValidateBlockTransactions(b Block, utxos UTxOSet) (UTxOSet, error) {
	if len(b.Data) == 0 {
		return utxos.Copy(), nil
	}

	coinbase := b.Data[0]
	if err := coinbase.IsSelfConsistent(); err != nil {
		return nil, fmt.Errorf("blk[%d]: %w", b.Index, err)
	}

	if err := coinbase.CheckCoinbase(b.Index); err != nil {
		return nil, fmt.Errorf("blk[%d]: %w", b.Index, err)
	}

	if err := ValidateTransactions(b.Data[1:], utxos); err != nil {
		return nil, fmt.Errorf("blk[%d]: %w", b.Index, err)
	}

	return utxos.Apply(b.Data...), nil
}

// ValidateTransactions checks a list of spending transactions against the
// unspent set. Every transaction must be self consistent and conserve value,
// every input must resolve in the set, no output may be spent twice across
// the list and every signature must verify. Signatures are verified in
// parallel once the cheaper checks pass.
func ValidateTransactions(trans []Transaction, utxos UTxOSet) error {
	spent := make(map[OutPoint]struct{})

	for _, tx := range trans {
		if err := tx.IsSelfConsistent(); err != nil {
			return err
		}

		for _, in := range tx.TxIns {
			op := in.OutPoint()
			if _, found := utxos.Find(op); !found {
				return fmt.Errorf("tx[%s]: input[%s]: %w", tx.ID, op, ErrUTxONotFound)
			}

			if _, exists := spent[op]; exists {
				return fmt.Errorf("tx[%s]: input[%s]: %w", tx.ID, op, ErrDoubleSpend)
			}
			spent[op] = struct{}{}
		}

		if err := tx.CheckConservation(utxos); err != nil {
			return err
		}
	}

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))

	for _, tx := range trans {
		for _, in := range tx.TxIns {
			g.Go(func() error {
				return in.Validate(tx, utxos)
			})
		}
	}

	return g.Wait()
}

// ReplayBlocks validates the transactions of every block after genesis in
// order and returns the resulting unspent set.
func ReplayBlocks(blocks []Block) (UTxOSet, error) {
	utxos := NewUTxOSet()
	for i := 1; i < len(blocks); i++ {
		next, err := ValidateBlockTransactions(blocks[i], utxos)
		if err != nil {
			return nil, err
		}
		utxos = next
	}

	return utxos, nil
}
