package commands

import (
	"fmt"
	"io"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
)

// Verify loads the stored chain, checks the consensus rules and replays every
// transaction. It reports the first rule a stored block breaks.
func Verify(w io.Writer, storage database.Storage) error {
	blocks, err := database.LoadBlocks(storage)
	if err != nil {
		return fmt.Errorf("load blocks: %w", err)
	}

	if err := database.IsValid(blocks); err != nil {
		return fmt.Errorf("verify chain: %w", err)
	}

	utxos, err := database.ReplayBlocks(blocks)
	if err != nil {
		return fmt.Errorf("verify transactions: %w", err)
	}

	latest := blocks[len(blocks)-1]

	fmt.Fprintf(w, "chain valid: blocks[%d] utxos[%d]\n", len(blocks), len(utxos))
	fmt.Fprintf(w, "latest: %s\n", latest)
	fmt.Fprintf(w, "next difficulty: %d\n", database.AdjustedDifficulty(blocks))

	return nil
}
