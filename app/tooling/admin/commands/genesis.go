package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
)

// Genesis searches for a genesis block with the specified timestamp and
// difficulty and writes it as json.
func Genesis(ctx context.Context, w io.Writer, timestamp int64, difficulty uint, ev func(v string, args ...any)) error {
	block, err := database.MineGenesis(ctx, timestamp, difficulty, ev)
	if err != nil {
		return fmt.Errorf("mine genesis: %w", err)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(block); err != nil {
		return fmt.Errorf("encode genesis: %w", err)
	}

	return nil
}
