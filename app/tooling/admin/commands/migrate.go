// Package commands contains the functionality for the set of commands
// currently supported by the admin tool.
package commands

import (
	"fmt"
	"io"

	"github.com/ardanlabs/utxochain/foundation/blockchain/storage/sql"
)

// Migrate applies the schema migrations to the database named by the url.
func Migrate(w io.Writer, dbURL string) error {
	version, err := sql.Migrate(dbURL)
	if err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	fmt.Fprintf(w, "migrations complete: schema version %d\n", version)
	return nil
}
