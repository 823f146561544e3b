package commands

import (
	"fmt"
	"io"
	"sort"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
)

// Balances rebuilds the unspent set from storage and writes the balance of
// every address, or of the specified address only.
func Balances(w io.Writer, storage database.Storage, address string) error {
	blocks, err := database.LoadBlocks(storage)
	if err != nil {
		return fmt.Errorf("load blocks: %w", err)
	}

	utxos, err := database.ReplayBlocks(blocks)
	if err != nil {
		return fmt.Errorf("replay transactions: %w", err)
	}

	fmt.Fprintf(w, "LatestBlockHash: %s\n\n", blocks[len(blocks)-1].Hash)

	if address != "" {
		fmt.Fprintf(w, "Address: %s  Balance: %d\n", address, utxos.Balance(address))
		return nil
	}

	balances := make(map[string]uint64)
	for _, u := range utxos {
		balances[u.Address] += u.Amount
	}

	addresses := make([]string, 0, len(balances))
	for address := range balances {
		addresses = append(addresses, address)
	}
	sort.Strings(addresses)

	for _, address := range addresses {
		fmt.Fprintf(w, "Address: %s  Balance: %d\n", address, balances[address])
	}

	return nil
}
