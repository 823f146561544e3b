// This program is a wallet for the utxo chain. It manages a key file and
// spends the outputs the key owns through a node.
package main

import "github.com/ardanlabs/utxochain/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}
