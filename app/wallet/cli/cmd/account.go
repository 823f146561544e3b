package cmd

import (
	"fmt"

	"github.com/ardanlabs/utxochain/foundation/blockchain/wallet"
	"github.com/spf13/cobra"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Print the address of the private key.",
	RunE: func(cmd *cobra.Command, args []string) error {
		address, err := wallet.PublicKey(getPrivateKeyPath())
		if err != nil {
			return err
		}

		fmt.Println(address)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(accountCmd)
}
