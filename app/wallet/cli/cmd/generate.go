package cmd

import (
	"fmt"

	"github.com/ardanlabs/utxochain/foundation/blockchain/wallet"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new private key unless one already exists.",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := getPrivateKeyPath()

		created, err := wallet.Initialize(path)
		if err != nil {
			return err
		}

		if !created {
			fmt.Println("Key already exists:", path)
			return nil
		}

		fmt.Println("Key created:", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
}
