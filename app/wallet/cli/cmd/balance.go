package cmd

import (
	"fmt"
	"net/http"

	"github.com/ardanlabs/utxochain/foundation/blockchain/wallet"
	"github.com/spf13/cobra"
)

type balance struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Balance uint64 `json:"balance"`
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print your balance.",
	RunE:  balanceRun,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}

func balanceRun(cmd *cobra.Command, args []string) error {
	address, err := wallet.PublicKey(getPrivateKeyPath())
	if err != nil {
		return err
	}

	resp, err := http.Get(fmt.Sprintf("%s/v1/balances/list/%s", nodeURL, address))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var bal balance
	if err := decode(resp, &bal); err != nil {
		return err
	}

	fmt.Println("For Address:", bal.Address)
	fmt.Println("Name:", bal.Name)
	fmt.Println("Balance:", bal.Balance)

	return nil
}
