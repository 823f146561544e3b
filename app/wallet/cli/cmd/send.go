package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
	"github.com/ardanlabs/utxochain/foundation/blockchain/wallet"
	"github.com/spf13/cobra"
)

// ErrInsufficientFunds is returned when the owned outputs can't cover the
// amount to send.
var ErrInsufficientFunds = errors.New("insufficient funds")

var (
	to     string
	amount uint64
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send an amount to an address and ask the node to mine it.",
	RunE:  sendRun,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Address to send to.")
	sendCmd.Flags().Uint64VarP(&amount, "amount", "v", 0, "Amount to send.")
	sendCmd.MarkFlagRequired("to")
	sendCmd.MarkFlagRequired("amount")
}

func sendRun(cmd *cobra.Command, args []string) error {
	privateKey, err := wallet.Load(getPrivateKeyPath())
	if err != nil {
		return err
	}

	from, err := signature.PublicKey(privateKey)
	if err != nil {
		return err
	}

	resp, err := http.Get(fmt.Sprintf("%s/v1/utxos/list/%s", nodeURL, from))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var info struct {
		UTxOs []database.UTxO `json:"utxos"`
	}
	if err := decode(resp, &info); err != nil {
		return err
	}

	tx, err := buildPayment(privateKey, from, info.UTxOs, to, amount)
	if err != nil {
		return err
	}

	data, err := json.Marshal(map[string]any{"transactions": []database.Transaction{tx}})
	if err != nil {
		return err
	}

	resp, err = http.Post(fmt.Sprintf("%s/v1/mining/mine", nodeURL), "application/json", bytes.NewReader(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var mined struct {
		Block database.Block `json:"block"`
	}
	if err := decode(resp, &mined); err != nil {
		return err
	}

	fmt.Println("Transaction:", tx.ID)
	fmt.Println("Mined in block:", mined.Block.Index, mined.Block.Hash)

	return nil
}

// buildPayment selects owned outputs in order until they cover the amount,
// pays the amount to the receiver and the rest back to the sender, and
// signs every input.
func buildPayment(privateKey string, from string, owned []database.UTxO, to string, amount uint64) (database.Transaction, error) {
	if amount == 0 {
		return database.Transaction{}, errors.New("amount must be greater than zero")
	}

	var selected []database.UTxO
	var total uint64
	for _, u := range owned {
		if total >= amount {
			break
		}
		if u.Address != from {
			continue
		}
		selected = append(selected, u)
		total += u.Amount
	}

	if total < amount {
		return database.Transaction{}, fmt.Errorf("have[%d] need[%d]: %w", total, amount, ErrInsufficientFunds)
	}

	ins := make([]database.TxIn, len(selected))
	for i, u := range selected {
		ins[i] = database.TxIn{TxOutID: u.TxOutID, TxOutIndex: u.TxOutIndex}
	}

	outs := []database.TxOut{{Address: to, Amount: amount}}
	if change := total - amount; change > 0 {
		outs = append(outs, database.TxOut{Address: from, Amount: change})
	}

	tx := database.NewTransaction(ins, outs)

	utxos := database.NewUTxOSet(selected...)
	for i := range tx.TxIns {
		sig, err := tx.SignInput(i, privateKey, utxos)
		if err != nil {
			return database.Transaction{}, err
		}
		tx.TxIns[i].Signature = sig
	}

	return tx, nil
}
