package cmd

import (
	"errors"
	"testing"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
	"github.com/stretchr/testify/require"
)

func Test_BuildPayment(t *testing.T) {
	privateKey, from, err := signature.GenerateKey()
	require.NoError(t, err)
	_, to, err := signature.GenerateKey()
	require.NoError(t, err)

	cb1 := database.NewCoinbase(1, from)
	cb2 := database.NewCoinbase(2, from)
	utxos := database.NewUTxOSet().Apply(cb1, cb2)
	owned := utxos.ForAddress(from)

	t.Run("change", func(t *testing.T) {
		tx, err := buildPayment(privateKey, from, owned, to, 70)
		require.NoError(t, err)

		require.Len(t, tx.TxIns, 2)
		require.Equal(t, []database.TxOut{{Address: to, Amount: 70}, {Address: from, Amount: 30}}, tx.TxOuts)
		require.NoError(t, database.ValidateTransactions([]database.Transaction{tx}, utxos))
	})

	t.Run("exact", func(t *testing.T) {
		tx, err := buildPayment(privateKey, from, owned, to, 50)
		require.NoError(t, err)

		require.Len(t, tx.TxIns, 1)
		require.Len(t, tx.TxOuts, 1)
		require.NoError(t, database.ValidateTransactions([]database.Transaction{tx}, utxos))
	})

	t.Run("insufficient", func(t *testing.T) {
		_, err := buildPayment(privateKey, from, owned, to, 101)
		require.True(t, errors.Is(err, ErrInsufficientFunds))
	})

	t.Run("zero", func(t *testing.T) {
		_, err := buildPayment(privateKey, from, owned, to, 0)
		require.Error(t, err)
	})
}
