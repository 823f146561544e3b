package commands_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/ardanlabs/utxochain/app/tooling/admin/commands"
	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
	"github.com/ardanlabs/utxochain/foundation/blockchain/storage/memory"
	"github.com/stretchr/testify/require"
)

func Test_Genesis(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, commands.Genesis(context.Background(), &buf, 1736325055, 2, nil))

	var block database.Block
	require.NoError(t, json.Unmarshal(buf.Bytes(), &block))
	require.Equal(t, uint64(0), block.Index)
	require.Equal(t, block.CalculateHash(), block.Hash)
	require.True(t, database.MeetsDifficulty(block.Hash, 2))
}

func Test_VerifyAndBalances(t *testing.T) {
	_, address, err := signature.GenerateKey()
	require.NoError(t, err)

	bc := database.NewBlockChain()
	storage := memory.New()
	require.NoError(t, storage.Write(bc.Latest()))

	for i := uint64(1); i <= 2; i++ {
		block, err := bc.Append(context.Background(), []database.Transaction{database.NewCoinbase(i, address)}, nil)
		require.NoError(t, err)
		require.NoError(t, storage.Write(block))
	}

	var buf bytes.Buffer
	require.NoError(t, commands.Verify(&buf, storage))
	require.Contains(t, buf.String(), "chain valid: blocks[3] utxos[2]")

	buf.Reset()
	require.NoError(t, commands.Balances(&buf, storage, address))
	require.Contains(t, buf.String(), "Balance: 100")

	// A stored block with a broken hash is reported.
	blocks := bc.Blocks()
	blocks[2].Nonce++
	require.NoError(t, storage.Replace(blocks))

	err = commands.Verify(&buf, storage)
	require.True(t, errors.Is(err, database.ErrInvalidHash))
}
