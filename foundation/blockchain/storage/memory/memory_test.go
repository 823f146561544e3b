package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/blockchain/storage/memory"
	"github.com/stretchr/testify/require"
)

func Test_Memory(t *testing.T) {
	mem := memory.New()

	genesis := database.Genesis()
	require.NoError(t, mem.Write(genesis))

	next, err := database.MineNext(context.Background(), genesis, nil, 1, nil)
	require.NoError(t, err)
	require.NoError(t, mem.Write(next))

	require.Error(t, mem.Write(next), "writing the same index twice must fail")

	got, err := mem.GetBlock(1)
	require.NoError(t, err)
	require.Equal(t, next.Hash, got.Hash)

	_, err = mem.GetBlock(2)
	require.True(t, errors.Is(err, database.ErrBlockNotFound))

	blocks, err := database.LoadBlocks(mem)
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	require.Equal(t, genesis.Hash, blocks[0].Hash)

	require.NoError(t, mem.Replace([]database.Block{genesis}))
	require.Equal(t, 1, mem.Len())

	require.Error(t, mem.Replace([]database.Block{next}))
	require.Equal(t, 1, mem.Len(), "a rejected replace must keep the stored blocks")
}
