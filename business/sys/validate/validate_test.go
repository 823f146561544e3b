package validate_test

import (
	"testing"

	"github.com/ardanlabs/utxochain/business/sys/validate"
	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/blockchain/peer"
	"github.com/stretchr/testify/require"
)

func Test_Check(t *testing.T) {
	require.NoError(t, validate.Check(peer.New("localhost:9080")))

	err := validate.Check(peer.New("localhost"))
	require.True(t, validate.IsFieldErrors(err))
	require.Contains(t, validate.GetFieldErrors(err).Fields(), "host")

	tx := database.NewTransaction(nil, []database.TxOut{{Amount: 10}})
	err = validate.Check(tx)
	require.True(t, validate.IsFieldErrors(err))
	require.Contains(t, validate.GetFieldErrors(err).Fields(), "address")
}
