package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/ardanlabs/utxochain/app/services/node/handlers"
	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/blockchain/peer"
	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
	"github.com/ardanlabs/utxochain/foundation/blockchain/state"
	"github.com/ardanlabs/utxochain/foundation/blockchain/storage/memory"
	"github.com/ardanlabs/utxochain/foundation/blockchain/worker"
	"github.com/ardanlabs/utxochain/foundation/events"
	"github.com/ardanlabs/utxochain/foundation/nameservice"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type node struct {
	address string
	state   *state.State
	public  http.Handler
	private http.Handler
	debug   http.Handler
}

func newNode(t *testing.T) node {
	t.Helper()

	_, address, err := signature.GenerateKey()
	require.NoError(t, err)

	st, err := state.New(state.Config{
		MinerAddress: address,
		Host:         "localhost:9080",
		Storage:      memory.New(),
		AllowMining:  true,
	})
	require.NoError(t, err)

	w := worker.Run(st, time.Hour, nil)
	t.Cleanup(func() { st.Shutdown() })

	ns, err := nameservice.New(t.TempDir())
	require.NoError(t, err)

	log := zap.NewNop().Sugar()

	cfg := handlers.MuxConfig{
		Shutdown:    make(chan os.Signal, 1),
		Log:         log,
		State:       st,
		Worker:      w,
		MineTimeout: time.Minute,
		NS:          ns,
		Evts:        events.New(),
	}

	return node{
		address: address,
		state:   st,
		public:  handlers.PublicMux(cfg),
		private: handlers.PrivateMux(cfg),
		debug:   handlers.DebugMux("test", log, st),
	}
}

func do(t *testing.T, h http.Handler, method string, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, path, &buf))

	return w
}

func Test_Public(t *testing.T) {
	n := newNode(t)

	w := do(t, n.public, http.MethodGet, "/v1/blocks/list", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var blocks []database.Block
	require.NoError(t, json.NewDecoder(w.Body).Decode(&blocks))
	require.Len(t, blocks, 1)
	require.Equal(t, database.Genesis().Hash, blocks[0].Hash)

	// Mine a block paying the coinbase to the node.
	w = do(t, n.public, http.MethodPost, "/v1/mining/mine", map[string]any{"transactions": []database.Transaction{}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var mined struct {
		Block database.Block `json:"block"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&mined))
	require.Equal(t, uint64(1), mined.Block.Index)

	w = do(t, n.public, http.MethodGet, "/v1/blocks/latest", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var latest database.Block
	require.NoError(t, json.NewDecoder(w.Body).Decode(&latest))
	require.Equal(t, mined.Block.Hash, latest.Hash)

	w = do(t, n.public, http.MethodGet, "/v1/balances/list/"+n.address, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var bal struct {
		Balance uint64 `json:"balance"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&bal))
	require.Equal(t, uint64(database.CoinbaseAmount), bal.Balance)

	w = do(t, n.public, http.MethodGet, "/v1/utxos/list/"+n.address, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var info struct {
		UTxOs []struct {
			TxOutID string `json:"tx_out_id"`
		} `json:"utxos"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&info))
	require.Len(t, info.UTxOs, 1)

	// A spend of an output that does not exist is rejected.
	bogus := database.NewTransaction(
		[]database.TxIn{{TxOutID: signature.Hash([]byte("missing")), TxOutIndex: 0}},
		[]database.TxOut{{Address: n.address, Amount: 10}},
	)
	w = do(t, n.public, http.MethodPost, "/v1/mining/mine", map[string]any{"transactions": []database.Transaction{bogus}})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, 2, n.state.RetrieveChainLength())

	// Payloads must carry an output address.
	noAddress := database.NewTransaction(nil, []database.TxOut{{Amount: 10}})
	w = do(t, n.public, http.MethodPost, "/v1/mining/mine", map[string]any{"transactions": []database.Transaction{noAddress}})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "data validation error")

	w = do(t, n.public, http.MethodPost, "/v1/peers/add", peer.New("localhost"))
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, n.public, http.MethodPost, "/v1/peers/add", peer.New("localhost:9180"))
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"host":"localhost:9180","added":true}`, w.Body.String())

	w = do(t, n.public, http.MethodGet, "/v1/peers/list", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `[{"host":"localhost:9180"}]`, w.Body.String())
}

func Test_Private(t *testing.T) {
	n := newNode(t)

	w := do(t, n.private, http.MethodGet, "/v1/node/status", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var status peer.PeerStatus
	require.NoError(t, json.NewDecoder(w.Body).Decode(&status))
	require.Equal(t, 1, status.ChainLength)
	require.Equal(t, database.Genesis().Hash, status.LatestBlockHash)

	// A chain no longer than the local one is not adopted.
	w = do(t, n.private, http.MethodPost, "/v1/node/chain/propose", n.state.RetrieveBlocks())
	require.Equal(t, http.StatusNotAcceptable, w.Code)

	// A longer valid chain is adopted.
	remote := newNode(t)
	w = do(t, remote.public, http.MethodPost, "/v1/mining/mine", map[string]any{"transactions": []database.Transaction{}})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, remote.private, http.MethodGet, "/v1/node/chain/list", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var chain []database.Block
	require.NoError(t, json.NewDecoder(w.Body).Decode(&chain))
	require.Len(t, chain, 2)

	w = do(t, n.private, http.MethodPost, "/v1/node/chain/propose", chain)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, chain[1].Hash, n.state.RetrieveLatestBlock().Hash)

	w = do(t, n.private, http.MethodGet, "/v1/node/block/list/1/latest", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var blocks []database.Block
	require.NoError(t, json.NewDecoder(w.Body).Decode(&blocks))
	require.Len(t, blocks, 1)
	require.Equal(t, uint64(1), blocks[0].Index)

	w = do(t, n.private, http.MethodGet, "/v1/node/block/list/latest/0", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, n.private, http.MethodPost, "/v1/node/peers", peer.New("localhost:9280"))
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, []peer.Peer{{Host: "localhost:9280"}}, n.state.RetrieveKnownPeers())
}

func Test_Debug(t *testing.T) {
	n := newNode(t)

	w := do(t, n.debug, http.MethodGet, "/debug/readiness", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"ok","chain_length":1}`, w.Body.String())

	w = do(t, n.debug, http.MethodGet, "/debug/liveness", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, n.debug, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
}
