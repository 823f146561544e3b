package worker_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ardanlabs/utxochain/foundation/blockchain/peer"
	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
	"github.com/ardanlabs/utxochain/foundation/blockchain/state"
	"github.com/ardanlabs/utxochain/foundation/blockchain/storage/memory"
	"github.com/ardanlabs/utxochain/foundation/blockchain/worker"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func newState(t *testing.T, knownPeers *peer.PeerSet) *state.State {
	t.Helper()

	_, address, err := signature.GenerateKey()
	if err != nil {
		t.Fatalf("Should be able to generate a key: %v", err)
	}

	st, err := state.New(state.Config{
		MinerAddress: address,
		Host:         "localhost:9080",
		Storage:      memory.New(),
		KnownPeers:   knownPeers,
		AllowMining:  true,
	})
	if err != nil {
		t.Fatalf("Should be able to construct the state: %v", err)
	}

	return st
}

func Test_Mine(t *testing.T) {
	st := newState(t, nil)
	w := worker.Run(st, time.Hour, nil)
	defer st.Shutdown()

	t.Log("Given the need to run mining operations.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen mining after a stale cancel signal.", testID)
		{
			w.SignalCancelMining()

			block, err := w.Mine(context.Background(), nil)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould mine a block: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould mine a block.", success, testID)

			if block.Index != 1 || st.RetrieveChainLength() != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould extend the chain: got %d, len %d", failed, testID, block.Index, st.RetrieveChainLength())
			}
			t.Logf("\t%s\tTest %d:\tShould extend the chain.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the context is cancelled.", testID)
		{
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := w.Mine(ctx, nil)
			if !errors.Is(err, context.Canceled) {
				t.Fatalf("\t%s\tTest %d:\tShould stop mining: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould stop mining.", success, testID)

			if st.RetrieveChainLength() != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould leave the chain untouched.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould leave the chain untouched.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the worker is shut down.", testID)
		{
			w.Shutdown()
			w.Shutdown()

			if _, err := w.Mine(context.Background(), nil); !errors.Is(err, worker.ErrShutdown) {
				t.Fatalf("\t%s\tTest %d:\tShould refuse to mine: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould refuse to mine.", success, testID)
		}
	}
}

func Test_Sync(t *testing.T) {
	remote := newState(t, nil)
	for range 2 {
		if _, err := remote.MineNewBlock(context.Background(), nil); err != nil {
			t.Fatalf("Should be able to mine on the remote: %v", err)
		}
	}

	announced := make(chan string, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/node/status", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(remote.RetrievePeerStatus())
	})
	mux.HandleFunc("GET /v1/node/chain/list", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(remote.RetrieveBlocks())
	})
	mux.HandleFunc("POST /v1/node/peers", func(w http.ResponseWriter, r *http.Request) {
		var pr peer.Peer
		json.NewDecoder(r.Body).Decode(&pr)
		select {
		case announced <- pr.Host:
		default:
		}
		w.WriteHeader(http.StatusNoContent)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	knownPeers := peer.NewPeerSet()
	knownPeers.Add(peer.New(strings.TrimPrefix(srv.URL, "http://")))

	local := newState(t, knownPeers)

	t.Log("Given the need to synchronize with peers.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen a peer holds a longer chain.", testID)
		{
			worker.Run(local, time.Hour, nil)
			defer local.Shutdown()

			if local.RetrieveChainLength() != 3 {
				t.Fatalf("\t%s\tTest %d:\tShould adopt the peer chain: got %d", failed, testID, local.RetrieveChainLength())
			}
			t.Logf("\t%s\tTest %d:\tShould adopt the peer chain.", success, testID)

			if local.RetrieveLatestBlock().Hash != remote.RetrieveLatestBlock().Hash {
				t.Fatalf("\t%s\tTest %d:\tShould end at the peer's latest block.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould end at the peer's latest block.", success, testID)

			select {
			case host := <-announced:
				if host != "localhost:9080" {
					t.Fatalf("\t%s\tTest %d:\tShould announce this node: got %q", failed, testID, host)
				}
			default:
				t.Fatalf("\t%s\tTest %d:\tShould announce this node.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould announce this node.", success, testID)
		}
	}
}
