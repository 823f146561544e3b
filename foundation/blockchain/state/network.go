package state

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/blockchain/peer"
)

const baseURL = "http://%s/v1/node"

// netTimeout bounds every request made to a peer.
const netTimeout = 10 * time.Second

// NetRequestPeerStatus asks the peer for its chain status and its known peers.
func (s *State) NetRequestPeerStatus(ctx context.Context, pr peer.Peer) (peer.PeerStatus, error) {
	s.evHandler("state: NetRequestPeerStatus: started: %s", pr.Host)
	defer s.evHandler("state: NetRequestPeerStatus: completed: %s", pr.Host)

	url := fmt.Sprintf("%s/status", fmt.Sprintf(baseURL, pr.Host))

	var ps peer.PeerStatus
	if err := send(ctx, http.MethodGet, url, nil, &ps); err != nil {
		return peer.PeerStatus{}, err
	}

	s.evHandler("state: NetRequestPeerStatus: peer-node[%s]: chain-length[%d]: latest-blk[%d]: peer-list[%v]", pr.Host, ps.ChainLength, ps.LatestBlockIndex, ps.KnownPeers)

	return ps, nil
}

// NetRequestPeerChain retrieves the whole chain of the peer.
func (s *State) NetRequestPeerChain(ctx context.Context, pr peer.Peer) ([]database.Block, error) {
	s.evHandler("state: NetRequestPeerChain: started: %s", pr.Host)
	defer s.evHandler("state: NetRequestPeerChain: completed: %s", pr.Host)

	url := fmt.Sprintf("%s/chain/list", fmt.Sprintf(baseURL, pr.Host))

	var blocks []database.Block
	if err := send(ctx, http.MethodGet, url, nil, &blocks); err != nil {
		return nil, err
	}

	s.evHandler("state: NetRequestPeerChain: found blocks[%d]", len(blocks))

	return blocks, nil
}

// NetSendChainToPeers proposes the local chain to every known peer. A failed
// peer is reported and skipped.
func (s *State) NetSendChainToPeers(ctx context.Context) {
	s.evHandler("state: NetSendChainToPeers: started")
	defer s.evHandler("state: NetSendChainToPeers: completed")

	blocks := s.RetrieveBlocks()

	for _, pr := range s.RetrieveKnownPeers() {
		url := fmt.Sprintf("%s/chain/propose", fmt.Sprintf(baseURL, pr.Host))

		if err := send(ctx, http.MethodPost, url, blocks, nil); err != nil {
			s.evHandler("state: NetSendChainToPeers: WARNING: %s: %s", pr.Host, err)
			continue
		}

		s.evHandler("state: NetSendChainToPeers: sent to peer[%s]", pr.Host)
	}
}

// NetRequestAddPeer lets the peer know this node is available.
func (s *State) NetRequestAddPeer(ctx context.Context, pr peer.Peer) error {
	s.evHandler("state: NetRequestAddPeer: started: %s", pr.Host)
	defer s.evHandler("state: NetRequestAddPeer: completed: %s", pr.Host)

	url := fmt.Sprintf("%s/peers", fmt.Sprintf(baseURL, pr.Host))

	return send(ctx, http.MethodPost, url, peer.New(s.host), nil)
}

// =============================================================================

// send is a helper function to send an HTTP request to a node.
func send(ctx context.Context, method string, url string, dataSend any, dataRecv any) error {
	ctx, cancel := context.WithTimeout(ctx, netTimeout)
	defer cancel()

	var body io.Reader
	if dataSend != nil {
		data, err := json.Marshal(dataSend)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if resp.StatusCode != http.StatusOK {
		msg, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		return errors.New(string(msg))
	}

	if dataRecv != nil {
		if err := json.NewDecoder(resp.Body).Decode(dataRecv); err != nil {
			return err
		}
	}

	return nil
}
