package state

import (
	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/blockchain/peer"
)

// RetrieveHost returns a copy of host information.
func (s *State) RetrieveHost() string {
	return s.host
}

// RetrieveMinerAddress returns the address receiving the coinbase of the
// blocks this node mines.
func (s *State) RetrieveMinerAddress() string {
	return s.minerAddress
}

// RetrieveLatestBlock returns a copy the current latest block.
func (s *State) RetrieveLatestBlock() database.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.chain.Latest()
}

// RetrieveChainLength returns the number of blocks in the chain.
func (s *State) RetrieveChainLength() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.chain.Len()
}

// RetrieveBlocks returns a consistent copy of the whole chain.
func (s *State) RetrieveBlocks() []database.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.chain.Blocks()
}

// RetrieveUTxOSet returns a copy of the unspent output set.
func (s *State) RetrieveUTxOSet() database.UTxOSet {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.utxos.Copy()
}

// RetrievePeerStatus returns the status document this node reports to peers.
func (s *State) RetrievePeerStatus() peer.PeerStatus {
	s.mu.RLock()
	latest := s.chain.Latest()
	length := s.chain.Len()
	s.mu.RUnlock()

	return peer.PeerStatus{
		LatestBlockHash:  latest.Hash,
		LatestBlockIndex: latest.Index,
		ChainLength:      length,
		KnownPeers:       s.RetrieveKnownPeers(),
	}
}

// RetrieveKnownPeers retrieves a copy of the known peer list.
func (s *State) RetrieveKnownPeers() []peer.Peer {
	return s.knownPeers.Copy(s.host)
}

// AddKnownPeer provides the ability to add a new peer to the known peer
// list. It reports whether the peer was new.
func (s *State) AddKnownPeer(pr peer.Peer) bool {
	if pr.Match(s.host) {
		return false
	}

	return s.knownPeers.Add(pr)
}

// RemoveKnownPeer provides the ability to remove a peer from the known
// peer list.
func (s *State) RemoveKnownPeer(pr peer.Peer) {
	s.knownPeers.Remove(pr)
}
