// Package peer maintains the set of known nodes and the status document
// nodes exchange to decide whether to fetch each other's chain.
package peer

import (
	"sort"
	"strings"
	"sync"
)

// Peer represents a node in the network reachable at a host.
type Peer struct {
	Host string `json:"host" validate:"required,hostname_port"`
}

// New constructs a peer for the host.
func New(host string) Peer {
	return Peer{
		Host: strings.TrimSpace(host),
	}
}

// Match validates if the specified host matches this node.
func (p Peer) Match(host string) bool {
	return p.Host == host
}

// =============================================================================

// PeerStatus is what a node reports about its chain and its known peers.
type PeerStatus struct {
	LatestBlockHash  string `json:"latest_block_hash"`
	LatestBlockIndex uint64 `json:"latest_block_index"`
	ChainLength      int    `json:"chain_length"`
	KnownPeers       []Peer `json:"known_peers"`
}

// Longer reports whether the peer's chain has more blocks than the
// specified length. Only a strictly longer chain can replace ours.
func (ps PeerStatus) Longer(length int) bool {
	return ps.ChainLength > length
}

// =============================================================================

// PeerSet represents the data representation to maintain a set of known peers.
type PeerSet struct {
	mu  sync.RWMutex
	set map[Peer]struct{}
}

// NewPeerSet constructs a new set to manage node peer information.
func NewPeerSet() *PeerSet {
	return &PeerSet{
		set: make(map[Peer]struct{}),
	}
}

// Add adds a new node to the set. It reports whether the peer was new.
func (ps *PeerSet) Add(peer Peer) bool {
	if peer.Host == "" {
		return false
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	if _, exists := ps.set[peer]; exists {
		return false
	}
	ps.set[peer] = struct{}{}

	return true
}

// Remove removes a node from the set.
func (ps *PeerSet) Remove(peer Peer) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	delete(ps.set, peer)
}

// Copy returns the known peers other than the specified host, sorted by host.
func (ps *PeerSet) Copy(host string) []Peer {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	peers := make([]Peer, 0, len(ps.set))
	for peer := range ps.set {
		if !peer.Match(host) {
			peers = append(peers, peer)
		}
	}

	sort.Slice(peers, func(i, j int) bool { return peers[i].Host < peers[j].Host })

	return peers
}
