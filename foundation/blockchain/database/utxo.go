package database

import (
	"fmt"
	"sort"
)

// OutPoint is the key of an output: the id of the transaction that created
// it and its position in that transaction's output list.
type OutPoint struct {
	TxOutID    string `json:"tx_out_id"`
	TxOutIndex uint64 `json:"tx_out_index"`
}

// String implements the fmt.Stringer interface for logging.
func (op OutPoint) String() string {
	return fmt.Sprintf("%s:%d", op.TxOutID, op.TxOutIndex)
}

// UTxO is a currently spendable output.
type UTxO struct {
	TxOutID    string `json:"tx_out_id"`
	TxOutIndex uint64 `json:"tx_out_index"`
	Address    string `json:"address"`
	Amount     uint64 `json:"amount"`
}

// OutPoint returns the key of the unspent output.
func (u UTxO) OutPoint() OutPoint {
	return OutPoint{TxOutID: u.TxOutID, TxOutIndex: u.TxOutIndex}
}

// =============================================================================

// UTxOSet is the set of spendable outputs keyed by their out point. A value
// is never mutated in place once shared, Apply returns a new set.
type UTxOSet map[OutPoint]UTxO

// NewUTxOSet constructs a set from a list of unspent outputs.
func NewUTxOSet(utxos ...UTxO) UTxOSet {
	set := make(UTxOSet, len(utxos))
	for _, u := range utxos {
		set[u.OutPoint()] = u
	}

	return set
}

// Find returns the unspent output for the specified key.
func (s UTxOSet) Find(op OutPoint) (UTxO, bool) {
	u, found := s[op]
	return u, found
}

// Copy returns an independent copy of the set.
func (s UTxOSet) Copy() UTxOSet {
	cp := make(UTxOSet, len(s))
	for k, v := range s {
		cp[k] = v
	}

	return cp
}

// Apply returns a new set with the consumed outputs of every transaction
// removed and their new outputs added. The receiver is left untouched.
func (s UTxOSet) Apply(trans ...Transaction) UTxOSet {
	next := s.Copy()
	for _, tx := range trans {
		for _, op := range tx.ConsumedOutputs() {
			delete(next, op)
		}
		for _, u := range tx.NewOutputs() {
			next[u.OutPoint()] = u
		}
	}

	return next
}

// ForAddress returns the unspent outputs owned by the address, sorted by
// transaction id and position so callers see a stable order.
func (s UTxOSet) ForAddress(address string) []UTxO {
	var utxos []UTxO
	for _, u := range s {
		if u.Address == address {
			utxos = append(utxos, u)
		}
	}

	sort.Slice(utxos, func(i, j int) bool {
		if utxos[i].TxOutID != utxos[j].TxOutID {
			return utxos[i].TxOutID < utxos[j].TxOutID
		}
		return utxos[i].TxOutIndex < utxos[j].TxOutIndex
	})

	return utxos
}

// Balance returns the total amount owned by the address.
func (s UTxOSet) Balance(address string) uint64 {
	var total uint64
	for _, u := range s {
		if u.Address == address {
			total += u.Amount
		}
	}

	return total
}
