package database

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"

	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
)

// CoinbaseAmount is the fixed reward paid to the miner of a block.
const CoinbaseAmount = 50

// =============================================================================

// TxOut represents an amount of value locked to an address. The address is the
// hex encoded public key of the owner.
type TxOut struct {
	Address string `json:"address" validate:"required"`
	Amount  uint64 `json:"amount"`
}

// TxIn references a prior output by transaction id and output position. The
// signature authorizes spending that output as part of the owning transaction.
// A coinbase input carries an empty TxOutID and the block index as TxOutIndex.
type TxIn struct {
	TxOutID    string `json:"tx_out_id"`
	TxOutIndex uint64 `json:"tx_out_index"`
	Signature  string `json:"signature"`
}

// IsCoinbase reports whether the input is a coinbase input, which references
// no prior output.
func (in TxIn) IsCoinbase() bool {
	return in.TxOutID == ""
}

// OutPoint returns the key of the output referenced by this input.
func (in TxIn) OutPoint() OutPoint {
	return OutPoint{TxOutID: in.TxOutID, TxOutIndex: in.TxOutIndex}
}

// Validate resolves the output referenced by the input and verifies the
// signature against the owner's address and the owning transaction's id.
func (in TxIn) Validate(tx Transaction, utxos UTxOSet) error {
	utxo, found := utxos.Find(in.OutPoint())
	if !found {
		return fmt.Errorf("tx[%s]: input[%s]: %w", tx.ID, in.OutPoint(), ErrUTxONotFound)
	}

	if err := signature.Verify(utxo.Address, []byte(tx.ID), in.Signature); err != nil {
		return fmt.Errorf("tx[%s]: input[%s]: %w", tx.ID, in.OutPoint(), err)
	}

	return nil
}

// =============================================================================

// Transaction moves value from a set of unspent outputs to a set of new outputs.
type Transaction struct {
	ID     string  `json:"id"`
	TxIns  []TxIn  `json:"tx_ins"`
	TxOuts []TxOut `json:"tx_outs" validate:"dive"`
}

// NewTransaction constructs a transaction and calculates its id. Signatures
// are added afterwards with SignInput and do not change the id.
func NewTransaction(ins []TxIn, outs []TxOut) Transaction {
	return Transaction{
		ID:     CalculateID(ins, outs),
		TxIns:  ins,
		TxOuts: outs,
	}
}

// NewCoinbase constructs the reward transaction for the block at the
// specified index, paying CoinbaseAmount to the address.
func NewCoinbase(blockIndex uint64, address string) Transaction {
	ins := []TxIn{{TxOutIndex: blockIndex}}
	outs := []TxOut{{Address: address, Amount: CoinbaseAmount}}

	return NewTransaction(ins, outs)
}

// CalculateID returns the digest over each input's output reference and each
// output's address and amount, in list order. Signatures are not included.
//
// The fields are joined without a separator, so ("ab", 12) and ("ab1", 2)
// produce the same preimage. The join is kept as is because ids, and the
// genesis hash with them, must match the chains already mined by other nodes.
func CalculateID(ins []TxIn, outs []TxOut) string {
	var b strings.Builder
	for _, in := range ins {
		b.WriteString(in.TxOutID)
		b.WriteString(strconv.FormatUint(in.TxOutIndex, 10))
	}
	for _, out := range outs {
		b.WriteString(out.Address)
		b.WriteString(strconv.FormatUint(out.Amount, 10))
	}

	return signature.Hash([]byte(b.String()))
}

// IsSelfConsistent checks the stored id matches the recalculated id.
func (tx Transaction) IsSelfConsistent() error {
	if id := CalculateID(tx.TxIns, tx.TxOuts); id != tx.ID {
		return fmt.Errorf("tx[%s]: calculated[%s]: %w", tx.ID, id, ErrInvalidTxID)
	}

	return nil
}

// CheckConservation checks the sum of the referenced outputs equals the sum of
// the transaction outputs. A reference missing from the set contributes 0 and
// an empty list sums to 0. A sum that does not fit in 64 bits is rejected.
func (tx Transaction) CheckConservation(utxos UTxOSet) error {
	var in uint64
	for _, txIn := range tx.TxIns {
		utxo, found := utxos.Find(txIn.OutPoint())
		if !found {
			continue
		}

		var carry uint64
		if in, carry = bits.Add64(in, utxo.Amount, 0); carry != 0 {
			return fmt.Errorf("tx[%s]: inputs: %w", tx.ID, ErrAmountOverflow)
		}
	}

	out, err := tx.TotalOut()
	if err != nil {
		return err
	}

	if in != out {
		return fmt.Errorf("tx[%s]: in[%d] out[%d]: %w", tx.ID, in, out, ErrAmountMismatch)
	}

	return nil
}

// CheckCoinbase checks the transaction is a valid reward transaction for the
// block at the specified index.
func (tx Transaction) CheckCoinbase(blockIndex uint64) error {
	switch {
	case len(tx.TxIns) != 1:
		return fmt.Errorf("tx[%s]: expected one input, got %d: %w", tx.ID, len(tx.TxIns), ErrInvalidCoinbase)
	case !tx.TxIns[0].IsCoinbase():
		return fmt.Errorf("tx[%s]: input references output[%s]: %w", tx.ID, tx.TxIns[0].OutPoint(), ErrInvalidCoinbase)
	case tx.TxIns[0].TxOutIndex != blockIndex:
		return fmt.Errorf("tx[%s]: input index[%d] is not the block height[%d]: %w", tx.ID, tx.TxIns[0].TxOutIndex, blockIndex, ErrInvalidCoinbase)
	case len(tx.TxOuts) != 1:
		return fmt.Errorf("tx[%s]: expected one output, got %d: %w", tx.ID, len(tx.TxOuts), ErrInvalidCoinbase)
	case tx.TxOuts[0].Amount != CoinbaseAmount:
		return fmt.Errorf("tx[%s]: amount[%d] is not the reward[%d]: %w", tx.ID, tx.TxOuts[0].Amount, CoinbaseAmount, ErrInvalidCoinbase)
	}

	return nil
}

// SignInput signs the transaction id on behalf of the input at the specified
// position. The private key must own the referenced output. The transaction
// is not modified, the caller stores the signature in the input.
func (tx Transaction) SignInput(index int, privateKey string, utxos UTxOSet) (string, error) {
	if index < 0 || index >= len(tx.TxIns) {
		return "", fmt.Errorf("tx[%s]: index[%d]: %w", tx.ID, index, ErrInputIndex)
	}

	in := tx.TxIns[index]
	utxo, found := utxos.Find(in.OutPoint())
	if !found {
		return "", fmt.Errorf("tx[%s]: input[%s]: %w", tx.ID, in.OutPoint(), ErrUTxONotFound)
	}

	publicKey, err := signature.PublicKey(privateKey)
	if err != nil {
		return "", err
	}

	// Hex decoding ignores case, so the address comparison does as well.
	if !strings.EqualFold(publicKey, utxo.Address) {
		return "", fmt.Errorf("tx[%s]: input[%s]: %w", tx.ID, in.OutPoint(), ErrNotOwner)
	}

	return signature.Sign(privateKey, []byte(tx.ID))
}

// NewOutputs returns one unspent output per transaction output, tagged with
// the transaction id and the output position.
func (tx Transaction) NewOutputs() []UTxO {
	utxos := make([]UTxO, len(tx.TxOuts))
	for i, out := range tx.TxOuts {
		utxos[i] = UTxO{
			TxOutID:    tx.ID,
			TxOutIndex: uint64(i),
			Address:    out.Address,
			Amount:     out.Amount,
		}
	}

	return utxos
}

// ConsumedOutputs returns the keys removed from the unspent set when the
// transaction is applied. Coinbase inputs consume nothing.
func (tx Transaction) ConsumedOutputs() []OutPoint {
	ops := make([]OutPoint, 0, len(tx.TxIns))
	for _, in := range tx.TxIns {
		if in.IsCoinbase() {
			continue
		}
		ops = append(ops, in.OutPoint())
	}

	return ops
}

// TotalOut returns the sum of the output amounts. A sum that does not fit in
// 64 bits returns ErrAmountOverflow.
func (tx Transaction) TotalOut() (uint64, error) {
	var total, carry uint64
	for _, out := range tx.TxOuts {
		if total, carry = bits.Add64(total, out.Amount, 0); carry != 0 {
			return 0, fmt.Errorf("tx[%s]: outputs: %w", tx.ID, ErrAmountOverflow)
		}
	}

	return total, nil
}

// encode writes the canonical form of the transaction used by block hashing.
func (tx Transaction) encode(b *strings.Builder) {
	b.WriteString(tx.ID)
	for _, in := range tx.TxIns {
		b.WriteString(in.TxOutID)
		b.WriteString(strconv.FormatUint(in.TxOutIndex, 10))
		b.WriteString(in.Signature)
	}
	for _, out := range tx.TxOuts {
		b.WriteString(out.Address)
		b.WriteString(strconv.FormatUint(out.Amount, 10))
	}
}

// String implements the fmt.Stringer interface for logging.
func (tx Transaction) String() string {
	total, err := tx.TotalOut()
	if err != nil {
		return fmt.Sprintf("%s:%d->%d:overflow", tx.ID, len(tx.TxIns), len(tx.TxOuts))
	}

	return fmt.Sprintf("%s:%d->%d:%d", tx.ID, len(tx.TxIns), len(tx.TxOuts), total)
}
