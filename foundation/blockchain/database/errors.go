package database

import "errors"

// Consensus violations reported while validating blocks and chains.
var (
	ErrInvalidIndex        = errors.New("invalid index")
	ErrInvalidPreviousHash = errors.New("invalid previous hash")
	ErrInvalidHash         = errors.New("invalid hash")
	ErrInvalidProofOfWork  = errors.New("hash does not satisfy difficulty")
	ErrInvalidTimestamp    = errors.New("invalid timestamp")
	ErrInvalidGenesis      = errors.New("invalid genesis block")
	ErrInvalidDifficulty   = errors.New("invalid difficulty")
	ErrChainRejected       = errors.New("chain rejected")
)

// Value integrity violations reported while validating transactions.
var (
	ErrInvalidTxID     = errors.New("invalid transaction id")
	ErrAmountMismatch  = errors.New("total values of inputs and outputs do not match")
	ErrAmountOverflow  = errors.New("total value exceeds the amount range")
	ErrInvalidCoinbase = errors.New("invalid coinbase transaction")
	ErrUTxONotFound    = errors.New("referenced output not found")
	ErrNotOwner        = errors.New("private key does not own the referenced output")
	ErrDoubleSpend     = errors.New("output spent more than once")
	ErrInputIndex      = errors.New("input index out of range")
)
