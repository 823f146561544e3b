// Package database holds the core ledger model: transactions and their
// unspent outputs, proof of work blocks and the chain with its consensus
// rules. It also defines the behavior required from packages that persist
// the chain.
package database

import "errors"

// ErrBlockNotFound is returned by storage when a block index does not exist.
var ErrBlockNotFound = errors.New("block not found")

// Storage interface represents the behavior required to be implemented by any
// package providing support for storing and reading the blockchain.
type Storage interface {
	Write(block Block) error
	GetBlock(index uint64) (Block, error)
	ForEach() Iterator
	Replace(blocks []Block) error
	Close() error
}

// Iterator interface represents the behavior required to be implemented by any
// package providing support to iterate over the blocks.
type Iterator interface {
	Next() (Block, error)
	Done() bool
}

// LoadBlocks reads every stored block in index order.
func LoadBlocks(storage Storage) ([]Block, error) {
	var blocks []Block

	iter := storage.ForEach()
	for !iter.Done() {
		block, err := iter.Next()
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}

	return blocks, nil
}
