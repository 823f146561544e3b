// Package nameservice reads a folder of key files and creates a name
// service lookup from address to the key file name.
package nameservice

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/ardanlabs/utxochain/foundation/blockchain/wallet"
)

// NameService maintains a map of addresses for name lookup.
type NameService struct {
	names map[string]string
}

// New constructs a name service with the addresses of the key files found
// under the root folder.
func New(root string) (*NameService, error) {
	ns := NameService{
		names: make(map[string]string),
	}

	fn := func(fileName string, info fs.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("walkdir failure: %w", err)
		}

		if path.Ext(fileName) != ".ecdsa" {
			return nil
		}

		address, err := wallet.PublicKey(fileName)
		if err != nil {
			return err
		}

		ns.names[address] = strings.TrimSuffix(path.Base(fileName), ".ecdsa")

		return nil
	}

	if err := filepath.Walk(root, fn); err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return &ns, nil
}

// Lookup returns the name for the specified address. An unknown address is
// returned as is.
func (ns *NameService) Lookup(address string) string {
	name, exists := ns.names[address]
	if !exists {
		return address
	}
	return name
}

// Copy returns a copy of the map of addresses and names.
func (ns *NameService) Copy() map[string]string {
	cpy := make(map[string]string, len(ns.names))
	for address, name := range ns.names {
		cpy[address] = name
	}
	return cpy
}
