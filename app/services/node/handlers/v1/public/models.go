package public

import "github.com/ardanlabs/utxochain/foundation/blockchain/database"

type balance struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Balance uint64 `json:"balance"`
}

type utxo struct {
	TxOutID    string `json:"tx_out_id"`
	TxOutIndex uint64 `json:"tx_out_index"`
	Address    string `json:"address"`
	Name       string `json:"name"`
	Amount     uint64 `json:"amount"`
}

type utxoInfo struct {
	LatestBlock string `json:"latest_block"`
	UTxOs       []utxo `json:"utxos"`
}

// MineRequest is the payload for mining a block carrying the transactions.
type MineRequest struct {
	Transactions []database.Transaction `json:"transactions" validate:"dive"`
}

type mined struct {
	Block      database.Block `json:"block"`
	MinerName  string         `json:"miner_name"`
	Difficulty uint           `json:"difficulty"`
}

type peerAdded struct {
	Host  string `json:"host"`
	Added bool   `json:"added"`
}
