package database_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// =============================================================================

func Test_Genesis(t *testing.T) {
	t.Log("Given the need to use the canonical genesis block.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen handling the genesis block.", testID)
		{
			g := database.Genesis()

			if got := g.CalculateHash(); got != g.Hash {
				t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, got)
				t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, g.Hash)
				t.Fatalf("\t%s\tTest %d:\tShould recompute the genesis hash.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould recompute the genesis hash.", success, testID)

			if !database.MeetsDifficulty(g.Hash, g.Difficulty) {
				t.Fatalf("\t%s\tTest %d:\tShould satisfy its own difficulty.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould satisfy its own difficulty.", success, testID)

			if g.Index != 0 || g.PreviousHash != "" || len(g.Data) != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould be index 0 with no parent and no data.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould be index 0 with no parent and no data.", success, testID)
		}
	}
}

func Test_MeetsDifficulty(t *testing.T) {
	type table struct {
		name       string
		hash       string
		difficulty uint
		exp        bool
	}

	tt := []table{
		{name: "zero", hash: "abcd", difficulty: 0, exp: true},
		{name: "match", hash: "000fab", difficulty: 3, exp: true},
		{name: "more", hash: "0000ab", difficulty: 3, exp: true},
		{name: "short", hash: "00afab", difficulty: 3, exp: false},
		{name: "whole", hash: "0000", difficulty: 4, exp: true},
		{name: "beyond", hash: "0000", difficulty: 5, exp: false},
		{name: "empty", hash: "", difficulty: 1, exp: false},
	}

	t.Log("Given the need to check a hash against a difficulty.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen handling hash %q at difficulty %d.", testID, tst.hash, tst.difficulty)
				{
					if got := database.MeetsDifficulty(tst.hash, tst.difficulty); got != tst.exp {
						t.Fatalf("\t%s\tTest %d:\tShould get %v, got %v.", failed, testID, tst.exp, got)
					}
					t.Logf("\t%s\tTest %d:\tShould get %v.", success, testID, tst.exp)
				}
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_MineNext(t *testing.T) {
	t.Log("Given the need to mine a block after genesis.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen mining an empty block at difficulty 4.", testID)
		{
			g := database.Genesis()

			b, err := database.MineNext(context.Background(), g, nil, 4, nil)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to mine the block: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to mine the block.", success, testID)

			if b.Index != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould have index 1, got %d.", failed, testID, b.Index)
			}
			t.Logf("\t%s\tTest %d:\tShould have index 1.", success, testID)

			if b.PreviousHash != g.Hash {
				t.Fatalf("\t%s\tTest %d:\tShould link to the genesis hash.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould link to the genesis hash.", success, testID)

			if b.Hash[:4] != "0000" {
				t.Fatalf("\t%s\tTest %d:\tShould have a hash starting with 0000, got %s.", failed, testID, b.Hash)
			}
			t.Logf("\t%s\tTest %d:\tShould have a hash starting with 0000.", success, testID)

			if got := database.HashOf(b.Index, b.PreviousHash, b.Timestamp, b.Data, b.Difficulty, b.Nonce); got != b.Hash {
				t.Fatalf("\t%s\tTest %d:\tShould recompute the same hash.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould recompute the same hash.", success, testID)

			if err := g.ValidateSuccessor(b); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be a valid successor: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be a valid successor.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen mining is cancelled.", testID)
		{
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := database.MineNext(ctx, database.Genesis(), nil, 64, nil)
			if !errors.Is(err, context.Canceled) {
				t.Fatalf("\t%s\tTest %d:\tShould stop with a cancelled error, got %v.", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould stop with a cancelled error.", success, testID)
		}
	}
}

func Test_ValidateSuccessor(t *testing.T) {
	g := database.Genesis()

	good, err := database.MineNext(context.Background(), g, nil, 1, nil)
	if err != nil {
		t.Fatalf("Should be able to mine a block: %v", err)
	}

	reseal := func(b database.Block) database.Block {
		for b.Nonce = 0; ; b.Nonce++ {
			b.Hash = b.CalculateHash()
			if database.MeetsDifficulty(b.Hash, b.Difficulty) {
				return b
			}
		}
	}

	badIndex := good
	badIndex.Index = 2
	badIndex = reseal(badIndex)

	badPrev := good
	badPrev.PreviousHash = "00ff"
	badPrev = reseal(badPrev)

	badHash := good
	badHash.Nonce++

	lowWork := good
	for lowWork.Hash = lowWork.CalculateHash(); database.MeetsDifficulty(lowWork.Hash, 1); {
		lowWork.Nonce++
		lowWork.Hash = lowWork.CalculateHash()
	}

	stale := good
	stale.Timestamp = g.Timestamp - database.TimestampTolerance - 1
	stale = reseal(stale)

	edge := good
	edge.Timestamp = g.Timestamp - database.TimestampTolerance
	edge = reseal(edge)

	future := good
	future.Timestamp = time.Now().Unix() + 10*database.TimestampTolerance
	future = reseal(future)

	type table struct {
		name  string
		block database.Block
		exp   error
	}

	tt := []table{
		{name: "valid", block: good},
		{name: "edge", block: edge},
		{name: "index", block: badIndex, exp: database.ErrInvalidIndex},
		{name: "previous", block: badPrev, exp: database.ErrInvalidPreviousHash},
		{name: "hash", block: badHash, exp: database.ErrInvalidHash},
		{name: "work", block: lowWork, exp: database.ErrInvalidProofOfWork},
		{name: "stale", block: stale, exp: database.ErrInvalidTimestamp},
		{name: "future", block: future, exp: database.ErrInvalidTimestamp},
	}

	t.Log("Given the need to validate a candidate successor block.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen handling a %s candidate.", testID, tst.name)
				{
					err := g.ValidateSuccessor(tst.block)

					switch tst.exp {
					case nil:
						if err != nil {
							t.Fatalf("\t%s\tTest %d:\tShould accept the block: %v", failed, testID, err)
						}
						t.Logf("\t%s\tTest %d:\tShould accept the block.", success, testID)

					default:
						if !errors.Is(err, tst.exp) {
							t.Logf("\t%s\tTest %d:\tgot: %v", failed, testID, err)
							t.Logf("\t%s\tTest %d:\texp: %v", failed, testID, tst.exp)
							t.Fatalf("\t%s\tTest %d:\tShould reject the block with the expected reason.", failed, testID)
						}
						t.Logf("\t%s\tTest %d:\tShould reject the block with the expected reason.", success, testID)
					}
				}
			}

			t.Run(tst.name, f)
		}
	}
}
