package logger_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/utxochain/foundation/logger"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_New(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node.log")

	t.Log("Given the need to construct a service logger.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen writing a structured entry.", testID)
		{
			log, err := logger.New("NODE", path)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould construct the logger: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould construct the logger.", success, testID)

			log.Infow("startup", "status", "testing")
			log.Sync()

			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould read the log file: %v", failed, testID, err)
			}

			var entry map[string]any
			if err := json.Unmarshal(data, &entry); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould write json: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould write json.", success, testID)

			if entry["service"] != "NODE" || entry["status"] != "testing" {
				t.Fatalf("\t%s\tTest %d:\tShould carry the service field: %v", failed, testID, entry)
			}
			t.Logf("\t%s\tTest %d:\tShould carry the service field.", success, testID)
		}
	}
}
