package events_test

import (
	"testing"

	"github.com/ardanlabs/utxochain/foundation/events"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Events(t *testing.T) {
	evts := events.New()

	t.Log("Given the need to fan out node events.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen two listeners are registered.", testID)
		{
			a := evts.Acquire("a")
			b := evts.Acquire("b")

			if evts.Acquire("a") != a {
				t.Fatalf("\t%s\tTest %d:\tShould reuse the channel for a known id.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould reuse the channel for a known id.", success, testID)

			evts.Send("worker: Mine: MINING: started")

			if <-a != "worker: Mine: MINING: started" || <-b != "worker: Mine: MINING: started" {
				t.Fatalf("\t%s\tTest %d:\tShould deliver to every listener.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould deliver to every listener.", success, testID)

			if err := evts.Release("a"); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould release a listener: %v", failed, testID, err)
			}
			if _, open := <-a; open {
				t.Fatalf("\t%s\tTest %d:\tShould close a released channel.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould close a released channel.", success, testID)

			if err := evts.Release("a"); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould fail to release twice.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould fail to release twice.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen a listener falls behind.", testID)
		{
			c := evts.Acquire("c")
			for range 150 {
				evts.Send("event")
			}

			if len(c) != 100 {
				t.Fatalf("\t%s\tTest %d:\tShould drop events past the buffer: got %d", failed, testID, len(c))
			}
			t.Logf("\t%s\tTest %d:\tShould drop events past the buffer.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen shutting down.", testID)
		{
			evts.Shutdown()

			if evts.Len() != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould remove every listener.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould remove every listener.", success, testID)
		}
	}
}
