// Package testing provides an in-memory client and a session tester for
// patchwork.
//
// # Quick Start
//
// Create a tester, mount a root, and make assertions against what the
// client received:
//
//	func TestCounter(t *testing.T) {
//	    tester := pwtest.NewTesterWithT(t)
//	    tester.Mount(core.New(Counter, CounterProps{Start: 1}))
//
//	    if !tester.Find(pwtest.ByProp("value", "1")).Exists() {
//	        t.Fatal("expected count 1")
//	    }
//
//	    tester.Trigger(pwtest.ByKind("Button"), "onClick")
//	    tester.Pump()
//	}
//
// # Client Trees
//
// ClientTree applies add, remove and set commands exactly as a client would.
// Compare it with the server tree using Shape and ShapeOf:
//
//	if diff := cmp.Diff(pwtest.ShapeOf(root), client.Roots()[0].Shape()); diff != "" {
//	    t.Errorf("client out of sync (-server +client):\n%s", diff)
//	}
//
// # Snapshot Testing
//
// Capture and compare client tree snapshots:
//
//	tester.Client().CaptureSnapshot().MatchesFile(t, "testdata/counter.json")
//
// Update snapshots with:
//
//	PATCHWORK_UPDATE_SNAPSHOTS=1 go test ./...
//
// # Import Alias
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import pwtest "github.com/go-drift/patchwork/pkg/testing"
package testing
