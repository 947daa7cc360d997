package dispatch

import "testing"

func TestModeString(t *testing.T) {
	if ModeQueued.String() != "queued" {
		t.Fatalf("ModeQueued = %q", ModeQueued.String())
	}
	if ModeDegraded.String() != "degraded" {
		t.Fatalf("ModeDegraded = %q", ModeDegraded.String())
	}
}

func TestDegradeIsOneWay(t *testing.T) {
	state := &modeState{}
	if state.Current() != ModeQueued {
		t.Fatalf("initial mode should be queued")
	}

	if !state.Degrade() {
		t.Fatalf("first degrade should perform the transition")
	}
	if state.Degrade() {
		t.Fatalf("second degrade should be a no-op")
	}
	if state.Current() != ModeDegraded {
		t.Fatalf("mode should stay degraded")
	}
}
