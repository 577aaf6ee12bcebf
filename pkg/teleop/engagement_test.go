package teleop

import "testing"

func TestEngagement_RisingEdgeOnly(t *testing.T) {
	var e Engagement
	grips := []bool{false, true, true, false}

	var toMimic, toIdle int
	prev := e.State()
	for _, grip := range grips {
		state := e.Update(grip)
		if prev == Idle && state == Mimicking {
			toMimic++
		}
		if prev == Mimicking && state == Idle {
			toIdle++
		}
		prev = state
	}

	if toMimic != 1 {
		t.Errorf("Idle→Mimicking transitions: got %d, want 1", toMimic)
	}
	if toIdle != 1 {
		t.Errorf("Mimicking→Idle transitions: got %d, want 1", toIdle)
	}
}

func TestEngagement_HeldGripStaysEngaged(t *testing.T) {
	var e Engagement
	e.Update(true)
	for i := 0; i < 10; i++ {
		if state := e.Update(true); state != Mimicking {
			t.Fatalf("tick %d: got %v, want Mimicking", i, state)
		}
	}
}

func TestEngagement_ReleaseAlwaysDisengages(t *testing.T) {
	var e Engagement
	e.Update(true)
	if state := e.Update(false); state != Idle {
		t.Fatalf("got %v, want Idle after release", state)
	}
	// A fresh rising edge re-engages.
	if state := e.Update(true); state != Mimicking {
		t.Fatalf("got %v, want Mimicking after re-grip", state)
	}
}
