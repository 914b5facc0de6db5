// SPDX-License-Identifier: MIT
package render

import "testing"

func TestTransitionLifecycle(t *testing.T) {
	var tr Transition
	if tr.Active() {
		t.Fatal("zero-value transition should be inactive")
	}

	tr.Begin(ModeBars, ModeCircular)
	if !tr.Active() {
		t.Fatal("transition should be active after Begin")
	}
	if tr.From() != ModeBars || tr.To() != ModeCircular {
		t.Fatalf("unexpected endpoints: %s -> %s", tr.From(), tr.To())
	}

	prev := tr.Progress()
	steps := 0
	for tr.Active() {
		tr.Step()
		if tr.Progress() < prev {
			t.Fatal("progress must be monotonic")
		}
		prev = tr.Progress()
		steps++
		if steps > 100 {
			t.Fatal("transition never completed")
		}
	}

	if steps != 20 {
		t.Fatalf("expected 20 steps to complete, got %d", steps)
	}
	if tr.Progress() != 1 {
		t.Fatalf("completed transition should clamp at 1, got %f", tr.Progress())
	}
}

func TestTransitionRetarget(t *testing.T) {
	var tr Transition
	tr.Begin(ModeBars, ModeCircular)
	for i := 0; i < 10; i++ {
		tr.Step()
	}

	// Retargeting to the mode already being blended to changes nothing.
	tr.Begin(ModeCircular, ModeCircular)
	if tr.Progress() != 0.5 {
		t.Fatalf("same-target Begin should not reset, progress=%f", tr.Progress())
	}

	// A new target restarts the blend from the currently rendered mode.
	tr.Begin(ModeCircular, ModeParticles)
	if tr.Progress() != 0 {
		t.Fatal("retarget should restart progress")
	}
	if tr.From() != ModeCircular || tr.To() != ModeParticles {
		t.Fatalf("unexpected endpoints after retarget: %s -> %s", tr.From(), tr.To())
	}
}

func TestTransitionCancel(t *testing.T) {
	var tr Transition
	tr.Begin(ModeBars, ModeWaveform)
	tr.Step()
	tr.Cancel()
	if tr.Active() {
		t.Fatal("canceled transition should be inactive")
	}
	if tr.Progress() != 0 {
		t.Fatal("canceled transition should reset progress")
	}
}

func TestTransitionStepWhenIdle(t *testing.T) {
	var tr Transition
	tr.Step()
	if tr.Active() || tr.Progress() != 0 {
		t.Fatal("stepping an idle transition must be a no-op")
	}
}
