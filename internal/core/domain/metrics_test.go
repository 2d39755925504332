package domain

import (
	"sync"
	"testing"
)

func TestTrackerRecordsPerFileFacts(t *testing.T) {
	tr := NewTracker(true, true)

	tr.BeginFile("a.html")
	tr.EndFile("a.html")
	tr.RecordSizes("a.html", 200, 50)
	tr.RecordError("b.html", "boom")
	tr.RecordError("b.html", "boom again")
	tr.AddAttempts(3)

	snap := tr.Snapshot()
	if snap.Attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", snap.Attempts)
	}
	tm, ok := snap.Timings["a.html"]
	if !ok || tm.Start.IsZero() || tm.End.IsZero() {
		t.Fatalf("expected completed timing for a.html, got %+v", tm)
	}
	sz, ok := snap.Sizes["a.html"]
	if !ok || sz.InputBytes != 200 || sz.OutputBytes != 50 {
		t.Fatalf("unexpected size record: %+v", sz)
	}
	if sz.Ratio != 0.25 {
		t.Fatalf("expected ratio 0.25, got %v", sz.Ratio)
	}
	if snap.Errors["b.html"] != "boom again" {
		t.Fatalf("expected last error to win, got %q", snap.Errors["b.html"])
	}
}

func TestTrackerCoercesNegativeSizes(t *testing.T) {
	tr := NewTracker(true, true)
	tr.RecordSizes("x", -5, -7)
	sz := tr.Snapshot().Sizes["x"]
	if sz.InputBytes != 0 || sz.OutputBytes != 0 || sz.Ratio != 0 {
		t.Fatalf("expected zeroed record, got %+v", sz)
	}
}

func TestTrackerZeroInputHasNoRatio(t *testing.T) {
	tr := NewTracker(true, true)
	tr.RecordSizes("x", 0, 42)
	if ratio := tr.Snapshot().Sizes["x"].Ratio; ratio != 0 {
		t.Fatalf("expected ratio 0 for zero input, got %v", ratio)
	}
}

func TestTrackerOutcomeOwnsCounters(t *testing.T) {
	tr := NewTracker(true, true)
	tr.RecordOutcome(ConversionOutcome{Success: true})
	tr.RecordOutcome(ConversionOutcome{Success: true})
	tr.RecordOutcome(ConversionOutcome{Success: false})

	snap := tr.Snapshot()
	if snap.Succeeded != 2 || snap.Failed != 1 {
		t.Fatalf("expected 2/1 counters, got %d/%d", snap.Succeeded, snap.Failed)
	}
}

func TestTrackerDisabledTracking(t *testing.T) {
	tr := NewTracker(false, false)
	tr.BeginFile("a")
	tr.EndFile("a")
	tr.RecordSizes("a", 10, 5)

	snap := tr.Snapshot()
	if len(snap.Timings) != 0 || len(snap.Sizes) != 0 {
		t.Fatalf("expected no recordings when disabled, got %+v", snap)
	}
}

func TestTrackerConcurrentUse(t *testing.T) {
	tr := NewTracker(true, true)
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.AddAttempts(1)
			tr.RecordOutcome(ConversionOutcome{Success: true})
		}()
	}
	wg.Wait()

	snap := tr.Snapshot()
	if snap.Attempts != 32 || snap.Succeeded != 32 {
		t.Fatalf("expected 32/32, got %d/%d", snap.Attempts, snap.Succeeded)
	}
}
