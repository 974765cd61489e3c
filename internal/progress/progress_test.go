package progress

import "testing"

func TestReportComputesIncreasingPercentPerStage(t *testing.T) {
	ch := make(chan Event, 16)
	r := NewReporter("job-1", ch)

	r.Report(PhaseDecoding, "decoding")
	r.Report(PhaseRhythm, "rhythm")
	r.Report(PhaseCues, "cues")
	close(ch)

	var events []Event
	for e := range ch {
		events = append(events, e)
	}

	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	if events[0].Progress >= events[1].Progress || events[1].Progress >= events[2].Progress {
		t.Errorf("progress not monotonically increasing: %+v", events)
	}
	for _, e := range events {
		if e.JobID != "job-1" {
			t.Errorf("JobID = %q, want job-1", e.JobID)
		}
	}
}

func TestDoneReportsFullProgress(t *testing.T) {
	ch := make(chan Event, 1)
	r := NewReporter("job-2", ch)
	r.Done("complete")
	e := <-ch
	if e.Phase != PhaseDone || e.Progress != 100 {
		t.Errorf("Done event = %+v, want {Phase: DONE, Progress: 100}", e)
	}
}

func TestFailedFreezesAtLastPhase(t *testing.T) {
	ch := make(chan Event, 1)
	r := NewReporter("job-3", ch)
	r.Failed(PhaseTonal, "analysis blew up")
	e := <-ch
	if e.Phase != PhaseFailed {
		t.Errorf("Phase = %q, want FAILED", e.Phase)
	}
	if e.Progress != percentFor(PhaseTonal) {
		t.Errorf("Progress = %d, want %d", e.Progress, percentFor(PhaseTonal))
	}
}
