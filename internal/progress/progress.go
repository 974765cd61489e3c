// Package progress defines the structured event stream the engine
// emits while a track moves through the analysis pipeline.
package progress

// Phase names one pipeline stage. A job's progress field is the
// fraction of stages completed, not a fine-grained per-stage percentage.
type Phase string

const (
	PhaseDecoding  Phase = "DECODING"
	PhaseRhythm    Phase = "RHYTHM"
	PhaseTonal     Phase = "TONAL"
	PhaseLoudness  Phase = "LOUDNESS"
	PhaseStructure Phase = "STRUCTURE"
	PhaseCues      Phase = "CUES"
	PhaseDone      Phase = "DONE"
	PhaseFailed    Phase = "FAILED"
)

// stageOrder gives each phase its position for the progress
// percentage; PhaseDone/PhaseFailed are terminal and not indexed.
var stageOrder = []Phase{PhaseDecoding, PhaseRhythm, PhaseTonal, PhaseLoudness, PhaseStructure, PhaseCues}

// Event is one point in a job's progress stream.
type Event struct {
	JobID    string `json:"job_id"`
	Phase    Phase  `json:"phase"`
	Progress int    `json:"progress"`
	Message  string `json:"message,omitempty"`
}

// Reporter publishes Events for a single job to a channel, computing
// Progress from the phase's position in stageOrder.
type Reporter struct {
	jobID string
	ch    chan<- Event
}

// NewReporter returns a Reporter that writes to ch. The caller owns
// ch and is responsible for closing it once the job reaches a
// terminal phase.
func NewReporter(jobID string, ch chan<- Event) *Reporter {
	return &Reporter{jobID: jobID, ch: ch}
}

// Report emits an event for phase with an optional message.
func (r *Reporter) Report(phase Phase, message string) {
	r.ch <- Event{JobID: r.jobID, Phase: phase, Progress: percentFor(phase), Message: message}
}

// Done emits a terminal 100% DONE event.
func (r *Reporter) Done(message string) {
	r.ch <- Event{JobID: r.jobID, Phase: PhaseDone, Progress: 100, Message: message}
}

// Failed emits a terminal FAILED event. Progress freezes at whatever
// the last attempted phase reached, since the job never completed it.
func (r *Reporter) Failed(lastPhase Phase, message string) {
	r.ch <- Event{JobID: r.jobID, Phase: PhaseFailed, Progress: percentFor(lastPhase), Message: message}
}

func percentFor(phase Phase) int {
	for i, p := range stageOrder {
		if p == phase {
			return int(float64(i+1) / float64(len(stageOrder)) * 100)
		}
	}
	return 0
}
