package workflow

import (
	"encoding/json"
	"fmt"
)

// Phase is the stage an ingestion run is in.
type Phase int

const (
	// PhaseStarted indicates the run has been created but no activity has
	// been scheduled yet.
	PhaseStarted Phase = iota
	// PhaseEnumerating indicates the league listing is being enumerated.
	PhaseEnumerating
	// PhaseValidating indicates the enumerated club count is being checked
	// against the cardinality gate.
	PhaseValidating
	// PhaseFanningOut indicates club extractions are in flight.
	PhaseFanningOut
	// PhaseAggregating indicates extraction results are being combined.
	PhaseAggregating
	// PhaseUploading indicates the aggregated batch is being uploaded.
	PhaseUploading
	// PhaseCompleted indicates the batch was uploaded successfully.
	PhaseCompleted
	// PhaseRejected indicates the enumeration failed the cardinality gate.
	PhaseRejected
	// PhaseFailed indicates an activity or the upload failed permanently.
	PhaseFailed
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseStarted:
		return "started"
	case PhaseEnumerating:
		return "enumerating"
	case PhaseValidating:
		return "validating"
	case PhaseFanningOut:
		return "fanning_out"
	case PhaseAggregating:
		return "aggregating"
	case PhaseUploading:
		return "uploading"
	case PhaseCompleted:
		return "completed"
	case PhaseRejected:
		return "rejected"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler.
func (p Phase) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Phase) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for candidate := PhaseStarted; candidate <= PhaseFailed; candidate++ {
		if candidate.String() == name {
			*p = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", name)
}

// Terminal reports whether the phase is a final outcome.
func (p Phase) Terminal() bool {
	return p == PhaseCompleted || p == PhaseRejected || p == PhaseFailed
}
