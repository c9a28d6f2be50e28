package workflow

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is one entry in an instance's history: a phase transition with an
// optional human-readable message.
type Event struct {
	Time    time.Time `json:"time"`
	Phase   Phase     `json:"phase"`
	Message string    `json:"message,omitempty"`
}

// Status is a point-in-time snapshot of an instance, safe to serialize while
// the run is still in flight.
type Status struct {
	ID          string     `json:"id"`
	Season      int        `json:"season"`
	Phase       Phase      `json:"phase"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	EndedAt     *time.Time `json:"ended_at,omitempty"`
	ClubCount   int        `json:"club_count"`
	RecordCount int        `json:"record_count"`
	Error       string     `json:"error,omitempty"`
	Events      []Event    `json:"events"`
}

// Instance tracks one ingestion run. All mutation goes through the pipeline;
// readers take snapshots.
type Instance struct {
	id     string
	season int

	mu          sync.Mutex
	phase       Phase
	createdAt   time.Time
	updatedAt   time.Time
	endedAt     *time.Time
	clubCount   int
	recordCount int
	err         string
	events      []Event
}

// NewInstance creates an instance in the started phase for the given season
// with a fresh unique ID.
func NewInstance(season int) *Instance {
	now := time.Now()
	inst := &Instance{
		id:        uuid.NewString(),
		season:    season,
		phase:     PhaseStarted,
		createdAt: now,
		updatedAt: now,
	}
	inst.events = append(inst.events, Event{Time: now, Phase: PhaseStarted})
	return inst
}

// ID returns the instance's unique identifier.
func (i *Instance) ID() string {
	return i.id
}

// Season returns the season the instance ingests.
func (i *Instance) Season() int {
	return i.season
}

// Phase returns the current phase.
func (i *Instance) Phase() Phase {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.phase
}

// Snapshot returns a copy of the instance's current state.
func (i *Instance) Snapshot() Status {
	i.mu.Lock()
	defer i.mu.Unlock()

	events := make([]Event, len(i.events))
	copy(events, i.events)

	return Status{
		ID:          i.id,
		Season:      i.season,
		Phase:       i.phase,
		CreatedAt:   i.createdAt,
		UpdatedAt:   i.updatedAt,
		EndedAt:     i.endedAt,
		ClubCount:   i.clubCount,
		RecordCount: i.recordCount,
		Error:       i.err,
		Events:      events,
	}
}

// transition moves the instance to a new phase and records the event.
func (i *Instance) transition(phase Phase, message string) {
	i.mu.Lock()
	defer i.mu.Unlock()

	now := time.Now()
	i.phase = phase
	i.updatedAt = now
	if phase.Terminal() {
		i.endedAt = &now
	}
	i.events = append(i.events, Event{Time: now, Phase: phase, Message: message})
}

// setCounts records how many clubs were enumerated and records aggregated.
func (i *Instance) setCounts(clubs, records int) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.clubCount = clubs
	i.recordCount = records
}

// fail marks the instance failed with the given error.
func (i *Instance) fail(err error) {
	i.mu.Lock()
	i.err = err.Error()
	i.mu.Unlock()
	i.transition(PhaseFailed, err.Error())
}

// reject marks the instance rejected with the given error.
func (i *Instance) reject(err error) {
	i.mu.Lock()
	i.err = err.Error()
	i.mu.Unlock()
	i.transition(PhaseRejected, err.Error())
}
