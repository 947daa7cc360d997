package domain

import "time"

// SlaPolicy defines response/resolution targets for one (team, priority)
// pair. TeamID nil marks a platform-default policy used by teams without
// an explicit one. Hours are wall-clock unless BusinessHoursOnly is set.
type SlaPolicy struct {
	ID                 string
	TeamID             *string
	Priority           TicketPriority
	FirstResponseHours float64
	ResolutionHours    float64
	BusinessHoursOnly  bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// DaySchedule is the working window for one weekday. Start and End are
// minutes-of-day in the schedule's timezone ("09:00" parses to 540).
type DaySchedule struct {
	Enabled bool   `json:"enabled"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

// BusinessHoursSchedule is the global working-time calendar. Days is
// indexed Monday=0 through Sunday=6. Holidays hold "YYYY-MM-DD" dates in
// the schedule timezone. The SLA clock always reads the version in effect
// at computation time; already-materialized due dates are not recomputed
// when the schedule is edited.
type BusinessHoursSchedule struct {
	Timezone  string         `json:"timezone"`
	Days      [7]DaySchedule `json:"days"`
	Holidays  []string       `json:"holidays"`
	UpdatedAt time.Time      `json:"-"`
}

// SubClock names one of the two independently tracked SLA timers.
type SubClock string

const (
	SubClockFirstResponse SubClock = "first_response"
	SubClockResolution    SubClock = "resolution"
)

// ThresholdKind distinguishes at-risk warnings from breaches.
type ThresholdKind string

const (
	ThresholdAtRisk   ThresholdKind = "at_risk"
	ThresholdBreached ThresholdKind = "breached"
)

// SlaInstance is the per-ticket derived SLA state. The four *NotifiedAt
// markers are set once and never cleared, which is what guarantees at most
// one signal per (ticket, kind, sub-clock) for the instance's lifetime.
type SlaInstance struct {
	TicketID                      string
	FirstResponseDueAt            time.Time
	FirstResponseAt               *time.Time
	ResolutionDueAt               time.Time
	CompletedAt                   *time.Time
	SlaPausedAt                   *time.Time
	PausedDurationMs              int64
	FirstResponseAtRiskNotifiedAt *time.Time
	ResolutionAtRiskNotifiedAt    *time.Time
	FirstResponseBreachNotifiedAt *time.Time
	ResolutionBreachNotifiedAt    *time.Time
	CreatedAt                     time.Time
	UpdatedAt                     time.Time
}

// FirstResponseMet reports whether the first-response sub-clock is met.
func (i *SlaInstance) FirstResponseMet() bool {
	return i.FirstResponseAt != nil
}

// ResolutionMet reports whether the resolution sub-clock is met.
func (i *SlaInstance) ResolutionMet() bool {
	return i.CompletedAt != nil
}

// Paused reports whether the resolution clock is currently paused.
func (i *SlaInstance) Paused() bool {
	return i.SlaPausedAt != nil
}
