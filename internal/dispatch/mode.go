package dispatch

import "sync/atomic"

// Mode is the dispatcher's execution state.
type Mode int32

const (
	// ModeQueued pushes submissions onto the durable task queue.
	ModeQueued Mode = iota
	// ModeDegraded executes every submission synchronously in the
	// caller's context. One-way for the lifetime of the process.
	ModeDegraded
)

func (m Mode) String() string {
	if m == ModeDegraded {
		return "degraded"
	}
	return "queued"
}

// modeState is the atomically-read Enabled/Degraded flag workers consult
// before choosing queued vs inline execution. The transition is
// compare-and-set so exactly one caller observes the flip.
type modeState struct {
	v atomic.Int32
}

func (s *modeState) Current() Mode {
	return Mode(s.v.Load())
}

// Degrade flips to ModeDegraded. Returns true for the caller that
// performed the transition; there is no way back without a restart.
func (s *modeState) Degrade() bool {
	return s.v.CompareAndSwap(int32(ModeQueued), int32(ModeDegraded))
}
