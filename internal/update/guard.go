package update

// GuardState is the echo-suppression state.
type GuardState int

const (
	Idle GuardState = iota
	TaskActive
)

func (s GuardState) String() string {
	if s == TaskActive {
		return "TASK_ACTIVE"
	}
	return "IDLE"
}

// Guard is the single-slot "task currently being applied" marker.
//
// Replay moves it to TaskActive for the synchronous extent of one task's
// apply call. Change-event forwarders consult it: an event raised by the
// target that is being written right now carries a value that came from
// the flow side, so it must not be assigned back. Nested replays from
// inside an event handler are not supported.
type Guard struct {
	state  GuardState
	target any
}

// Begin marks target as being written.
func (g *Guard) Begin(target any) {
	g.state = TaskActive
	g.target = target
}

// End returns the guard to Idle.
func (g *Guard) End() {
	g.state = Idle
	g.target = nil
}

// State returns the current state.
func (g *Guard) State() GuardState { return g.state }

// Active returns the target being written, if any.
func (g *Guard) Active() (any, bool) {
	return g.target, g.state == TaskActive
}

// Suppresses reports whether a change event from target must be
// dropped.
func (g *Guard) Suppresses(target any) bool {
	return g.state == TaskActive && g.target == target
}
