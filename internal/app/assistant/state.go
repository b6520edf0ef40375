package assistant

// State is a pipeline stage. A run moves forward through the states and
// always ends in StateDone.
type State int

const (
	StateIdle State = iota
	StateRequesting
	StateDetecting
	StateExtracting
	StateValidating
	StateRecovering
	StateFallingBack
	StateDone
)

var stateNames = [...]string{
	StateIdle:        "idle",
	StateRequesting:  "requesting",
	StateDetecting:   "detecting",
	StateExtracting:  "extracting",
	StateValidating:  "validating",
	StateRecovering:  "recovering",
	StateFallingBack: "falling_back",
	StateDone:        "done",
}

// String implements fmt.Stringer.
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}
