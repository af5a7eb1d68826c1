package registry

// State is the registration state of one discovered class.
type State int

const (
	StateUnknown State = iota
	StateDiscovered
	StateSynthesizing
	StateRegistered
	StateSkipped
)

func (s State) String() string {
	switch s {
	case StateDiscovered:
		return "discovered"
	case StateSynthesizing:
		return "synthesizing"
	case StateRegistered:
		return "registered"
	case StateSkipped:
		return "skipped"
	}
	return "unknown"
}
