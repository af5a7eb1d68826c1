package polyskema

// UnknownPolicy controls how unknown keys are handled.
type UnknownPolicy int

const (
	UnknownStrict      UnknownPolicy = iota // Reject unknown keys with an error.
	UnknownStrip                            // Drop unknown keys.
	UnknownPassthrough                      // Preserve unknown keys.
)

// String returns the config spelling of the policy ("forbid", "ignore", "allow").
func (p UnknownPolicy) String() string {
	switch p {
	case UnknownStrip:
		return "ignore"
	case UnknownPassthrough:
		return "allow"
	default:
		return "forbid"
	}
}

// ParseUnknownPolicy maps the config spelling back to a policy.
func ParseUnknownPolicy(s string) (UnknownPolicy, bool) {
	switch s {
	case "forbid", "strict", "":
		return UnknownStrict, true
	case "ignore", "strip":
		return UnknownStrip, true
	case "allow", "passthrough":
		return UnknownPassthrough, true
	}
	return UnknownStrict, false
}
