package polyskema

// Presence is the bit flag collected by WithMeta APIs.
type Presence uint8

const (
	PresenceSeen           Presence = 1 << iota // Field appeared in the input.
	PresenceWasNull                             // Field value was null.
	PresenceDefaultApplied                      // Default value was applied.
)

// PresenceMap maps JSON Pointers to Presence flags.
type PresenceMap map[string]Presence

// Has reports whether the flag is set for path.
func (pm PresenceMap) Has(path string, flag Presence) bool {
	return pm[path]&flag != 0
}

// Decoded carries the parsed value along with presence metadata.
type Decoded[T any] struct {
	Value    T
	Presence PresenceMap
}

// MergePresence returns a new PresenceMap that is the bitwise-OR merge of a and b.
func MergePresence(a, b PresenceMap) PresenceMap {
	if a == nil && b == nil {
		return nil
	}
	out := make(PresenceMap, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] |= v
	}
	return out
}
