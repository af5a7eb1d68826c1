package dsl

import (
	"strconv"

	polyskema "github.com/reoring/polyskema"
)

// markPresenceSubtree records presence bits for a value subtree under base.
// Nulls set WasNull; maps and lists are descended so nested paths are seen.
func markPresenceSubtree(pm polyskema.PresenceMap, base string, v any) {
	if pm == nil {
		return
	}
	pm[base] |= polyskema.PresenceSeen
	switch t := v.(type) {
	case nil:
		pm[base] |= polyskema.PresenceWasNull
	case map[string]any:
		for k, val := range t {
			markPresenceSubtree(pm, base+"/"+k, val)
		}
	case []any:
		for i, val := range t {
			markPresenceSubtree(pm, base+"/"+strconv.Itoa(i), val)
		}
	}
}
