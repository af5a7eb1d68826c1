package source

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	polyskema "github.com/reoring/polyskema"
	"github.com/reoring/polyskema/i18n"
)

type dupFrame struct {
	object  bool
	keys    map[string]struct{}
	key     string
	index   int
	wantKey bool
}

// duplicateKeys reports every object member whose name already occurred in
// the same object, at its JSON Pointer. b must be well-formed JSON.
func duplicateKeys(b []byte) polyskema.Issues {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var (
		stack []*dupFrame
		iss   polyskema.Issues
	)
	valueDone := func() {
		if len(stack) == 0 {
			return
		}
		top := stack[len(stack)-1]
		if top.object {
			top.wantKey = true
		} else {
			top.index++
		}
	}
	for {
		tok, err := dec.Token()
		if err != nil {
			return iss
		}
		switch v := tok.(type) {
		case json.Delim:
			switch v {
			case '{':
				stack = append(stack, &dupFrame{object: true, keys: map[string]struct{}{}, wantKey: true})
			case '[':
				stack = append(stack, &dupFrame{})
			case '}', ']':
				stack = stack[:len(stack)-1]
				valueDone()
			}
		case string:
			if n := len(stack); n > 0 && stack[n-1].object && stack[n-1].wantKey {
				top := stack[n-1]
				if _, dup := top.keys[v]; dup {
					iss = append(iss, polyskema.Issue{
						Path:    framePointer(stack[:n-1]) + "/" + escapeToken(v),
						Code:    polyskema.CodeDuplicateKey,
						Message: i18n.T(polyskema.CodeDuplicateKey, nil),
						Params:  map[string]any{"key": v},
					})
				}
				top.keys[v] = struct{}{}
				top.key = v
				top.wantKey = false
				continue
			}
			valueDone()
		default:
			valueDone()
		}
	}
}

// framePointer renders the position held by each enclosing container.
func framePointer(frames []*dupFrame) string {
	var b strings.Builder
	for _, f := range frames {
		b.WriteByte('/')
		if f.object {
			b.WriteString(escapeToken(f.key))
		} else {
			b.WriteString(strconv.Itoa(f.index))
		}
	}
	return b.String()
}

var tokenEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func escapeToken(s string) string { return tokenEscaper.Replace(s) }
