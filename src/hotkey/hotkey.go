package hotkey

import (
	"context"
	"fmt"
	"strings"
	"sync"

	gohook "github.com/robotn/gohook"

	"screen-region-select/src/logutil"
)

// Key is one member of a hotkey combination together with every raw code
// that satisfies it (left and right variants for modifiers).
type Key struct {
	Name     string
	Rawcodes []uint16
}

// Combo is a parsed hotkey such as "Ctrl+Alt+S".
type Combo struct {
	Source string
	Keys   []Key
}

// Parse converts a hotkey string to a Combo. Unknown key names are an error.
func Parse(s string) (Combo, error) {
	combo := Combo{Source: s}
	for _, part := range strings.Split(s, "+") {
		name := canonicalName(part)
		if name == "" {
			continue
		}
		codes := keyNameToRawcodes(name)
		if len(codes) == 0 {
			return Combo{}, fmt.Errorf("hotkey %q: unknown key %q", s, name)
		}
		combo.Keys = append(combo.Keys, Key{Name: name, Rawcodes: codes})
	}
	if len(combo.Keys) == 0 {
		return Combo{}, fmt.Errorf("hotkey %q: no keys", s)
	}
	return combo, nil
}

func canonicalName(part string) string {
	part = strings.ToLower(strings.TrimSpace(part))
	switch part {
	case "control":
		return "ctrl"
	case "win", "super", "meta":
		return "cmd"
	case "option":
		return "alt"
	}
	return part
}

// matcher tracks which combo members are held down.
type matcher struct {
	mu      sync.Mutex
	keys    []Key
	pressed []bool
}

func newMatcher(c Combo) *matcher {
	return &matcher{keys: c.Keys, pressed: make([]bool, len(c.Keys))}
}

// keyDown records rawcode and reports whether it completed the combination.
// Only a fresh press counts: OS key repeat of a held key never fires, while
// releasing and tapping the final key again with the modifiers held does.
func (m *matcher) keyDown(rawcode uint16) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.mark(rawcode, true) {
		return false
	}
	for _, p := range m.pressed {
		if !p {
			return false
		}
	}
	return true
}

func (m *matcher) keyUp(rawcode uint16) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mark(rawcode, false)
}

// mark sets the state of the key owning rawcode and reports whether it changed.
func (m *matcher) mark(rawcode uint16, down bool) bool {
	changed := false
	for i, k := range m.keys {
		for _, rc := range k.Rawcodes {
			if rc == rawcode {
				if m.pressed[i] != down {
					changed = true
				}
				m.pressed[i] = down
				break
			}
		}
	}
	return changed
}

// Listen hooks the global keyboard and invokes callback on each activation
// of combo until ctx is done.
func Listen(ctx context.Context, combo Combo, callback func()) error {
	m := newMatcher(combo)
	evChan := gohook.Start()
	if evChan == nil {
		return fmt.Errorf("hotkey: gohook.Start returned nil channel")
	}
	logutil.Infof("Hotkey listener configured for: %s", combo.Source)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logutil.Errorf("PANIC in hotkey goroutine: %v", r)
			}
		}()
		defer gohook.End()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-evChan:
				if !ok {
					logutil.Debugf("hotkey: event channel closed")
					return
				}
				switch ev.Kind {
				case gohook.KeyDown:
					if m.keyDown(ev.Rawcode) {
						logutil.Infof("Hotkey activated: %s", combo.Source)
						if callback != nil {
							callback()
						}
					}
				case gohook.KeyUp:
					m.keyUp(ev.Rawcode)
				}
			}
		}
	}()
	return nil
}

var namedKeys = map[string][]uint16{
	"ctrl":  {162, 163}, // VK_LCONTROL, VK_RCONTROL
	"alt":   {164, 165}, // VK_LMENU, VK_RMENU
	"shift": {160, 161}, // VK_LSHIFT, VK_RSHIFT
	"cmd":   {91, 92},   // VK_LWIN, VK_RWIN

	"space":       {32},
	"enter":       {13},
	"return":      {13},
	"esc":         {27},
	"escape":      {27},
	"tab":         {9},
	"backspace":   {8},
	"delete":      {46},
	"del":         {46},
	"insert":      {45},
	"ins":         {45},
	"home":        {36},
	"end":         {35},
	"pageup":      {33},
	"pgup":        {33},
	"pagedown":    {34},
	"pgdn":        {34},
	"left":        {37},
	"up":          {38},
	"right":       {39},
	"down":        {40},
	"printscreen": {44},
}

func init() {
	for c := 'a'; c <= 'z'; c++ {
		namedKeys[string(c)] = []uint16{uint16('A' + (c - 'a'))}
	}
	for c := '0'; c <= '9'; c++ {
		namedKeys[string(c)] = []uint16{uint16(c)}
	}
	for n := 1; n <= 24; n++ {
		namedKeys[fmt.Sprintf("f%d", n)] = []uint16{uint16(111 + n)} // VK_F1 = 112
	}
}

// keyNameToRawcodes maps a key name to its virtual key code rawcodes.
func keyNameToRawcodes(keyName string) []uint16 {
	codes, ok := namedKeys[canonicalName(keyName)]
	if !ok {
		logutil.Warnf("Unknown key name '%s', cannot map to rawcode", keyName)
		return nil
	}
	return codes
}
