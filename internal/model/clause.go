package model

import "fmt"

// SpecClause is a normalised verification intent, produced by one of the
// spec ingestors and consumed read-only by the synthesis engine.
type SpecClause struct {
	ClauseID string                 `json:"clause_id"`
	Text     string                 `json:"text"`
	Source   string                 `json:"source"`
	Tags     []string               `json:"tags"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// HasTag reports whether the clause carries the given tag.
func (c SpecClause) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// MetaString returns a string metadata value, or "" if absent/not a string.
func (c SpecClause) MetaString(key string) string {
	v, ok := c.Metadata[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// LibraryPattern is a reusable property template.
type LibraryPattern struct {
	Kind    string                 `json:"kind"`
	Options map[string]interface{} `json:"options"`
}

func (l LibraryPattern) OptString(key string) string {
	return l.OptStringDefault(key, "")
}

// OptStringDefault returns a string option, falling back to def when the
// key is absent or not representable as a string.
func (l LibraryPattern) OptStringDefault(key, def string) string {
	v, ok := l.Options[key]
	if !ok {
		return def
	}
	switch t := v.(type) {
	case string:
		if t == "" {
			return def
		}
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return def
	}
}

func (l LibraryPattern) OptInt(key string, def int) int {
	v, ok := l.Options[key]
	if !ok {
		return def
	}
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	default:
		return def
	}
}

// SynthesisInputs is the synthesis context: clock/reset identification,
// the known-signal catalogue, and user-facing aliases into RTL names.
type SynthesisInputs struct {
	Clock           string            `json:"clock"`
	Reset           string            `json:"reset"`
	ResetActiveLow  bool              `json:"reset_active_low"`
	KnownSignals    map[string]bool   `json:"-"`
	KnownSignalList []string          `json:"known_signals"`
	SignalAliases   map[string]string `json:"signal_aliases,omitempty"`
}

// KnownSignalsSet materialises KnownSignalList into a lookup set if not
// already populated, and returns it.
func (s *SynthesisInputs) KnownSignalsSet() map[string]bool {
	if s.KnownSignals == nil {
		s.KnownSignals = make(map[string]bool, len(s.KnownSignalList))
		for _, n := range s.KnownSignalList {
			s.KnownSignals[n] = true
		}
	}
	return s.KnownSignals
}
