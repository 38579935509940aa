// Package loop drives the bounded propose/prove/repair state machine:
// synthesise candidates, write them to the iteration's property file,
// invoke the engine adapter, parse its log, persist the iteration, and
// repair for the next round until a terminal status or the iteration
// budget is reached.
package loop

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
	"strings"
	"time"
)

var runIDUnsafe = regexp.MustCompile(`[^a-z0-9_-]+`)

// sanitizeRunName lowercases name and collapses everything outside
// [a-z0-9_-] into a single underscore, so the result is always a safe
// path component.
func sanitizeRunName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = runIDUnsafe.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if s == "" {
		s = "project"
	}
	return s
}

// NewRunID builds run_id = sanitize(project_name) + UTC timestamp +
// random 4-digit nonce, giving every run directory a name that is both
// human-legible and collision-free without cross-run locking.
func NewRunID(projectName string, now time.Time) string {
	stamp := now.UTC().Format("20060102T150405Z")
	return sanitizeRunName(projectName) + "-" + stamp + "-" + nonce4()
}

func nonce4() string {
	var b [2]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "0000"
	}
	return hex.EncodeToString(b[:])[:4]
}
