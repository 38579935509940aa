// Package catalogue does a deliberately lightweight, regex-based scan of
// RTL files for declared signal names. False positives are acceptable;
// false negatives are not, since they drive placeholder generation in
// the synthesis engine.
package catalogue

import (
	"os"
	"regexp"
	"strings"
)

var (
	declRe    = regexp.MustCompile(`(?i)\b(?:input|output|inout|wire|logic|reg)\b(?:\s+(?:signed|unsigned))?(?:\s*\[[^\]]+\])?\s+([^;]+);`)
	identRe   = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)
	bracketRe = regexp.MustCompile(`\[[^\]]+\]`)
	commentRe = regexp.MustCompile(`(?m)//.*$`)
)

var declKeywords = map[string]bool{
	"input": true, "output": true, "inout": true,
	"wire": true, "logic": true, "reg": true,
	"signed": true, "unsigned": true,
}

// Collect returns the best-effort set of declared identifiers across the
// given RTL file paths. Files that don't exist are silently skipped.
func Collect(rtlFiles []string) map[string]bool {
	out := make(map[string]bool)
	for _, path := range rtlFiles {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		text := commentRe.ReplaceAllString(string(data), "")
		for _, m := range declRe.FindAllStringSubmatch(text, -1) {
			for _, part := range strings.Split(m[1], ",") {
				part = bracketRe.ReplaceAllString(part, " ")
				var tokens []string
				for _, tok := range identRe.FindAllString(part, -1) {
					if !declKeywords[strings.ToLower(tok)] {
						tokens = append(tokens, tok)
					}
				}
				if len(tokens) > 0 {
					out[tokens[len(tokens)-1]] = true
				}
			}
		}
	}
	return out
}
