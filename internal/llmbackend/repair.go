package llmbackend

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var boundedEventualityRe = regexp.MustCompile(`##\[0:(\d+)\]`)

// repairBody widens a bounded eventuality window when it exists, or
// relaxes a strict next-cycle implication into a bounded one otherwise.
func repairBody(body string) string {
	if m := boundedEventualityRe.FindStringSubmatch(body); m != nil {
		old, _ := strconv.Atoi(m[1])
		return strings.Replace(body, fmt.Sprintf("##[0:%d]", old), fmt.Sprintf("##[0:%d]", old+2), 1)
	}
	if strings.Contains(body, "|=>") {
		return strings.Replace(body, "|=>", "|-> ##[0:1]", 1)
	}
	return body
}
