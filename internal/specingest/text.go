package specingest

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/ulamai/formalchip/internal/model"
)

// ParseTextSpec treats every non-blank, non-"#" line as one clause. A
// leading "-" is stripped. This is the pattern-matching substrate the
// synthesis engine's text-clause regexes run against.
func ParseTextSpec(path string, _ Options) ([]model.SpecClause, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening text spec %s: %w", path, err)
	}
	defer f.Close()

	var clauses []model.SpecClause
	counter := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "-") {
			line = strings.TrimSpace(line[1:])
		}
		counter++
		clauses = append(clauses, model.SpecClause{
			ClauseID: fmt.Sprintf("text_%03d", counter),
			Text:     line,
			Source:   path,
			Tags:     []string{"text"},
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading text spec %s: %w", path, err)
	}
	return clauses, nil
}
