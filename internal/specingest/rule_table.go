package specingest

import (
	"fmt"

	"github.com/ulamai/formalchip/internal/model"
)

// ParseRuleTableCSV ingests columns rule_id,condition,guarantee.
func ParseRuleTableCSV(path string, _ Options) ([]model.SpecClause, error) {
	rows, err := csvRows(path)
	if err != nil {
		return nil, err
	}

	var clauses []model.SpecClause
	for idx, row := range rows {
		ruleID := firstNonEmpty(row, "rule_id")
		if ruleID == "" {
			ruleID = fmt.Sprintf("rule_%d", idx+1)
		}
		condition := firstNonEmpty(row, "condition", "if")
		guarantee := firstNonEmpty(row, "guarantee", "then")

		text := guarantee
		if condition != "" {
			text = fmt.Sprintf("If %s, then %s.", condition, guarantee)
		}

		clauses = append(clauses, model.SpecClause{
			ClauseID: fmt.Sprintf("tbl_%s", ruleID),
			Text:     text,
			Source:   path,
			Tags:     []string{"rule_table"},
			Metadata: map[string]interface{}{
				"condition": condition,
				"guarantee": guarantee,
				"rule_id":   ruleID,
			},
		})
	}
	return clauses, nil
}
