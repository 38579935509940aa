package specingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ulamai/formalchip/internal/model"
)

func parseIntLoose(value string) (int64, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return 0, false
	}
	if strings.HasPrefix(v, "0x") {
		n, err := strconv.ParseInt(v[2:], 16, 64)
		return n, err == nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	return n, err == nil
}

func renderSignal(template, name string) string {
	r := strings.NewReplacer(
		"{name}", name,
		"{name_lower}", strings.ToLower(name),
		"{name_upper}", strings.ToUpper(name),
	)
	return r.Replace(template)
}

func csvRows(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("reading header of %s: %w", path, err)
	}

	var rows []map[string]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row of %s: %w", path, err)
		}
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[strings.TrimSpace(col)] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func firstNonEmpty(row map[string]string, keys ...string) string {
	for _, k := range keys {
		if v, ok := row[k]; ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// ParseRegisterCSV ingests register table rows with columns
// name,address,width,reset,access. Every row always emits a *_reset
// clause; read-only registers additionally emit a *_ro clause.
func ParseRegisterCSV(path string, opts Options) ([]model.SpecClause, error) {
	rows, err := csvRows(path)
	if err != nil {
		return nil, err
	}

	signalTemplate := opts.String("signal_template", "{name_lower}_q")
	swWeSignal, _ := opts["sw_we_signal"]
	swAddrSignal, _ := opts["sw_addr_signal"]
	swAddrWidth := opts.Int("sw_addr_width", 32)

	var clauses []model.SpecClause
	for idx, row := range rows {
		n := idx + 1
		name := firstNonEmpty(row, "name", "register")
		if name == "" {
			name = "reg"
		}
		address := firstNonEmpty(row, "address", "addr")
		reset := firstNonEmpty(row, "reset", "reset_value")
		if reset == "" {
			reset = "0"
		}
		access := strings.ToLower(firstNonEmpty(row, "access", "sw_access"))
		if access == "" {
			access = "rw"
		}
		width := firstNonEmpty(row, "width", "bits")
		if width == "" {
			width = "32"
		}
		signal := renderSignal(signalTemplate, name)

		meta := map[string]interface{}{
			"register":       name,
			"address":        address,
			"reset":          reset,
			"access":         access,
			"width":          width,
			"signal":         signal,
			"sw_we_signal":   swWeSignal,
			"sw_addr_signal": swAddrSignal,
			"sw_addr_width":  swAddrWidth,
		}
		if addrInt, ok := parseIntLoose(address); ok {
			meta["address_int"] = addrInt
		}

		clauses = append(clauses, model.SpecClause{
			ClauseID: fmt.Sprintf("reg_%03d_reset", n),
			Text:     fmt.Sprintf("Register %s resets to %s.", name, reset),
			Source:   path,
			Tags:     []string{"register", "reset"},
			Metadata: meta,
		})

		if access == "ro" || access == "read-only" || access == "r" {
			roMeta := map[string]interface{}{
				"register":       name,
				"address":        address,
				"signal":         signal,
				"access":         access,
				"sw_we_signal":   swWeSignal,
				"sw_addr_signal": swAddrSignal,
				"sw_addr_width":  swAddrWidth,
			}
			if addrInt, ok := parseIntLoose(address); ok {
				roMeta["address_int"] = addrInt
			}
			clauses = append(clauses, model.SpecClause{
				ClauseID: fmt.Sprintf("reg_%03d_ro", n),
				Text:     fmt.Sprintf("Register %s is read-only from software interface.", name),
				Source:   path,
				Tags:     []string{"register", "access", "read_only"},
				Metadata: roMeta,
			})
		}
	}
	return clauses, nil
}
