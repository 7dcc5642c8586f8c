package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/causalcore/internal/ir"
	"github.com/roach88/causalcore/internal/queryir"
)

// parseDo parses the --do flag ("X=1,Z=0").
func parseDo(s string) (ir.Intervention, error) {
	do, err := ir.ParseIntervention(s)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeBadFlag, Message: fmt.Sprintf("--do: %v", err)}
	}
	return do, nil
}

// parseClauses joins repeated --clause flags into one query.
func parseClauses(clauses []string) (queryir.Query, error) {
	q, err := queryir.ParseQuery(strings.Join(clauses, ";"))
	if err != nil {
		return queryir.Query{}, &LoadError{Code: ErrCodeBadFlag, Message: fmt.Sprintf("--clause: %v", err)}
	}
	return q, nil
}

// parseParams parses a comma-separated parameter vector.
func parseParams(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	params := make([]float64, 0, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeBadFlag, Message: fmt.Sprintf("--params[%d]: %q is not a number", i, p)}
		}
		params = append(params, v)
	}
	return params, nil
}

// loadDraws reads a YAML list of parameter vectors, one per draw, for
// example "[[0.5, 0.5, 0.25, 0.25, 0.25, 0.25], [0.2, 0.8, 0.1, 0.2, 0.3, 0.4]]"
// or one "- [...]" line per draw.
func loadDraws(path string) (*ir.FloatMatrix, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("draws file not found: %s", path)}
		}
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("reading draws: %v", err)}
	}
	var rows [][]float64
	if err := yaml.Unmarshal(data, &rows); err != nil {
		return nil, &LoadError{Code: ErrCodeBadFlag, Message: fmt.Sprintf("parsing draws: %v", err)}
	}
	if len(rows) == 0 {
		return nil, &LoadError{Code: ErrCodeBadFlag, Message: "draws file has no rows"}
	}
	draws, err := ir.FloatMatrixFromRows(rows)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeBadFlag, Message: fmt.Sprintf("draws: %v", err)}
	}
	return draws, nil
}
