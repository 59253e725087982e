package oceanbase

import (
	"fmt"
	"strconv"
	"strings"
)

// vectorToString formats a vector as an OceanBase VECTOR literal: "[0.1,0.2,0.3]".
func vectorToString(vector []float64) string {
	parts := make([]string, len(vector))
	for i, v := range vector {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// stringToVector parses a VECTOR literal.
func stringToVector(s string) ([]float64, error) {
	s = strings.Trim(strings.TrimSpace(s), "[]")
	if s == "" {
		return []float64{}, nil
	}

	parts := strings.Split(s, ",")
	result := make([]float64, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("parse vector element %d: %w", i, err)
		}
		result[i] = v
	}
	return result, nil
}

// limitClause returns a LIMIT clause and its argument; limit <= 0 means unbounded.
func limitClause(limit int) (string, []interface{}) {
	if limit <= 0 {
		return "", nil
	}
	return "LIMIT ?", []interface{}{limit}
}
