package table

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// AggregateKind names an aggregate calculation.
type AggregateKind string

const (
	KindCount AggregateKind = "count"
	KindSum   AggregateKind = "sum"
)

// ParseAggregateKind validates an aggregate name.
func ParseAggregateKind(s string) (AggregateKind, error) {
	switch k := AggregateKind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindCount, KindSum:
		return k, nil
	default:
		return "", fmt.Errorf("unknown aggregate %q", s)
	}
}

// ErrNonNumeric is returned by a sum over a column holding a non-numeric value.
var ErrNonNumeric = errors.New("column contains non-numeric value(s)")

// nonNumericLabel is shown in place of a sum that could not be calculated.
const nonNumericLabel = "Error: Column contains non-numeric value(s), cannot calculate sum."

// AggregateResult is the outcome of an aggregate calculation.
type AggregateResult struct {
	Kind   AggregateKind
	Column int
	Count  int
	Sum    float64
	Err    error
}

// Label formats the result for display.
func (r AggregateResult) Label() string {
	if r.Err != nil {
		if errors.Is(r.Err, ErrNonNumeric) {
			return nonNumericLabel
		}
		return "Error: " + r.Err.Error()
	}
	if r.Kind == KindSum {
		return "Sum: " + FormatNumber(r.Sum)
	}
	return "Count: " + strconv.Itoa(r.Count)
}

// FormatNumber renders f in its shortest exact decimal form.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Aggregate computes kind over column col of rows. Cells equal to "" and
// absent cells are skipped. A sum is only produced when every remaining cell
// is numeric; otherwise the result carries ErrNonNumeric and no total.
func Aggregate(rows []Row, col int, kind AggregateKind) AggregateResult {
	res := AggregateResult{Kind: kind, Column: col}

	values := make([]string, 0, len(rows))
	for _, r := range rows {
		if v, ok := r.Cell(col); ok && v != "" {
			values = append(values, v)
		}
	}

	switch kind {
	case KindCount:
		res.Count = len(values)
	case KindSum:
		nums := make([]float64, len(values))
		for i, v := range values {
			n, ok := ParseNumber(v)
			if !ok {
				res.Err = ErrNonNumeric
				return res
			}
			nums[i] = n
		}
		for _, n := range nums {
			res.Sum += n
		}
		res.Count = len(nums)
	default:
		res.Err = fmt.Errorf("unknown aggregate %q", kind)
	}
	return res
}
