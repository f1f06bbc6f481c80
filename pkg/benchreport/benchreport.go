package benchreport

import (
	"strconv"
)

// NaN is written in place of any value that could not be measured.
const NaN = "nan"

// Metrics lists the per-size columns in the order they appear in a report row.
var Metrics = []string{"cpu", "ompCpu", "ompGpu", "speedOmpCpu", "speedOmpGpu"}

// Measurement is the mean runtime extracted from one log file.
// When Valid is false the value is absent and Err says why.
type Measurement struct {
	Value float64
	Valid bool
	Err   error
}

func Present(v float64) Measurement {
	return Measurement{Value: v, Valid: true}
}

func Absent(reason error) Measurement {
	return Measurement{Err: reason}
}

// Format renders the value with the given number of decimals, or NaN when absent.
func (m Measurement) Format(precision int) string {
	return formatFloat(m.Value, m.Valid, precision)
}

// Speedup is the signed ratio of a baseline runtime to an alternate mode's runtime.
// Positive values mean the alternate mode is at least as fast; negative values are
// slowdowns, with the magnitude equal to the slowdown factor.
type Speedup struct {
	Ratio float64
	Valid bool
	Err   error
}

func NewSpeedup(ratio float64) Speedup {
	return Speedup{Ratio: ratio, Valid: true}
}

func AbsentSpeedup(reason error) Speedup {
	return Speedup{Err: reason}
}

func (s Speedup) Format(precision int) string {
	return formatFloat(s.Ratio, s.Valid, precision)
}

func formatFloat(v float64, ok bool, precision int) string {
	if !ok {
		return NaN
	}
	return strconv.FormatFloat(v, 'f', precision, 64)
}
