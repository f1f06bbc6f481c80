// Package logparse extracts runtime measurements from benchmark logs.
package logparse

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"

	"github.com/ciricc/benchparser/pkg/benchreport"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrNoMeasurements = errors.New("no runtime measurements found")
)

// Matches lines such as "Runtime (3): 0.125000".
var runtimePattern = regexp.MustCompile(`Runtime \((\d+)\): (\d+\.\d+)`)

// Extract returns every runtime value found in text, in order of appearance.
func Extract(text string) ([]float64, error) {
	matches := runtimePattern.FindAllStringSubmatch(text, -1)
	values := make([]float64, 0, len(matches))
	for _, m := range matches {
		v, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return nil, fmt.Errorf("parse runtime %q: %w", m[2], err)
		}
		values = append(values, v)
	}
	return values, nil
}

// Parse reads r to the end and returns the mean of its runtimes.
func Parse(r io.Reader) benchreport.Measurement {
	b, err := io.ReadAll(r)
	if err != nil {
		return benchreport.Absent(fmt.Errorf("read log: %w", err))
	}
	values, err := Extract(string(b))
	if err != nil {
		return benchreport.Absent(err)
	}
	if len(values) == 0 {
		return benchreport.Absent(ErrNoMeasurements)
	}
	return benchreport.Present(stat.Mean(values, nil))
}

// ParseFile is Parse over the file at path. A missing or unreadable file is
// reported as an absent measurement, never as a failure.
func ParseFile(path string) benchreport.Measurement {
	f, err := os.Open(path)
	if err != nil {
		return benchreport.Absent(err)
	}
	defer f.Close()

	m := Parse(f)
	if !m.Valid {
		m.Err = fmt.Errorf("%s: %w", path, m.Err)
	}
	return m
}
