// Package measurement parses the pre-aggregated .data files written by the
// experiment evaluation scripts.
package measurement

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pingcap/errors"
)

// NamedSeries is a header row of labels plus one numeric series per label.
type NamedSeries struct {
	Labels []string
	Series [][]float64
}

// Len is the length of the longest series.
func (n *NamedSeries) Len() int {
	l := 0
	for _, s := range n.Series {
		l = max(l, len(s))
	}
	return l
}

// ReadScalar reads a file that holds a single number.
func ReadScalar(path string) (float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, errors.Trace(err)
	}
	s := strings.TrimSpace(string(data))
	if s == "" {
		return 0, errors.Errorf("%s: empty file", path)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Annotatef(err, "%s", path)
	}
	return v, nil
}

// ReadSeries reads comma separated numbers, possibly spread over several
// lines, in file order.
func ReadSeries(path string) ([]float64, error) {
	records, err := readRecords(path)
	if err != nil {
		return nil, err
	}
	var out []float64
	for i, rec := range records {
		vals, err := parseRow(rec)
		if err != nil {
			return nil, errors.Annotatef(err, "%s: line %d", path, i+1)
		}
		out = append(out, vals...)
	}
	if len(out) == 0 {
		return nil, errors.Errorf("%s: no samples", path)
	}
	return out, nil
}

// ReadNamedSeries reads a header row of labels followed by one row of
// numbers per label.
func ReadNamedSeries(path string) (*NamedSeries, error) {
	records, err := readRecords(path)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.Errorf("%s: no header row", path)
	}

	ns := &NamedSeries{}
	for _, l := range records[0] {
		ns.Labels = append(ns.Labels, strings.TrimSpace(l))
	}
	for i, rec := range records[1:] {
		vals, err := parseRow(rec)
		if err != nil {
			return nil, errors.Annotatef(err, "%s: line %d", path, i+2)
		}
		ns.Series = append(ns.Series, vals)
	}
	if len(ns.Series) > len(ns.Labels) {
		return nil, errors.Errorf("%s: %d series but only %d labels", path, len(ns.Series), len(ns.Labels))
	}
	if len(ns.Series) == 0 {
		return nil, errors.Errorf("%s: no series", path)
	}
	return ns, nil
}

// readRecords returns the non-blank CSV records of a file. The file is
// closed before returning.
func readRecords(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.Annotatef(err, "read %s", path)
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Annotatef(err, "parse %s", path)
		}
		if blank(rec) {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// parseRow parses every field of a record. A trailing empty field, as
// left by a dangling comma, is ignored.
func parseRow(rec []string) ([]float64, error) {
	if n := len(rec); n > 0 && strings.TrimSpace(rec[n-1]) == "" {
		rec = rec[:n-1]
	}
	vals := make([]float64, 0, len(rec))
	for _, f := range rec {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, errors.Errorf("not a number: %q", f)
		}
		vals = append(vals, v)
	}
	return vals, nil
}
