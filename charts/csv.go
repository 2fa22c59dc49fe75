package charts

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/pingcap/errors"
)

// WriteCSV exports the numbers behind a chart.
func WriteCSV(path string, header []string, rows [][]string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return errors.Annotatef(err, "write header to %s", path)
	}
	if err := w.WriteAll(rows); err != nil {
		return errors.Annotatef(err, "write records to %s", path)
	}
	return writeAtomic(path, &buf)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
