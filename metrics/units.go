package metrics

import (
	"github.com/pingcap/errors"
)

// Unit is a data size unit. The empty unit leaves values untouched.
type Unit string

const (
	None Unit = ""
	B    Unit = "B"
	KB   Unit = "KB"
	MB   Unit = "MB"
	GB   Unit = "GB"
	KiB  Unit = "KiB"
	MiB  Unit = "MiB"
	GiB  Unit = "GiB"
)

var unitBytes = map[Unit]float64{
	B:   1,
	KB:  1e3,
	MB:  1e6,
	GB:  1e9,
	KiB: 1 << 10,
	MiB: 1 << 20,
	GiB: 1 << 30,
}

func ParseUnit(s string) (Unit, error) {
	u := Unit(s)
	if u == None {
		return None, nil
	}
	if _, ok := unitBytes[u]; !ok {
		return None, errors.Errorf("unknown unit %q", s)
	}
	return u, nil
}

// Convert rescales v from one unit to another. Converting from or to
// the empty unit is only allowed when both are empty.
func Convert(v float64, from, to Unit) (float64, error) {
	if from == to {
		return v, nil
	}
	f, ok := unitBytes[from]
	if !ok {
		return 0, errors.Errorf("cannot convert from unit %q", from)
	}
	t, ok := unitBytes[to]
	if !ok {
		return 0, errors.Errorf("cannot convert to unit %q", to)
	}
	return v * f / t, nil
}
