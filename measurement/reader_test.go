package measurement

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pingcap/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "m.data")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadScalar(t *testing.T) {
	v, err := ReadScalar(writeFile(t, "12500.0\n"))
	require.NoError(t, err)
	assert.Equal(t, 12500.0, v)

	v, err = ReadScalar(writeFile(t, "  3.25 "))
	require.NoError(t, err)
	assert.Equal(t, 3.25, v)

	_, err = ReadScalar(writeFile(t, ""))
	assert.Error(t, err)
	_, err = ReadScalar(writeFile(t, "twelve"))
	assert.Error(t, err)
}

func TestReadSeries(t *testing.T) {
	v, err := ReadSeries(writeFile(t, "0.1,0.3,0.2\n"))
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.3, 0.2}, v)

	v, err = ReadSeries(writeFile(t, "1, 2,3\n\n4,5\n"))
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4, 5}, v)

	v, err = ReadSeries(writeFile(t, "7,8,\n"))
	require.NoError(t, err)
	assert.Equal(t, []float64{7, 8}, v)

	_, err = ReadSeries(writeFile(t, "1,x,3\n"))
	assert.Error(t, err)
	_, err = ReadSeries(writeFile(t, "\n\n"))
	assert.Error(t, err)
}

func TestReadNamedSeries(t *testing.T) {
	ns, err := ReadNamedSeries(writeFile(t, "mix-a,mix-b,mix-c\n10,12,9\n3,4\n7,7,7,7\n\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"mix-a", "mix-b", "mix-c"}, ns.Labels)
	require.Len(t, ns.Series, 3)
	assert.Equal(t, []float64{10, 12, 9}, ns.Series[0])
	assert.Equal(t, []float64{3, 4}, ns.Series[1])
	assert.Equal(t, 4, ns.Len())

	_, err = ReadNamedSeries(writeFile(t, "only\n1,2\n3,4\n"))
	assert.Error(t, err, "more series than labels")
	_, err = ReadNamedSeries(writeFile(t, "a,b\n"))
	assert.Error(t, err, "no series")
	_, err = ReadNamedSeries(writeFile(t, "a,b\n1,z\n"))
	assert.Error(t, err)
}

func TestMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.data")

	_, err := ReadScalar(missing)
	require.Error(t, err)
	assert.True(t, os.IsNotExist(errors.Cause(err)))

	_, err = ReadSeries(missing)
	require.Error(t, err)
	assert.True(t, os.IsNotExist(errors.Cause(err)))

	_, err = ReadNamedSeries(missing)
	require.Error(t, err)
	assert.True(t, os.IsNotExist(errors.Cause(err)))
}
