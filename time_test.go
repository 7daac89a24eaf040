package asn1x

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// decode the UTCTime 17 0D 39 39 31 32 33 31 32 33 35 39 35 39 5A ->
// 1999-12-31 23:59:59 UTC; re-encode -> identical bytes.
func TestDecodeUTCTimeScenario2(t *testing.T) {
	content := []byte("991231235959Z")
	ts, err := decodeUTCTime(content)
	require.NoError(t, err)
	require.Equal(t, 1999, ts.Time.Year())
	require.Equal(t, time.December, ts.Time.Month())
	require.Equal(t, 31, ts.Time.Day())
	require.Equal(t, 23, ts.Time.Hour())
	require.Equal(t, 59, ts.Time.Minute())
	require.Equal(t, 59, ts.Time.Second())

	require.Equal(t, content, ts.EncodeUTCTime())
}

func TestUTCTimePivotYear(t *testing.T) {
	before, err := decodeUTCTime([]byte("491231235959Z"))
	require.NoError(t, err)
	require.Equal(t, 2049, before.Time.Year())

	after, err := decodeUTCTime([]byte("501231235959Z"))
	require.NoError(t, err)
	require.Equal(t, 1950, after.Time.Year())
}

func TestUTCTimeMissingSecondsDefaultsToZero(t *testing.T) {
	ts, err := decodeUTCTime([]byte("9912312359Z"))
	require.NoError(t, err)
	require.Equal(t, 0, ts.Time.Second())
}

func TestUTCTimeOffsetNormalizedToUTCOnEncode(t *testing.T) {
	ts, err := decodeUTCTime([]byte("991231235959+0100"))
	require.NoError(t, err)
	require.Equal(t, []byte("991231225959Z"), ts.EncodeUTCTime())
}

func TestGeneralizedTimeFractionalSeconds(t *testing.T) {
	ts, err := decodeGeneralizedTime([]byte("19991231235959.123456789Z"))
	require.NoError(t, err)
	require.Equal(t, 123456000, ts.FracNano) // truncated to microsecond precision
	require.Equal(t, []byte("19991231235959.123456Z"), ts.EncodeGeneralizedTime())
}

func TestGeneralizedTimeAbsentTimezoneIsUTC(t *testing.T) {
	ts, err := decodeGeneralizedTime([]byte("19991231235959"))
	require.NoError(t, err)
	require.Equal(t, time.UTC, ts.Time.Location())
}

func TestGeneralizedTimeNoFractionOmitsDot(t *testing.T) {
	ts, err := decodeGeneralizedTime([]byte("19991231235959Z"))
	require.NoError(t, err)
	require.Equal(t, []byte("19991231235959Z"), ts.EncodeGeneralizedTime())
}
