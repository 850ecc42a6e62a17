package manifestfile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBoolean(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want bool
	}{
		{"True", true},
		{" yes ", true},
		{"Y", true},
		{"1", true},
		{"False", false},
		{"", false},
		{"no", false},
		{"2", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ParseBoolean(tc.in), "input %q", tc.in)
	}
}

func TestParseFloatSafe(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want float64
	}{
		{"", 0},
		{"0", 0},
		{"12.5", 12.5},
		{" 34000 ", 34000},
		{"34000kg", 34000},
		{"-1.5", -1.5},
		{".5", 0.5},
		{"1e3", 1000},
		{"abc", 0},
		{"NaN", 0},
		{"Inf", 0},
	}
	for _, tc := range cases {
		assert.InDelta(t, tc.want, ParseFloatSafe(tc.in), 1e-9, "input %q", tc.in)
	}
}

func TestParseDuration(t *testing.T) {
	t.Parallel()

	ms := func(v int64) *int64 { return &v }
	cases := []struct {
		in   string
		want *int64
	}{
		{"", nil},
		{"   ", nil},
		{"00:04:24", ms(264000)},
		{"77.05:21:00", ms(6672060000)},
		{"04:24", ms(264000)},
		{"1.00:00:00", ms(86400000)},
		{"45", ms(45000)},
		{"xx:04:24", ms(264000)},
		{"2.xx:00:10", ms(2*86400000 + 10000)},
		{"garbage", ms(0)},
		{"9999999999999.00:00:00", nil},
		{"00:00:9999999999999999", nil},
		{"106751991.04:00:00", ms(9223372036800000)},
	}
	for _, tc := range cases {
		got := ParseDuration(tc.in)
		if tc.want == nil {
			assert.Nil(t, got, "input %q", tc.in)
			continue
		}
		require.NotNil(t, got, "input %q", tc.in)
		assert.Equal(t, *tc.want, *got, "input %q", tc.in)
	}
}

func TestParseFlexibleDate(t *testing.T) {
	t.Parallel()

	t.Run("us locale 12h clock", func(t *testing.T) {
		got := ParseFlexibleDate("10/3/2023 2:15:00 PM", time.UTC)
		require.NotNil(t, got)
		assert.Equal(t, time.Date(2023, 10, 3, 14, 15, 0, 0, time.UTC), *got)
	})

	t.Run("lower case meridiem and extra spaces", func(t *testing.T) {
		got := ParseFlexibleDate(" 1/15/2024  9:05 am ", time.UTC)
		require.NotNil(t, got)
		assert.Equal(t, time.Date(2024, 1, 15, 9, 5, 0, 0, time.UTC), *got)
	})

	t.Run("interpreted in export timezone", func(t *testing.T) {
		sast := time.FixedZone("SAST", 2*60*60)
		got := ParseFlexibleDate("10/3/2023 2:15:00 PM", sast)
		require.NotNil(t, got)
		assert.Equal(t, time.Date(2023, 10, 3, 12, 15, 0, 0, time.UTC), *got)
	})

	t.Run("iso fallback", func(t *testing.T) {
		got := ParseFlexibleDate("2023-10-03", nil)
		require.NotNil(t, got)
		assert.Equal(t, time.Date(2023, 10, 3, 0, 0, 0, 0, time.UTC), *got)
	})

	t.Run("unparsable", func(t *testing.T) {
		assert.Nil(t, ParseFlexibleDate("", time.UTC))
		assert.Nil(t, ParseFlexibleDate("yesterday", time.UTC))
		assert.Nil(t, ParseFlexibleDate("13/45/2023 2:15:00 PM", time.UTC))
	})
}

func TestCleanString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", CleanString(""))
	assert.Equal(t, "", CleanString(" \t "))
	assert.Equal(t, "ACME Logistics", CleanString("  ACME Logistics\t"))
}
