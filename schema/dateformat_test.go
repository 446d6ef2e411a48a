package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayout(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"%Y-%m-%d", "2006-01-02"},
		{"%d/%m/%y", "02/01/06"},
		{"%Y-%m-%dT%H:%M:%S", "2006-01-02T15:04:05"},
		{"%b %d, %Y", "Jan 02, 2006"},
		{"%d%%", "02%"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			got, err := Layout(tt.format)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Layout("%Y-%")
	assert.Error(t, err)
	_, err = Layout("%Q")
	assert.Error(t, err)
}

func TestLayoutRejectsTokensInLiteralText(t *testing.T) {
	for _, format := range []string{
		"Q1 %Y-%m-%d",
		"%Y-%m-%d 00:00",
		"Month %m/%Y",
		"%d Jan %Y",
		"%H:%M MST",
		"%I PM",
		"day_%e",
	} {
		t.Run(format, func(t *testing.T) {
			_, err := Layout(format)
			assert.ErrorContains(t, err, "literal text")
		})
	}

	for format, want := range map[string]string{
		"week of %Y-%m-%d": "week of 2006-01-02",
		"%Y_%m_%d":         "2006_01_02",
		"%d%% of %Y":       "02% of 2006",
	} {
		got, err := Layout(format)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestFormatDateKeepsLiteralText(t *testing.T) {
	d := time.Date(2023, 6, 2, 0, 0, 0, 0, time.UTC)
	s, err := FormatDate(d, "week of %Y-%m-%d")
	require.NoError(t, err)
	assert.Equal(t, "week of 2023-06-02", s)

	back, err := ParseDate(s, "week of %Y-%m-%d")
	require.NoError(t, err)
	assert.Equal(t, d, back)
}

func TestParseAndFormatDate(t *testing.T) {
	d, err := ParseDate("31/12/2023", "%d/%m/%Y")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), d)

	s, err := FormatDate(d, "%Y%m%d")
	require.NoError(t, err)
	assert.Equal(t, "20231231", s)

	_, err = ParseDate("2023-12-31", "%d/%m/%Y")
	assert.Error(t, err)
}
