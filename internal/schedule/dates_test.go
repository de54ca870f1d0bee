package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCombineDateTime(t *testing.T) {
	tests := []struct {
		name  string
		date  string
		clock string
		want  time.Time
	}{
		{"hours and minutes", "2024-06-10", "10:00", time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC)},
		{"with seconds", "2024-06-10", "07:30:15", time.Date(2024, 6, 10, 7, 30, 15, 0, time.UTC)},
		{"surrounding whitespace", " 2024-06-10 ", " 18:45 ", time.Date(2024, 6, 10, 18, 45, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CombineDateTime(tt.date, tt.clock, time.UTC)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestCombineDateTime_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		date  string
		clock string
	}{
		{"missing date", "", "10:00"},
		{"missing time", "2024-06-10", ""},
		{"bad date", "10/06/2024", "10:00"},
		{"bad time", "2024-06-10", "10am"},
		{"out of range hour", "2024-06-10", "25:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CombineDateTime(tt.date, tt.clock, time.UTC)
			assert.Error(t, err)
		})
	}
}

func TestAddDays_CrossesMonthBoundary(t *testing.T) {
	start := time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "2024-07-04", FormatDate(AddDays(start, 6)))
}

func TestDateOf(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	instant := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	t.Run("keeps the calendar day of the input", func(t *testing.T) {
		got := DateOf(instant, loc)
		assert.Equal(t, "2024-06-10", FormatDate(got))
		assert.Equal(t, loc, got.Location())
		assert.Equal(t, 0, got.Hour())
	})

	t.Run("converted instant gives the local day", func(t *testing.T) {
		got := DateOf(instant.In(loc), loc) // 19:00 on the 9th in UTC-5
		assert.Equal(t, "2024-06-09", FormatDate(got))
	})
}
