package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePeriods(t *testing.T) {
	t.Run("monthly", func(t *testing.T) {
		periods, err := GeneratePeriods(PeriodMonthly, 2024)
		require.NoError(t, err)
		require.Len(t, periods, 12)
		assert.Equal(t, 1, periods[0].Number)
		assert.Equal(t, "January", periods[0].Label)
		assert.Equal(t, Date(2024, time.February, 29), periods[1].End, "leap year")
		assert.Equal(t, Date(2024, time.December, 31), periods[11].End)
	})

	t.Run("quarterly", func(t *testing.T) {
		periods, err := GeneratePeriods(PeriodQuarterly, 2023)
		require.NoError(t, err)
		require.Len(t, periods, 4)
		assert.Equal(t, "Q2 2023", periods[1].Label)
		assert.Equal(t, Date(2023, time.April, 1), periods[1].Start)
		assert.Equal(t, Date(2023, time.June, 30), periods[1].End)
	})

	t.Run("annual", func(t *testing.T) {
		periods, err := GeneratePeriods(PeriodAnnual, 2025)
		require.NoError(t, err)
		require.Len(t, periods, 1)
		assert.Equal(t, "2025", periods[0].Label)
		assert.Equal(t, Date(2025, time.January, 1), periods[0].Start)
		assert.Equal(t, Date(2025, time.December, 31), periods[0].End)
	})

	t.Run("bad type", func(t *testing.T) {
		_, err := GeneratePeriods(PeriodType("weekly"), 2025)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("bad year", func(t *testing.T) {
		_, err := GeneratePeriods(PeriodMonthly, 1899)
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestPeriod_Overlaps(t *testing.T) {
	q1 := Period{Start: Date(2024, time.January, 1), End: Date(2024, time.March, 31)}

	assert.True(t, q1.Overlaps(Date(2024, time.March, 31), Date(2024, time.April, 30)), "shared boundary day")
	assert.True(t, q1.Overlaps(Date(2023, time.January, 1), Date(2025, time.January, 1)))
	assert.False(t, q1.Overlaps(Date(2024, time.April, 1), Date(2024, time.June, 30)))
}

func TestWindow(t *testing.T) {
	w := AsOf(time.Date(2024, 5, 10, 17, 30, 0, 0, time.UTC))
	assert.Nil(t, w.Start)
	require.NotNil(t, w.End)
	assert.Equal(t, Date(2024, time.May, 10), *w.End)

	assert.NoError(t, Between(Date(2024, 1, 1), Date(2024, 1, 1)).Validate())
	assert.ErrorIs(t, Between(Date(2024, 2, 1), Date(2024, 1, 1)).Validate(), ErrValidation)

	assert.Equal(t, Date(2023, time.December, 31), DayBefore(Date(2024, time.January, 1)))
}
