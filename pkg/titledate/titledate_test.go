package titledate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Monday, January 1st 2024, 09:00 local.
var ref = time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC)

func TestExtract_DateAndTimePhrase(t *testing.T) {
	got := Extract("Buy milk tomorrow at 5pm", ref)

	assert.Equal(t, "Buy milk", got.CleanTitle)
	require.NotNil(t, got.DueDate)
	assert.Equal(t, time.Date(2024, time.January, 2, 17, 0, 0, 0, time.UTC), *got.DueDate)
	assert.True(t, got.HasDueTime)
	require.Len(t, got.Spans, 1)
	assert.Equal(t, "tomorrow at 5pm", got.Spans[0].Text)
}

func TestExtract_NoPhrase(t *testing.T) {
	got := Extract("Call mom", ref)

	assert.Equal(t, "Call mom", got.CleanTitle)
	assert.Nil(t, got.DueDate)
	assert.False(t, got.HasDueTime)
	assert.Empty(t, got.Spans)
}

func TestExtract_DateOnlyClearsTimeOfDay(t *testing.T) {
	got := Extract("Dentist friday", ref)

	assert.Equal(t, "Dentist", got.CleanTitle)
	require.NotNil(t, got.DueDate)
	assert.Equal(t, time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC), *got.DueDate)
	assert.False(t, got.HasDueTime)
}

func TestExtract_PrefersCertainHourOverEarlierMatch(t *testing.T) {
	got := Extract("tomorrow file taxes at 6pm", ref)

	require.Len(t, got.Spans, 2)
	require.NotNil(t, got.DueDate)
	// the clock phrase wins even though "tomorrow" comes first
	assert.True(t, got.HasDueTime)
	assert.Equal(t, 18, got.DueDate.Hour())
	assert.Equal(t, "file taxes", got.CleanTitle)
}

func TestExtract_TitleThatIsOnlyADatePhrase(t *testing.T) {
	got := Extract("tomorrow", ref)

	// stripping would leave nothing; the raw title is kept
	assert.Equal(t, "tomorrow", got.CleanTitle)
	require.NotNil(t, got.DueDate)
	assert.Equal(t, time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC), *got.DueDate)
}

func TestParse_WeekdayResolvesForward(t *testing.T) {
	spans := Parse("review notes on wednesday", ref)

	require.Len(t, spans, 1)
	assert.Equal(t, time.Date(2024, time.January, 3, 0, 0, 0, 0, time.UTC), spans[0].Time)
	assert.False(t, spans[0].CertainHour)
}

func TestParse_NextWeekdayOnSameWeekday(t *testing.T) {
	spans := Parse("standup next monday", ref) // ref is a Monday

	require.Len(t, spans, 1)
	assert.Equal(t, time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC), spans[0].Time)
}

func TestParse_BareWeekdayOnSameDayStaysToday(t *testing.T) {
	spans := Parse("gym monday", ref)

	require.Len(t, spans, 1)
	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), spans[0].Time)
}

func TestParse_TimeOnlyInThePastMovesToNextDay(t *testing.T) {
	spans := Parse("meds at 8am", ref) // ref is 09:00

	require.Len(t, spans, 1)
	assert.Equal(t, time.Date(2024, time.January, 2, 8, 0, 0, 0, time.UTC), spans[0].Time)
	assert.True(t, spans[0].CertainHour)
}

func TestParse_MonthDayWithoutYearResolvesForward(t *testing.T) {
	ref2 := time.Date(2024, time.June, 15, 9, 0, 0, 0, time.UTC)
	spans := Parse("renew passport jan 5", ref2)

	require.Len(t, spans, 1)
	assert.Equal(t, time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC), spans[0].Time)
}

func TestParse_ExplicitYearIsKept(t *testing.T) {
	spans := Parse("file archive march 1, 2020", ref)

	require.Len(t, spans, 1)
	assert.Equal(t, time.Date(2020, time.March, 1, 0, 0, 0, 0, time.UTC), spans[0].Time)
}

func TestParse_InRelative(t *testing.T) {
	spans := Parse("check oven in 30 minutes", ref)
	require.Len(t, spans, 1)
	assert.Equal(t, ref.Add(30*time.Minute), spans[0].Time)
	assert.True(t, spans[0].CertainHour)

	spans = Parse("water plants in 2 days", ref)
	require.Len(t, spans, 1)
	assert.Equal(t, time.Date(2024, time.January, 3, 0, 0, 0, 0, time.UTC), spans[0].Time)
	assert.False(t, spans[0].CertainHour)
}

func TestParse_TwentyFourHourClock(t *testing.T) {
	spans := Parse("call bank tomorrow 14:30", ref)

	require.Len(t, spans, 1)
	assert.Equal(t, time.Date(2024, time.January, 2, 14, 30, 0, 0, time.UTC), spans[0].Time)
	assert.True(t, spans[0].CertainHour)
}

func TestParse_NoonAndTonight(t *testing.T) {
	spans := Parse("lunch at noon", ref)
	require.Len(t, spans, 1)
	assert.Equal(t, 12, spans[0].Time.Hour())
	assert.True(t, spans[0].CertainHour)

	spans = Parse("take out trash tonight", ref)
	require.Len(t, spans, 1)
	assert.Equal(t, time.Date(2024, time.January, 1, 20, 0, 0, 0, time.UTC), spans[0].Time)
	assert.True(t, spans[0].CertainHour)
}

func TestParse_SpanOffsets(t *testing.T) {
	text := "pay rent tomorrow"
	spans := Parse(text, ref)

	require.Len(t, spans, 1)
	assert.Equal(t, "tomorrow", text[spans[0].Start:spans[0].End])
}

func TestRelativeDayName(t *testing.T) {
	assert.Equal(t, "Today", RelativeDayName(ref, ref))
	assert.Equal(t, "Tomorrow", RelativeDayName(ref.AddDate(0, 0, 1), ref))
	assert.Equal(t, "Yesterday", RelativeDayName(ref.AddDate(0, 0, -1), ref))
	assert.Equal(t, "", RelativeDayName(ref.AddDate(0, 0, 4), ref))
}
