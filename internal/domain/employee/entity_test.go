package employee

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDaySchedule_Expected(t *testing.T) {
	tests := []struct {
		name string
		day  DaySchedule
		want time.Duration
	}{
		{"full day with break", DaySchedule{IsWorkDay: true, Entry: "08:00", BreakStart: "12:00", BreakEnd: "13:00", Exit: "17:00"}, 8 * time.Hour},
		{"no break", DaySchedule{IsWorkDay: true, Entry: "08:00", Exit: "12:00"}, 4 * time.Hour},
		{"day off", DaySchedule{IsWorkDay: false, Entry: "08:00", Exit: "17:00"}, 0},
		{"missing exit", DaySchedule{IsWorkDay: true, Entry: "08:00"}, 0},
		{"garbled clock", DaySchedule{IsWorkDay: true, Entry: "8h", Exit: "17:00"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.day.Expected())
		})
	}
}

func TestDaySchedule_EntryOn(t *testing.T) {
	loc := time.FixedZone("BRT", -3*3600)
	day := DaySchedule{IsWorkDay: true, Entry: "08:30", Exit: "17:00"}

	got, ok := day.EntryOn(time.Date(2024, 3, 4, 15, 12, 0, 0, loc))
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 4, 8, 30, 0, 0, loc), got)

	_, ok = DaySchedule{IsWorkDay: false, Entry: "08:00"}.EntryOn(got)
	assert.False(t, ok)
	_, ok = DaySchedule{IsWorkDay: true}.EntryOn(got)
	assert.False(t, ok)
}

func TestWeeklySchedule_DayFor(t *testing.T) {
	saturday := &DaySchedule{IsWorkDay: true, Entry: "08:00", Exit: "12:00"}
	w := &WeeklySchedule{
		Monday:   &DaySchedule{IsWorkDay: true, Entry: "09:00", Exit: "18:00"},
		Saturday: saturday,
		Weekday:  &DaySchedule{Entry: "08:00", BreakStart: "12:00", BreakEnd: "13:00", Exit: "17:00"},
	}

	assert.Equal(t, "09:00", w.DayFor(time.Monday).Entry)

	tuesday := w.DayFor(time.Tuesday)
	require.NotNil(t, tuesday)
	assert.True(t, tuesday.IsWorkDay)
	assert.Equal(t, "08:00", tuesday.Entry)

	assert.Same(t, saturday, w.DayFor(time.Saturday))
	assert.Nil(t, w.DayFor(time.Sunday))

	var none *WeeklySchedule
	assert.Nil(t, none.DayFor(time.Monday))
	assert.Zero(t, none.ExpectedOn(time.Now()))
}

func TestWeeklySchedule_LegacyJSON(t *testing.T) {
	raw := `{"weekday":{"entry":"08:00","break_start":"12:00","break_end":"13:00","exit":"17:00"},"saturday":{"is_work_day":false}}`

	var w WeeklySchedule
	require.NoError(t, w.Scan([]byte(raw)))

	// 2024-03-06 is a Wednesday.
	assert.Equal(t, 8*time.Hour, w.ExpectedOn(time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)))
	assert.Zero(t, w.ExpectedOn(time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)))

	out, err := json.Marshal(&w)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"weekday"`)
}

func TestWeeklySchedule_Validate(t *testing.T) {
	assert.NoError(t, DefaultWeeklySchedule().Validate())

	bad := &WeeklySchedule{Monday: &DaySchedule{IsWorkDay: true, Entry: "25:00", Exit: "17:00"}}
	assert.ErrorContains(t, bad.Validate(), "monday")

	noExit := &WeeklySchedule{Friday: &DaySchedule{IsWorkDay: true, Entry: "08:00"}}
	assert.ErrorContains(t, noExit.Validate(), "entry and exit")
}

func TestEmployee_Tags(t *testing.T) {
	e := Employee{Status: StatusActive, AllowedLocations: []string{TagKiosk, "Sede"}}
	assert.True(t, e.IsActive())
	assert.True(t, e.HasTag(TagKiosk))
	assert.True(t, e.HasTag("Sede"))
	assert.False(t, e.HasTag(TagExternal))
}
