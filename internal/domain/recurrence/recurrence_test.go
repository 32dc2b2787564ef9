package recurrence

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDaysPerOccurrence(t *testing.T) {
	cases := []struct {
		rule Rule
		want int
	}{
		{Rule{Type: TypeDaily, Units: 1}, 1},
		{Rule{Type: TypeDaily, Units: 3}, 3},
		{Rule{Type: TypeWeekly, Units: 1}, 7},
		{Rule{Type: TypeWeekly, Units: 2}, 14},
	}
	for _, c := range cases {
		got, err := c.rule.DaysPerOccurrence()
		if err != nil {
			t.Fatalf("DaysPerOccurrence(%+v): %v", c.rule, err)
		}
		if got != c.want {
			t.Fatalf("DaysPerOccurrence(%+v) = %d, want %d", c.rule, got, c.want)
		}
	}
}

func TestDaysPerOccurrence_UnknownType(t *testing.T) {
	_, err := Rule{Type: "monthly", Units: 1}.DaysPerOccurrence()
	if err == nil {
		t.Fatal("expected error for unknown recurrence type")
	}
}

func TestIsActiveOn_DailyEveryDay(t *testing.T) {
	rule := Rule{Type: TypeDaily, Units: 1}
	start := date(2024, 3, 1)

	// Sin fecha fin: activo todos los días desde el inicio.
	for i := 0; i < 30; i++ {
		d := start.AddDate(0, 0, i)
		ok, err := IsActiveOn(rule, start, nil, d)
		if err != nil {
			t.Fatalf("IsActiveOn: %v", err)
		}
		if !ok {
			t.Fatalf("daily(1) should be active on %s", d)
		}
	}

	ok, _ := IsActiveOn(rule, start, nil, date(2024, 2, 29))
	if ok {
		t.Fatal("should not be active before startingAt")
	}
}

func TestIsActiveOn_WeeklyInterval(t *testing.T) {
	rule := Rule{Type: TypeWeekly, Units: 2}
	start := date(2024, 1, 1)

	for i := 0; i < 60; i++ {
		d := start.AddDate(0, 0, i)
		ok, err := IsActiveOn(rule, start, nil, d)
		if err != nil {
			t.Fatalf("IsActiveOn: %v", err)
		}
		want := i%14 == 0
		if ok != want {
			t.Fatalf("weekly(2) on day offset %d: got %v, want %v", i, ok, want)
		}
	}
}

func TestIsActiveOn_RespectsEndingAtInclusive(t *testing.T) {
	rule := Rule{Type: TypeDaily, Units: 1}
	start := date(2024, 1, 1)
	end := date(2024, 1, 10)

	ok, _ := IsActiveOn(rule, start, &end, date(2024, 1, 10))
	if !ok {
		t.Fatal("endingAtInclusive is inclusive, should be active on the last day")
	}

	ok, _ = IsActiveOn(rule, start, &end, date(2024, 1, 11))
	if ok {
		t.Fatal("should not be active after endingAtInclusive")
	}
}

func TestIsActiveOn_TimeOfDayIrrelevant(t *testing.T) {
	rule := Rule{Type: TypeDaily, Units: 2}
	start := time.Date(2024, 5, 1, 23, 45, 0, 0, time.UTC)

	// Consulta al final del día activo: sigue contando como el mismo día.
	ok, err := IsActiveOn(rule, start, nil, time.Date(2024, 5, 3, 8, 30, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("IsActiveOn: %v", err)
	}
	if !ok {
		t.Fatal("activity must be decided at midnight resolution")
	}
}

func TestParseTimeOfDay(t *testing.T) {
	at, err := ParseTimeOfDay("08:30")
	if err != nil {
		t.Fatalf("ParseTimeOfDay: %v", err)
	}
	if at.Hour != 8 || at.Minute != 30 {
		t.Fatalf("got %+v", at)
	}
	if at.String() != "08:30" {
		t.Fatalf("String() = %q", at.String())
	}

	if _, err := ParseTimeOfDay("25:00"); err == nil {
		t.Fatal("expected error for invalid hour")
	}
}

func TestOccurrenceTime(t *testing.T) {
	got := OccurrenceTime(date(2024, 6, 15), TimeOfDay{Hour: 21, Minute: 5})
	want := time.Date(2024, 6, 15, 21, 5, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("OccurrenceTime = %s, want %s", got, want)
	}
}

func TestDaysBetween(t *testing.T) {
	if got := DaysBetween(date(2024, 1, 1), date(2024, 1, 31)); got != 30 {
		t.Fatalf("DaysBetween = %d, want 30", got)
	}
	if got := DaysBetween(date(2024, 1, 31), date(2024, 1, 1)); got != -30 {
		t.Fatalf("DaysBetween = %d, want -30", got)
	}
	// Cruza el 29 de febrero.
	if got := DaysBetween(date(2024, 2, 28), date(2024, 3, 1)); got != 2 {
		t.Fatalf("DaysBetween across leap day = %d, want 2", got)
	}
}
