package recurrence

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidRule = errors.New("invalid recurrence rule")
)

type Type string

const (
	TypeDaily  Type = "daily"
	TypeWeekly Type = "weekly"
)

// Rule es la regla de repetición de un horario: cada N días o cada N semanas.
type Rule struct {
	Type  Type
	Units int
}

func (r Rule) Validate() error {
	if r.Type != TypeDaily && r.Type != TypeWeekly {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidRule, r.Type)
	}
	if r.Units < 1 {
		return fmt.Errorf("%w: units must be >= 1", ErrInvalidRule)
	}
	return nil
}

// DaysPerOccurrence devuelve cuántos días separan dos ocurrencias.
func (r Rule) DaysPerOccurrence() (int, error) {
	switch r.Type {
	case TypeDaily:
		return r.Units, nil
	case TypeWeekly:
		return 7 * r.Units, nil
	default:
		return 0, fmt.Errorf("%w: unknown type %q", ErrInvalidRule, r.Type)
	}
}

// IsActiveOn decide si hay una ocurrencia en la fecha dada. La comparación es
// a granularidad de día: tanto startingAt como date se truncan a medianoche,
// la hora del horario solo importa para el timestamp de la ocurrencia.
func IsActiveOn(rule Rule, startingAt time.Time, endingAtInclusive *time.Time, date time.Time) (bool, error) {
	per, err := rule.DaysPerOccurrence()
	if err != nil {
		return false, err
	}

	day := Midnight(date)
	start := Midnight(startingAt)

	if day.Before(start) {
		return false, nil
	}
	if endingAtInclusive != nil && day.After(Midnight(*endingAtInclusive)) {
		return false, nil
	}

	return DaysBetween(start, day)%per == 0, nil
}

// Midnight trunca un instante a las 00:00 de su día.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysBetween cuenta días completos desde from hasta to (negativo si to es
// anterior). Ambos se truncan a medianoche antes de restar.
func DaysBetween(from, to time.Time) int {
	f := Midnight(from)
	t := Midnight(to)

	d := t.Sub(f)
	days := int(d.Hours() / 24)
	// Redondeo por si un cambio horario deja el día en 23h o 25h.
	if rem := d - time.Duration(days)*24*time.Hour; rem >= 12*time.Hour {
		days++
	} else if rem <= -12*time.Hour {
		days--
	}
	return days
}

// TimeOfDay es la hora del día (HH:MM) en la que cae cada ocurrencia.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("time must be HH:MM: %w", err)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// OccurrenceTime combina una fecha con la hora del horario.
func OccurrenceTime(date time.Time, at TimeOfDay) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, at.Hour, at.Minute, 0, 0, date.Location())
}
