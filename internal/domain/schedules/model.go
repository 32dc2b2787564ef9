package schedules

import (
	"time"

	"github.com/shopspring/decimal"

	"med-cabinet/internal/domain/medications"
	"med-cabinet/internal/domain/recurrence"
)

// Schedule define una pauta de toma: dosis por ocurrencia, periodo de
// vigencia y regla de repetición. startingAt/endingAtInclusive se guardan
// normalizados a medianoche porque la recurrencia se evalúa por día.
type Schedule struct {
	ID           string
	MedicationID string

	Dose decimal.Decimal

	StartingAt        time.Time
	EndingAtInclusive *time.Time

	Recurrence recurrence.Rule
	Time       recurrence.TimeOfDay

	Description string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Entry es un horario unido con su medicamento, tal como se lista.
type Entry struct {
	Schedule
	Medication medications.Medication
}
