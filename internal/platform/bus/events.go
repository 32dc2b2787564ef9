package bus

import "github.com/shopspring/decimal"

type Event interface {
	EventName() string
}

// MedicationDeleted dispara la cascada de borrado: horarios, lotes del
// botiquín y tomas registradas del medicamento.
type MedicationDeleted struct {
	MedicationID string `json:"medicationId"`
}

func (MedicationDeleted) EventName() string { return "medication.deleted" }

// ScheduleDeleted dispara el borrado de las tomas registradas del horario.
type ScheduleDeleted struct {
	ScheduleID string `json:"scheduleId"`
}

func (ScheduleDeleted) EventName() string { return "schedule.deleted" }

// IntakeCompleted anuncia una toma registrada; el suscriptor descuenta la
// dosis del stock del medicamento.
type IntakeCompleted struct {
	MedicationID string          `json:"medicationId"`
	Dose         decimal.Decimal `json:"dose"`
}

func (IntakeCompleted) EventName() string { return "intake.completed" }
