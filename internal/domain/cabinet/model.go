package cabinet

import (
	"time"

	"github.com/shopspring/decimal"
)

// Entry es un lote físico (una caja/envase) de un medicamento. Un
// medicamento puede tener varios lotes a la vez, cada uno con su propio
// remanente y fecha de caducidad.
type Entry struct {
	ID           string
	MedicationID string

	Units        decimal.Decimal // remanente actual, >= 0
	InitialUnits decimal.Decimal // >= Units
	ExpiryDate   time.Time       // granularidad de día

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Aggregate es el stock agregado de un medicamento sobre todos sus lotes.
type Aggregate struct {
	MedicationID       string
	TotalAvailableDose decimal.Decimal
	AverageInitialDose decimal.Decimal
}
