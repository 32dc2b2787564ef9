package medications

import "time"

type Medication struct {
	ID               string
	Name             string
	MedicationTypeID string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// MedicationType es data de referencia inmutable, sembrada al arrancar si
// falta (ver Service.SeedTypes). Individual distingue dosis discretas
// (cápsulas, comprimidos) de continuas (ml de un inyectable).
type MedicationType struct {
	ID         string
	Name       string
	Unit       string
	Individual bool
}
