package intakes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"med-cabinet/internal/platform/bus"
	"med-cabinet/internal/platform/logger"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

// Workflow registra una toma y anuncia IntakeCompleted en el bus; el
// suscriptor cableado al arranque descuenta la dosis del stock. Registro y
// descuento NO son una transacción: si el descuento no encuentra stock (o
// falla), la toma queda registrada igual. Tampoco hay guarda contra
// completar dos veces la misma ocurrencia; hacerlo crea dos registros y
// descuenta la dosis dos veces.
type Workflow struct {
	resolver *Resolver
	repo     Repository
	bus      *bus.Bus
	log      logger.Logger
	now      func() time.Time
}

func NewWorkflow(resolver *Resolver, repo Repository, b *bus.Bus, log logger.Logger) *Workflow {
	return &Workflow{
		resolver: resolver,
		repo:     repo,
		bus:      b,
		log:      log,
		now:      time.Now,
	}
}

type CompleteInput struct {
	ScheduleID    string
	ScheduledDate time.Time
}

func (w *Workflow) Complete(ctx context.Context, in CompleteInput) (CompletedIntake, error) {
	in.ScheduleID = strings.TrimSpace(in.ScheduleID)
	if in.ScheduleID == "" || in.ScheduledDate.IsZero() {
		return CompletedIntake{}, ErrInvalidInput
	}

	sch, err := w.resolver.catalog.GetByID(ctx, in.ScheduleID)
	if err != nil {
		return CompletedIntake{}, fmt.Errorf("%w: schedule %q", ErrInvalidInput, in.ScheduleID)
	}

	c := CompletedIntake{
		ID:            uuid.NewString(),
		ScheduleID:    sch.ID,
		ScheduledDate: in.ScheduledDate,
		CompletedDate: w.now(),
	}
	if err := w.repo.Create(ctx, c); err != nil {
		return CompletedIntake{}, err
	}

	w.log.Info("intake completed", map[string]any{
		"schedule_id":   sch.ID,
		"medication_id": sch.MedicationID,
		"dose":          sch.Dose.String(),
	})
	w.bus.Publish(ctx, bus.IntakeCompleted{
		MedicationID: sch.MedicationID,
		Dose:         sch.Dose,
	})

	return c, nil
}

// DeleteBySchedules corre en las cascadas de borrado (horario o medicamento
// borrado); best-effort, el fallo solo se registra.
func (w *Workflow) DeleteBySchedules(ctx context.Context, scheduleIDs []string) {
	if len(scheduleIDs) == 0 {
		return
	}
	if err := w.repo.DeleteBySchedules(ctx, scheduleIDs); err != nil {
		w.log.Error("cascade delete of completed intakes failed", map[string]any{
			"schedules": len(scheduleIDs),
			"error":     err.Error(),
		})
	}
}
