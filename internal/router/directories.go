package router

import (
	"context"

	"program-monitoring-api/internal/domain/eventos"
	"program-monitoring-api/internal/domain/registros"
)

// tareaDirectory resuelve tareas planificadas desde el ledger de registros.
type tareaDirectory struct {
	regs *registros.Service
}

func (d tareaDirectory) Resolve(ctx context.Context, tareaID string) (eventos.TareaInfo, error) {
	rec, err := d.regs.GetByID(ctx, registros.KindTarea, tareaID)
	if err != nil {
		return eventos.TareaInfo{}, err
	}
	return eventos.TareaInfo{
		ComponenteID: rec.Payload.Str("componenteId"),
		QuarterID:    rec.Payload.Str("quarterId"),
	}, nil
}

func (d tareaDirectory) IncrementEventosRealizados(ctx context.Context, tareaID string) error {
	return d.regs.IncrementCounter(ctx, registros.KindTarea, tareaID, "eventosRealizados")
}

// quarterDirectory resuelve el nombre ("T1-2024") de un quarter.
type quarterDirectory struct {
	regs *registros.Service
}

func (d quarterDirectory) NombreOf(ctx context.Context, quarterID string) (string, error) {
	rec, err := d.regs.GetByID(ctx, registros.KindQuarter, quarterID)
	if err != nil {
		return "", err
	}
	return rec.Payload.Str("nombre"), nil
}
