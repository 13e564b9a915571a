package indicadores

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// UploadMetas recibe el mapa año -> quarter -> meta. Crea los contadores que
// falten con progreso 0 y, si la fila ya existe, sobrescribe solo la meta.
// Repetir la misma carga no altera el progreso acumulado.
func (s *Service) UploadMetas(ctx context.Context, indicadorID string, metas map[string]map[string]int) error {
	if strings.TrimSpace(indicadorID) == "" || len(metas) == 0 {
		return ErrInvalidInput
	}

	return s.repo.InTx(ctx, func(repo Repository) error {
		for year, quarters := range metas {
			for quarter, meta := range quarters {
				p, err := repo.Get(ctx, indicadorID, year, quarter)
				if err != nil {
					p = ProgresoIndicador{
						IndicadorID: indicadorID,
						Year:        year,
						Quarter:     quarter,
						Progreso:    0,
					}
				}
				p.Meta = meta
				if err := repo.Upsert(ctx, p); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// Resumen son los dos mapas año -> quarter que consume el front.
type Resumen struct {
	Metas     map[string]map[string]int `json:"metas"`
	Progresos map[string]map[string]int `json:"progresos"`
}

func (s *Service) GetProgresos(ctx context.Context, indicadorID string) (Resumen, error) {
	if strings.TrimSpace(indicadorID) == "" {
		return Resumen{}, ErrInvalidInput
	}

	rows, err := s.repo.ListByIndicador(ctx, indicadorID)
	if err != nil {
		return Resumen{}, err
	}

	out := Resumen{
		Metas:     make(map[string]map[string]int),
		Progresos: make(map[string]map[string]int),
	}
	for _, p := range rows {
		if out.Metas[p.Year] == nil {
			out.Metas[p.Year] = make(map[string]int)
			out.Progresos[p.Year] = make(map[string]int)
		}
		out.Metas[p.Year][p.Quarter] = p.Meta
		out.Progresos[p.Year][p.Quarter] = p.Progreso
	}
	return out, nil
}

// SumarProgresos aplica una consolidación al ledger. Por cada indicador con
// conteo positivo incrementa exactamente siete contadores: (año, quarter),
// (año, Total), los cuatro (LOP, T1..T4) y (LOP, Total). Los cuatro buckets
// LOP de quarter se incrementan siempre, sin importar cuál quarter disparó la
// llamada; así acumuló siempre el sistema y cambiarlo rompería los reportes
// históricos. Si falta cualquier contador no se escribe nada.
func (s *Service) SumarProgresos(ctx context.Context, year, quarter string, validosPorIndicador map[string]int) error {
	if strings.TrimSpace(year) == "" || strings.TrimSpace(quarter) == "" {
		return ErrInvalidInput
	}

	buckets := fanOutBuckets(year, quarter)

	return s.repo.InTx(ctx, func(repo Repository) error {
		for indicadorID, validos := range validosPorIndicador {
			if validos <= 0 {
				continue
			}
			for _, b := range buckets {
				if _, err := repo.Get(ctx, indicadorID, b[0], b[1]); err != nil {
					return ErrNotFound
				}
			}
			for _, b := range buckets {
				if err := repo.AddProgreso(ctx, indicadorID, b[0], b[1], validos); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func fanOutBuckets(year, quarter string) [][2]string {
	buckets := [][2]string{
		{year, quarter},
		{year, QuarterTotal},
	}
	for _, q := range Quarters {
		buckets = append(buckets, [2]string{YearLOP, q})
	}
	return append(buckets, [2]string{YearLOP, QuarterTotal})
}
