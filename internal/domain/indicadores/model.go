package indicadores

// Year y Quarter son strings porque conviven valores de calendario ("2024",
// "T1") con los centinelas de vida del programa.
const (
	YearLOP      = "LOP"
	QuarterTotal = "Total"
)

// Quarters son los subperíodos fiscales reales, sin el total.
var Quarters = []string{"T1", "T2", "T3", "T4"}

// ProgresoIndicador es una fila del ledger: un contador por
// (indicador, año, quarter) con su meta.
type ProgresoIndicador struct {
	IndicadorID string
	Year        string
	Quarter     string
	Meta        int
	Progreso    int
}
