package eventos

import (
	"context"
	"errors"
	"testing"
	"time"

	"program-monitoring-api/internal/listing"
)

// -------------------------
// Test repo y colaboradores
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type testRefKey struct {
	eventoID string
	kind     RefKind
}

type testPartKey struct {
	eventoID       string
	participanteID string
}

type testRepo struct {
	byID          map[string]Evento
	refs          map[testRefKey][]string
	participantes map[testPartKey]Participante
	logros        []LogroParticipante
}

func newEventosTestRepo() *testRepo {
	return &testRepo{
		byID:          map[string]Evento{},
		refs:          map[testRefKey][]string{},
		participantes: map[testPartKey]Participante{},
	}
}

func (r *testRepo) Create(ctx context.Context, e Evento) error {
	if e.ID == "" {
		return errors.New("repo: id required")
	}
	if _, ok := r.byID[e.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.byID[e.ID] = e
	return nil
}

func (r *testRepo) Update(ctx context.Context, e Evento) error {
	if _, ok := r.byID[e.ID]; !ok {
		return errRepoNotFound
	}
	r.byID[e.ID] = e
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Evento, error) {
	e, ok := r.byID[id]
	if !ok {
		return Evento{}, errRepoNotFound
	}
	return e, nil
}

func (r *testRepo) List(ctx context.Context, sel listing.Selection, page, pageSize int) ([]Evento, int, error) {
	out := make([]Evento, 0)
	for _, e := range r.byID {
		if sel.Matches(e.Fields()) {
			out = append(out, e)
		}
	}
	return out, len(out), nil
}

func (r *testRepo) ListTablero(ctx context.Context, quarterID, componenteID string) ([]Evento, error) {
	out := make([]Evento, 0)
	for _, e := range r.byID {
		if e.QuarterID == quarterID && e.ComponenteEncargadoID == componenteID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *testRepo) ReplaceRefs(ctx context.Context, eventoID string, kind RefKind, ids []string) error {
	r.refs[testRefKey{eventoID, kind}] = append([]string(nil), ids...)
	return nil
}

func (r *testRepo) ListRefs(ctx context.Context, eventoID string, kind RefKind) ([]string, error) {
	return r.refs[testRefKey{eventoID, kind}], nil
}

func (r *testRepo) ReplaceParticipantes(ctx context.Context, eventoID string, participanteIDs []string) error {
	for key := range r.participantes {
		if key.eventoID == eventoID {
			delete(r.participantes, key)
		}
	}
	for _, pid := range participanteIDs {
		r.participantes[testPartKey{eventoID, pid}] = Participante{EventoID: eventoID, ParticipanteID: pid}
	}
	return nil
}

func (r *testRepo) ListParticipantes(ctx context.Context, eventoID string) ([]Participante, error) {
	out := make([]Participante, 0)
	for key, p := range r.participantes {
		if key.eventoID == eventoID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *testRepo) UpdateParticipante(ctx context.Context, p Participante) error {
	key := testPartKey{p.EventoID, p.ParticipanteID}
	if _, ok := r.participantes[key]; !ok {
		return errRepoNotFound
	}
	r.participantes[key] = p
	return nil
}

func (r *testRepo) AddLogro(ctx context.Context, l LogroParticipante) error {
	r.logros = append(r.logros, l)
	return nil
}

func (r *testRepo) ListLogros(ctx context.Context, participanteID string) ([]LogroParticipante, error) {
	out := make([]LogroParticipante, 0)
	for _, l := range r.logros {
		if l.ParticipanteID == participanteID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *testRepo) InTx(ctx context.Context, fn func(Repository) error) error {
	return fn(r)
}

type testTareas struct {
	componenteID string
	quarterID    string
	incrementos  map[string]int
}

func (t *testTareas) Resolve(ctx context.Context, tareaID string) (TareaInfo, error) {
	if tareaID == "missing" {
		return TareaInfo{}, errors.New("tarea not found")
	}
	return TareaInfo{ComponenteID: t.componenteID, QuarterID: t.quarterID}, nil
}

func (t *testTareas) IncrementEventosRealizados(ctx context.Context, tareaID string) error {
	if t.incrementos == nil {
		t.incrementos = map[string]int{}
	}
	t.incrementos[tareaID]++
	return nil
}

type testQuarters struct {
	nombre string
}

func (q testQuarters) NombreOf(ctx context.Context, quarterID string) (string, error) {
	return q.nombre, nil
}

type ledgerCall struct {
	year    string
	quarter string
	conteo  map[string]int
}

type testLedger struct {
	calls []ledgerCall
}

func (l *testLedger) SumarProgresos(ctx context.Context, year, quarter string, validosPorIndicador map[string]int) error {
	l.calls = append(l.calls, ledgerCall{year: year, quarter: quarter, conteo: validosPorIndicador})
	return nil
}

type fixture struct {
	repo     *testRepo
	tareas   *testTareas
	quarters testQuarters
	ledger   *testLedger
	svc      *Service
}

func newFixture() *fixture {
	f := &fixture{
		repo:     newEventosTestRepo(),
		tareas:   &testTareas{componenteID: "comp-1", quarterID: "q-1"},
		quarters: testQuarters{nombre: "T1-2024"},
		ledger:   &testLedger{},
	}
	f.svc = NewService(f.repo, f.tareas, f.quarters, f.ledger)
	f.svc.now = func() time.Time {
		return time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	}
	return f
}

func createInput() CreateInput {
	return CreateInput{
		TareaID:     "tarea-1",
		Nombre:      "Taller de riego",
		FechaInicio: time.Date(2024, 2, 5, 8, 0, 0, 0, time.UTC),
		FechaFinal:  time.Date(2024, 2, 5, 17, 0, 0, 0, time.UTC),
		Componentes: []string{"comp-1", "comp-2"},
	}
}

// -------------------------
// Tests
// -------------------------

func TestCreate_ResuelveTareaYSubeContador(t *testing.T) {
	f := newFixture()

	e, err := f.svc.Create(context.Background(), createInput(), "user-1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if e.ComponenteEncargadoID != "comp-1" || e.QuarterID != "q-1" {
		t.Fatalf("expected componente/quarter resolved from tarea, got %s/%s",
			e.ComponenteEncargadoID, e.QuarterID)
	}
	if e.EstadoRealizacion != EstadoPendiente {
		t.Fatalf("expected realización Pendiente, got %s", e.EstadoRealizacion)
	}
	if f.tareas.incrementos["tarea-1"] != 1 {
		t.Fatalf("expected counter incremented once, got %d", f.tareas.incrementos["tarea-1"])
	}

	refs, _ := f.repo.ListRefs(context.Background(), e.ID, RefComponentes)
	if len(refs) != 2 {
		t.Fatalf("expected 2 componentes, got %d", len(refs))
	}
}

func TestEdit_NoTocaContadorNiCambiaTarea(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	e, _ := f.svc.Create(ctx, createInput(), "user-1")

	in := createInput()
	in.Nombre = "Taller de riego (reprogramado)"
	if _, err := f.svc.Edit(ctx, e.ID, in, "user-2"); err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if f.tareas.incrementos["tarea-1"] != 1 {
		t.Fatalf("edit must not touch the counter, got %d", f.tareas.incrementos["tarea-1"])
	}

	in.TareaID = "tarea-2"
	if _, err := f.svc.Edit(ctx, e.ID, in, "user-2"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput on tarea change, got %v", err)
	}
}

func TestFinalizar_ArmaEjesDeRevisionYDigitacion(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	e, _ := f.svc.Create(ctx, createInput(), "user-1")

	out, err := f.svc.Finalizar(ctx, e.ID, FinalizarInput{
		NumeroFormulario: "F-01",
		Sectores:         []string{"sec-1"},
		Niveles:          []string{"niv-1"},
	}, "user-1")
	if err != nil {
		t.Fatalf("Finalizar: %v", err)
	}
	if out.EstadoRealizacion != EstadoFinalizado {
		t.Fatalf("expected realización Finalizado, got %s", out.EstadoRealizacion)
	}
	if out.EstadoRevisionFinalizacion != EstadoPendiente || out.EstadoDigitacion != EstadoPendiente {
		t.Fatalf("expected revisión/digitación Pendiente, got %s/%s",
			out.EstadoRevisionFinalizacion, out.EstadoDigitacion)
	}
	if out.FechaFinalizacion == nil || out.ResponsableFinalizacionID != "user-1" {
		t.Fatal("expected finalización metadata set")
	}
}

func TestEditFinalizar_LimpiaRevisionYDigitacionPrevias(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	e, _ := f.svc.Create(ctx, createInput(), "user-1")
	_, _ = f.svc.Finalizar(ctx, e.ID, FinalizarInput{}, "user-1")
	_, _, _ = f.svc.GetParaDigitar(ctx, e.ID, "digitador-1")

	out, err := f.svc.EditFinalizar(ctx, e.ID, FinalizarInput{NumeroFormulario: "F-02"}, "user-1")
	if err != nil {
		t.Fatalf("EditFinalizar: %v", err)
	}
	if out.ResponsableDigitacionID != "" || out.FechaDigitacion != nil {
		t.Fatal("expected digitación cleared")
	}
	if out.RevisorFinalizacionID != "" || out.FechaRevisionFinalizacion != nil {
		t.Fatal("expected revisión de finalización cleared")
	}
	if out.EstadoDigitacion != EstadoPendiente {
		t.Fatalf("expected digitación Pendiente, got %s", out.EstadoDigitacion)
	}
}

func TestReportar_RechazaEnCascada(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	e, _ := f.svc.Create(ctx, createInput(), "user-1")
	_, _ = f.svc.Finalizar(ctx, e.ID, FinalizarInput{}, "user-1")

	out, err := f.svc.Reportar(ctx, e.ID, "formulario ilegible", "revisor-1")
	if err != nil {
		t.Fatalf("Reportar: %v", err)
	}
	if out.EstadoRevisionFinalizacion != EstadoRechazado || out.EstadoDigitacion != EstadoRechazado {
		t.Fatalf("expected rechazo en cascada, got %s/%s",
			out.EstadoRevisionFinalizacion, out.EstadoDigitacion)
	}
	if out.ObservacionesFinalizacion != "formulario ilegible" {
		t.Fatalf("expected observaciones, got %q", out.ObservacionesFinalizacion)
	}
}

func TestGetParaDigitar_PrimeraLecturaTomaElEvento(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	e, _ := f.svc.Create(ctx, createInput(), "user-1")
	_, _ = f.svc.Finalizar(ctx, e.ID, FinalizarInput{}, "user-1")

	out, _, err := f.svc.GetParaDigitar(ctx, e.ID, "digitador-1")
	if err != nil {
		t.Fatalf("GetParaDigitar: %v", err)
	}
	if out.EstadoDigitacion != EstadoEnCurso || out.ResponsableDigitacionID != "digitador-1" {
		t.Fatalf("expected En Curso con responsable, got %s/%s",
			out.EstadoDigitacion, out.ResponsableDigitacionID)
	}

	// La segunda lectura de otro responsable no roba el evento.
	out, _, err = f.svc.GetParaDigitar(ctx, e.ID, "digitador-2")
	if err != nil {
		t.Fatalf("GetParaDigitar (2): %v", err)
	}
	if out.ResponsableDigitacionID != "digitador-1" {
		t.Fatalf("expected responsable unchanged, got %s", out.ResponsableDigitacionID)
	}
}

func TestSubmitParticipantes_ValidaFinalizacionImplicitamente(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	e, _ := f.svc.Create(ctx, createInput(), "user-1")
	_, _ = f.svc.Finalizar(ctx, e.ID, FinalizarInput{}, "user-1")

	out, err := f.svc.SubmitParticipantes(ctx, e.ID, ParticipantesInput{
		RegistradosHombres: 3,
		Participantes:      []string{"ben-1", "ben-2"},
	}, "digitador-1")
	if err != nil {
		t.Fatalf("SubmitParticipantes: %v", err)
	}
	if out.EstadoDigitacion != EstadoFinalizado {
		t.Fatalf("expected digitación Finalizado, got %s", out.EstadoDigitacion)
	}
	if out.EstadoRevisionFinalizacion != EstadoValidado {
		t.Fatalf("expected revisión de finalización Validado, got %s", out.EstadoRevisionFinalizacion)
	}
	if out.EstadoRevisionDigitacion != EstadoPendiente {
		t.Fatalf("expected revisión de digitación Pendiente, got %s", out.EstadoRevisionDigitacion)
	}

	parts, _ := f.repo.ListParticipantes(ctx, e.ID)
	if len(parts) != 2 {
		t.Fatalf("expected 2 participantes, got %d", len(parts))
	}
}

func TestReviewParticipantes_AprobarHabilitaConsolidacion(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	e, _ := f.svc.Create(ctx, createInput(), "user-1")
	_, _ = f.svc.Finalizar(ctx, e.ID, FinalizarInput{}, "user-1")
	_, _ = f.svc.SubmitParticipantes(ctx, e.ID, ParticipantesInput{Participantes: []string{"ben-1"}}, "digitador-1")

	out, err := f.svc.ReviewParticipantes(ctx, e.ID, true, "", "revisor-1")
	if err != nil {
		t.Fatalf("ReviewParticipantes: %v", err)
	}
	if out.EstadoRevisionDigitacion != EstadoAprobado || out.EstadoConsolidado != EstadoPendiente {
		t.Fatalf("expected Aprobado + consolidado Pendiente, got %s/%s",
			out.EstadoRevisionDigitacion, out.EstadoConsolidado)
	}

	out, err = f.svc.ReviewParticipantes(ctx, e.ID, false, "faltan filas", "revisor-1")
	if err != nil {
		t.Fatalf("ReviewParticipantes (reject): %v", err)
	}
	if out.EstadoRevisionDigitacion != EstadoRechazado || out.EstadoConsolidado != "" {
		t.Fatalf("expected Rechazado + consolidado deshabilitado, got %s/%q",
			out.EstadoRevisionDigitacion, out.EstadoConsolidado)
	}
}

func TestConsolidar_FlujoCompleto(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	e, _ := f.svc.Create(ctx, createInput(), "user-1")
	_, _ = f.svc.Finalizar(ctx, e.ID, FinalizarInput{}, "user-1")
	_, _ = f.svc.SubmitParticipantes(ctx, e.ID, ParticipantesInput{Participantes: []string{"ben-1", "ben-2"}}, "digitador-1")
	_, _ = f.svc.ReviewParticipantes(ctx, e.ID, true, "", "revisor-1")

	out, err := f.svc.Consolidar(ctx, e.ID, ConsolidarInput{
		Participantes: []ParticipanteConsolidado{
			{ID: "ben-1", Estado: ParticipanteValido, IndicadorID: "ind-A"},
			{ID: "ben-2", Estado: ParticipanteInvalido},
		},
		Conteo: map[string]int{"ind-A": 1},
	}, "consolidador-1")
	if err != nil {
		t.Fatalf("Consolidar: %v", err)
	}
	if out.EstadoConsolidado != EstadoFinalizado {
		t.Fatalf("expected consolidado Finalizado, got %s", out.EstadoConsolidado)
	}

	// El nombre del quarter "T1-2024" alimenta el ledger como (2024, T1).
	if len(f.ledger.calls) != 1 {
		t.Fatalf("expected 1 ledger call, got %d", len(f.ledger.calls))
	}
	call := f.ledger.calls[0]
	if call.year != "2024" || call.quarter != "T1" {
		t.Fatalf("expected ledger (2024, T1), got (%s, %s)", call.year, call.quarter)
	}
	if call.conteo["ind-A"] != 1 {
		t.Fatalf("expected conteo ind-A=1, got %v", call.conteo)
	}

	logros, _ := f.svc.Logros(ctx, "ben-1")
	if len(logros["2024"]) != 1 || logros["2024"][0] != "ind-A" {
		t.Fatalf("expected logro ind-A for 2024, got %#v", logros)
	}
	if logros, _ := f.svc.Logros(ctx, "ben-2"); len(logros) != 0 {
		t.Fatalf("invalid participant must not register logros, got %#v", logros)
	}
}

func TestConsolidar_ParticipanteDesconocido_InvalidInput(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	e, _ := f.svc.Create(ctx, createInput(), "user-1")
	_, _ = f.svc.Finalizar(ctx, e.ID, FinalizarInput{}, "user-1")
	_, _ = f.svc.SubmitParticipantes(ctx, e.ID, ParticipantesInput{Participantes: []string{"ben-1"}}, "digitador-1")
	_, _ = f.svc.ReviewParticipantes(ctx, e.ID, true, "", "revisor-1")

	_, err := f.svc.Consolidar(ctx, e.ID, ConsolidarInput{
		Participantes: []ParticipanteConsolidado{
			{ID: "ben-fantasma", Estado: ParticipanteValido, IndicadorID: "ind-A"},
		},
		Conteo: map[string]int{"ind-A": 1},
	}, "consolidador-1")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown participante, got %v", err)
	}

	// El evento sigue consolidable y el ledger no se tocó.
	got, _ := f.svc.GetByID(ctx, e.ID)
	if got.EstadoConsolidado != EstadoPendiente {
		t.Fatalf("expected consolidado still Pendiente, got %s", got.EstadoConsolidado)
	}
	if len(f.ledger.calls) != 0 {
		t.Fatalf("ledger must not be invoked, got %d calls", len(f.ledger.calls))
	}
}

func TestConsolidar_SinPendiente_EstadoInvalido(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	e, _ := f.svc.Create(ctx, createInput(), "user-1")

	_, err := f.svc.Consolidar(ctx, e.ID, ConsolidarInput{}, "consolidador-1")
	if !errors.Is(err, ErrEstadoInvalido) {
		t.Fatalf("expected ErrEstadoInvalido, got %v", err)
	}
}

func TestParseQuarterNombre(t *testing.T) {
	sub, year, err := ParseQuarterNombre("T1-2024")
	if err != nil {
		t.Fatalf("ParseQuarterNombre: %v", err)
	}
	if sub != "T1" || year != "2024" {
		t.Fatalf("expected (T1, 2024), got (%s, %s)", sub, year)
	}

	if _, _, err := ParseQuarterNombre("2024"); err == nil {
		t.Fatal("expected error on malformed nombre")
	}
}
