package registros

import (
	"context"
	"errors"
	"testing"
	"time"

	"program-monitoring-api/internal/listing"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type testRepo struct {
	byID map[string]Registro
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Registro{}}
}

func (r *testRepo) Create(ctx context.Context, reg Registro) error {
	if reg.ID == "" {
		return errors.New("repo: id required")
	}
	if _, ok := r.byID[reg.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.byID[reg.ID] = reg
	return nil
}

func (r *testRepo) Update(ctx context.Context, reg Registro) error {
	if _, ok := r.byID[reg.ID]; !ok {
		return errRepoNotFound
	}
	r.byID[reg.ID] = reg
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, kind Kind, id string) (Registro, error) {
	reg, ok := r.byID[id]
	if !ok || reg.Kind != kind {
		return Registro{}, errRepoNotFound
	}
	return reg, nil
}

func (r *testRepo) List(ctx context.Context, kind Kind, sel listing.Selection, page, pageSize int) ([]Registro, int, error) {
	out := make([]Registro, 0)
	for _, reg := range r.byID {
		if reg.Kind == kind && sel.Matches(reg.Fields()) {
			out = append(out, reg)
		}
	}
	return out, len(out), nil
}

func (r *testRepo) ListByOriginal(ctx context.Context, kind Kind, originalID string, sel listing.Selection) ([]Registro, error) {
	out := make([]Registro, 0)
	for _, reg := range r.byID {
		if reg.Kind == kind && reg.OriginalID == originalID && sel.Matches(reg.Fields()) {
			out = append(out, reg)
		}
	}
	return out, nil
}

func (r *testRepo) ExistsDuplicate(ctx context.Context, kind Kind, field, value, excludeID string) (bool, error) {
	for id, reg := range r.byID {
		if reg.Kind != kind || id == excludeID {
			continue
		}
		if reg.Estado != EstadoPublicado && reg.Estado != EstadoEliminado {
			continue
		}
		if reg.Payload.Str(field) == value {
			return true, nil
		}
	}
	return false, nil
}

func (r *testRepo) InTx(ctx context.Context, fn func(Repository) error) error {
	return fn(r)
}

// countByEstado cuenta filas del linaje por estado.
func (r *testRepo) countByEstado(originalID string, estado Estado) int {
	n := 0
	for _, reg := range r.byID {
		if reg.OriginalID == originalID && reg.Estado == estado {
			n++
		}
	}
	return n
}

func newTestService(repo *testRepo) *Service {
	svc := NewService(repo, DefaultKinds())
	svc.now = func() time.Time {
		return time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

// -------------------------
// Tests
// -------------------------

func TestCreateDraft_SinAprobar(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)

	draft, err := svc.CreateDraft(context.Background(), KindOrganizacion,
		Payload{"nombre": "Coop Sur", "codigo": "ORG-001"}, "editor-1", false)
	if err != nil {
		t.Fatalf("CreateDraft returned error: %v", err)
	}
	if draft.Estado != EstadoBorrador {
		t.Fatalf("expected Borrador, got %s", draft.Estado)
	}
	if draft.Version != "0.1" || draft.UltimaRevision != "0.1" {
		t.Fatalf("expected version 0.1, got %s / %s", draft.Version, draft.UltimaRevision)
	}
	if draft.OriginalID != "" {
		t.Fatalf("draft sin publicar no debe tener originalId, got %s", draft.OriginalID)
	}
	if len(repo.byID) != 1 {
		t.Fatalf("expected 1 row, got %d", len(repo.byID))
	}
}

func TestCreateDraft_ConAprobar_PublicaDeUna(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)

	draft, err := svc.CreateDraft(context.Background(), KindOrganizacion,
		Payload{"nombre": "Coop Sur", "codigo": "ORG-001"}, "editor-1", true)
	if err != nil {
		t.Fatalf("CreateDraft returned error: %v", err)
	}
	if draft.Estado != EstadoValidado {
		t.Fatalf("expected Validado, got %s", draft.Estado)
	}
	if draft.OriginalID == "" {
		t.Fatal("expected draft linked to publication")
	}

	pub, err := repo.GetByID(context.Background(), KindOrganizacion, draft.OriginalID)
	if err != nil {
		t.Fatalf("publication missing: %v", err)
	}
	if pub.Estado != EstadoPublicado || pub.Version != "1.0" {
		t.Fatalf("expected Publicado 1.0, got %s %s", pub.Estado, pub.Version)
	}
	if pub.OriginalID != pub.ID {
		t.Fatal("publication must point to itself")
	}
}

func TestReview_Aprobar_CreaPrimeraPublicacion(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	draft, err := svc.CreateDraft(ctx, KindCuenta, Payload{"nombre": "Cuenta A"}, "editor-1", false)
	if err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}

	rev, err := svc.Review(ctx, KindCuenta, draft.ID, true, "revisor-1", "")
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if rev.Estado != EstadoValidado {
		t.Fatalf("expected Validado, got %s", rev.Estado)
	}
	if rev.OriginalID == "" {
		t.Fatal("approved draft must link to the new publication")
	}

	pub, err := repo.GetByID(ctx, KindCuenta, rev.OriginalID)
	if err != nil {
		t.Fatalf("publication missing: %v", err)
	}
	if pub.Version != "1.0" {
		t.Fatalf("first publication must be 1.0, got %s", pub.Version)
	}
	if pub.Payload.Str("nombre") != "Cuenta A" {
		t.Fatalf("payload not propagated: %#v", pub.Payload)
	}
}

func TestReview_YaResuelta_EstadoInvalido(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	draft, _ := svc.CreateDraft(ctx, KindCuenta, Payload{"nombre": "Cuenta A"}, "editor-1", false)
	if _, err := svc.Review(ctx, KindCuenta, draft.ID, true, "revisor-1", ""); err != nil {
		t.Fatalf("first review: %v", err)
	}

	_, err := svc.Review(ctx, KindCuenta, draft.ID, true, "revisor-1", "")
	if !errors.Is(err, ErrEstadoInvalido) {
		t.Fatalf("expected ErrEstadoInvalido, got %v", err)
	}
}

func TestSubmitRevision_YAprobar_SubeVersionMayor(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	draft, _ := svc.CreateDraft(ctx, KindOrganizacion,
		Payload{"nombre": "Coop Sur", "codigo": "ORG-001"}, "editor-1", true)
	pubID := draft.OriginalID

	rev, err := svc.SubmitRevision(ctx, KindOrganizacion, pubID,
		Payload{"nombre": "Coop Sur Renombrada", "codigo": "ORG-001"}, "editor-2", false)
	if err != nil {
		t.Fatalf("SubmitRevision: %v", err)
	}
	if rev.Estado != EstadoEnRevision {
		t.Fatalf("expected En revisión, got %s", rev.Estado)
	}
	if rev.Version != "1.1" {
		t.Fatalf("expected revision 1.1, got %s", rev.Version)
	}

	if _, err := svc.Review(ctx, KindOrganizacion, rev.ID, true, "revisor-1", ""); err != nil {
		t.Fatalf("Review: %v", err)
	}

	pub, _ := repo.GetByID(ctx, KindOrganizacion, pubID)
	if pub.Version != "2.0" {
		t.Fatalf("expected publication 2.0, got %s", pub.Version)
	}
	if pub.Payload.Str("nombre") != "Coop Sur Renombrada" {
		t.Fatalf("payload not propagated: %#v", pub.Payload)
	}

	// Un solo Publicado por linaje, siempre.
	if n := repo.countByEstado(pubID, EstadoPublicado); n != 1 {
		t.Fatalf("expected exactly 1 Publicado in lineage, got %d", n)
	}
}

func TestReview_DosRevisionesPendientes_UnSoloPublicado(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	// Linaje que nunca publicó, con dos revisiones pendientes encima.
	draft, err := svc.CreateDraft(ctx, KindCuenta, Payload{"nombre": "Cuenta A"}, "editor-1", false)
	if err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}
	rev1, err := svc.SubmitRevision(ctx, KindCuenta, draft.ID, Payload{"nombre": "Cuenta A1"}, "editor-1", false)
	if err != nil {
		t.Fatalf("SubmitRevision 1: %v", err)
	}
	rev2, err := svc.SubmitRevision(ctx, KindCuenta, draft.ID, Payload{"nombre": "Cuenta A2"}, "editor-2", false)
	if err != nil {
		t.Fatalf("SubmitRevision 2: %v", err)
	}
	if rev1.OriginalID != draft.ID || rev2.OriginalID != draft.ID {
		t.Fatalf("pending revisions must hang off the head draft, got %q / %q", rev1.OriginalID, rev2.OriginalID)
	}

	if _, err := svc.Review(ctx, KindCuenta, rev1.ID, true, "revisor-1", ""); err != nil {
		t.Fatalf("Review rev1: %v", err)
	}

	// La primera aprobación re-enlaza el linaje entero a la publicación.
	got1, _ := repo.GetByID(ctx, KindCuenta, rev1.ID)
	pubID := got1.OriginalID
	if pubID == "" {
		t.Fatal("approved revision must link to the publication")
	}
	for _, id := range []string{draft.ID, rev2.ID} {
		rec, _ := repo.GetByID(ctx, KindCuenta, id)
		if rec.OriginalID != pubID {
			t.Fatalf("row %s not relinked: originalId %q, want %q", id, rec.OriginalID, pubID)
		}
	}

	// La segunda aprobación propaga sobre la misma fila en vez de publicar
	// otra vez.
	if _, err := svc.Review(ctx, KindCuenta, rev2.ID, true, "revisor-1", ""); err != nil {
		t.Fatalf("Review rev2: %v", err)
	}

	pubCount := 0
	for _, rec := range repo.byID {
		if rec.Estado == EstadoPublicado {
			pubCount++
		}
	}
	if pubCount != 1 {
		t.Fatalf("expected exactly 1 Publicado in lineage, got %d", pubCount)
	}

	pub, _ := repo.GetByID(ctx, KindCuenta, pubID)
	if pub.Version != "2.0" || pub.Payload.Str("nombre") != "Cuenta A2" {
		t.Fatalf("second approval must propagate onto the publication, got %s %#v", pub.Version, pub.Payload)
	}

	// Aprobar el borrador inicial tampoco abre una segunda publicación.
	if _, err := svc.Review(ctx, KindCuenta, draft.ID, true, "revisor-2", ""); err != nil {
		t.Fatalf("Review draft: %v", err)
	}
	pubCount = 0
	for _, rec := range repo.byID {
		if rec.Estado == EstadoPublicado {
			pubCount++
		}
	}
	if pubCount != 1 {
		t.Fatalf("expected 1 Publicado after approving the head draft, got %d", pubCount)
	}
}

func TestReview_Rechazar_GuardaObservaciones(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	draft, _ := svc.CreateDraft(ctx, KindCuenta, Payload{"nombre": "Cuenta A"}, "editor-1", false)

	rev, err := svc.Review(ctx, KindCuenta, draft.ID, false, "revisor-1", "datos incompletos")
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if rev.Estado != EstadoRechazado {
		t.Fatalf("expected Rechazado, got %s", rev.Estado)
	}
	if rev.Observaciones != "datos incompletos" {
		t.Fatalf("expected observaciones, got %q", rev.Observaciones)
	}
}

func TestToggleEliminado_EsSuPropioInverso(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	draft, _ := svc.CreateDraft(ctx, KindOrganizacion,
		Payload{"nombre": "Coop Sur", "codigo": "ORG-001"}, "editor-1", true)
	pubID := draft.OriginalID

	del, err := svc.ToggleEliminado(ctx, KindOrganizacion, pubID, "admin-1", "baja")
	if err != nil {
		t.Fatalf("ToggleEliminado: %v", err)
	}
	if del.Estado != EstadoEliminado || del.EliminadorID != "admin-1" || del.FechaEliminacion == nil {
		t.Fatalf("expected Eliminado with metadata, got %#v", del)
	}

	back, err := svc.ToggleEliminado(ctx, KindOrganizacion, pubID, "admin-1", "")
	if err != nil {
		t.Fatalf("ToggleEliminado (back): %v", err)
	}
	if back.Estado != EstadoPublicado || back.EliminadorID != "" || back.FechaEliminacion != nil {
		t.Fatalf("expected Publicado with metadata cleared, got %#v", back)
	}
}

func TestToggleEliminado_SobreRevision_NotFound(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	draft, _ := svc.CreateDraft(ctx, KindCuenta, Payload{"nombre": "Cuenta A"}, "editor-1", false)

	_, err := svc.ToggleEliminado(ctx, KindCuenta, draft.ID, "admin-1", "")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateDraft_DuplicadoContraPublicados_Conflicto(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	if _, err := svc.CreateDraft(ctx, KindOrganizacion,
		Payload{"nombre": "Coop Sur", "codigo": "ORG-001"}, "editor-1", true); err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, err := svc.CreateDraft(ctx, KindOrganizacion,
		Payload{"nombre": "Otra", "codigo": "ORG-001"}, "editor-2", false)
	if !errors.Is(err, ErrConflicto) {
		t.Fatalf("expected ErrConflicto, got %v", err)
	}
}

func TestCreateDraft_DuplicadoContraRevisiones_NoConflictua(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	// Borrador sin publicar no participa del scope de unicidad.
	if _, err := svc.CreateDraft(ctx, KindOrganizacion,
		Payload{"nombre": "Coop Sur", "codigo": "ORG-001"}, "editor-1", false); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := svc.CreateDraft(ctx, KindOrganizacion,
		Payload{"nombre": "Otra", "codigo": "ORG-001"}, "editor-2", false); err != nil {
		t.Fatalf("expected no conflict against drafts, got %v", err)
	}
}

func TestListRevisiones_IncluyeBorradores(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	draft, _ := svc.CreateDraft(ctx, KindOrganizacion,
		Payload{"nombre": "Coop Sur", "codigo": "ORG-001"}, "editor-1", true)
	pubID := draft.OriginalID

	if _, err := svc.SubmitRevision(ctx, KindOrganizacion, pubID,
		Payload{"nombre": "Coop Sur v2", "codigo": "ORG-001"}, "editor-2", false); err != nil {
		t.Fatalf("SubmitRevision: %v", err)
	}

	revs, err := svc.ListRevisiones(ctx, KindOrganizacion, pubID)
	if err != nil {
		t.Fatalf("ListRevisiones: %v", err)
	}
	// El borrador inicial (Validado) y la revisión En revisión; la fila
	// Publicada no es parte del historial.
	if len(revs) != 2 {
		t.Fatalf("expected 2 revisions, got %d", len(revs))
	}
	for _, rev := range revs {
		if rev.Estado == EstadoPublicado {
			t.Fatal("published row must not appear in revision history")
		}
	}
}

func TestIncrementCounter(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	draft, _ := svc.CreateDraft(ctx, KindTarea,
		Payload{"nombre": "Taller de riego", "eventosProgramados": float64(4)}, "editor-1", true)
	tareaID := draft.OriginalID

	if err := svc.IncrementCounter(ctx, KindTarea, tareaID, "eventosRealizados"); err != nil {
		t.Fatalf("IncrementCounter: %v", err)
	}
	if err := svc.IncrementCounter(ctx, KindTarea, tareaID, "eventosRealizados"); err != nil {
		t.Fatalf("IncrementCounter: %v", err)
	}

	rec, _ := repo.GetByID(ctx, KindTarea, tareaID)
	if got := rec.Payload["eventosRealizados"]; got != 2 {
		t.Fatalf("expected counter 2, got %v", got)
	}
}
