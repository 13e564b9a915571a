package listing

import "testing"

func TestBuild_ViewStates(t *testing.T) {
	cases := []struct {
		view   View
		field  string
		states []string
	}{
		{ViewPublished, "estado", []string{"Publicado"}},
		{ViewUnderReview, "estado", []string{"En revisión", "Validado", "Rechazado"}},
		{ViewIncludingRemoved, "estado", []string{"Publicado", "Eliminado"}},
		{ViewDataEntryQueue, "estadoDigitacion", []string{"Pendiente", "En Curso", "Finalizado", "Rechazado"}},
		{ViewConsolidationQueue, "estadoConsolidado", []string{"Pendiente", "Finalizado"}},
	}

	for _, tc := range cases {
		sel, err := Build(Params{View: tc.view, DefaultField: "nombre"})
		if err != nil {
			t.Fatalf("view %s: %v", tc.view, err)
		}
		if sel.StateField != tc.field {
			t.Errorf("view %s: state field %q, want %q", tc.view, sel.StateField, tc.field)
		}
		if len(sel.States) != len(tc.states) {
			t.Fatalf("view %s: states %v, want %v", tc.view, sel.States, tc.states)
		}
		for i, st := range tc.states {
			if sel.States[i] != st {
				t.Errorf("view %s: states %v, want %v", tc.view, sel.States, tc.states)
			}
		}
	}
}

func TestBuild_UnknownViewFails(t *testing.T) {
	if _, err := Build(Params{View: "everything", DefaultField: "nombre"}); err == nil {
		t.Fatal("expected error for unknown view")
	}
}

func TestBuild_SortPrecedence(t *testing.T) {
	// Sort explícito gana siempre.
	sel, err := Build(Params{
		View:         ViewUnderReview,
		Sort:         &SortOrder{Field: "version", Desc: true},
		DefaultField: "nombre",
	})
	if err != nil {
		t.Fatal(err)
	}
	if sel.Sort.Field != "version" || !sel.Sort.Desc {
		t.Errorf("explicit sort lost: %+v", sel.Sort)
	}

	// Revisiones sin sort explícito: última edición primero.
	sel, err = Build(Params{View: ViewUnderReview, DefaultField: "nombre"})
	if err != nil {
		t.Fatal(err)
	}
	if sel.Sort.Field != "fechaEdicion" || !sel.Sort.Desc {
		t.Errorf("underReview default sort: %+v", sel.Sort)
	}

	// Resto: default ascendente del módulo.
	sel, err = Build(Params{View: ViewPublished, DefaultField: "nombre"})
	if err != nil {
		t.Fatal(err)
	}
	if sel.Sort.Field != "nombre" || sel.Sort.Desc {
		t.Errorf("default sort: %+v", sel.Sort)
	}
}

func TestMatches_UnderReviewIgnoresScopingWhenAbsent(t *testing.T) {
	sel, err := Build(Params{View: ViewUnderReview, DefaultField: "nombre"})
	if err != nil {
		t.Fatal(err)
	}

	for _, estado := range []string{"En revisión", "Validado", "Rechazado"} {
		if !sel.Matches(map[string]string{"estado": estado}) {
			t.Errorf("estado %q should match underReview", estado)
		}
	}
	for _, estado := range []string{"Publicado", "Eliminado", "Borrador", ""} {
		if sel.Matches(map[string]string{"estado": estado}) {
			t.Errorf("estado %q should not match underReview", estado)
		}
	}
}

func TestMatches_Scoping(t *testing.T) {
	sel, err := Build(Params{View: ViewPublished, ComponenteID: "c1", DefaultField: "nombre"})
	if err != nil {
		t.Fatal(err)
	}

	if !sel.Matches(map[string]string{"estado": "Publicado", "componenteId": "c1"}) {
		t.Error("row in scope rejected")
	}
	if sel.Matches(map[string]string{"estado": "Publicado", "componenteId": "c2"}) {
		t.Error("row out of scope accepted")
	}
}

func TestMatches_Operators(t *testing.T) {
	is, err := Build(Params{
		View:         ViewPublished,
		Match:        &Match{Field: "nombre", Operator: OpIs, Value: "Intibucá"},
		DefaultField: "nombre",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !is.Matches(map[string]string{"estado": "Publicado", "nombre": "Intibucá"}) {
		t.Error("is: exact value rejected")
	}
	if is.Matches(map[string]string{"estado": "Publicado", "nombre": "Intibucá Centro"}) {
		t.Error("is: partial value accepted")
	}

	cont, err := Build(Params{
		View:         ViewPublished,
		Match:        &Match{Field: "nombre", Operator: OpContains, Value: "Inti"},
		DefaultField: "nombre",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !cont.Matches(map[string]string{"estado": "Publicado", "nombre": "Intibucá"}) {
		t.Error("contains: substring rejected")
	}
	if cont.Matches(map[string]string{"estado": "Publicado", "nombre": "La Paz"}) {
		t.Error("contains: non-match accepted")
	}

	if _, err := Build(Params{
		View:         ViewPublished,
		Match:        &Match{Field: "nombre", Operator: "startsWith", Value: "x"},
		DefaultField: "nombre",
	}); err == nil {
		t.Error("unknown operator accepted")
	}
}

func TestLess(t *testing.T) {
	asc := Selection{Sort: SortOrder{Field: "nombre"}}
	if !asc.Less(map[string]string{"nombre": "a"}, map[string]string{"nombre": "b"}) {
		t.Error("asc order broken")
	}

	desc := Selection{Sort: SortOrder{Field: "fechaEdicion", Desc: true}}
	if !desc.Less(map[string]string{"fechaEdicion": "2024-05"}, map[string]string{"fechaEdicion": "2024-01"}) {
		t.Error("desc order broken")
	}
}
