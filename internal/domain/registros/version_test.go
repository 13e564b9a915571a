package registros

import "testing"

func TestNextVersion(t *testing.T) {
	cases := []struct {
		version  string
		publicar bool
		want     string
	}{
		{"0.1", false, "0.2"},
		{"1.0", false, "1.1"},
		{"1.9", false, "1.10"},
		{"0.1", true, "1.0"},
		{"1.4", true, "2.0"},
		{"10.2", true, "11.0"},
		{"", false, "0.1"},
		{"garbage", false, "0.1"},
	}
	for _, c := range cases {
		if got := NextVersion(c.version, c.publicar); got != c.want {
			t.Errorf("NextVersion(%q, %v) = %q, want %q", c.version, c.publicar, got, c.want)
		}
	}
}

func TestCompareVersions_NumericoPorSegmento(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"1.0", "1.0", 0},
		{"1.1", "1.0", 1},
		{"2.0", "1.9", 1},
		{"10.0", "9.0", 1},
		{"1.2", "1.10", -1},
	}
	for _, c := range cases {
		if got := CompareVersions(c.a, c.b); got != c.want {
			t.Errorf("CompareVersions(%q, %q) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}
