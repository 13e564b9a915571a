package registros

import (
	"fmt"
	"strconv"
	"strings"
)

// NextVersion calcula la siguiente versión de un registro.
// Sin publicar: sube el minor ("0.1" -> "0.2").
// Al publicar: sube el major y resetea el minor ("1.3" -> "2.0").
// Entradas malformadas vuelven al inicio del ciclo ("0.1").
func NextVersion(version string, publicar bool) string {
	major, minor, ok := parseVersion(version)
	if !ok {
		return "0.1"
	}
	if publicar {
		return fmt.Sprintf("%d.0", major+1)
	}
	return fmt.Sprintf("%d.%d", major, minor+1)
}

// CompareVersions ordena versiones numéricamente (major, luego minor);
// el orden lexicográfico falla a partir de 10.x.
func CompareVersions(a, b string) int {
	amaj, amin, _ := parseVersion(a)
	bmaj, bmin, _ := parseVersion(b)
	switch {
	case amaj != bmaj:
		if amaj < bmaj {
			return -1
		}
		return 1
	case amin != bmin:
		if amin < bmin {
			return -1
		}
		return 1
	}
	return 0
}

func parseVersion(v string) (major, minor int, ok bool) {
	parts := strings.Split(strings.TrimSpace(v), ".")
	if len(parts) != 2 {
		return 0, 0, false
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	minor, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return major, minor, true
}
