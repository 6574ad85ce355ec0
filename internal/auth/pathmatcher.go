package auth

import "strings"

// PathMatcher clasifica paths en protegidos/exentos.
//
// Con invert=false los patterns listados son el conjunto *protegido* y todo lo
// demás queda exento; con invert=true los patterns son los *exentos* y todo lo
// demás se protege.
//
// El matching es por segmentos, case-sensitive, con semántica de prefijo:
// "/login" matchea "/login" y "/login/mfa", pero no "/loginx". Un "*" como
// segmento matchea cualquier segmento; al final matchea también cero segmentos
// restantes ("/unsecure/*" matchea "/unsecure").
//
// Se construye una vez al inicio y es inmutable: seguro para compartir entre
// requests concurrentes.
type PathMatcher struct {
	patterns [][]string
	invert   bool
}

// NewPathMatcher construye el matcher con la lista de patterns y el modo.
func NewPathMatcher(patterns []string, invert bool) *PathMatcher {
	m := &PathMatcher{invert: invert}
	for _, p := range patterns {
		m.patterns = append(m.patterns, splitPath(p))
	}
	return m
}

// DefaultPathMatcher protege todo excepto /login (y sus subrutas, p.ej. /login/mfa).
func DefaultPathMatcher() *PathMatcher {
	return NewPathMatcher([]string{"/login"}, true)
}

// IsProtected decide si la puerta de autenticación corre para path.
// Sin efectos; el resultado no depende del orden de declaración de patterns:
// un path que matchea cualquiera del conjunto está "matcheado".
func (m *PathMatcher) IsProtected(path string) bool {
	segs := splitPath(path)
	matched := false
	for _, p := range m.patterns {
		if matchSegments(p, segs) {
			matched = true
			break
		}
	}
	if m.invert {
		return !matched
	}
	return matched
}

func matchSegments(pattern, path []string) bool {
	for i, seg := range pattern {
		if seg == "*" {
			if i == len(pattern)-1 {
				return true
			}
			if i >= len(path) {
				return false
			}
			continue
		}
		if i >= len(path) || seg != path[i] {
			return false
		}
	}
	// Pattern agotado: matchea como prefijo del path.
	return true
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
