package auth

import "testing"

func TestIsProtected_SecureList(t *testing.T) {
	m := NewPathMatcher([]string{"/admin", "/api/*"}, false)

	cases := []struct {
		path string
		want bool
	}{
		{"/admin", true},
		{"/admin/users", true}, // prefijo por segmentos
		{"/administrator", false},
		{"/api", true}, // wildcard final matchea cero segmentos
		{"/api/v1/things", true},
		{"/", false},
		{"/public", false},
		{"/Admin", false}, // case-sensitive
	}
	for _, tc := range cases {
		if got := m.IsProtected(tc.path); got != tc.want {
			t.Errorf("IsProtected(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestIsProtected_ExemptList(t *testing.T) {
	m := NewPathMatcher([]string{"/login", "/unsecure/*"}, true)

	cases := []struct {
		path string
		want bool
	}{
		{"/login", false},
		{"/login/mfa", false}, // subruta de login también exenta
		{"/loginx", true},
		{"/unsecure/manipulate-session", false},
		{"/secured-route", true},
		{"/", true},
	}
	for _, tc := range cases {
		if got := m.IsProtected(tc.path); got != tc.want {
			t.Errorf("IsProtected(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestIsProtected_OrderIndependent(t *testing.T) {
	a := NewPathMatcher([]string{"/a", "/b/*", "/c"}, false)
	b := NewPathMatcher([]string{"/c", "/a", "/b/*"}, false)

	for _, p := range []string{"/a", "/a/x", "/b", "/b/1/2", "/c", "/d", "/"} {
		if a.IsProtected(p) != b.IsProtected(p) {
			t.Errorf("decision for %q depends on pattern order", p)
		}
	}
}

func TestIsProtected_RootPatternProtectsEverything(t *testing.T) {
	m := NewPathMatcher([]string{"/"}, false)
	for _, p := range []string{"/", "/x", "/x/y/z"} {
		if !m.IsProtected(p) {
			t.Errorf("IsProtected(%q) = false, want true", p)
		}
	}
}

func TestDefaultPathMatcher(t *testing.T) {
	m := DefaultPathMatcher()
	if m.IsProtected("/login") || m.IsProtected("/login/mfa") {
		t.Error("default matcher must exempt /login and /login/mfa")
	}
	if !m.IsProtected("/secured") {
		t.Error("default matcher must protect everything else")
	}
}

func TestIsProtected_TrailingSlash(t *testing.T) {
	m := NewPathMatcher([]string{"/admin"}, false)
	if !m.IsProtected("/admin/") {
		t.Error("trailing slash must not change the decision")
	}
}
