package entityid

import "testing"

func TestGenerateStability(t *testing.T) {
	a := Generate("github.com/acme/widgets", "pkg/auth", "function", "pkg/auth/login.go", "LoginUser")
	b := Generate("github.com/acme/widgets", "pkg/auth", "function", "pkg/auth/login.go", "LoginUser")
	if a != b {
		t.Fatalf("expected stable id, got %q and %q", a, b)
	}
}

func TestGenerateDistinctTuplesDistinctIDs(t *testing.T) {
	ids := map[string]bool{}
	files := []string{"a.go", "b.go", "c/d.go"}
	kinds := []string{"function", "method", "type"}
	names := []string{"Foo", "Bar", "Baz.Qux"}
	for _, f := range files {
		for _, k := range kinds {
			for _, n := range names {
				id := Generate("repo", "pkg", k, f, n)
				if ids[id] {
					t.Fatalf("collision for file=%s kind=%s name=%s: %s", f, k, n, id)
				}
				ids[id] = true
			}
		}
	}
}

func TestParseRoundTrip(t *testing.T) {
	id := Generate("github.com/acme/widgets", "pkg/auth", "method", "pkg/auth/login.go", "UserService.Login")
	parsed, err := Parse(id)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed.Repo != "github.com/acme/widgets" {
		t.Errorf("repo = %q", parsed.Repo)
	}
	if parsed.PackagePath != "pkg/auth" {
		t.Errorf("packagePath = %q", parsed.PackagePath)
	}
	if parsed.Kind != "method" {
		t.Errorf("kind = %q", parsed.Kind)
	}
	if len(parsed.ScopeHash) != ScopeHashHexLen {
		t.Errorf("scope hash length = %d, want %d", len(parsed.ScopeHash), ScopeHashHexLen)
	}
}

func TestParseMalformed(t *testing.T) {
	if _, err := Parse("not-an-entity-id"); err == nil {
		t.Fatal("expected error for malformed id")
	}
}

func TestScopedName(t *testing.T) {
	cases := []struct {
		name string
		in   []string
		want string
	}{
		{"free function", nil, "Login"},
		{"class member", []string{"UserService"}, "UserService.Login"},
		{"nested function", []string{"outer"}, "outer.Login"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ScopedName("Login", tc.in...)
			if got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNormalizePath(t *testing.T) {
	if got := Normalize(`pkg\auth\login.go`); got != "pkg/auth/login.go" {
		t.Errorf("got %q", got)
	}
	if got := Normalize("  pkg/auth/login.go  "); got != "pkg/auth/login.go" {
		t.Errorf("got %q", got)
	}
}
