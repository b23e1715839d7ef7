package redirect

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestResolve_BasicRedirection(t *testing.T) {
	r := NewRedirector(nil)
	if err := r.AddMapping("/data/data/com.real.app", "/sandbox/app1"); err != nil {
		t.Fatalf("AddMapping failed: %v", err)
	}

	got := r.Resolve("/data/data/com.real.app/files/a.txt")
	if got != "/sandbox/app1/files/a.txt" {
		t.Errorf("Resolve = %q", got)
	}

	// No prefix match: returned unchanged.
	if got := r.Resolve("/data/data/com.other"); got != "/data/data/com.other" {
		t.Errorf("unmatched path changed: %q", got)
	}
}

func TestResolve_LongestPrefixWins(t *testing.T) {
	r := NewRedirector(nil)
	r.AddMapping("/data/data/app", "/vs/app/filesystem")
	r.AddMapping("/data/data/app/databases", "/vs/app/databases")
	r.AddMapping("/data/data/app/shared_prefs", "/vs/app/shared_prefs")

	cases := map[string]string{
		"/data/data/app/files/x":            "/vs/app/filesystem/files/x",
		"/data/data/app/databases/main.db":  "/vs/app/databases/main.db",
		"/data/data/app/shared_prefs/s.xml": "/vs/app/shared_prefs/s.xml",
		"/data/data/app":                    "/vs/app/filesystem",
		"/data/data/app/databases":          "/vs/app/databases",
	}
	for in, want := range cases {
		if got := r.Resolve(in); got != want {
			t.Errorf("Resolve(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestResolve_NaivePrefixNotSegmentAware(t *testing.T) {
	// Pins the byte-wise prefix comparison: /data/appX matches the
	// /data/app mapping even though it is a different directory.
	r := NewRedirector(nil)
	r.AddMapping("/data/app", "/vs/app")

	if got := r.Resolve("/data/appX/file"); got != "/vs/appX/file" {
		t.Errorf("Resolve = %q, naive prefix behavior changed", got)
	}
}

func TestResolve_Normalization(t *testing.T) {
	r := NewRedirector(nil)
	r.AddMapping("/data/data/app/", "/vs/app")

	if got := r.Resolve("/data/data/app/files///"); got != "/vs/app/files" {
		t.Errorf("trailing slashes not normalized: %q", got)
	}
	if got := r.Resolve("data/data/app/files"); got != "/vs/app/files" {
		t.Errorf("missing leading slash not normalized: %q", got)
	}
	if got := r.Resolve("/"); got != "/" {
		t.Errorf("root mangled: %q", got)
	}
}

func TestAddMapping_Validation(t *testing.T) {
	r := NewRedirector(nil)
	if err := r.AddMapping("", "/vs/app"); !errors.Is(err, ErrEmptyPath) {
		t.Errorf("empty real prefix: %v", err)
	}
	if err := r.AddMapping("/data/app", ""); !errors.Is(err, ErrEmptyPath) {
		t.Errorf("empty virtual prefix: %v", err)
	}
}

func TestAddMapping_LastWriteWins(t *testing.T) {
	r := NewRedirector(nil)
	r.AddMapping("/data/app", "/vs/one")
	r.AddMapping("/data/app", "/vs/two")

	if got := r.Resolve("/data/app/f"); got != "/vs/two/f" {
		t.Errorf("overwrite not applied: %q", got)
	}
	if n := len(r.Mappings()); n != 1 {
		t.Errorf("duplicate real prefix created %d rules", n)
	}
}

func TestRemoveMapping(t *testing.T) {
	r := NewRedirector(nil)
	r.AddMapping("/data/app", "/vs/app")

	if !r.RemoveMapping("/data/app/") {
		t.Error("remove of existing mapping returned false")
	}
	if r.RemoveMapping("/data/app") {
		t.Error("remove of absent mapping returned true")
	}
	if got := r.Resolve("/data/app/f"); got != "/data/app/f" {
		t.Errorf("mapping still active after removal: %q", got)
	}
}

func TestResolve_LongestPrefixProperty(t *testing.T) {
	r := NewRedirector(nil)
	rules := []Rule{
		{"/a", "/v1"},
		{"/a/b", "/v2"},
		{"/a/b/c", "/v3"},
		{"/d", "/v4"},
	}
	for _, rule := range rules {
		r.AddMapping(rule.RealPrefix, rule.VirtualPrefix)
	}

	paths := []string{"/a/x", "/a/b/x", "/a/b/c/x", "/a/b/cd", "/d", "/e/f", "/"}
	for _, p := range paths {
		got := r.Resolve(p)

		var bestReal, bestVirtual string
		for _, rule := range rules {
			if len(p) >= len(rule.RealPrefix) && p[:len(rule.RealPrefix)] == rule.RealPrefix && len(rule.RealPrefix) > len(bestReal) {
				bestReal, bestVirtual = rule.RealPrefix, rule.VirtualPrefix
			}
		}
		want := p
		if bestReal != "" {
			want = bestVirtual + p[len(bestReal):]
		}
		if got != want {
			t.Errorf("Resolve(%q) = %q, want %q", p, got, want)
		}
	}
}

func TestRedirector_ConcurrentAccess(t *testing.T) {
	r := NewRedirector(nil)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.AddMapping(fmt.Sprintf("/data/app%d", i), fmt.Sprintf("/vs/app%d", i))
				r.RemoveMapping(fmt.Sprintf("/data/app%d", i))
			}
		}(i)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.Resolve(fmt.Sprintf("/data/app%d/file", i))
				r.Mappings()
			}
		}(i)
	}
	wg.Wait()
}
