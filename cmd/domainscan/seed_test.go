package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestBuildItems(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	items, rejected := buildItems([]string{
		"Example.COM",
		"https://www.example.co.uk/about",
		"example.com.",
		"co.uk",
		"localhost",
		"",
	}, now)

	want := []struct{ name, suffix string }{
		{"example.com", "com"},
		{"www.example.co.uk", "co.uk"},
	}
	if len(items) != len(want) {
		t.Fatalf("got %d items, want %d: %+v", len(items), len(want), items)
	}
	for i, w := range want {
		if items[i].DomainName != w.name || items[i].PublicSuffix != w.suffix {
			t.Errorf("items[%d] = %+v, want %s (%s)", i, items[i], w.name, w.suffix)
		}
		if !items[i].DiscoveredAt.Equal(now) || items[i].LockedAt != nil {
			t.Errorf("items[%d] must be unlocked and discovered now", i)
		}
	}

	if len(rejected) != 3 {
		t.Fatalf("got %d rejected, want 3: %+v", len(rejected), rejected)
	}
	for _, r := range rejected {
		if !errors.Is(r.err, errNotRegistrable) {
			t.Errorf("rejected %q with %v", r.value, r.err)
		}
	}
}

func TestReadDomains(t *testing.T) {
	t.Parallel()

	got, err := readDomains(strings.NewReader("# discovered 2026-01-02\nexample.com\n\n  example.org  \n#example.net\n"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(got, ",") != "example.com,example.org" {
		t.Errorf("readDomains() = %v", got)
	}
}

// storageArgs selects a fresh SQLite database and an empty config file.
func storageArgs(t *testing.T) []string {
	t.Helper()
	return []string{"--backend", "sqlite", "--db-dir", t.TempDir(), "--config", writeConfigFile(t, "mode: development\n")}
}

func TestSeedCmd(t *testing.T) {
	t.Parallel()

	t.Run("queues new domains once", func(t *testing.T) {
		t.Parallel()

		storage := storageArgs(t)
		out, stderr, err := execute(t, append([]string{"seed", "example.com", "https://Example.org/about", "co.uk"}, storage...)...)
		if err != nil {
			t.Fatalf("seed error = %v", err)
		}
		if !strings.Contains(out, "Queued 2 new domain(s), 0 already queued") {
			t.Errorf("unexpected output %q", out)
		}
		if !strings.Contains(stderr, `skipping "co.uk"`) {
			t.Errorf("expected co.uk to be skipped, stderr %q", stderr)
		}

		out, _, err = execute(t, append([]string{"seed", "EXAMPLE.com"}, storage...)...)
		if err != nil {
			t.Fatalf("second seed error = %v", err)
		}
		if !strings.Contains(out, "Queued 0 new domain(s), 1 already queued") {
			t.Errorf("seeding a queued domain must be a no-op, got %q", out)
		}
	})

	t.Run("reads a file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "domains.txt")
		if err := os.WriteFile(path, []byte("a.example.com\nb.example.com\n# c.example.com\n"), 0600); err != nil {
			t.Fatal(err)
		}
		out, _, err := execute(t, append([]string{"seed", "--file", path}, storageArgs(t)...)...)
		if err != nil {
			t.Fatalf("seed error = %v", err)
		}
		if !strings.Contains(out, "Queued 2 new domain(s)") {
			t.Errorf("unexpected output %q", out)
		}
	})

	t.Run("no domains", func(t *testing.T) {
		t.Parallel()

		if _, _, err := execute(t, append([]string{"seed"}, storageArgs(t)...)...); err == nil {
			t.Error("expected an error without domains")
		}
		if _, _, err := execute(t, append([]string{"seed", "com"}, storageArgs(t)...)...); err == nil {
			t.Error("expected an error without valid domains")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, _, err := execute(t, append([]string{"seed", "-f", filepath.Join(t.TempDir(), "none.txt")}, storageArgs(t)...)...)
		if err == nil || !strings.Contains(err.Error(), "failed to open domain file") {
			t.Errorf("expected open error, got %v", err)
		}
	})
}
