package dependency

import (
	"errors"
	"slices"
	"testing"

	"github.com/nao1215/domaindive/internal/config"
	"github.com/nao1215/domaindive/internal/model"
)

// TestDefaultRegistry tests the built-in dependency registry.
func TestDefaultRegistry(t *testing.T) {
	t.Parallel()

	r := NewDefaultRegistry(config.NewConfig(), discardLogger())

	t.Run("registers every built-in key", func(t *testing.T) {
		t.Parallel()

		want := []model.DependencyKey{
			KeyDNSRecords,
			KeyGeolocation,
			KeyHTTPHeaders,
			KeyNameservers,
			KeyTLSCertificate,
			KeyWhois,
		}
		if got := r.Keys(); !slices.Equal(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("creates fresh instances", func(t *testing.T) {
		t.Parallel()

		for _, key := range r.Keys() {
			first, err := r.New(key)
			if err != nil {
				t.Fatalf("New(%s): %v", key, err)
			}
			second, err := r.New(key)
			if err != nil {
				t.Fatalf("New(%s): %v", key, err)
			}
			if first == second {
				t.Errorf("expected distinct instances for %s", key)
			}
			if first.Key() != key {
				t.Errorf("expected instance key %s, got %s", key, first.Key())
			}
		}
	})

	t.Run("rejects unknown keys", func(t *testing.T) {
		t.Parallel()

		if r.Has("bogus") {
			t.Error("expected Has to be false for unknown key")
		}
		if _, err := r.New("bogus"); !errors.Is(err, ErrUnknownDependency) {
			t.Errorf("expected ErrUnknownDependency, got %v", err)
		}
	})
}
