package testsupport

import (
	"context"
	"testing"

	"github.com/wouterstultiens/boardgame-finder/internal/config"
	"github.com/wouterstultiens/boardgame-finder/internal/store"
)

// MustOpenStore opens the listing store configured in cfg and closes it when
// the test ends.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()
	s, err := store.Open(context.Background(), cfg.Store.Path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}
