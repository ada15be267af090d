package tests

import (
	"context"
	"testing"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/ports"
)

// LibraryPackContractTest is a reusable test suite that verifies if an adapter complies with ports.LibraryPack.
// The pack must start empty.
func LibraryPackContractTest(t *testing.T, pack ports.LibraryPack) {
	t.Helper()
	ctx := context.Background()

	t.Run("Import_Empty", func(t *testing.T) {
		items, err := pack.Import(ctx)
		if err != nil {
			t.Fatalf("unexpected error importing empty pack: %v", err)
		}
		if len(items) != 0 {
			t.Errorf("expected empty pack, got %d items", len(items))
		}
	})

	t.Run("Export_Import", func(t *testing.T) {
		want := []domain.LibraryStep{
			{ID: "l1", Title: "Shout", Code: "return input.toUpperCase();"},
			{ID: "l2", Title: "Exclaim", Code: "return input + \"!\";\n"},
		}
		if err := pack.Export(ctx, want); err != nil {
			t.Fatalf("unexpected error exporting: %v", err)
		}

		got, err := pack.Import(ctx)
		if err != nil {
			t.Fatalf("unexpected error importing: %v", err)
		}
		if len(got) != len(want) {
			t.Fatalf("expected %d items, got %d", len(want), len(got))
		}

		byTitle := make(map[string]domain.LibraryStep)
		for _, item := range got {
			byTitle[item.Title] = item
		}
		for _, w := range want {
			g, ok := byTitle[w.Title]
			if !ok {
				t.Errorf("item %q missing from import", w.Title)
				continue
			}
			if g.Code != w.Code {
				t.Errorf("code mismatch for %q. got %q, want %q", w.Title, g.Code, w.Code)
			}
		}
	})
}
