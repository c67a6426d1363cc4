package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/homestack/pantry/internal/core/domain"
)

func TestFileAdapterMissingFile(t *testing.T) {
	adapter := NewFileAdapter(filepath.Join(t.TempDir(), "pantry.json"))

	doc, err := adapter.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc != nil {
		t.Errorf("expected nil document, got %+v", doc)
	}
}

func TestFileAdapterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "pantry.json")
	adapter := NewFileAdapter(path)
	ctx := context.Background()

	doc := domain.NewDocument()
	doc.Inventories["kitchen"] = domain.Inventory{Items: map[string]domain.Item{
		"milk": {
			Quantity:       2,
			Unit:           "liters",
			Category:       "dairy",
			ExpiryDate:     "2026-09-10",
			AutoAddEnabled: true,
			Threshold:      1,
			TodoList:       "shopping",
		},
	}}

	if err := adapter.Save(ctx, doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := adapter.Load(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil {
		t.Fatal("expected a document")
	}
	if got.Inventories["kitchen"].Items["milk"] != doc.Inventories["kitchen"].Items["milk"] {
		t.Errorf("round trip mismatch: %+v", got.Inventories["kitchen"].Items["milk"])
	}
	if got.Config.ExpiryThresholdDays != 7 {
		t.Errorf("expected config to survive, got %d", got.Config.ExpiryThresholdDays)
	}
}

func TestFileAdapterOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pantry.json")
	adapter := NewFileAdapter(path)
	ctx := context.Background()

	doc := domain.NewDocument()
	doc.Inventories["a"] = domain.Inventory{Items: map[string]domain.Item{}}
	if err := adapter.Save(ctx, doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	delete(doc.Inventories, "a")
	doc.Inventories["b"] = domain.Inventory{Items: map[string]domain.Item{}}
	if err := adapter.Save(ctx, doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := adapter.Load(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := got.Inventories["a"]; ok {
		t.Error("expected old snapshot to be replaced")
	}
	if _, ok := got.Inventories["b"]; !ok {
		t.Error("expected new snapshot content")
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("expected temp file to be renamed away")
	}
}

func TestFileAdapterLegacyFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pantry.json")
	raw := `{"items": {"milk": {"quantity": 4}}}`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	adapter := NewFileAdapter(path)
	doc, err := adapter.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Inventories["default"].Items["milk"].Quantity != 4 {
		t.Errorf("expected legacy items under default inventory, got %+v", doc)
	}
}

func TestFileAdapterCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pantry.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	adapter := NewFileAdapter(path)
	if _, err := adapter.Load(context.Background()); err == nil {
		t.Error("expected decode error")
	}
}
