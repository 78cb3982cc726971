package tilesource

import (
	"context"
	"testing"
)

func TestRegistryLookupAndNew(t *testing.T) {
	Register("test-format", func(dir string) (Source, error) {
		return &stubSource{dir: dir}, nil
	})

	src, err := New("test-format", "/tiles")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if src.(*stubSource).dir != "/tiles" {
		t.Fatalf("factory did not receive dir")
	}
}

func TestRegistryNewUnregisteredFormat(t *testing.T) {
	if _, err := New("does-not-exist", "/tiles"); err == nil {
		t.Fatal("expected an error for an unregistered format")
	}
}

type stubSource struct{ dir string }

func (s *stubSource) Load(ctx context.Context, id TileID) (Tile, error) {
	return nil, nil
}
