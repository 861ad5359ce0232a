package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"krishisense/internal/model"

	"github.com/google/uuid"
)

func TestParseID(t *testing.T) {
	valid := uuid.New().String()
	tests := []struct {
		id string
		ok bool
	}{
		{valid, true},
		{strings.ToUpper(valid), true},
		{"", false},
		{"42", false},
		{"not-a-uuid", false},
	}

	for _, tt := range tests {
		if _, ok := parseID(tt.id); ok != tt.ok {
			t.Errorf("parseID(%q): expected %v, got %v", tt.id, tt.ok, ok)
		}
	}
}

func TestMalformedIDsSkipDatabase(t *testing.T) {
	// A nil db would panic if either call reached it
	repo := &PostgresRepository{}

	update, err := repo.RecordActual(context.Background(), "bogus", 12)
	if update != nil || err != nil {
		t.Errorf("Expected absent update, got %+v (%v)", update, err)
	}

	deleted, err := repo.Delete(context.Background(), "farmer-1", "bogus")
	if deleted || err != nil {
		t.Errorf("Expected nothing deleted, got %v (%v)", deleted, err)
	}
}

func TestSchemaEmbedded(t *testing.T) {
	for _, want := range []string{"CREATE EXTENSION IF NOT EXISTS vector", "CREATE TABLE IF NOT EXISTS predictions", "vector(10)"} {
		if !strings.Contains(schemaSQL, want) {
			t.Errorf("Expected schema to contain %q", want)
		}
	}
}

type fakeEmbeddingWriter struct {
	failAt int
	calls  int
}

func (w *fakeEmbeddingWriter) ExecContext(ctx context.Context, args ...any) (sql.Result, error) {
	w.calls++
	if w.calls == w.failAt {
		return nil, errors.New("current transaction is aborted")
	}
	return nil, nil
}

func TestWriteEmbeddings(t *testing.T) {
	pending := []pendingEmbedding{
		{ID: uuid.New(), Features: model.FeatureVector{Rainfall: 1}},
		{ID: uuid.New(), Features: model.FeatureVector{Rainfall: 2}},
		{ID: uuid.New(), Features: model.FeatureVector{Rainfall: 3}},
	}

	t.Run("all rows", func(t *testing.T) {
		w := &fakeEmbeddingWriter{}
		n, err := writeEmbeddings(context.Background(), w, pending)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if n != 3 || w.calls != 3 {
			t.Errorf("Expected 3 rows written, got %d (%d calls)", n, w.calls)
		}
	})

	t.Run("stops at first failure", func(t *testing.T) {
		w := &fakeEmbeddingWriter{failAt: 2}
		n, err := writeEmbeddings(context.Background(), w, pending)
		if err == nil {
			t.Fatal("Expected error")
		}
		if w.calls != 2 {
			t.Errorf("Expected no writes after the failed row, got %d calls", w.calls)
		}
		if n != 1 {
			t.Errorf("Expected 1 row written before the failure, got %d", n)
		}
		if !strings.Contains(err.Error(), pending[1].ID.String()) {
			t.Errorf("Expected failing id in error, got %v", err)
		}
	})
}
