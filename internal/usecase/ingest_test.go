package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"shastra/internal/adapter/fs"
	"shastra/internal/adapter/store"
	"shastra/internal/domain"
	"shastra/internal/port"
)

type fakeAdmin struct {
	mu          sync.Mutex
	items       []port.IndexItem
	batchErr    error
	ensureCalls int
	dropCalls   int
}

func (f *fakeAdmin) Ready(ctx context.Context) error                { return nil }
func (f *fakeAdmin) SchemaExists(ctx context.Context) (bool, error) { return true, nil }

func (f *fakeAdmin) EnsureSchema(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensureCalls++
	return nil
}

func (f *fakeAdmin) DropSchema(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dropCalls++
	return nil
}

func (f *fakeAdmin) BatchInsert(ctx context.Context, items []port.IndexItem) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.batchErr != nil {
		return 0, f.batchErr
	}
	f.items = append(f.items, items...)
	return len(items), nil
}

func (f *fakeAdmin) Count(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items), nil
}

func (f *fakeAdmin) Sample(ctx context.Context, limit int) ([]domain.Passage, error) {
	return nil, nil
}

func (f *fakeAdmin) stored() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

type ingestEnv struct {
	dir      string
	admin    *fakeAdmin
	manifest *store.Manifest
	u        *IngestUseCase
}

func newIngestEnv(t *testing.T) *ingestEnv {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "shastra.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	admin := &fakeAdmin{}
	manifest := store.NewManifest(st)
	walker := fs.NewWalker(nil, nil)
	embedder := &fakeEmbedder{vector: []float32{0.1, 0.2}}
	return &ingestEnv{
		dir:      t.TempDir(),
		admin:    admin,
		manifest: manifest,
		u:        NewIngestUseCase(walker, embedder, admin, manifest, 2, nil),
	}
}

func writeJSONL(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

const gitaLines = `{"content":"Krishna teaches Arjuna about duty.","source":"bhagavad-gita","page":1,"category":"Gita"}
{"content":"Action without attachment.","source":"bhagavad-gita","page":2,"category":"Gita"}
`

const puranaLines = `{"content":"The soul departs the body.","source":"garuda-purana","page":14,"category":"Purana"}
`

func TestIngestStoresPassages(t *testing.T) {
	env := newIngestEnv(t)
	gitaPath := writeJSONL(t, env.dir, "bhagavad_gita.jsonl", gitaLines)
	writeJSONL(t, env.dir, "garuda_purana.jsonl", puranaLines)

	var mu sync.Mutex
	var events []Progress
	result, err := env.u.Ingest(context.Background(), env.dir, func(p Progress) {
		mu.Lock()
		events = append(events, p)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	if result.FilesFound != 2 || result.FilesIngested != 2 || result.FilesSkipped != 0 {
		t.Errorf("unexpected file counts: %+v", result)
	}
	if result.PassagesStored != 3 {
		t.Errorf("expected 3 passages stored, got %d", result.PassagesStored)
	}
	if env.admin.stored() != 3 {
		t.Errorf("expected 3 items in the index, got %d", env.admin.stored())
	}
	if env.admin.ensureCalls != 1 {
		t.Errorf("expected the schema ensured once, got %d", env.admin.ensureCalls)
	}
	if len(events) != 2 {
		t.Errorf("expected 2 progress events, got %d", len(events))
	}

	rec, err := env.manifest.Get(gitaPath)
	if err != nil || rec == nil {
		t.Fatalf("expected a manifest record for %s, got %v (%v)", gitaPath, rec, err)
	}
	if rec.Passages != 2 {
		t.Errorf("expected 2 passages recorded, got %d", rec.Passages)
	}
}

func TestIngestSkipsUnchangedFiles(t *testing.T) {
	env := newIngestEnv(t)
	writeJSONL(t, env.dir, "bhagavad_gita.jsonl", gitaLines)
	writeJSONL(t, env.dir, "garuda_purana.jsonl", puranaLines)

	if _, err := env.u.Ingest(context.Background(), env.dir, nil); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	result, err := env.u.Ingest(context.Background(), env.dir, nil)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if result.FilesSkipped != 2 || result.FilesIngested != 0 {
		t.Errorf("expected both files skipped, got %+v", result)
	}
	if result.PassagesStored != 0 {
		t.Errorf("skipped files must not store passages, got %d", result.PassagesStored)
	}
	if env.admin.stored() != 3 {
		t.Errorf("index should still hold 3 items, got %d", env.admin.stored())
	}
}

func TestIngestReingestsChangedFile(t *testing.T) {
	env := newIngestEnv(t)
	writeJSONL(t, env.dir, "bhagavad_gita.jsonl", gitaLines)
	writeJSONL(t, env.dir, "garuda_purana.jsonl", puranaLines)

	if _, err := env.u.Ingest(context.Background(), env.dir, nil); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	writeJSONL(t, env.dir, "bhagavad_gita.jsonl", gitaLines+
		`{"content":"The self is never born.","source":"bhagavad-gita","page":3,"category":"Gita"}
`)
	result, err := env.u.Ingest(context.Background(), env.dir, nil)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if result.FilesIngested != 1 || result.FilesSkipped != 1 {
		t.Errorf("expected one re-ingest and one skip, got %+v", result)
	}
	if result.PassagesStored != 3 {
		t.Errorf("expected the changed file's 3 passages stored, got %d", result.PassagesStored)
	}
}

func TestIngestRecordsBadFile(t *testing.T) {
	env := newIngestEnv(t)
	writeJSONL(t, env.dir, "garuda_purana.jsonl", puranaLines)
	badPath := writeJSONL(t, env.dir, "bad.jsonl", `{"content":`)

	result, err := env.u.Ingest(context.Background(), env.dir, nil)
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	if result.FilesIngested != 1 {
		t.Errorf("the good file should still be ingested, got %+v", result)
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "bad.jsonl") {
		t.Errorf("expected one error naming bad.jsonl, got %v", result.Errors)
	}
	if rec, _ := env.manifest.Get(badPath); rec != nil {
		t.Errorf("a failed file must not enter the manifest")
	}
}

func TestIngestRetriesAfterBatchError(t *testing.T) {
	env := newIngestEnv(t)
	path := writeJSONL(t, env.dir, "garuda_purana.jsonl", puranaLines)

	env.admin.batchErr = errors.New("index rejected the batch")
	result, err := env.u.Ingest(context.Background(), env.dir, nil)
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected the batch failure recorded, got %v", result.Errors)
	}
	if rec, _ := env.manifest.Get(path); rec != nil {
		t.Fatalf("a failed file must not enter the manifest")
	}

	env.admin.batchErr = nil
	result, err = env.u.Ingest(context.Background(), env.dir, nil)
	if err != nil {
		t.Fatalf("retry run failed: %v", err)
	}
	if result.FilesIngested != 1 || result.PassagesStored != 1 {
		t.Errorf("expected the file ingested on retry, got %+v", result)
	}
}

func TestIngestReset(t *testing.T) {
	env := newIngestEnv(t)
	path := writeJSONL(t, env.dir, "garuda_purana.jsonl", puranaLines)

	if _, err := env.u.Ingest(context.Background(), env.dir, nil); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if err := env.u.Reset(context.Background()); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	if env.admin.dropCalls != 1 {
		t.Errorf("expected the schema dropped once, got %d", env.admin.dropCalls)
	}
	if rec, _ := env.manifest.Get(path); rec != nil {
		t.Errorf("reset must clear the manifest")
	}

	result, err := env.u.Ingest(context.Background(), env.dir, nil)
	if err != nil {
		t.Fatalf("re-ingest failed: %v", err)
	}
	if result.FilesIngested != 1 {
		t.Errorf("expected the file re-ingested after reset, got %+v", result)
	}
}

func TestDecodePassages(t *testing.T) {
	t.Run("defaults from file name", func(t *testing.T) {
		passages, err := decodePassages("/data/bhagavad_gita.jsonl", []byte(`{"content":"c","page":3}`))
		if err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if len(passages) != 1 {
			t.Fatalf("expected 1 passage, got %d", len(passages))
		}
		if passages[0].Source != "bhagavad_gita" {
			t.Errorf("expected source defaulted from file name, got %q", passages[0].Source)
		}
		if passages[0].Category != "Gita" {
			t.Errorf("expected category inferred from file name, got %q", passages[0].Category)
		}
	})

	t.Run("missing content", func(t *testing.T) {
		_, err := decodePassages("x.jsonl", []byte(`{"source":"s","page":1}`))
		if err == nil || !strings.Contains(err.Error(), "missing content") {
			t.Fatalf("expected a missing-content error, got %v", err)
		}
	})

	t.Run("negative page", func(t *testing.T) {
		_, err := decodePassages("x.jsonl", []byte(`{"content":"c","page":-2}`))
		if err == nil || !strings.Contains(err.Error(), "negative page") {
			t.Fatalf("expected a negative-page error, got %v", err)
		}
	})

	t.Run("malformed record reports position", func(t *testing.T) {
		data := `{"content":"ok","page":1}
{"content": broken}
`
		_, err := decodePassages("x.jsonl", []byte(data))
		if err == nil || !strings.Contains(err.Error(), "record 2") {
			t.Fatalf("expected the record number in the error, got %v", err)
		}
	})
}
