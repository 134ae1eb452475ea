package usecase

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"shastra/internal/adapter/analyzer"
	"shastra/internal/adapter/fs"
	"shastra/internal/adapter/store"
	"shastra/internal/domain"
	"shastra/internal/port"
)

// IngestUseCase loads passage files into the vector index.
type IngestUseCase struct {
	walker   *fs.Walker
	embedder port.Embedder
	index    port.IndexAdmin
	manifest *store.Manifest
	workers  int
	logger   *zap.Logger
}

// NewIngestUseCase creates a new ingest use case.
func NewIngestUseCase(
	walker *fs.Walker,
	embedder port.Embedder,
	index port.IndexAdmin,
	manifest *store.Manifest,
	workers int,
	logger *zap.Logger,
) *IngestUseCase {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IngestUseCase{
		walker:   walker,
		embedder: embedder,
		index:    index,
		manifest: manifest,
		workers:  workers,
		logger:   logger,
	}
}

// IngestResult contains the results of an ingestion run.
type IngestResult struct {
	FilesFound     int
	FilesIngested  int
	FilesSkipped   int
	PassagesStored int
	Errors         []string
}

// Progress reports the outcome of one file during ingestion.
type Progress struct {
	File     string
	Done     int
	Total    int
	Passages int
	Skipped  bool
}

// Ingest walks root for passage files and stores their contents in the
// vector index. Files whose content hash matches the manifest are
// skipped. A failing file is recorded in the result and does not stop
// the run. The progress callback, if set, fires once per finished file.
func (u *IngestUseCase) Ingest(ctx context.Context, root string, progress func(Progress)) (*IngestResult, error) {
	files, err := u.walker.Walk(root)
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	if err := u.index.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	result := &IngestResult{FilesFound: len(files)}
	var mu sync.Mutex
	done := 0

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(u.workers)
	for _, path := range files {
		path := path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			outcome, err := u.ingestFile(ctx, path)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				u.logger.Warn("failed to ingest file", zap.String("file", path), zap.Error(err))
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", path, err))
			} else if outcome.skipped {
				result.FilesSkipped++
			} else {
				result.FilesIngested++
			}
			result.PassagesStored += outcome.stored
			done++
			if progress != nil {
				progress(Progress{
					File:     path,
					Done:     done,
					Total:    len(files),
					Passages: outcome.stored,
					Skipped:  outcome.skipped,
				})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, err
	}
	return result, nil
}

// Reset drops the index schema and forgets all ingested files, so the
// next run starts from scratch.
func (u *IngestUseCase) Reset(ctx context.Context) error {
	if err := u.index.DropSchema(ctx); err != nil {
		return err
	}
	if err := u.manifest.Clear(); err != nil {
		return fmt.Errorf("failed to clear manifest: %w", err)
	}
	return nil
}

type fileOutcome struct {
	stored  int
	skipped bool
}

// ingestFile processes a single passage file end to end. A partial
// batch failure still reports the stored count so the totals stay
// honest; the manifest is only updated on full success, so the next
// run retries the file.
func (u *IngestUseCase) ingestFile(ctx context.Context, path string) (fileOutcome, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fileOutcome{}, fmt.Errorf("failed to read file: %w", err)
	}

	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	if rec, err := u.manifest.Get(path); err == nil && rec != nil && rec.Hash == hash {
		return fileOutcome{skipped: true}, nil
	}

	passages, err := decodePassages(path, data)
	if err != nil {
		return fileOutcome{}, err
	}
	if len(passages) == 0 {
		return fileOutcome{}, errors.New("no passages in file")
	}

	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Content
	}
	vectors, err := u.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fileOutcome{}, err
	}

	items := make([]port.IndexItem, len(passages))
	for i := range passages {
		items[i] = port.IndexItem{Passage: passages[i], Vector: vectors[i]}
	}

	stored, err := u.index.BatchInsert(ctx, items)
	if err != nil {
		return fileOutcome{stored: stored}, err
	}

	if err := u.manifest.Put(path, store.FileRecord{
		Hash:       hash,
		Passages:   stored,
		IngestedAt: time.Now(),
	}); err != nil {
		return fileOutcome{stored: stored}, fmt.Errorf("failed to record file: %w", err)
	}
	return fileOutcome{stored: stored}, nil
}

// decodePassages parses a JSONL passage file. Source defaults to the
// file name and category is inferred from the file name when absent.
func decodePassages(path string, data []byte) ([]domain.Passage, error) {
	base := filepath.Base(path)
	fallback := strings.TrimSuffix(base, filepath.Ext(base))
	defaultCategory := analyzer.Categorize(base)

	var passages []domain.Passage
	dec := json.NewDecoder(bytes.NewReader(data))
	for i := 1; ; i++ {
		var p domain.Passage
		if err := dec.Decode(&p); err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if strings.TrimSpace(p.Content) == "" {
			return nil, fmt.Errorf("record %d: missing content", i)
		}
		if p.Page < 0 {
			return nil, fmt.Errorf("record %d: negative page %d", i, p.Page)
		}
		if p.Source == "" {
			p.Source = fallback
		}
		if p.Category == "" {
			p.Category = defaultCategory
		}
		passages = append(passages, p)
	}
	return passages, nil
}
