package service

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"pdfrag/loader/internal"
	"pdfrag/model"
	"pdfrag/store"
	"pdfrag/types"
)

// Report summarizes one ingestion run: what succeeded, what was skipped and
// what fell back.
type Report struct {
	FilesProcessed  int
	FilesFailed     int
	Fallbacks       []string
	NewChunks       int
	SkippedChunks   int
	ImagesFound     int
	ImagesExtracted int
	TablesFound     int
}

type Service struct {
	logger   *slog.Logger
	cfg      types.Config
	store    store.VectorStorer
	embedder model.Embedder
}

func New(cfg types.Config, storer store.VectorStorer, embedder model.Embedder) *Service {
	return &Service{
		logger:   slog.Default(),
		cfg:      cfg,
		store:    storer,
		embedder: embedder,
	}
}

// BuildIndex scans the intake directory for PDF files, extracts and splits
// each one, and adds only chunks whose identifiers are not yet persisted.
// One file's failure never blocks the others.
func (s *Service) BuildIndex(ctx context.Context) (*Report, error) {
	files, err := s.listPDFs()
	if err != nil {
		return nil, err
	}

	report := &Report{}
	var chunks []types.Chunk

	for _, path := range files {
		s.logger.Info("processing file", "path", path)

		ext, err := internal.ExtractDocument(path, s.cfg.ImagesDir)
		if err != nil {
			s.logger.Error("extraction failed, skipping file", "path", path, "error", err)
			report.FilesFailed++
			continue
		}
		if ext.Degraded {
			s.logger.Warn("structured extraction fell back to plain text", "path", path, "reason", ext.DegradedReason)
			report.Fallbacks = append(report.Fallbacks, path)
		}

		chunks = append(chunks, internal.SplitPages(path, ext.Pages, s.cfg.ChunkSize, s.cfg.ChunkOverlap)...)
		report.FilesProcessed++
	}

	chunks = internal.AssignIDs(chunks)

	if err := s.indexChunks(ctx, chunks, report); err != nil {
		return report, err
	}
	return report, nil
}

// indexChunks diffs incoming identifiers against the persisted set and
// upserts only the unseen ones: embeddings are computed for new chunks alone
// and written as a single batch. An identical re-run adds nothing.
func (s *Service) indexChunks(ctx context.Context, chunks []types.Chunk, report *Report) error {
	existing, err := s.store.ExistingIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch existing identifiers: %w", err)
	}
	log.Printf("[INDEX] existing documents in DB: %d", len(existing))

	var fresh []types.Chunk
	for _, c := range chunks {
		if _, ok := existing[c.ID]; ok {
			report.SkippedChunks++
			continue
		}
		fresh = append(fresh, c)
	}

	if len(fresh) == 0 {
		log.Println("[INDEX] no new documents to add")
		return nil
	}
	log.Printf("[INDEX] adding new documents: %d", len(fresh))

	contents := make([]string, len(fresh))
	for i, c := range fresh {
		contents[i] = c.Content
	}

	embeddings, err := s.embedder.EmbedBatch(ctx, contents)
	if err != nil {
		return fmt.Errorf("failed to embed new chunks: %w", err)
	}

	if err := s.store.UpsertBatch(ctx, fresh, embeddings); err != nil {
		return fmt.Errorf("failed to upsert chunks: %w", err)
	}

	report.NewChunks = len(fresh)
	for _, c := range fresh {
		report.ImagesFound += c.Meta.ImagesFound
		report.ImagesExtracted += c.Meta.ImagesExtracted
		report.TablesFound += c.Meta.TablesFound
	}
	return nil
}

// Clear drops the entire persisted index.
func (s *Service) Clear(ctx context.Context) error {
	return s.store.Clear(ctx)
}

func (s *Service) listPDFs() ([]string, error) {
	entries, err := os.ReadDir(s.cfg.SourceDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read source directory %s: %w", s.cfg.SourceDir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		files = append(files, filepath.Join(s.cfg.SourceDir, e.Name()))
	}
	return files, nil
}

// PrintSummary writes the run outcome in the loader's report format.
func (r *Report) PrintSummary() {
	fmt.Printf("Processed files: %d (failed: %d)\n", r.FilesProcessed, r.FilesFailed)
	for _, path := range r.Fallbacks {
		fmt.Printf("  fallback to plain text: %s\n", path)
	}
	if r.NewChunks == 0 {
		fmt.Println("No new documents to add")
		return
	}
	fmt.Printf("Added new chunks: %d (skipped existing: %d)\n", r.NewChunks, r.SkippedChunks)
	fmt.Printf("  images detected: %d\n", r.ImagesFound)
	fmt.Printf("  images extracted: %d\n", r.ImagesExtracted)
	fmt.Printf("  tables detected: %d\n", r.TablesFound)
}
