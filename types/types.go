package types

import (
	"fmt"
	"os"
	"strconv"
)

// ImageDescriptor describes one embedded image detected on a page. Path is
// empty when only metadata could be recovered (pixel extraction failed or was
// unavailable for the whole document).
type ImageDescriptor struct {
	Filename string
	Page     int // 0-based page index
	Width    int
	Height   int
	Path     string
}

// Saved reports whether the image pixels were written to disk.
func (d ImageDescriptor) Saved() bool {
	return d.Path != ""
}

// TableGrid is an ordered grid of cell strings belonging to one page.
// Rows whose cells are all blank are dropped at extraction time.
type TableGrid struct {
	Rows [][]string
}

// PageMeta is the metadata bag accumulated per page and carried onto every
// chunk produced from that page.
type PageMeta struct {
	ImagesFound      int  `json:"images_found"`
	ImagesExtracted  int  `json:"images_extracted"`
	TablesFound      int  `json:"tables_found"`
	HasTableKeywords bool `json:"has_table_keywords"`
}

// PageContent is one extracted page: raw text plus detected structure and
// the assembled content string the chunker operates on.
type PageContent struct {
	Page    int // 0-based
	Text    string
	Images  []ImageDescriptor
	Tables  []TableGrid
	Content string
	Meta    PageMeta
}

// Chunk is an immutable bounded span of one page's content.
// ID is assigned after splitting as {source}:{page}:{position}.
type Chunk struct {
	ID       string
	Source   string
	Page     int
	Position int
	Content  string
	Meta     PageMeta
}

// RetrievalResult is one similarity-search hit. Ephemeral, never persisted.
type RetrievalResult struct {
	ID      string
	Content string
	Score   float64
}

// Answer is the composed response for one question. Sources keeps the
// retrieval order and is not deduplicated.
type Answer struct {
	Text    string
	Sources []string
}

type Config struct {
	SourceDir    string
	ImagesDir    string
	ChunkSize    int
	ChunkOverlap int
	TopK         int
}

const (
	defaultChunkSize    = 1000
	defaultChunkOverlap = 100
	defaultTopK         = 5
)

// ConfigFromEnv collects loader settings from the environment, falling back
// to the defaults of the original pipeline.
func ConfigFromEnv() Config {
	return Config{
		SourceDir:    envOr("SOURCE_DIR", "content"),
		ImagesDir:    envOr("IMAGES_DIR", "images"),
		ChunkSize:    envIntOr("CHUNK_SIZE", defaultChunkSize),
		ChunkOverlap: envIntOr("CHUNK_OVERLAP", defaultChunkOverlap),
		TopK:         envIntOr("TOP_K", defaultTopK),
	}
}

// PostgresDSN builds the index connection string from PG_* variables.
func PostgresDSN() string {
	port, _ := strconv.Atoi(os.Getenv("PG_PORT"))
	if port == 0 {
		port = 5432
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		os.Getenv("PG_HOST"), port, os.Getenv("PG_USER"), os.Getenv("PG_PASS"), os.Getenv("PG_DB_NAME"))
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
