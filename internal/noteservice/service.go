package noteservice

import (
	"context"
	"errors"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/starford/relyaml/internal/apperr"
	"github.com/starford/relyaml/internal/checksum"
	"github.com/starford/relyaml/internal/index"
	"github.com/starford/relyaml/internal/models"
	"github.com/starford/relyaml/internal/parser"
	"github.com/starford/relyaml/internal/related"
	"github.com/starford/relyaml/internal/storage"
)

// NoteDetail is the full representation of a note.
type NoteDetail struct {
	Path       string          `json:"path"`
	Name       string          `json:"name"`
	Content    string          `json:"content"`
	Checksum   string          `json:"checksum"`
	Metadata   models.Metadata `json:"metadata"`
	CreatedAt  time.Time       `json:"created_at"`
	ModifiedAt time.Time       `json:"modified_at"`
}

// NoteListItem is a lightweight item in a list response.
type NoteListItem struct {
	Path       string    `json:"path"`
	Name       string    `json:"name"`
	Checksum   string    `json:"checksum"`
	Keys       []string  `json:"keys"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

// Service coordinates storage and index operations and serves the indexed
// corpus to the panel.
type Service struct {
	store  storage.Provider
	db     index.DocumentIndex
	engine *related.Engine
}

// NewService creates a new note service. A nil engine uses the local time zone.
func NewService(store storage.Provider, db index.DocumentIndex, engine *related.Engine) *Service {
	if engine == nil {
		engine = related.New()
	}
	return &Service{store: store, db: db, engine: engine}
}

// GetNote reads a note from storage and returns it with parsed front-matter.
func (s *Service) GetNote(_ context.Context, path string) (*NoteDetail, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return s.buildNoteDetail(path, data)
}

// CreateNote writes a new note and indexes it.
func (s *Service) CreateNote(_ context.Context, path string, content []byte) (*NoteDetail, error) {
	if !strings.HasSuffix(path, ".md") {
		path += ".md"
	}
	if _, err := s.store.Read(path); err == nil {
		return nil, apperr.ErrAlreadyExists
	}
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	if err := s.IndexFile(path, content); err != nil {
		return nil, err
	}
	return s.buildNoteDetail(path, content)
}

// UpdateNote writes updated content with optimistic concurrency.
func (s *Service) UpdateNote(_ context.Context, path string, content []byte, ifMatch string) (*NoteDetail, error) {
	existing, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	if ifMatch != "" && ifMatch != checksum.Sum(existing) {
		return nil, apperr.ErrConflict
	}
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	if err := s.IndexFile(path, content); err != nil {
		return nil, err
	}
	return s.buildNoteDetail(path, content)
}

// DeleteNote removes a note from storage and index.
func (s *Service) DeleteNote(_ context.Context, path string) error {
	if err := s.store.Delete(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return apperr.ErrNotFound
		}
		return err
	}
	return s.db.DeleteDocument(path)
}

// ListNotes returns indexed notes under folder ("" for all), sorted by
// path, name, created_at or modified_at (newest first for the dates),
// and paginated when limit > 0.
func (s *Service) ListNotes(_ context.Context, limit, offset int, folder, sortBy string) ([]NoteListItem, int, error) {
	docs, err := s.db.ListDocuments()
	if err != nil {
		return nil, 0, err
	}

	prefix := strings.Trim(folder, "/")
	if prefix != "" {
		prefix += "/"
	}
	items := make([]NoteListItem, 0, len(docs))
	for _, d := range docs {
		if !strings.HasPrefix(d.Path, prefix) {
			continue
		}
		items = append(items, NoteListItem{
			Path:       d.Path,
			Name:       d.Name,
			Checksum:   d.Checksum,
			Keys:       nonNilSlice(d.Metadata.Keys()),
			CreatedAt:  d.CreatedAt,
			ModifiedAt: d.ModifiedAt,
		})
	}

	switch sortBy {
	case "name":
		sort.SliceStable(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	case "created_at":
		sort.SliceStable(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	case "modified_at":
		sort.SliceStable(items, func(i, j int) bool { return items[i].ModifiedAt.After(items[j].ModifiedAt) })
	}

	total := len(items)
	if offset > 0 {
		if offset >= len(items) {
			return []NoteListItem{}, total, nil
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items, total, nil
}

// Document returns the indexed document at path.
func (s *Service) Document(_ context.Context, path string) (*models.Document, error) {
	return s.db.GetDocument(path)
}

// Documents returns every indexed document.
func (s *Service) Documents(_ context.Context) ([]models.Document, error) {
	return s.db.ListDocuments()
}

// Related computes the related groups for the note at path against the
// whole index.
func (s *Service) Related(ctx context.Context, path string) (*related.Result, error) {
	if path == "" {
		return nil, apperr.ErrNoActiveDocument
	}
	active, err := s.Document(ctx, path)
	if err != nil {
		return nil, err
	}
	corpus, err := s.Documents(ctx)
	if err != nil {
		return nil, err
	}
	res := s.engine.Compute(*active, corpus)
	return &res, nil
}

// IndexFile stats path and upserts data into the index.
func (s *Service) IndexFile(path string, data []byte) error {
	fi, err := s.store.Stat(path)
	if err != nil {
		return err
	}
	return index.IndexFile(s.db, fi, data)
}

// buildNoteDetail constructs a NoteDetail from raw data without re-reading the file.
func (s *Service) buildNoteDetail(path string, data []byte) (*NoteDetail, error) {
	res, err := parser.Parse(data)
	if err != nil {
		return nil, err
	}
	fi, err := s.store.Stat(path)
	if err != nil {
		return nil, err
	}
	return &NoteDetail{
		Path:       path,
		Name:       models.DisplayName(path),
		Content:    string(data),
		Checksum:   checksum.Sum(data),
		Metadata:   res.Metadata,
		CreatedAt:  fi.CreatedAt,
		ModifiedAt: fi.ModifiedAt,
	}, nil
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
