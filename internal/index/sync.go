package index

import (
	"fmt"
	"log/slog"

	"github.com/starford/relyaml/internal/checksum"
	"github.com/starford/relyaml/internal/models"
	"github.com/starford/relyaml/internal/parser"
	"github.com/starford/relyaml/internal/storage"
)

// Sync walks the vault and brings the index up to date:
//   - new/changed files are parsed and upserted
//   - files removed from disk are deleted from the index
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	files, err := store.List("")
	if err != nil {
		return err
	}

	stamps, err := db.AllStamps()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(files))
	for _, fi := range files {
		disk[fi.Path] = struct{}{}

		if s, ok := stamps[fi.Path]; ok && s.Matches(fi) {
			continue
		}

		data, err := store.Read(fi.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", fi.Path), slog.String("error", err.Error()))
			continue
		}
		if err := IndexFile(db, fi, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", fi.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", fi.Path))
		}
	}

	for p := range stamps {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteDocument(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// IndexFile parses data and upserts it into the DB with fi's timestamps.
func IndexFile(db DocumentIndex, fi models.FileInfo, data []byte) error {
	res, err := parser.Parse(data)
	if err != nil {
		return err
	}
	return db.UpsertDocument(models.Document{
		Path:       fi.Path,
		Name:       models.DisplayName(fi.Path),
		Metadata:   res.Metadata,
		Checksum:   checksum.Sum(data),
		CreatedAt:  fi.CreatedAt,
		ModifiedAt: fi.ModifiedAt,
	})
}

// indexPath stats, reads and indexes a single vault file. The returned kind
// is ChangeCreated when the path had no row before, ChangeUpdated otherwise;
// atomic saves arrive as fsnotify creates, so the event op cannot tell.
func indexPath(db *DB, store storage.Provider, rel string) (string, error) {
	prev, err := db.GetChecksum(rel)
	if err != nil {
		return "", err
	}
	fi, err := store.Stat(rel)
	if err != nil {
		return "", err
	}
	data, err := store.Read(rel)
	if err != nil {
		return "", err
	}
	if err := IndexFile(db, fi, data); err != nil {
		return "", fmt.Errorf("index %s: %w", rel, err)
	}
	if prev == "" {
		return ChangeCreated, nil
	}
	return ChangeUpdated, nil
}
