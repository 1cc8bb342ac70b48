package index

import "github.com/starford/relyaml/internal/models"

// DocumentIndex defines the interface for document cache operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type DocumentIndex interface {
	UpsertDocument(doc models.Document) error
	DeleteDocument(path string) error
	GetChecksum(path string) (string, error)
	GetDocument(path string) (*models.Document, error)
	ListDocuments() ([]models.Document, error)
	AllStamps() (map[string]Stamp, error)
	GetSetting(key string) (string, bool, error)
	PutSetting(key, value string) error
	Close() error
}

// Verify *DB satisfies DocumentIndex at compile time.
var _ DocumentIndex = (*DB)(nil)
