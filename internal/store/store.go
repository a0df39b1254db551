package store

import (
	"context"
	"io"

	"effectif_back_end/internal/models"
)

// EmployeeStore est le contrat du magasin relationnel pour les fiches
// employés. Les handlers ne dépendent que de cette interface, ce qui permet
// de tester la séquence de création sans ScyllaDB.
type EmployeeStore interface {
	Insert(ctx context.Context, e models.Employee) error
	List(ctx context.Context) ([]models.Employee, error)
	Update(ctx context.Context, e models.Employee) error
	Delete(ctx context.Context, empID string) error

	InsertStoragePath(ctx context.Context, p models.StoragePath) error
	InsertDocument(ctx context.Context, d models.EmployeeDocument) error
	ListDocuments(ctx context.Context, empID string) ([]models.EmployeeDocument, error)
	DeleteDocument(ctx context.Context, empID string, id string) error
}

// ObjectStore est le contrat du stockage objet (photos de profil).
type ObjectStore interface {
	Upload(ctx context.Context, path string, r io.Reader, size int64, contentType string) error
	PublicURL(path string) string
	PresignedURL(ctx context.Context, path string) (string, error)
	Remove(ctx context.Context, path string) error
}
