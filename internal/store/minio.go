package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/minio/minio-go/v7"

	"effectif_back_end/internal/database"
)

// MinIOObjectStore implémente ObjectStore sur le bucket des documents RH.
type MinIOObjectStore struct {
	Bucket string
}

func NewMinIOObjectStore() *MinIOObjectStore {
	return &MinIOObjectStore{Bucket: os.Getenv("MINIO_BUCKET")}
}

func (s *MinIOObjectStore) Upload(ctx context.Context, path string, r io.Reader, size int64, contentType string) error {
	if database.MinIO == nil {
		return fmt.Errorf("MinIO non initialisé")
	}
	_, err := database.MinIO.PutObject(ctx, s.Bucket, path, r, size,
		minio.PutObjectOptions{ContentType: contentType})
	return err
}

// PublicURL construit l'URL publique d'un objet (à adapter selon le reverse proxy).
func (s *MinIOObjectStore) PublicURL(path string) string {
	publicBase := os.Getenv("MINIO_PUBLIC_URL")
	if publicBase == "" {
		publicBase = fmt.Sprintf("http://%s", os.Getenv("MINIO_ENDPOINT"))
	}
	return fmt.Sprintf("%s/%s/%s", publicBase, s.Bucket, path)
}

// PresignedURL génère une URL signée temporaire (1h) pour un objet privé.
func (s *MinIOObjectStore) PresignedURL(ctx context.Context, path string) (string, error) {
	if database.MinIO == nil {
		return "", fmt.Errorf("MinIO non initialisé")
	}
	u, err := database.MinIO.PresignedGetObject(ctx, s.Bucket, path, time.Hour, nil)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (s *MinIOObjectStore) Remove(ctx context.Context, path string) error {
	if database.MinIO == nil {
		return fmt.Errorf("MinIO non initialisé")
	}
	return database.MinIO.RemoveObject(ctx, s.Bucket, path, minio.RemoveObjectOptions{})
}
