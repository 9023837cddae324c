package imagestore

import (
	"context"
	"errors"
	"io"
)

// Upload es la referencia devuelta por el hosting de imágenes.
// PublicID permite destruir la imagen remota más adelante.
type Upload struct {
	URL      string
	PublicID string
}

// Store define la interfaz del hosting de imágenes.
type Store interface {
	Upload(ctx context.Context, file io.Reader, folder string) (Upload, error)
	Destroy(ctx context.Context, publicID string) error
}

type disabledStore struct {
	reason string
}

func NewDisabledStore(reason string) Store {
	return &disabledStore{reason: reason}
}

func (s *disabledStore) Upload(_ context.Context, _ io.Reader, _ string) (Upload, error) {
	if s.reason == "" {
		return Upload{}, errors.New("image store disabled")
	}
	return Upload{}, errors.New(s.reason)
}

func (s *disabledStore) Destroy(_ context.Context, _ string) error {
	// Sin hosting configurado no hay nada remoto que limpiar.
	return nil
}
