package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"chatreport/internal/model"
	"chatreport/internal/repository"
	"chatreport/internal/storage"
)

// FileService defines the use cases for uploaded files.
type FileService interface {
	// Upload stores the content in object storage, saves metadata to the DB,
	// and rolls the object back if the DB save fails.
	// - originalFilename is kept as display name; the stored object key is
	//   UUID + original extension under files/.
	Upload(ctx context.Context, r io.Reader, chatID, userID, originalFilename, contentType string, size int64) (*model.File, error)

	// Get returns a single file by its ID.
	Get(ctx context.Context, id string) (*model.File, error)

	// ListByChat returns the chat's files.
	ListByChat(ctx context.Context, chatID string) ([]model.File, error)

	// Delete removes a file from both storage and the repository.
	Delete(ctx context.Context, id string) error
}

type fileService struct {
	store storage.Storage
	repo  repository.FileRepository
}

// NewFileService constructs a new FileService.
func NewFileService(store storage.Storage, repo repository.FileRepository) FileService {
	return &fileService{store: store, repo: repo}
}

func (s *fileService) Upload(ctx context.Context, r io.Reader, chatID, userID, originalFilename, contentType string, size int64) (*model.File, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	if chatID == "" {
		return nil, ErrIDRequired
	}

	// Object key is UUID + extension so concurrent uploads of the same
	// filename never collide.
	ext := filepath.Ext(originalFilename)
	key := filepath.ToSlash(filepath.Join("files", uuid.New().String()+ext))

	objInfo, err := s.store.Put(ctx, key, r, storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": originalFilename,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	f := &model.File{
		ID:          uuid.New().String(),
		ChatID:      chatID,
		UserID:      userID,
		Filename:    originalFilename,
		MimeType:    objInfo.ContentType,
		StoragePath: objInfo.Key,
		Size:        objInfo.Size,
		CreatedAt:   time.Now().UTC(),
	}
	stored, err := s.repo.Create(ctx, f)
	if err != nil {
		// Rollback: delete the object from storage
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

func (s *fileService) Get(ctx context.Context, id string) (*model.File, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

func (s *fileService) ListByChat(ctx context.Context, chatID string) ([]model.File, error) {
	if chatID == "" {
		return nil, ErrIDRequired
	}
	return s.repo.ListByChat(ctx, chatID)
}

// Delete removes a file from storage, then deletes its record.
func (s *fileService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	// Delete from storage first; if this fails, keep DB row to avoid orphaned storage reference loss
	if err := s.store.Delete(ctx, f.StoragePath); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	return s.repo.Delete(ctx, id)
}
