package service

import (
	"context"

	"communication/internal/model"
	"communication/internal/repository"
)

// FileService handles uploaded files.
type FileService interface {
	UploadFile(ctx context.Context, filename string, content []byte, contentType, description string) (string, error)
	ListFiles(ctx context.Context) ([]model.FileInfo, error)
	GetFileMetadata(ctx context.Context, id string) (*model.FileInfo, error)
	DeleteFile(ctx context.Context, id string) error
}

type fileService struct {
	repo repository.FileRepository
}

// NewFileService creates a new file service.
func NewFileService(repo repository.FileRepository) FileService {
	return &fileService{repo: repo}
}

func (s *fileService) UploadFile(ctx context.Context, filename string, content []byte, contentType, description string) (string, error) {
	return s.repo.Upload(ctx, filename, content, contentType, description)
}

func (s *fileService) ListFiles(ctx context.Context) ([]model.FileInfo, error) {
	return s.repo.List(ctx)
}

func (s *fileService) GetFileMetadata(ctx context.Context, id string) (*model.FileInfo, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *fileService) DeleteFile(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
