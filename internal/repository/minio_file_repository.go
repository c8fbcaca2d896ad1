package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.mongodb.org/mongo-driver/bson/primitive"

	apperrors "communication/internal/errors"
	"communication/internal/model"
)

const (
	metaFilename    = "Filename"
	metaDescription = "Description"
)

type minioFileRepository struct {
	client *minio.Client
	bucket string
}

// NewMinIOClient connects to endpoint, which may be "host:port" or an http(s) URL.
func NewMinIOClient(endpoint, accessKey, secretKey string) (*minio.Client, error) {
	host, secure, err := normaliseEndpoint(endpoint)
	if err != nil {
		return nil, fmt.Errorf("minio endpoint: %w", err)
	}
	client, err := minio.New(host, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return client, nil
}

// NewMinIOFileRepository stores files as objects in bucket, creating it if needed.
// Object keys are ObjectID hex strings so ids look the same as with GridFS.
func NewMinIOFileRepository(ctx context.Context, client *minio.Client, bucket string) (FileRepository, error) {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", bucket, err)
		}
	}
	return &minioFileRepository{client: client, bucket: bucket}, nil
}

func (r *minioFileRepository) Upload(ctx context.Context, filename string, content []byte, contentType, description string) (string, error) {
	id := primitive.NewObjectID().Hex()
	_, err := r.client.PutObject(ctx, r.bucket, id, bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{
		ContentType: contentType,
		UserMetadata: map[string]string{
			// header values must stay ASCII
			metaFilename:    url.PathEscape(filename),
			metaDescription: url.PathEscape(description),
		},
	})
	if err != nil {
		return "", fmt.Errorf("upload file: %w", err)
	}
	return id, nil
}

func (r *minioFileRepository) List(ctx context.Context) ([]model.FileInfo, error) {
	files := []model.FileInfo{}
	for obj := range r.client.ListObjects(ctx, r.bucket, minio.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list files: %w", obj.Err)
		}
		info, err := r.stat(ctx, obj.Key)
		if err != nil {
			// removed between list and stat
			if errors.Is(err, apperrors.ErrFileNotFound) {
				continue
			}
			return nil, err
		}
		files = append(files, *info)
	}
	return files, nil
}

func (r *minioFileRepository) FindByID(ctx context.Context, id string) (*model.FileInfo, error) {
	if !primitive.IsValidObjectID(id) {
		return nil, apperrors.ErrFileNotFound
	}
	return r.stat(ctx, id)
}

func (r *minioFileRepository) Delete(ctx context.Context, id string) error {
	// RemoveObject succeeds for missing keys, so existence is checked first.
	if _, err := r.FindByID(ctx, id); err != nil {
		return err
	}
	if err := r.client.RemoveObject(ctx, r.bucket, id, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

func (r *minioFileRepository) stat(ctx context.Context, key string) (*model.FileInfo, error) {
	obj, err := r.client.StatObject(ctx, r.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, apperrors.ErrFileNotFound
		}
		return nil, fmt.Errorf("stat file: %w", err)
	}
	return &model.FileInfo{
		ID:          key,
		Filename:    userMeta(obj.UserMetadata, metaFilename),
		Length:      obj.Size,
		UploadDate:  obj.LastModified,
		ContentType: obj.ContentType,
		Description: userMeta(obj.UserMetadata, metaDescription),
	}, nil
}

func userMeta(meta minio.StringMap, key string) string {
	for k, v := range meta {
		if strings.EqualFold(k, key) || strings.EqualFold(k, "X-Amz-Meta-"+key) {
			if decoded, err := url.PathUnescape(v); err == nil {
				return decoded
			}
			return v
		}
	}
	return ""
}

func normaliseEndpoint(raw string) (endpoint string, secure bool, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false, fmt.Errorf("empty endpoint")
	}

	// Accept either "minio:9000" or "http://minio:9000" / "https://minio:9000".
	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return "", false, err
		}
		if u.Host == "" {
			return "", false, fmt.Errorf("invalid endpoint")
		}
		if u.Path != "" && u.Path != "/" {
			return "", false, fmt.Errorf("endpoint must not contain a path")
		}
		return u.Host, u.Scheme == "https", nil
	}
	return raw, false, nil
}
