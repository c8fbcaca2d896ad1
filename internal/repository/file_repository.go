package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	apperrors "communication/internal/errors"
	"communication/internal/model"
)

// FileRepository stores uploaded files and their metadata.
type FileRepository interface {
	Upload(ctx context.Context, filename string, content []byte, contentType, description string) (string, error)
	List(ctx context.Context) ([]model.FileInfo, error)
	FindByID(ctx context.Context, id string) (*model.FileInfo, error)
	Delete(ctx context.Context, id string) error
}

// fs.files document layout.
type gridFSFile struct {
	ID         primitive.ObjectID `bson:"_id"`
	Filename   string             `bson:"filename"`
	Length     int64              `bson:"length"`
	UploadDate time.Time          `bson:"uploadDate"`
	Metadata   struct {
		ContentType string `bson:"content_type"`
		Description string `bson:"description"`
	} `bson:"metadata"`
}

func (f gridFSFile) toModel() model.FileInfo {
	return model.FileInfo{
		ID:          f.ID.Hex(),
		Filename:    f.Filename,
		Length:      f.Length,
		UploadDate:  f.UploadDate,
		ContentType: f.Metadata.ContentType,
		Description: f.Metadata.Description,
	}
}

type gridFSFileRepository struct {
	db     *mongo.Database
	bucket *gridfs.Bucket
}

// NewGridFSFileRepository builds a repository over the default "fs" GridFS bucket of db.
func NewGridFSFileRepository(db *mongo.Database) (FileRepository, error) {
	bucket, err := gridfs.NewBucket(db)
	if err != nil {
		return nil, fmt.Errorf("open gridfs bucket: %w", err)
	}
	return &gridFSFileRepository{db: db, bucket: bucket}, nil
}

func (r *gridFSFileRepository) Upload(ctx context.Context, filename string, content []byte, contentType, description string) (string, error) {
	// Uploads take no context. The write deadline is bucket state, so a
	// request with a deadline gets its own bucket handle.
	bucket := r.bucket
	if deadline, ok := ctx.Deadline(); ok {
		b, err := gridfs.NewBucket(r.db)
		if err != nil {
			return "", fmt.Errorf("open gridfs bucket: %w", err)
		}
		if err := b.SetWriteDeadline(deadline); err != nil {
			return "", fmt.Errorf("set upload deadline: %w", err)
		}
		bucket = b
	}

	opts := options.GridFSUpload().SetMetadata(bson.D{
		{Key: "content_type", Value: contentType},
		{Key: "description", Value: description},
	})
	id, err := bucket.UploadFromStream(filename, bytes.NewReader(content), opts)
	if err != nil {
		return "", fmt.Errorf("upload file: %w", err)
	}
	return id.Hex(), nil
}

func (r *gridFSFileRepository) List(ctx context.Context) ([]model.FileInfo, error) {
	cursor, err := r.bucket.FindContext(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer cursor.Close(ctx)

	files := []model.FileInfo{}
	for cursor.Next(ctx) {
		var doc gridFSFile
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode file: %w", err)
		}
		files = append(files, doc.toModel())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return files, nil
}

func (r *gridFSFileRepository) FindByID(ctx context.Context, id string) (*model.FileInfo, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.ErrFileNotFound
	}

	cursor, err := r.bucket.FindContext(ctx, bson.M{"_id": oid})
	if err != nil {
		return nil, fmt.Errorf("find file: %w", err)
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		if err := cursor.Err(); err != nil {
			return nil, fmt.Errorf("find file: %w", err)
		}
		return nil, apperrors.ErrFileNotFound
	}
	var doc gridFSFile
	if err := cursor.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode file: %w", err)
	}
	info := doc.toModel()
	return &info, nil
}

func (r *gridFSFileRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperrors.ErrFileNotFound
	}
	if err := r.bucket.DeleteContext(ctx, oid); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return apperrors.ErrFileNotFound
		}
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}
