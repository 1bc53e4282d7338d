package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PhotoBucket is the GridFS bucket holding listing images.
const PhotoBucket = "property_images"

// PhotoRepository keeps uploaded image files in GridFS and resolves the
// public URL they are served from.
type PhotoRepository struct {
	DB      *mongo.Database
	BaseURL string
}

func NewPhotoRepository(client *mongo.Client, dbName, baseURL string) *PhotoRepository {
	return &PhotoRepository{DB: client.Database(dbName), BaseURL: strings.TrimRight(baseURL, "/")}
}

func (r *PhotoRepository) bucket() (*gridfs.Bucket, error) {
	return gridfs.NewBucket(r.DB, options.GridFSBucket().SetName(PhotoBucket))
}

// Upload stores the file under a collision-free name and returns that name
// and its public URL.
func (r *PhotoRepository) Upload(ctx context.Context, originalName, contentType string, file io.Reader) (string, string, error) {
	bucket, err := r.bucket()
	if err != nil {
		return "", "", fmt.Errorf("PhotoRepository.Upload: %w", err)
	}

	filename := PhotoFilename(originalName, time.Now())
	opts := options.GridFSUpload().SetMetadata(bson.M{"content_type": contentType})
	stream, err := bucket.OpenUploadStream(filename, opts)
	if err != nil {
		return "", "", fmt.Errorf("PhotoRepository.Upload: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = stream.SetWriteDeadline(deadline)
	}
	if _, err := io.Copy(stream, file); err != nil {
		_ = stream.Abort()
		return "", "", fmt.Errorf("PhotoRepository.Upload copy: %w", err)
	}
	if err := stream.Close(); err != nil {
		return "", "", fmt.Errorf("PhotoRepository.Upload close: %w", err)
	}
	return filename, r.PublicURL(filename), nil
}

// PublicURL is where the service serves a stored image.
func (r *PhotoRepository) PublicURL(filename string) string {
	return r.BaseURL + "/images/" + filename
}

// Download returns the newest revision of filename and its content type.
func (r *PhotoRepository) Download(ctx context.Context, filename string) ([]byte, string, error) {
	bucket, err := r.bucket()
	if err != nil {
		return nil, "", fmt.Errorf("PhotoRepository.Download: %w", err)
	}

	stream, err := bucket.OpenDownloadStreamByName(filename)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return nil, "", fmt.Errorf("PhotoRepository.Download %s: %w", filename, ErrNotFound)
	}
	if err != nil {
		return nil, "", fmt.Errorf("PhotoRepository.Download: %w", err)
	}
	defer stream.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = stream.SetReadDeadline(deadline)
	}

	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, "", fmt.Errorf("PhotoRepository.Download read: %w", err)
	}

	contentType := "application/octet-stream"
	var meta struct {
		ContentType string `bson:"content_type"`
	}
	if raw := stream.GetFile().Metadata; raw != nil && bson.Unmarshal(raw, &meta) == nil && meta.ContentType != "" {
		contentType = meta.ContentType
	}
	return data, contentType, nil
}

// PhotoFilename builds "<unix-millis>-<random>.<ext>" from the uploaded
// file's extension.
func PhotoFilename(originalName string, at time.Time) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	suffix := make([]byte, 6)
	for i := range suffix {
		suffix[i] = alphabet[rand.IntN(len(alphabet))]
	}
	name := fmt.Sprintf("%d-%s", at.UnixMilli(), suffix)
	if ext := strings.ToLower(filepath.Ext(originalName)); ext != "" {
		name += ext
	}
	return name
}
