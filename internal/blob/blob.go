// Package blob stores uploaded files in a GridFS bucket keyed by path.
package blob

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/PaulBabatuyi/pairChat-gRPC/internal/normalize"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

var (
	// ErrNotFound is returned when no file exists at a path.
	ErrNotFound = errors.New("blob not found")
	// ErrInvalidPath is returned for empty paths.
	ErrInvalidPath = errors.New("invalid blob path")
	// ErrTooLarge is returned when content exceeds the configured limit.
	ErrTooLarge = errors.New("blob too large")
)

// Store writes and reads blobs. Each Put adds a new GridFS revision; reads
// always return the latest one.
type Store struct {
	bucket   *mongo.GridFSBucket
	baseURL  string
	maxBytes int
}

// NewStore returns a Store on the given bucket. baseURL is the public address
// of the HTTP side serving /blobs/.
func NewStore(bucket *mongo.GridFSBucket, baseURL string, maxBytes int) *Store {
	return &Store{
		bucket:   bucket,
		baseURL:  strings.TrimRight(baseURL, "/"),
		maxBytes: maxBytes,
	}
}

// Put stores content under path and returns the normalized path.
func (s *Store) Put(ctx context.Context, path, contentType string, content []byte) (string, error) {
	path = normalize.BlobPath(path)
	if path == "" {
		return "", ErrInvalidPath
	}
	if s.maxBytes > 0 && len(content) > s.maxBytes {
		return "", ErrTooLarge
	}

	opts := options.GridFSUpload().SetMetadata(bson.D{{Key: "contentType", Value: contentType}})
	if _, err := s.bucket.UploadFromStream(ctx, path, bytes.NewReader(content), opts); err != nil {
		return "", errors.Wrapf(err, "upload %s", path)
	}
	return path, nil
}

// Download writes the latest revision stored at path to w and returns its
// content type.
func (s *Store) Download(ctx context.Context, path string, w io.Writer) (string, error) {
	path = normalize.BlobPath(path)
	if path == "" {
		return "", ErrInvalidPath
	}

	stream, err := s.bucket.OpenDownloadStreamByName(ctx, path)
	if err != nil {
		if errors.Is(err, mongo.ErrFileNotFound) {
			return "", ErrNotFound
		}
		return "", errors.Wrapf(err, "open %s", path)
	}
	defer stream.Close()

	contentType := contentTypeOf(stream.GetFile())
	if _, err := io.Copy(w, stream); err != nil {
		return "", errors.Wrapf(err, "read %s", path)
	}
	return contentType, nil
}

// Exists reports whether any revision is stored at path.
func (s *Store) Exists(ctx context.Context, path string) (bool, error) {
	path = normalize.BlobPath(path)
	if path == "" {
		return false, ErrInvalidPath
	}
	n, err := s.bucket.GetFilesCollection().CountDocuments(ctx, bson.D{{Key: "filename", Value: path}})
	if err != nil {
		return false, errors.Wrapf(err, "find %s", path)
	}
	return n > 0, nil
}

// URL returns the download address for path.
func (s *Store) URL(path string) string {
	path = normalize.BlobPath(path)
	parts := strings.Split(path, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return s.baseURL + "/blobs/" + strings.Join(parts, "/")
}

func contentTypeOf(f *mongo.GridFSFile) string {
	if f == nil || f.Metadata == nil {
		return "application/octet-stream"
	}
	var meta struct {
		ContentType string `bson:"contentType"`
	}
	if err := bson.Unmarshal(f.Metadata, &meta); err != nil || meta.ContentType == "" {
		return "application/octet-stream"
	}
	return meta.ContentType
}
