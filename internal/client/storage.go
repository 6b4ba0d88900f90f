package client

import (
	"context"
	"encoding/base64"

	v1 "github.com/PaulBabatuyi/pairChat-gRPC/proto/chat/v1"
)

// StorageClient uploads blobs by path and resolves their download URLs.
type StorageClient struct {
	api v1.ChatServiceClient
}

// PutData stores content at path and returns the stored path.
func (s *StorageClient) PutData(ctx context.Context, path string, content []byte, contentType string) (string, error) {
	res, err := s.api.UploadBlob(ctx, &v1.UploadBlobRequest{
		Path:          path,
		ContentBase64: base64.StdEncoding.EncodeToString(content),
		ContentType:   contentType,
	})
	if err != nil {
		return "", wrapStatus(err)
	}
	return res.DocumentID, nil
}

// DownloadURL returns the HTTP address of the blob at path.
func (s *StorageClient) DownloadURL(ctx context.Context, path string) (string, error) {
	res, err := s.api.GetDownloadURL(ctx, &v1.DownloadURLRequest{Path: path})
	if err != nil {
		return "", wrapStatus(err)
	}
	return res.URL, nil
}
