package main

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/PaulBabatuyi/pairChat-gRPC/internal/blob"
	"github.com/PaulBabatuyi/pairChat-gRPC/internal/normalize"
	v1 "github.com/PaulBabatuyi/pairChat-gRPC/proto/chat/v1"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ownsPath reports whether path is the uid itself or lies under uid/.
func ownsPath(uid, path string) bool {
	return path == uid || strings.HasPrefix(path, uid+"/")
}

// UploadBlob stores base64-encoded bytes at a path owned by the caller.
func (s *Server) UploadBlob(ctx context.Context, req *v1.UploadBlobRequest) (*v1.WriteResult, error) {
	claims, err := requireClaims(ctx)
	if err != nil {
		return nil, err
	}

	path := normalize.BlobPath(req.Path)
	if path == "" {
		return nil, status.Errorf(codes.InvalidArgument, "path is required")
	}
	if !ownsPath(claims.UserID, path) {
		return nil, status.Errorf(codes.PermissionDenied, "cannot write outside %s/", claims.UserID)
	}

	content, err := base64.StdEncoding.DecodeString(req.ContentBase64)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "content is not valid base64")
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	stored, err := s.blobs.Put(ctx, path, contentType, content)
	switch {
	case errors.Is(err, blob.ErrTooLarge):
		return nil, status.Errorf(codes.InvalidArgument, "content exceeds the upload limit")
	case errors.Is(err, blob.ErrInvalidPath):
		return nil, status.Errorf(codes.InvalidArgument, "invalid path")
	case err != nil:
		s.log.Error("upload blob failed", zap.String("path", path), zap.Error(err))
		return nil, status.Errorf(codes.Internal, "failed to store blob")
	}

	return &v1.WriteResult{DocumentID: stored, UpdatedAt: s.now()}, nil
}

// GetDownloadURL returns the HTTP address of a stored blob.
func (s *Server) GetDownloadURL(ctx context.Context, req *v1.DownloadURLRequest) (*v1.DownloadURLResponse, error) {
	path := normalize.BlobPath(req.Path)
	if path == "" {
		return nil, status.Errorf(codes.InvalidArgument, "path is required")
	}

	ok, err := s.blobs.Exists(ctx, path)
	if err != nil {
		s.log.Error("blob lookup failed", zap.String("path", path), zap.Error(err))
		return nil, status.Errorf(codes.Internal, "failed to read blob")
	}
	if !ok {
		return nil, status.Errorf(codes.NotFound, "object does not exist at %s", path)
	}
	return &v1.DownloadURLResponse{URL: s.blobs.URL(path)}, nil
}
