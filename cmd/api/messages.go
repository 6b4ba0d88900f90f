package main

import (
	"context"

	"github.com/PaulBabatuyi/pairChat-gRPC/internal/data"
	"github.com/PaulBabatuyi/pairChat-gRPC/internal/realtime"
	v1 "github.com/PaulBabatuyi/pairChat-gRPC/proto/chat/v1"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// participant checks that the caller is one side of (owner, peer) and
// returns the other side.
func participant(caller, owner, peer string) (string, error) {
	if owner == "" || peer == "" {
		return "", status.Errorf(codes.InvalidArgument, "owner_id and peer_id are required")
	}
	switch caller {
	case owner:
		return peer, nil
	case peer:
		return owner, nil
	default:
		return "", status.Errorf(codes.PermissionDenied, "not a participant of this conversation")
	}
}

// AddMessage stores one mailbox copy of a message under a generated id.
func (s *Server) AddMessage(ctx context.Context, req *v1.AddMessageRequest) (*v1.WriteResult, error) {
	claims, err := requireClaims(ctx)
	if err != nil {
		return nil, err
	}
	other, err := participant(claims.UserID, req.OwnerID, req.PeerID)
	if err != nil {
		return nil, err
	}

	msg, err := data.ParseMessage(req.Data)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%v", err)
	}
	if msg.FromID != claims.UserID {
		return nil, status.Errorf(codes.PermissionDenied, "fromId must be the caller")
	}
	if msg.ToID != other {
		return nil, status.Errorf(codes.PermissionDenied, "toId must be the other participant")
	}

	msg.Timestamp = s.now()

	saved, err := s.msgs.AddMessage(ctx, req.OwnerID, req.PeerID, msg)
	if err != nil {
		s.log.Error("add message failed",
			zap.String("path", data.MessagesPath(req.OwnerID, req.PeerID)), zap.Error(err))
		return nil, status.Errorf(codes.Internal, "failed to save message")
	}

	s.hub.Publish(realtime.Change{
		Path:       data.MessagesPath(req.OwnerID, req.PeerID),
		Type:       v1.ChangeAdded,
		DocumentID: saved.DocumentID,
		Data:       saved.Document(),
	})

	return &v1.WriteResult{DocumentID: saved.DocumentID, UpdatedAt: saved.Timestamp}, nil
}

// SetRecentMessage overwrites the owner's pointer to the conversation with peer.
func (s *Server) SetRecentMessage(ctx context.Context, req *v1.SetRecentMessageRequest) (*v1.WriteResult, error) {
	claims, err := requireClaims(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := participant(claims.UserID, req.OwnerID, req.PeerID); err != nil {
		return nil, err
	}

	rm, err := data.ParseRecentMessage(req.Data)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%v", err)
	}
	if rm.FromID != claims.UserID {
		return nil, status.Errorf(codes.PermissionDenied, "fromId must be the caller")
	}

	rm.Timestamp = s.now()

	saved, created, err := s.recent.SetRecentMessage(ctx, req.OwnerID, req.PeerID, rm)
	if err != nil {
		s.log.Error("set recent message failed",
			zap.String("path", data.RecentMessagesPath(req.OwnerID)), zap.Error(err))
		return nil, status.Errorf(codes.Internal, "failed to save recent message")
	}

	change := v1.ChangeModified
	if created {
		change = v1.ChangeAdded
	}
	s.hub.Publish(realtime.Change{
		Path:       data.RecentMessagesPath(req.OwnerID),
		Type:       change,
		DocumentID: saved.DocumentID,
		Data:       saved.Document(),
	})

	return &v1.WriteResult{DocumentID: saved.DocumentID, UpdatedAt: saved.Timestamp}, nil
}
