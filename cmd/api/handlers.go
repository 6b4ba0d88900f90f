package main

import (
	"context"
	"errors"

	"github.com/PaulBabatuyi/pairChat-gRPC/internal/auth"
	"github.com/PaulBabatuyi/pairChat-gRPC/internal/data"
	"github.com/PaulBabatuyi/pairChat-gRPC/internal/normalize"
	v1 "github.com/PaulBabatuyi/pairChat-gRPC/proto/chat/v1"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// minPasswordLen matches what hosted auth providers accept.
const minPasswordLen = 6

var validate = validator.New()

type registerInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"min=6"`
}

func validateCredentials(email, password string) (string, error) {
	c := registerInput{Email: normalize.Email(email), Password: password}
	err := validate.Struct(c)
	if err == nil {
		return c.Email, nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && verrs[0].Field() == "Email" {
		return "", status.Errorf(codes.InvalidArgument, "the email address is badly formatted")
	}
	return "", status.Errorf(codes.InvalidArgument, "password must be at least %d characters", minPasswordLen)
}

// Register handles account creation: hashes the password, stores the account, returns a JWT.
func (s *Server) Register(ctx context.Context, req *v1.RegisterRequest) (*v1.AuthResponse, error) {
	email, err := validateCredentials(req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to hash password: %v", err)
	}

	acct, err := s.accounts.CreateAccount(ctx, email, hashed)
	if errors.Is(err, data.ErrDuplicateEmail) {
		return nil, status.Errorf(codes.AlreadyExists, "the email address is already in use by another account")
	}
	if err != nil {
		s.log.Error("create account failed", zap.String("email", email), zap.Error(err))
		return nil, status.Errorf(codes.Internal, "failed to create account")
	}

	return s.issue(acct.ID.Hex(), acct.Email)
}

// Login authenticates an account and returns a JWT.
func (s *Server) Login(ctx context.Context, req *v1.LoginRequest) (*v1.AuthResponse, error) {
	acct, err := s.accounts.GetAccountByEmail(ctx, req.Email)
	if errors.Is(err, data.ErrNotFound) {
		return nil, status.Errorf(codes.NotFound, "user not found")
	}
	if err != nil {
		s.log.Error("account lookup failed", zap.Error(err))
		return nil, status.Errorf(codes.Internal, "failed to read account")
	}

	if err := auth.CheckPassword(acct.Password, req.Password); err != nil {
		return nil, status.Errorf(codes.PermissionDenied, "invalid credentials")
	}

	return s.issue(acct.ID.Hex(), acct.Email)
}

func (s *Server) issue(uid, email string) (*v1.AuthResponse, error) {
	token, expiresAt, err := s.auth.GenerateToken(uid, email)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to generate token: %v", err)
	}
	return &v1.AuthResponse{
		Token:     token,
		UserID:    uid,
		Email:     email,
		ExpiresAt: expiresAt,
	}, nil
}

// Logout revokes the presented token until it would have expired.
func (s *Server) Logout(ctx context.Context, _ *v1.LogoutRequest) (*v1.LogoutResponse, error) {
	claims, err := requireClaims(ctx)
	if err != nil {
		return nil, err
	}
	if claims.ID != "" && claims.ExpiresAt != nil {
		if err := s.revocations.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
			s.log.Error("revoke session failed", zap.String("uid", claims.UserID), zap.Error(err))
			return nil, status.Errorf(codes.Internal, "failed to sign out")
		}
	}
	return &v1.LogoutResponse{}, nil
}

// CurrentUser describes the session behind the presented token.
func (s *Server) CurrentUser(ctx context.Context, _ *v1.CurrentUserRequest) (*v1.Session, error) {
	claims, err := requireClaims(ctx)
	if err != nil {
		return nil, err
	}
	acct, err := s.accounts.GetAccountByID(ctx, claims.UserID)
	if errors.Is(err, data.ErrNotFound) {
		return nil, status.Errorf(codes.Unauthenticated, "account no longer exists")
	}
	if err != nil {
		s.log.Error("account lookup failed", zap.String("uid", claims.UserID), zap.Error(err))
		return nil, status.Errorf(codes.Internal, "failed to read account")
	}

	sess := &v1.Session{UserID: acct.ID.Hex(), Email: acct.Email}
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Time
	}
	return sess, nil
}

// SetUser overwrites the caller's profile document.
func (s *Server) SetUser(ctx context.Context, req *v1.SetUserRequest) (*v1.WriteResult, error) {
	claims, err := requireClaims(ctx)
	if err != nil {
		return nil, err
	}
	if uid, ok := req.Data[data.FieldUID].(string); ok && uid != "" && uid != claims.UserID {
		return nil, status.Errorf(codes.PermissionDenied, "cannot write another user's profile")
	}

	user := data.NewChatUser(req.Data)
	user.UID = claims.UserID
	if user.Email == "" {
		user.Email = claims.Email
	}

	if err := s.users.SetUser(ctx, user); err != nil {
		s.log.Error("set user failed", zap.String("uid", user.UID), zap.Error(err))
		return nil, status.Errorf(codes.Internal, "failed to store user")
	}
	return &v1.WriteResult{DocumentID: user.UID, UpdatedAt: s.now()}, nil
}

// GetUser reads users/<uid>.
func (s *Server) GetUser(ctx context.Context, req *v1.GetUserRequest) (*v1.Document, error) {
	if req.UserID == "" {
		return nil, status.Errorf(codes.InvalidArgument, "user_id is required")
	}
	user, err := s.users.GetUser(ctx, req.UserID)
	if errors.Is(err, data.ErrNotFound) {
		return nil, status.Errorf(codes.NotFound, "user not found")
	}
	if err != nil {
		s.log.Error("get user failed", zap.String("uid", req.UserID), zap.Error(err))
		return nil, status.Errorf(codes.Internal, "failed to read user")
	}
	return &v1.Document{ID: user.UID, Data: user.Document()}, nil
}

// ListUsers returns every profile document.
func (s *Server) ListUsers(ctx context.Context, _ *v1.ListUsersRequest) (*v1.DocumentList, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		s.log.Error("list users failed", zap.Error(err))
		return nil, status.Errorf(codes.Internal, "failed to list users")
	}
	out := &v1.DocumentList{Documents: make([]v1.Document, 0, len(users))}
	for _, u := range users {
		out.Documents = append(out.Documents, v1.Document{ID: u.UID, Data: u.Document()})
	}
	return out, nil
}
