package chatv1

import "time"

// Change types carried by DocumentChange.Type.
const (
	ChangeAdded    = "added"
	ChangeModified = "modified"
	ChangeRemoved  = "removed"
)

// RegisterRequest creates an email/password account.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *RegisterRequest) GetEmail() string {
	if r == nil {
		return ""
	}
	return r.Email
}

// LoginRequest signs an existing account in.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) GetEmail() string {
	if r == nil {
		return ""
	}
	return r.Email
}

// AuthResponse is returned by Register and Login.
type AuthResponse struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

type LogoutRequest struct{}

type LogoutResponse struct{}

type CurrentUserRequest struct{}

// Session describes the signed-in account behind a token.
type Session struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Document is a keyed key/value record.
type Document struct {
	ID   string         `json:"id"`
	Data map[string]any `json:"data"`
}

// SetUserRequest writes the caller's profile document.
type SetUserRequest struct {
	Data map[string]any `json:"data"`
}

type GetUserRequest struct {
	UserID string `json:"user_id"`
}

type ListUsersRequest struct{}

type DocumentList struct {
	Documents []Document `json:"documents"`
}

// AddMessageRequest adds a generated-id document to messages/<owner>/<peer>.
type AddMessageRequest struct {
	OwnerID string         `json:"owner_id"`
	PeerID  string         `json:"peer_id"`
	Data    map[string]any `json:"data"`
}

// SetRecentMessageRequest overwrites recent_messages/<owner>/messages/<peer>.
type SetRecentMessageRequest struct {
	OwnerID string         `json:"owner_id"`
	PeerID  string         `json:"peer_id"`
	Data    map[string]any `json:"data"`
}

// WriteResult acknowledges a document or blob write.
type WriteResult struct {
	DocumentID string    `json:"document_id"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// UploadBlobRequest stores base64 content at a storage path.
type UploadBlobRequest struct {
	Path          string `json:"path"`
	ContentBase64 string `json:"content_base64"`
	ContentType   string `json:"content_type"`
}

type DownloadURLRequest struct {
	Path string `json:"path"`
}

type DownloadURLResponse struct {
	URL string `json:"url"`
}

// WatchMessagesRequest subscribes to messages/<owner>/<peer>.
type WatchMessagesRequest struct {
	OwnerID string `json:"owner_id"`
	PeerID  string `json:"peer_id"`
}

// WatchRecentMessagesRequest subscribes to recent_messages/<owner>/messages.
type WatchRecentMessagesRequest struct {
	OwnerID string `json:"owner_id"`
}

// DocumentChange is one realtime event on a watched collection.
type DocumentChange struct {
	Type       string         `json:"type"`
	DocumentID string         `json:"document_id"`
	Data       map[string]any `json:"data"`
}
