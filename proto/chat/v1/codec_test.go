package chatv1

import (
	"testing"
	"time"
)

func TestEncodeDecodeKeepsTimestampsAndNestedDocuments(t *testing.T) {
	at := time.Date(2025, 1, 13, 9, 30, 0, 123000000, time.UTC)
	in := &DocumentList{Documents: []Document{
		{ID: "u1", Data: map[string]any{"uid": "u1", "email": "a@mail.com"}},
		{ID: "u2", Data: map[string]any{"uid": "u2", "timestamp": at}},
	}}

	doc, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	var out DocumentList
	if err := Decode(doc, &out); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(out.Documents) != 2 || out.Documents[0].Data["email"] != "a@mail.com" {
		t.Fatalf("unexpected documents: %+v", out.Documents)
	}
	// nested document values cross the wire as strings
	if out.Documents[1].Data["timestamp"] != at.Format(time.RFC3339Nano) {
		t.Fatalf("nested timestamp = %v", out.Documents[1].Data["timestamp"])
	}

	res := &WriteResult{DocumentID: "d1", UpdatedAt: at}
	doc, err = Encode(res)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	var back WriteResult
	if err := Decode(doc, &back); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !back.UpdatedAt.Equal(at) || back.DocumentID != "d1" {
		t.Fatalf("round trip mismatch: %+v", back)
	}
}

func TestDecodeMapAcceptsUnixMillis(t *testing.T) {
	var out WriteResult
	if err := DecodeMap(map[string]any{"updated_at": float64(1736760600000)}, &out); err != nil {
		t.Fatalf("DecodeMap failed: %v", err)
	}
	if out.UpdatedAt.UnixMilli() != 1736760600000 {
		t.Fatalf("unexpected time %v", out.UpdatedAt)
	}
}

func TestGetEmailOnNilRequest(t *testing.T) {
	var r *RegisterRequest
	if r.GetEmail() != "" {
		t.Fatal("expected empty email for nil request")
	}
}
