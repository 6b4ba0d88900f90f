package auth

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func TestMemoryRevocations(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 13, 10, 0, 0, 0, time.UTC)
	m := NewMemoryRevocations()
	m.now = func() time.Time { return now }

	if err := m.Revoke(ctx, "s1", now.Add(time.Hour)); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	if ok, _ := m.IsRevoked(ctx, "s1"); !ok {
		t.Fatal("s1 should be revoked")
	}
	if ok, _ := m.IsRevoked(ctx, "s2"); ok {
		t.Fatal("s2 was never revoked")
	}

	// already expired tokens are not worth remembering
	_ = m.Revoke(ctx, "s3", now.Add(-time.Second))
	if ok, _ := m.IsRevoked(ctx, "s3"); ok {
		t.Fatal("s3 expired before revocation")
	}

	// entries lapse with the token
	now = now.Add(2 * time.Hour)
	if ok, _ := m.IsRevoked(ctx, "s1"); ok {
		t.Fatal("s1 revocation should have lapsed")
	}
	_ = m.Revoke(ctx, "s4", now.Add(time.Minute))
	m.mu.Lock()
	_, stale := m.revoked["s1"]
	m.mu.Unlock()
	if stale {
		t.Fatal("expired entries should be pruned on revoke")
	}
}

func TestRedisRevocations(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set; skipping integration test")
	}

	ctx := context.Background()
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()

	r := NewRedisRevocations(rdb)
	id := uuid.NewString()

	if ok, err := r.IsRevoked(ctx, id); err != nil || ok {
		t.Fatalf("fresh session reported revoked: ok=%v err=%v", ok, err)
	}
	if err := r.Revoke(ctx, id, time.Now().Add(time.Minute)); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	if ok, err := r.IsRevoked(ctx, id); err != nil || !ok {
		t.Fatalf("session should be revoked: ok=%v err=%v", ok, err)
	}
	_ = rdb.Del(ctx, "revoked:"+id).Err()
}
