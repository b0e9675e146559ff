package rate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestWindow(t *testing.T) (*Window, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start failed: %v", err)
	}
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb, "", time.Second), mr
}

func TestWindowInsertAndCount(t *testing.T) {
	w, mr := newTestWindow(t)
	ctx := context.Background()
	now := time.Now()

	for i := 0; i < 3; i++ {
		if err := w.Insert(ctx, "1.2.3.4", now, now.Add(time.Second)); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	n, err := w.CountSince(ctx, "1.2.3.4", now.Add(-time.Second))
	if err != nil {
		t.Fatalf("CountSince failed: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 records, got %d", n)
	}

	if !mr.Exists("rl:1.2.3.4") {
		t.Fatal("expected sorted set under default prefix")
	}
}

func TestWindowThresholdIsExclusive(t *testing.T) {
	w, _ := newTestWindow(t)
	ctx := context.Background()
	at := time.Now()

	if err := w.Insert(ctx, "ip", at, at.Add(time.Second)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	n, _ := w.CountSince(ctx, "ip", at)
	if n != 0 {
		t.Fatalf("record at threshold must not count, got %d", n)
	}
	n, _ = w.CountSince(ctx, "ip", at.Add(-time.Millisecond))
	if n != 1 {
		t.Fatalf("expected 1 record, got %d", n)
	}
}

func TestWindowTrimsOldRecords(t *testing.T) {
	w, mr := newTestWindow(t)
	ctx := context.Background()
	old := time.Now()
	later := old.Add(5 * time.Second)

	_ = w.Insert(ctx, "ip", old, old.Add(time.Second))
	_ = w.Insert(ctx, "ip", later, later.Add(time.Second))

	members, err := mr.ZMembers("rl:ip")
	if err != nil {
		t.Fatalf("ZMembers failed: %v", err)
	}
	if len(members) != 1 {
		t.Fatalf("expected old record trimmed, got %d members", len(members))
	}
}

func TestWindowRedisUnavailable(t *testing.T) {
	w, mr := newTestWindow(t)
	mr.Close()

	now := time.Now()
	if err := w.Insert(context.Background(), "ip", now, now.Add(time.Second)); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable, got %v", err)
	}
	if _, err := w.CountSince(context.Background(), "ip", now); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable, got %v", err)
	}
}
