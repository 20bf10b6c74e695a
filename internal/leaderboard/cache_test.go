package leaderboard

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/ilmhub/quizhub/internal/quiz"
)

func newCachedService(t *testing.T, src *fakeSource) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewService(NewAggregator(src), client, time.Minute), mr
}

func TestGlobalLeaderboardCached(t *testing.T) {
	src := &fakeSource{all: []quiz.Submission{
		sub("u1", "Aisha", 2, 2, map[string]int{"Quran": 2}),
	}}
	svc, _ := newCachedService(t, src)
	ctx := context.Background()

	if _, err := svc.Global(ctx, ""); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if src.calls != 1 {
		t.Fatalf("expected one source read, got %d", src.calls)
	}

	rows, err := svc.Global(ctx, "")
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if src.calls != 1 {
		t.Fatalf("expected cache hit, source reads=%d", src.calls)
	}
	if len(rows) != 1 || rows[0].UserID != "u1" {
		t.Fatalf("cached rows wrong: %+v", rows)
	}
}

func TestSectionVariantsCacheSeparately(t *testing.T) {
	src := &fakeSource{all: []quiz.Submission{
		sub("u1", "Aisha", 2, 2, map[string]int{"Quran": 2}),
		sub("u2", "Bilal", 1, 1, map[string]int{"Seerat": 1}),
	}}
	svc, _ := newCachedService(t, src)
	ctx := context.Background()

	if _, err := svc.Global(ctx, ""); err != nil {
		t.Fatalf("all: %v", err)
	}
	seerat, err := svc.Global(ctx, "Seerat")
	if err != nil {
		t.Fatalf("seerat: %v", err)
	}
	if src.calls != 2 {
		t.Fatalf("distinct sections must compute separately, reads=%d", src.calls)
	}
	if seerat[0].UserID != "u2" {
		t.Fatalf("seerat leader = %s, want u2", seerat[0].UserID)
	}
}

func TestInvalidateDropsBoards(t *testing.T) {
	src := &fakeSource{all: []quiz.Submission{
		sub("u1", "Aisha", 2, 2, map[string]int{"Quran": 2}),
	}}
	svc, _ := newCachedService(t, src)
	ctx := context.Background()

	if _, err := svc.Global(ctx, ""); err != nil {
		t.Fatalf("warm cache: %v", err)
	}
	svc.Invalidate(ctx)

	if _, err := svc.Global(ctx, ""); err != nil {
		t.Fatalf("after invalidate: %v", err)
	}
	if src.calls != 2 {
		t.Fatalf("invalidate did not drop the board, reads=%d", src.calls)
	}
}

func TestNilClientBypassesCache(t *testing.T) {
	src := &fakeSource{all: []quiz.Submission{
		sub("u1", "Aisha", 2, 2, nil),
	}}
	svc := NewService(NewAggregator(src), nil, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := svc.Global(ctx, ""); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	if src.calls != 2 {
		t.Fatalf("nil client must always compute, reads=%d", src.calls)
	}
}
