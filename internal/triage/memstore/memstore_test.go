package memstore

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Sidzzzzzzzzzzzz/intelligent-incident-triage/internal/triage"
)

func TestStore_InsertAssignsMonotonicIDs(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()

	for want := int64(1); want <= 5; want++ {
		id, err := s.Insert(ctx, &triage.Incident{Message: fmt.Sprintf("m-%d", want)})
		if err != nil {
			t.Fatalf("Insert: %v", err)
		}
		if id != want {
			t.Errorf("id = %d, want %d", id, want)
		}
	}
}

func TestStore_ListRecentNewestFirst(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()
	for i := range 5 {
		_, _ = s.Insert(ctx, &triage.Incident{Message: fmt.Sprintf("m-%d", i)})
	}

	got, err := s.ListRecent(ctx, 3)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i, want := range []int64{5, 4, 3} {
		if got[i].ID != want {
			t.Errorf("got[%d].ID = %d, want %d", i, got[i].ID, want)
		}
	}
}

func TestStore_ListRecentClampsToAvailable(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()
	_, _ = s.Insert(ctx, &triage.Incident{Message: "only"})

	got, err := s.ListRecent(ctx, 50)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("len = %d, want 1", len(got))
	}

	empty, err := s.ListRecent(ctx, 0)
	if err != nil {
		t.Fatalf("ListRecent(0): %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("len = %d, want 0", len(empty))
	}
}

func TestStore_CopiesInAndOut(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()

	in := &triage.Incident{Message: "original", Priority: "low", CreatedAt: time.Now()}
	if _, err := s.Insert(ctx, in); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	in.Message = "mutated after insert"

	got, err := s.ListRecent(ctx, 1)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if got[0].Message != "original" {
		t.Errorf("stored message = %q, want %q", got[0].Message, "original")
	}

	got[0].Message = "mutated after read"
	again, _ := s.ListRecent(ctx, 1)
	if again[0].Message != "original" {
		t.Errorf("stored message after read mutation = %q, want %q", again[0].Message, "original")
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()
	const n = 100

	var wg sync.WaitGroup
	wg.Add(n * 2)

	for i := range n {
		msg := fmt.Sprintf("m-%d", i)

		go func() {
			defer wg.Done()
			_, _ = s.Insert(ctx, &triage.Incident{Message: msg})
		}()

		go func() {
			defer wg.Done()
			_, _ = s.ListRecent(ctx, 10)
		}()
	}

	wg.Wait()

	ids := make(map[int64]bool)
	all, err := s.ListRecent(ctx, n)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(all) != n {
		t.Fatalf("len = %d, want %d", len(all), n)
	}
	for _, in := range all {
		if ids[in.ID] {
			t.Fatalf("duplicate id %d", in.ID)
		}
		ids[in.ID] = true
	}
}
