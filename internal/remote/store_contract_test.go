package remote

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"famjam-cli/internal/model"
)

// runStoreContract exercises the behaviour every backend must share.
func runStoreContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("create assigns ids and monotonic timestamps", func(t *testing.T) {
		board := "CREATE"
		var last int64
		for i := 0; i < 5; i++ {
			id, err := s.Create(ctx, board, map[string]string{model.FieldTitle: "t" + strconv.Itoa(i), model.FieldStatus: "open"})
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			if id == "" {
				t.Fatalf("expected id")
			}
		}
		docs, err := s.Query(ctx, board, Where{})
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		if len(docs) != 5 {
			t.Fatalf("expected 5 docs; got %d", len(docs))
		}
		// Newest first.
		if got := docs[0].Fields[model.FieldTitle]; got != "t4" {
			t.Fatalf("expected newest first; got %q", got)
		}
		for i := len(docs) - 1; i >= 0; i-- {
			ts, err := strconv.ParseInt(docs[i].Fields[model.FieldCreatedAt], 10, 64)
			if err != nil {
				t.Fatalf("createdAt: %v", err)
			}
			if ts <= last {
				t.Fatalf("createdAt not strictly increasing: %d after %d", ts, last)
			}
			last = ts
			if docs[i].Fields[model.FieldUpdatedAt] != docs[i].Fields[model.FieldCreatedAt] {
				t.Fatalf("expected updatedAt == createdAt on create; got %#v", docs[i].Fields)
			}
		}
	})

	t.Run("update merges fields and refreshes updatedAt", func(t *testing.T) {
		board := "UPDATE"
		id, err := s.Create(ctx, board, map[string]string{model.FieldTitle: "Laundry", model.FieldStatus: "open"})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		before, _ := s.Query(ctx, board, Where{})
		if err := s.Update(ctx, board, id, map[string]string{model.FieldStatus: "doing"}); err != nil {
			t.Fatalf("Update: %v", err)
		}
		after, err := s.Query(ctx, board, Where{})
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		if len(after) != 1 {
			t.Fatalf("expected 1 doc; got %d", len(after))
		}
		f := after[0].Fields
		if f[model.FieldStatus] != "doing" || f[model.FieldTitle] != "Laundry" {
			t.Fatalf("unexpected fields after update: %#v", f)
		}
		if f[model.FieldCreatedAt] != before[0].Fields[model.FieldCreatedAt] {
			t.Fatalf("createdAt must not change")
		}
		prev, _ := strconv.ParseInt(before[0].Fields[model.FieldUpdatedAt], 10, 64)
		next, _ := strconv.ParseInt(f[model.FieldUpdatedAt], 10, 64)
		if next <= prev {
			t.Fatalf("expected updatedAt to move forward: %d -> %d", prev, next)
		}
	})

	t.Run("update missing is not found", func(t *testing.T) {
		err := s.Update(ctx, "UPDATE-MISSING", "nope", map[string]string{model.FieldStatus: "done"})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound; got %v", err)
		}
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		board := "DELETE"
		id, err := s.Create(ctx, board, map[string]string{model.FieldTitle: "Trash"})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if err := s.Delete(ctx, board, id); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if err := s.Delete(ctx, board, id); err != nil {
			t.Fatalf("second Delete: %v", err)
		}
		docs, err := s.Query(ctx, board, Where{})
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		if len(docs) != 0 {
			t.Fatalf("expected empty board; got %#v", docs)
		}
	})

	t.Run("query equality filter and batch delete", func(t *testing.T) {
		board := "BATCH"
		for _, st := range []string{"done", "open", "done"} {
			if _, err := s.Create(ctx, board, map[string]string{model.FieldTitle: st, model.FieldStatus: st}); err != nil {
				t.Fatalf("Create: %v", err)
			}
		}
		done, err := s.Query(ctx, board, Where{Field: model.FieldStatus, Value: "done"})
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		if len(done) != 2 {
			t.Fatalf("expected 2 done; got %d", len(done))
		}
		ids := []string{done[0].ID, done[1].ID}
		if err := s.DeleteBatch(ctx, board, ids); err != nil {
			t.Fatalf("DeleteBatch: %v", err)
		}
		rest, err := s.Query(ctx, board, Where{})
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		if len(rest) != 1 || rest[0].Fields[model.FieldStatus] != "open" {
			t.Fatalf("expected only the open task left; got %#v", rest)
		}
	})

	t.Run("boards are isolated", func(t *testing.T) {
		if _, err := s.Create(ctx, "ISO-A", map[string]string{model.FieldTitle: "a"}); err != nil {
			t.Fatalf("Create: %v", err)
		}
		docs, err := s.Query(ctx, "ISO-B", Where{})
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		if len(docs) != 0 {
			t.Fatalf("expected ISO-B empty; got %#v", docs)
		}
	})

	t.Run("subscribe delivers initial and changed snapshots", func(t *testing.T) {
		board := "LIVE"
		snaps := make(chan []Doc, 16)
		cancel := s.Subscribe(board, func(docs []Doc) { snaps <- docs }, func(err error) {
			t.Errorf("unexpected feed error: %v", err)
		})
		defer cancel()

		first := waitSnapshot(t, snaps)
		if len(first) != 0 {
			t.Fatalf("expected empty initial snapshot; got %#v", first)
		}
		if _, err := s.Create(ctx, board, map[string]string{model.FieldTitle: "Dishes"}); err != nil {
			t.Fatalf("Create: %v", err)
		}
		for {
			docs := waitSnapshot(t, snaps)
			if len(docs) == 1 && docs[0].Fields[model.FieldTitle] == "Dishes" {
				break
			}
		}
	})

	t.Run("cancel stops delivery", func(t *testing.T) {
		board := "CANCEL"
		var mu sync.Mutex
		count := 0
		first := make(chan struct{}, 1)
		cancel := s.Subscribe(board, func([]Doc) {
			mu.Lock()
			count++
			mu.Unlock()
			select {
			case first <- struct{}{}:
			default:
			}
		}, func(error) {})
		select {
		case <-first:
		case <-time.After(3 * time.Second):
			t.Fatalf("no initial snapshot")
		}
		cancel()
		cancel()
		time.Sleep(50 * time.Millisecond)
		mu.Lock()
		before := count
		mu.Unlock()

		if _, err := s.Create(ctx, board, map[string]string{model.FieldTitle: "late"}); err != nil {
			t.Fatalf("Create: %v", err)
		}
		time.Sleep(400 * time.Millisecond)
		mu.Lock()
		after := count
		mu.Unlock()
		if after != before {
			t.Fatalf("expected no snapshots after cancel; got %d more", after-before)
		}
	})
}

func waitSnapshot(t *testing.T, ch <-chan []Doc) []Doc {
	t.Helper()
	select {
	case docs := <-ch:
		return docs
	case <-time.After(3 * time.Second):
		t.Fatalf("timed out waiting for snapshot")
		return nil
	}
}
