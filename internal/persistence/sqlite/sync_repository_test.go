package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/workspace-agenda/internal/persistence"
	"github.com/example/workspace-agenda/internal/testfixtures"
)

func TestSyncStateRepository_Mappings(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewSyncStateRepository(db)
	now := testfixtures.ReferenceTime()

	mapping := persistence.EventMapping{EntryID: "a1", RemoteEventID: "ev-1", CalendarID: "primary", UpdatedAt: now}
	if err := repo.PutMapping(ctx, mapping); err != nil {
		t.Fatalf("expected put to succeed, got %v", err)
	}

	got, err := repo.GetMapping(ctx, "a1")
	if err != nil {
		t.Fatalf("expected get to succeed, got %v", err)
	}
	if got.RemoteEventID != "ev-1" || !got.UpdatedAt.Equal(now) {
		t.Fatalf("unexpected mapping: %+v", got)
	}

	// A second put replaces the row.
	mapping.RemoteEventID = "ev-2"
	if err := repo.PutMapping(ctx, mapping); err != nil {
		t.Fatalf("expected replace to succeed, got %v", err)
	}
	mappings, err := repo.ListMappings(ctx)
	if err != nil {
		t.Fatalf("expected list to succeed, got %v", err)
	}
	if len(mappings) != 1 || mappings[0].RemoteEventID != "ev-2" {
		t.Fatalf("expected the replaced mapping, got %+v", mappings)
	}

	if err := repo.DeleteMapping(ctx, "a1"); err != nil {
		t.Fatalf("expected delete to succeed, got %v", err)
	}
	if _, err := repo.GetMapping(ctx, "a1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.DeleteMapping(ctx, "a1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for a second delete, got %v", err)
	}
}

func TestSyncStateRepository_Tokens(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewSyncStateRepository(db)
	now := testfixtures.ReferenceTime()

	token := persistence.OAuthToken{Account: "default", TokenJSON: []byte(`{"access_token":"abc"}`), UpdatedAt: now}
	if err := repo.PutToken(ctx, token); err != nil {
		t.Fatalf("expected put to succeed, got %v", err)
	}

	got, err := repo.GetToken(ctx, "default")
	if err != nil {
		t.Fatalf("expected get to succeed, got %v", err)
	}
	if string(got.TokenJSON) != `{"access_token":"abc"}` {
		t.Fatalf("unexpected token payload: %s", got.TokenJSON)
	}

	if err := repo.DeleteToken(ctx, "default"); err != nil {
		t.Fatalf("expected delete to succeed, got %v", err)
	}
	if _, err := repo.GetToken(ctx, "default"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestSyncStateRepository_PendingAuth(t *testing.T) {
	ctx := context.Background()
	now := testfixtures.ReferenceTime()

	t.Run("consumes a live state exactly once", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewSyncStateRepository(db)

		pending := persistence.PendingAuth{State: "s1", CreatedAt: now, ExpiresAt: now.Add(10 * time.Minute)}
		if err := repo.PutPendingAuth(ctx, pending); err != nil {
			t.Fatalf("expected put to succeed, got %v", err)
		}

		got, err := repo.TakePendingAuth(ctx, "s1", now.Add(time.Minute))
		if err != nil {
			t.Fatalf("expected take to succeed, got %v", err)
		}
		if got.State != "s1" {
			t.Fatalf("unexpected pending auth: %+v", got)
		}

		if _, err := repo.TakePendingAuth(ctx, "s1", now.Add(time.Minute)); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected second take to fail, got %v", err)
		}
	})

	t.Run("rejects expired states", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewSyncStateRepository(db)

		pending := persistence.PendingAuth{State: "s1", CreatedAt: now, ExpiresAt: now.Add(10 * time.Minute)}
		if err := repo.PutPendingAuth(ctx, pending); err != nil {
			t.Fatalf("expected put to succeed, got %v", err)
		}

		if _, err := repo.TakePendingAuth(ctx, "s1", now.Add(time.Hour)); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected expired state to be rejected, got %v", err)
		}
	})

	t.Run("purges expired states", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewSyncStateRepository(db)

		if err := repo.PutPendingAuth(ctx, persistence.PendingAuth{State: "old", CreatedAt: now.Add(-time.Hour), ExpiresAt: now.Add(-50 * time.Minute)}); err != nil {
			t.Fatalf("expected put to succeed, got %v", err)
		}
		if err := repo.PutPendingAuth(ctx, persistence.PendingAuth{State: "live", CreatedAt: now, ExpiresAt: now.Add(10 * time.Minute)}); err != nil {
			t.Fatalf("expected put to succeed, got %v", err)
		}

		if err := repo.PurgeExpiredPendingAuth(ctx, now); err != nil {
			t.Fatalf("expected purge to succeed, got %v", err)
		}

		if _, err := repo.TakePendingAuth(ctx, "live", now); err != nil {
			t.Fatalf("expected live state to survive purge, got %v", err)
		}
	})
}
