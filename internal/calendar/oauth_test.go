package calendar

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/example/workspace-agenda/internal/persistence"
	"github.com/example/workspace-agenda/internal/testfixtures"
)

type oauthStateStore struct {
	mappingStore
	tokens  map[string]persistence.OAuthToken
	pending map[string]persistence.PendingAuth
}

func newOAuthStateStore() *oauthStateStore {
	return &oauthStateStore{
		mappingStore: *newMappingStore(),
		tokens:       make(map[string]persistence.OAuthToken),
		pending:      make(map[string]persistence.PendingAuth),
	}
}

func (s *oauthStateStore) GetToken(ctx context.Context, account string) (persistence.OAuthToken, error) {
	token, ok := s.tokens[account]
	if !ok {
		return persistence.OAuthToken{}, persistence.ErrNotFound
	}
	return token, nil
}

func (s *oauthStateStore) PutToken(ctx context.Context, token persistence.OAuthToken) error {
	s.tokens[token.Account] = token
	return nil
}

func (s *oauthStateStore) DeleteToken(ctx context.Context, account string) error {
	if _, ok := s.tokens[account]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.tokens, account)
	return nil
}

func (s *oauthStateStore) PutPendingAuth(ctx context.Context, pending persistence.PendingAuth) error {
	s.pending[pending.State] = pending
	return nil
}

func (s *oauthStateStore) TakePendingAuth(ctx context.Context, state string, now time.Time) (persistence.PendingAuth, error) {
	pending, ok := s.pending[state]
	if !ok {
		return persistence.PendingAuth{}, persistence.ErrNotFound
	}
	delete(s.pending, state)
	if now.After(pending.ExpiresAt) {
		return persistence.PendingAuth{}, persistence.ErrNotFound
	}
	return pending, nil
}

func (s *oauthStateStore) PurgeExpiredPendingAuth(ctx context.Context, now time.Time) error {
	for state, pending := range s.pending {
		if now.After(pending.ExpiresAt) {
			delete(s.pending, state)
		}
	}
	return nil
}

func newTestConnector(store *oauthStateStore) *Connector {
	return NewConnector(store, ConnectorOptions{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://localhost:8080/api/calendar/callback",
		IDGenerator:  testfixtures.NewIDGenerator("state").NextFunc(),
		Now:          testfixtures.NewClock(time.Time{}).NowFunc(),
	})
}

func TestConnector_Configured(t *testing.T) {
	store := newOAuthStateStore()

	if NewConnector(store, ConnectorOptions{}).Configured() {
		t.Fatalf("expected missing credentials to report unconfigured")
	}
	if !newTestConnector(store).Configured() {
		t.Fatalf("expected credentials to report configured")
	}
}

func TestConnector_Connected(t *testing.T) {
	ctx := context.Background()
	store := newOAuthStateStore()
	connector := newTestConnector(store)

	connected, err := connector.Connected(ctx)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if connected {
		t.Fatalf("expected no connection without a stored token")
	}

	store.tokens["default"] = persistence.OAuthToken{Account: "default", TokenJSON: []byte(`{}`)}
	connected, err = connector.Connected(ctx)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if !connected {
		t.Fatalf("expected a stored token to report connected")
	}
}

func TestConnector_AuthURL(t *testing.T) {
	ctx := context.Background()

	t.Run("requires credentials", func(t *testing.T) {
		connector := NewConnector(newOAuthStateStore(), ConnectorOptions{})

		if _, err := connector.AuthURL(ctx); !errors.Is(err, ErrNotConfigured) {
			t.Fatalf("expected ErrNotConfigured, got %v", err)
		}
	})

	t.Run("registers a pending attempt", func(t *testing.T) {
		store := newOAuthStateStore()
		connector := newTestConnector(store)

		url, err := connector.AuthURL(ctx)
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if !strings.Contains(url, "state=state-1") {
			t.Fatalf("expected the state in the consent URL, got %q", url)
		}

		pending, ok := store.pending["state-1"]
		if !ok {
			t.Fatalf("expected a pending attempt to be stored")
		}
		if got := pending.ExpiresAt.Sub(pending.CreatedAt); got != DefaultStateTTL {
			t.Fatalf("expected the default state TTL, got %v", got)
		}
	})

	t.Run("purges expired attempts", func(t *testing.T) {
		store := newOAuthStateStore()
		store.pending["old"] = persistence.PendingAuth{
			State:     "old",
			CreatedAt: fixedNow().Add(-time.Hour),
			ExpiresAt: fixedNow().Add(-50 * time.Minute),
		}
		connector := newTestConnector(store)

		if _, err := connector.AuthURL(ctx); err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if _, ok := store.pending["old"]; ok {
			t.Fatalf("expected the expired attempt to be purged")
		}
	})
}

func TestConnector_Exchange(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects unknown states", func(t *testing.T) {
		connector := newTestConnector(newOAuthStateStore())

		if err := connector.Exchange(ctx, "unknown", "code"); err == nil {
			t.Fatalf("expected unknown state to be rejected")
		}
	})

	t.Run("rejects expired states", func(t *testing.T) {
		store := newOAuthStateStore()
		store.pending["state-1"] = persistence.PendingAuth{
			State:     "state-1",
			CreatedAt: fixedNow().Add(-time.Hour),
			ExpiresAt: fixedNow().Add(-50 * time.Minute),
		}
		connector := newTestConnector(store)

		if err := connector.Exchange(ctx, "state-1", "code"); err == nil {
			t.Fatalf("expected expired state to be rejected")
		}
	})
}

func TestConnector_Disconnect(t *testing.T) {
	ctx := context.Background()
	store := newOAuthStateStore()
	store.tokens["default"] = persistence.OAuthToken{Account: "default", TokenJSON: []byte(`{}`)}
	connector := newTestConnector(store)

	if err := connector.Disconnect(ctx); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if _, ok := store.tokens["default"]; ok {
		t.Fatalf("expected the token to be forgotten")
	}

	// Disconnecting again is a no-op.
	if err := connector.Disconnect(ctx); err != nil {
		t.Fatalf("expected idempotent disconnect, got %v", err)
	}
}

func TestConnector_Client(t *testing.T) {
	ctx := context.Background()
	connector := newTestConnector(newOAuthStateStore())

	if _, err := connector.Client(ctx); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
}
