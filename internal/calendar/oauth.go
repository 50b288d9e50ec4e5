package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"

	"github.com/example/workspace-agenda/internal/persistence"
)

// ErrNotConnected is returned when an operation needs an authorized account
// and none is connected.
var ErrNotConnected = errors.New("calendar: not connected")

// ErrNotConfigured is returned when the OAuth client credentials are absent.
var ErrNotConfigured = errors.New("calendar: oauth client not configured")

// DefaultStateTTL bounds how long an authorization attempt stays redeemable.
const DefaultStateTTL = 10 * time.Minute

// Connector manages the OAuth lifecycle of the Google account: issuing
// authorization URLs, redeeming callbacks, and producing authorized clients
// with transparent token refresh.
type Connector struct {
	config      *oauth2.Config
	syncState   persistence.SyncStateRepository
	account     string
	stateTTL    time.Duration
	idGenerator func() string
	now         func() time.Time
}

// ConnectorOptions carries the credentials and collaborators for a Connector.
type ConnectorOptions struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Account      string
	StateTTL     time.Duration
	IDGenerator  func() string
	Now          func() time.Time
}

// NewConnector constructs a connector persisting its state through the given repository.
func NewConnector(syncState persistence.SyncStateRepository, opts ConnectorOptions) *Connector {
	if opts.Account == "" {
		opts.Account = "default"
	}
	if opts.StateTTL <= 0 {
		opts.StateTTL = DefaultStateTTL
	}
	if opts.IDGenerator == nil {
		opts.IDGenerator = func() string { return "" }
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Connector{
		config: &oauth2.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			RedirectURL:  opts.RedirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{gcal.CalendarScope},
		},
		syncState:   syncState,
		account:     opts.Account,
		stateTTL:    opts.StateTTL,
		idGenerator: opts.IDGenerator,
		now:         opts.Now,
	}
}

// Configured reports whether OAuth client credentials are present.
func (c *Connector) Configured() bool {
	return c != nil && c.config.ClientID != "" && c.config.ClientSecret != ""
}

// Connected reports whether a token is stored for the account.
func (c *Connector) Connected(ctx context.Context) (bool, error) {
	if _, err := c.syncState.GetToken(ctx, c.account); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// AuthURL registers a fresh authorization attempt and returns the consent URL
// the user must visit. The state token expires after the configured TTL.
func (c *Connector) AuthURL(ctx context.Context) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	now := c.now()
	// Opportunistic cleanup; abandoned attempts otherwise pile up forever.
	if err := c.syncState.PurgeExpiredPendingAuth(ctx, now); err != nil {
		return "", err
	}

	state := c.idGenerator()
	pending := persistence.PendingAuth{
		State:     state,
		CreatedAt: now,
		ExpiresAt: now.Add(c.stateTTL),
	}
	if err := c.syncState.PutPendingAuth(ctx, pending); err != nil {
		return "", err
	}

	return c.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce), nil
}

// Exchange redeems an authorization callback. The state must match a live
// pending attempt; each state is redeemable at most once.
func (c *Connector) Exchange(ctx context.Context, state, code string) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	if _, err := c.syncState.TakePendingAuth(ctx, state, c.now()); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return fmt.Errorf("calendar: unknown or expired authorization state")
		}
		return err
	}

	token, err := c.config.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("calendar: exchange authorization code: %w", err)
	}

	return c.saveToken(ctx, token)
}

// Disconnect forgets the stored token. Disconnecting twice is not an error.
func (c *Connector) Disconnect(ctx context.Context) error {
	if err := c.syncState.DeleteToken(ctx, c.account); err != nil && !errors.Is(err, persistence.ErrNotFound) {
		return err
	}
	return nil
}

// Client returns an authorized HTTP client for the account, refreshing and
// re-persisting the token when it has rolled over.
func (c *Connector) Client(ctx context.Context) (*http.Client, error) {
	stored, err := c.syncState.GetToken(ctx, c.account)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil, ErrNotConnected
		}
		return nil, err
	}

	var token oauth2.Token
	if err := json.Unmarshal(stored.TokenJSON, &token); err != nil {
		return nil, fmt.Errorf("calendar: unmarshal stored token: %w", err)
	}

	fresh, err := c.config.TokenSource(ctx, &token).Token()
	if err != nil {
		return nil, fmt.Errorf("calendar: refresh token: %w", err)
	}
	if fresh.AccessToken != token.AccessToken {
		if err := c.saveToken(ctx, fresh); err != nil {
			return nil, err
		}
	}

	return c.config.Client(ctx, fresh), nil
}

// Remote implements RemoteProvider over the Google Calendar API.
func (c *Connector) Remote(ctx context.Context) (RemoteCalendar, error) {
	client, err := c.Client(ctx)
	if err != nil {
		return nil, err
	}
	return NewGoogleCalendar(ctx, client)
}

func (c *Connector) saveToken(ctx context.Context, token *oauth2.Token) error {
	tokenJSON, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("calendar: marshal token: %w", err)
	}
	return c.syncState.PutToken(ctx, persistence.OAuthToken{
		Account:   c.account,
		TokenJSON: tokenJSON,
		UpdatedAt: c.now(),
	})
}
