package presence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

var Log = logrus.New()

const (
	DefaultShortGrace = 2 * time.Second
	DefaultDeepGrace  = 3 * time.Minute
)

// Entry is one participant's presence. ExpiresAt is set once the
// participant disconnects and cleared if they come back in time.
type Entry struct {
	Token     string
	Active    bool
	JoinedAt  time.Time
	ExpiresAt *time.Time
}

func (e Entry) clone() Entry {
	if e.ExpiresAt != nil {
		t := *e.ExpiresAt
		e.ExpiresAt = &t
	}
	return e
}

func (e Entry) expired(now time.Time) bool {
	return e.ExpiresAt != nil && !now.Before(*e.ExpiresAt)
}

type Participant struct {
	Token  string `json:"token"`
	Active bool   `json:"active"`
}

// Roster is a snapshot of everyone currently present.
type Roster struct {
	Count        int           `json:"count"`
	Active       int           `json:"active"`
	Participants []Participant `json:"participants"`
}

type Registry struct {
	store      Store
	shortGrace time.Duration
	deepGrace  time.Duration

	Now func() time.Time
}

func NewRegistry(store Store, shortGrace, deepGrace time.Duration) *Registry {
	if shortGrace <= 0 {
		shortGrace = DefaultShortGrace
	}
	if deepGrace <= 0 {
		deepGrace = DefaultDeepGrace
	}
	return &Registry{store: store, shortGrace: shortGrace, deepGrace: deepGrace}
}

func (r *Registry) ShortGrace() time.Duration {
	return r.shortGrace
}

func (r *Registry) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now().UTC()
}

// Add finds or creates the entry for token. A pending expiry is cleared, so
// a reconnect within the grace window revives the participant. Add reports
// whether the participant was absent from the roster before the call.
func (r *Registry) Add(ctx context.Context, token string) (bool, error) {
	e, err := r.store.Get(ctx, token)
	switch {
	case errors.Is(err, ErrNotFound):
		e = Entry{Token: token, JoinedAt: r.now()}
		return true, r.store.Set(ctx, e)
	case err != nil:
		return false, fmt.Errorf("unable to get presence of %s: %w", token, err)
	}
	if e.ExpiresAt == nil {
		return false, nil
	}
	rejoined := e.expired(r.now())
	e.ExpiresAt = nil
	return rejoined, r.store.Set(ctx, e)
}

// Activate marks a participant as active and reports whether this call was
// the one that did it.
func (r *Registry) Activate(ctx context.Context, token string) (bool, error) {
	e, err := r.store.Get(ctx, token)
	if err != nil {
		return false, fmt.Errorf("unable to activate %s: %w", token, err)
	}
	if e.Active {
		return false, nil
	}
	e.Active = true
	return true, r.store.Set(ctx, e)
}

// Expire schedules the participant's removal after the short grace window.
func (r *Registry) Expire(ctx context.Context, token string) error {
	e, err := r.store.Get(ctx, token)
	if errors.Is(err, ErrNotFound) {
		return nil
	} else if err != nil {
		return fmt.Errorf("unable to expire %s: %w", token, err)
	}
	at := r.now().Add(r.shortGrace)
	e.ExpiresAt = &at
	return r.store.Set(ctx, e)
}

// PurgeDeeplyExpiredEntries deletes entries that expired more than the deep
// grace window ago and returns how many went away.
func (r *Registry) PurgeDeeplyExpiredEntries(ctx context.Context) (int, error) {
	entries, err := r.store.All(ctx)
	if err != nil {
		return 0, err
	}
	cutoff := r.now().Add(-r.deepGrace)
	purged := 0
	for _, e := range entries {
		if e.ExpiresAt == nil || !e.ExpiresAt.Before(cutoff) {
			continue
		}
		if err := r.store.Delete(ctx, e.Token); err != nil {
			return purged, fmt.Errorf("unable to purge %s: %w", e.Token, err)
		}
		purged++
	}
	return purged, nil
}

// present returns the entries whose grace window has not elapsed.
func (r *Registry) present(ctx context.Context) ([]Entry, error) {
	entries, err := r.store.All(ctx)
	if err != nil {
		return nil, err
	}
	now := r.now()
	present := entries[:0]
	for _, e := range entries {
		if !e.expired(now) {
			present = append(present, e)
		}
	}
	return present, nil
}

func (r *Registry) Count(ctx context.Context) (int, error) {
	entries, err := r.present(ctx)
	return len(entries), err
}

func (r *Registry) Tokens(ctx context.Context) ([]string, error) {
	entries, err := r.present(ctx)
	if err != nil {
		return nil, err
	}
	tokens := make([]string, len(entries))
	for i, e := range entries {
		tokens[i] = e.Token
	}
	return tokens, nil
}

func (r *Registry) Get(ctx context.Context, token string) (Entry, error) {
	return r.store.Get(ctx, token)
}

func (r *Registry) Roster(ctx context.Context) (Roster, error) {
	entries, err := r.present(ctx)
	if err != nil {
		return Roster{}, err
	}
	roster := Roster{
		Count:        len(entries),
		Participants: make([]Participant, len(entries)),
	}
	for i, e := range entries {
		roster.Participants[i] = Participant{Token: e.Token, Active: e.Active}
		if e.Active {
			roster.Active++
		}
	}
	return roster, nil
}
