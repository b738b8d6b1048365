package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/vancomm/warroom/internal/presence"
)

type PresenceBackend string

const (
	PresenceMemory   PresenceBackend = "memory"
	PresencePostgres PresenceBackend = "postgres"
)

type Presence struct {
	Backend       PresenceBackend
	ShortGrace    time.Duration
	DeepGrace     time.Duration
	SweepInterval time.Duration
}

func NewPresence() (*Presence, error) {
	backend := PresencePostgres
	if s, ok := os.LookupEnv("PRESENCE_BACKEND"); ok {
		backend = PresenceBackend(s)
	}
	if backend != PresenceMemory && backend != PresencePostgres {
		return nil, fmt.Errorf("unknown PRESENCE_BACKEND %q", backend)
	}

	shortGrace, err1 := lookupDuration("PRESENCE_SHORT_GRACE", presence.DefaultShortGrace)
	deepGrace, err2 := lookupDuration("PRESENCE_DEEP_GRACE", presence.DefaultDeepGrace)
	sweep, err3 := lookupDuration("PRESENCE_SWEEP_INTERVAL", 30*time.Second)
	if err := errors.Join(err1, err2, err3); err != nil {
		return nil, err
	}
	if deepGrace < shortGrace {
		return nil, fmt.Errorf("PRESENCE_DEEP_GRACE (%s) is shorter than PRESENCE_SHORT_GRACE (%s)", deepGrace, shortGrace)
	}
	if sweep <= 0 {
		return nil, errors.New("PRESENCE_SWEEP_INTERVAL must be positive")
	}

	return &Presence{
		Backend:       backend,
		ShortGrace:    shortGrace,
		DeepGrace:     deepGrace,
		SweepInterval: sweep,
	}, nil
}
