package main

import (
	"errors"
	"math/rand"
	"sync"
	"time"
)

const (
	maxMatches    = 100
	matchIDBytes  = 3 // 6 hex chars in the join URL
	maxIDAttempts = 5
)

var (
	ErrMatchNotFound  = errors.New("match not found")
	ErrTooManyMatches = errors.New("too many active matches")
	ErrIDsExhausted   = errors.New("could not allocate a match id")
)

// Registry is the directory of live matches: id -> actor. It is the only
// state shared across matches, so inserts are uniqueness-checked under one
// lock; actors themselves never write here except through OnClose.
type Registry struct {
	mu      sync.RWMutex
	matches map[string]*MatchActor
	word    TargetWord

	// newID is swappable for tests that need to force id collisions.
	newID func() string

	// OnResult receives finished matches, when someone cares (the hub's
	// history store). May be nil.
	OnResult func(MatchResult)
}

// NewRegistry creates an empty registry for matches played on word.
func NewRegistry(word TargetWord) *Registry {
	return &Registry{
		matches: make(map[string]*MatchActor),
		word:    word,
		newID:   func() string { return GenerateID(matchIDBytes) },
	}
}

// Create allocates a fresh match id, starts its actor and returns it. The id
// draw retries a bounded number of times on collision before giving up.
func (r *Registry) Create(name string) (*MatchActor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.matches) >= maxMatches {
		return nil, ErrTooManyMatches
	}

	for i := 0; i < maxIDAttempts; i++ {
		id := r.newID()
		if _, taken := r.matches[id]; taken {
			continue
		}
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		actor := NewMatchActor(id, name, NewMatch(id, r.word, rng))
		actor.OnClose = r.remove
		actor.OnResult = func(res MatchResult) {
			if r.OnResult != nil {
				r.OnResult(res)
			}
		}
		r.matches[id] = actor
		go actor.Run()
		return actor, nil
	}
	return nil, ErrIDsExhausted
}

// Get returns the actor for id, or nil.
func (r *Registry) Get(id string) *MatchActor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.matches[id]
}

func (r *Registry) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.matches, id)
}

// Count returns the number of live matches.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.matches)
}

// List returns listing info for every live match.
func (r *Registry) List() []MatchInfo {
	r.mu.RLock()
	actors := make([]*MatchActor, 0, len(r.matches))
	for _, a := range r.matches {
		actors = append(actors, a)
	}
	r.mu.RUnlock()

	// Info calls leave the lock so a busy actor can't stall lookups.
	list := make([]MatchInfo, 0, len(actors))
	for _, a := range actors {
		if info := a.Info(); info.ID != "" {
			list = append(list, info)
		}
	}
	return list
}

// Close shuts every match down. Used on server exit.
func (r *Registry) Close() {
	for _, a := range r.snapshotActors() {
		a.Shutdown(ShutdownTimeout)
	}
}

func (r *Registry) snapshotActors() []*MatchActor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*MatchActor, 0, len(r.matches))
	for _, a := range r.matches {
		out = append(out, a)
	}
	return out
}
