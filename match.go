package main

import (
	"errors"
	"math"
	"math/rand"
	"sort"
	"strconv"
)

const (
	MaxParticipants = 4
	MoveSpeed       = 6.0 // pixels per tick at full velocity
	CountdownFrom   = 3
)

// Expected join failures, surfaced to the presentation layer as messages.
var (
	ErrAlreadyStarted = errors.New("match already started")
	ErrMatchFull      = errors.New("match is full")
	ErrDuplicateName  = errors.New("name already taken")
)

// Match is the full state of one game. It is owned by a single MatchActor
// goroutine; nothing else may touch it, which keeps every method lock-free.
type Match struct {
	ID           string
	Word         TargetWord
	Tick         uint64
	Running      bool
	Participants map[string]*Participant
	Countdown    int // CountdownFrom..0, 0 renders as "GO!"
	Letter       *Letter
	Winner       string // set once, never overwritten

	rng *rand.Rand
}

// NewMatch creates a match in the lobby state.
func NewMatch(id string, word TargetWord, rng *rand.Rand) *Match {
	return &Match{
		ID:           id,
		Word:         word,
		Participants: make(map[string]*Participant),
		Countdown:    CountdownFrom,
		rng:          rng,
	}
}

// Join adds a participant at the corner for the lowest free join-order number.
func (m *Match) Join(name string) (*Participant, error) {
	if m.Running {
		return nil, ErrAlreadyStarted
	}
	if len(m.Participants) >= MaxParticipants {
		return nil, ErrMatchFull
	}
	if _, ok := m.Participants[name]; ok {
		return nil, ErrDuplicateName
	}
	p := NewParticipant(name, m.freeNumber(), m.Word)
	m.Participants[name] = p
	return p, nil
}

// Leave removes a participant. Its join-order number becomes free again, so
// a later join reuses the same corner and color.
func (m *Match) Leave(name string) {
	delete(m.Participants, name)
}

// freeNumber returns the smallest join-order number not currently held.
func (m *Match) freeNumber() int {
	var held [MaxParticipants + 1]bool
	for _, p := range m.Participants {
		held[p.Number] = true
	}
	for n := 1; n <= MaxParticipants; n++ {
		if !held[n] {
			return n
		}
	}
	return MaxParticipants
}

// CountdownTick decrements the countdown, saturating at 0 ("GO!").
func (m *Match) CountdownTick() int {
	if m.Countdown > 0 {
		m.Countdown--
	}
	return m.Countdown
}

// CountdownLabel renders a countdown value for broadcasting.
func CountdownLabel(v int) string {
	if v <= 0 {
		return "GO!"
	}
	return strconv.Itoa(v)
}

// Start flips the match to running and spawns the first letter.
func (m *Match) Start() {
	if m.Running {
		return
	}
	m.Running = true
	m.spawnLetter()
}

// Stop ends the match. No letter exists while the match is not running.
func (m *Match) Stop() {
	m.Running = false
	m.Letter = nil
}

// SetVelocity overwrites a participant's velocity. A no-op while the match
// is not running or for a name that never joined (a stale input frame from a
// departed client is harmless).
func (m *Match) SetVelocity(name string, vx, vy float64) {
	if !m.Running {
		return
	}
	p, ok := m.Participants[name]
	if !ok {
		return
	}
	p.VX = vx
	p.VY = vy
}

// Ordered returns the participants in ascending join-order number. That
// order decides both who moves first within a tick and who wins a contested
// letter, so it is the one deterministic tie-break for the whole simulation.
func (m *Match) Ordered() []*Participant {
	parts := make([]*Participant, 0, len(m.Participants))
	for _, p := range m.Participants {
		parts = append(parts, p)
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i].Number < parts[j].Number })
	return parts
}

// Update advances the simulation one tick: move everyone, hand out the
// letter, check for a winner.
func (m *Match) Update() {
	if !m.Running {
		return
	}

	parts := m.Ordered()

	// Earlier numbers move first and later ones resolve against their
	// already-updated hitboxes, first-come-first-served.
	for _, p := range parts {
		target := Vec2{
			X: clampInt(p.Pos.X+int(math.Round(p.VX*MoveSpeed)), 0, ArenaWidth-ParticipantSize),
			Y: clampInt(p.Pos.Y+int(math.Round(p.VY*MoveSpeed)), 0, ArenaHeight-ParticipantSize),
		}
		others := make([]Hitbox, 0, len(parts)-1)
		for _, o := range parts {
			if o != p {
				others = append(others, o.Box)
			}
		}
		p.Pos, p.Box = ResolveMove(p.Pos, target, others, ParticipantSize)
	}

	if m.Letter != nil {
		for _, p := range parts {
			if p.Box.Overlaps(m.Letter.Box) {
				m.collect(p, parts)
				break
			}
		}
	}

	if m.Winner == "" {
		for _, p := range parts {
			if p.Inv.Complete() {
				m.Winner = p.Name
				break
			}
		}
	}

	m.Tick++
}

// collect applies the collection rule to the current letter: add it when the
// collector has a free slot for it, otherwise steal one copy from a random
// other holder, otherwise nothing. The letter is consumed in all three
// outcomes and a fresh one spawns.
func (m *Match) collect(collector *Participant, parts []*Participant) {
	c := m.Letter.Char
	if collector.Inv.HasCapacity(c) {
		collector.Inv.Add(c)
	} else {
		holders := make([]*Participant, 0, len(parts))
		for _, p := range parts {
			if p != collector && p.Inv.Count(c) > 0 {
				holders = append(holders, p)
			}
		}
		if len(holders) > 0 {
			holders[m.rng.Intn(len(holders))].Inv.RemoveLast(c)
		}
	}
	m.Letter = nil
	m.spawnLetter()
}

func (m *Match) spawnLetter() {
	occupied := make([]Hitbox, 0, len(m.Participants))
	for _, p := range m.Participants {
		occupied = append(occupied, p.Box)
	}
	m.Letter = SpawnLetter(m.rng, m.Word, occupied)
}

// Snapshot builds the broadcast view of the match. Velocities and the tick
// counter are server internals and stay out of it.
func (m *Match) Snapshot() MatchSnapshot {
	snap := MatchSnapshot{
		Players: make([]ParticipantState, 0, len(m.Participants)),
		Winner:  m.Winner,
		Running: m.Running,
	}
	for _, p := range m.Ordered() {
		snap.Players = append(snap.Players, p.ToState())
	}
	if m.Letter != nil {
		snap.Letter = &LetterState{
			Char: string(m.Letter.Char),
			X:    m.Letter.Pos.X,
			Y:    m.Letter.Pos.Y,
		}
	}
	return snap
}
