package main

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// fastTimers shrinks the pacing knobs for the duration of a test.
func fastTimers(t *testing.T) {
	t.Helper()
	prevTick, prevCount := TickInterval, CountdownInterval
	prevStart, prevGrace, prevIdle := StartDelay, WinGrace, IdleTimeout
	TickInterval = 5 * time.Millisecond
	CountdownInterval = 10 * time.Millisecond
	StartDelay = 10 * time.Millisecond
	WinGrace = 20 * time.Millisecond
	IdleTimeout = 200 * time.Millisecond
	t.Cleanup(func() {
		TickInterval, CountdownInterval = prevTick, prevCount
		StartDelay, WinGrace, IdleTimeout = prevStart, prevGrace, prevIdle
	})
}

// mockSub records everything the actor broadcasts.
type mockSub struct {
	mu     sync.Mutex
	events []Envelope
	snaps  []MatchSnapshot
}

func (s *mockSub) SendJSON(msg interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if env, ok := msg.(Envelope); ok {
		s.events = append(s.events, env)
	}
}

func (s *mockSub) SendBinary(data []byte) {
	var snap MatchSnapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps = append(s.snaps, snap)
}

func (s *mockSub) eventTypes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.events))
	for i, e := range s.events {
		out[i] = e.T
	}
	return out
}

func (s *mockSub) lastEvent() (Envelope, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.events) == 0 {
		return Envelope{}, false
	}
	return s.events[len(s.events)-1], true
}

func (s *mockSub) countdownLabels() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var labels []string
	for _, e := range s.events {
		if e.T == MsgCountdown {
			labels = append(labels, e.Data.(CountdownMsg).Value)
		}
	}
	return labels
}

func (s *mockSub) lastSnapshot() (MatchSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.snaps) == 0 {
		return MatchSnapshot{}, false
	}
	return s.snaps[len(s.snaps)-1], true
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func startTestActor(t *testing.T) *MatchActor {
	t.Helper()
	m := NewMatch("m1", NewTargetWord("ELIXIR"), rand.New(rand.NewSource(1)))
	a := NewMatchActor("m1", "test match", m)
	go a.Run()
	t.Cleanup(func() { a.Shutdown(ShutdownTimeout) })
	return a
}

// Joins flow through one mailbox, so concurrent joins can never oversubscribe
// a match or hand out duplicate numbers.
func TestActorConcurrentJoins(t *testing.T) {
	fastTimers(t)
	a := startTestActor(t)

	const n = 8
	results := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := a.Join(fmt.Sprintf("player%d", i))
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	ok, full := 0, 0
	for err := range results {
		switch err {
		case nil:
			ok++
		case ErrMatchFull:
			full++
		default:
			t.Errorf("unexpected join error: %v", err)
		}
	}
	if ok != MaxParticipants || full != n-MaxParticipants {
		t.Errorf("expected %d joins and %d rejections, got %d/%d", MaxParticipants, n-MaxParticipants, ok, full)
	}
	if info := a.Info(); info.Players != MaxParticipants {
		t.Errorf("expected %d recorded participants, got %d", MaxParticipants, info.Players)
	}
}

func TestActorJoinBroadcastsSnapshots(t *testing.T) {
	fastTimers(t)
	a := startTestActor(t)

	sub := &mockSub{}
	a.Join("alice")
	a.Subscribe(sub)

	waitFor(t, time.Second, func() bool {
		snap, ok := sub.lastSnapshot()
		return ok && len(snap.Players) == 1
	})

	a.Join("bob")
	waitFor(t, time.Second, func() bool {
		snap, ok := sub.lastSnapshot()
		return ok && len(snap.Players) == 2
	})

	// Roster snapshots arrive in production order: never 2 players then 1
	sub.mu.Lock()
	defer sub.mu.Unlock()
	maxSeen := 0
	for _, snap := range sub.snaps {
		if len(snap.Players) < maxSeen {
			t.Fatalf("snapshot order violated: saw %d players after %d", len(snap.Players), maxSeen)
		}
		maxSeen = len(snap.Players)
	}
}

func TestActorCountdownAndStart(t *testing.T) {
	fastTimers(t)
	a := startTestActor(t)

	sub := &mockSub{}
	a.Join("alice")
	a.Subscribe(sub)
	a.StartCountdown()

	waitFor(t, 2*time.Second, func() bool {
		for _, typ := range sub.eventTypes() {
			if typ == MsgStarted {
				return true
			}
		}
		return false
	})

	// Countdown values arrive as 3, 2, 1, GO! and then the start event
	labels := sub.countdownLabels()
	want := []string{"3", "2", "1", "GO!"}
	if len(labels) != len(want) {
		t.Fatalf("expected countdown %v, got %v", want, labels)
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Fatalf("expected countdown %v, got %v", want, labels)
		}
	}

	// Simulation is ticking now
	waitFor(t, time.Second, func() bool {
		snap, ok := sub.lastSnapshot()
		return ok && snap.Running && snap.Letter != nil
	})
}

func TestActorIdleTimeout(t *testing.T) {
	fastTimers(t)

	m := NewMatch("m2", NewTargetWord("ELIXIR"), rand.New(rand.NewSource(2)))
	a := NewMatchActor("m2", "idle match", m)
	go a.Run()

	sub := &mockSub{}
	a.Subscribe(sub)

	select {
	case <-a.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("idle actor should have shut down")
	}

	last, ok := sub.lastEvent()
	if !ok || last.T != MsgShutdown {
		t.Fatalf("expected a shutdown event, got %v", sub.eventTypes())
	}
	if last.Data.(ShutdownMsg).Reason != ShutdownTimeout {
		t.Error("idle shutdown should carry reason timeout")
	}
}

func TestActorActivityDefersTimeout(t *testing.T) {
	fastTimers(t)

	m := NewMatch("m3", NewTargetWord("ELIXIR"), rand.New(rand.NewSource(3)))
	a := NewMatchActor("m3", "busy match", m)
	go a.Run()
	defer a.Shutdown(ShutdownTimeout)

	a.Join("alice")

	// Keep sending inputs past the original deadline
	for i := 0; i < 10; i++ {
		time.Sleep(IdleTimeout / 4)
		a.SetVelocity("alice", 1, 0)
	}

	select {
	case <-a.Done():
		t.Fatal("actor with steady input must not time out")
	default:
	}
}

// A finished match is terminal: a join arriving during the win grace window
// must be rejected, not inserted into the dying match.
func TestActorJoinRejectedDuringWinGrace(t *testing.T) {
	fastTimers(t)
	WinGrace = 2 * time.Second // hold the grace window open for the join

	m := NewMatch("m5", NewTargetWord("ELIXIR"), rand.New(rand.NewSource(5)))
	a := NewMatchActor("m5", "graced match", m)

	p, _ := m.Join("alice")
	for _, c := range "ELIXIR" {
		p.Inv.Add(c)
	}

	go a.Run()
	t.Cleanup(func() { a.Shutdown(ShutdownTimeout) })

	sub := &mockSub{}
	a.Subscribe(sub)
	a.post(startMatchCmd{})

	waitFor(t, time.Second, func() bool {
		snap, ok := sub.lastSnapshot()
		return ok && snap.Winner == "alice"
	})

	if _, err := a.Join("latecomer"); err == nil {
		t.Fatal("join accepted into a finished match")
	} else if !errors.Is(err, ErrMatchNotFound) {
		t.Errorf("expected ErrMatchNotFound, got %v", err)
	}
	if info := a.Info(); info.Players != 1 {
		t.Errorf("finished match roster changed: %d players", info.Players)
	}
}

// The idle deadline is refreshed by player commands only. A running match
// keeps ticking, but bare ticks are not activity and it still times out.
func TestActorRunningMatchIdleTimeout(t *testing.T) {
	fastTimers(t)

	m := NewMatch("m6", NewTargetWord("ELIXIR"), rand.New(rand.NewSource(6)))
	a := NewMatchActor("m6", "ticking match", m)
	go a.Run()

	sub := &mockSub{}
	a.Join("alice")
	a.Subscribe(sub)
	a.post(startMatchCmd{})

	select {
	case <-a.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("running match with no input should still hit the idle timeout")
	}

	last, ok := sub.lastEvent()
	if !ok || last.T != MsgShutdown {
		t.Fatalf("expected a shutdown event, got %v", sub.eventTypes())
	}
	if last.Data.(ShutdownMsg).Reason != ShutdownTimeout {
		t.Error("idle shutdown should carry reason timeout")
	}
}

func TestActorWinShutdownAfterGrace(t *testing.T) {
	fastTimers(t)

	m := NewMatch("m4", NewTargetWord("ELIXIR"), rand.New(rand.NewSource(4)))
	a := NewMatchActor("m4", "won match", m)

	// Rig the match before the actor runs: alice already spells the word,
	// so the first tick declares her the winner.
	p, _ := m.Join("alice")
	for _, c := range "ELIXIR" {
		p.Inv.Add(c)
	}

	go a.Run()

	sub := &mockSub{}
	a.Subscribe(sub)
	a.post(startMatchCmd{})

	select {
	case <-a.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("winning match should shut down after the grace period")
	}

	snap, ok := sub.lastSnapshot()
	if !ok || snap.Winner != "alice" {
		t.Errorf("final snapshot should carry the winner, got %+v", snap)
	}
	last, ok := sub.lastEvent()
	if !ok || last.T != MsgShutdown {
		t.Fatalf("expected shutdown event, got %v", sub.eventTypes())
	}
	if last.Data.(ShutdownMsg).Reason != ShutdownNormal {
		t.Error("win shutdown should carry reason normal")
	}
}
