package main

import (
	"log"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Pacing knobs. Variables, not constants, so tests can shrink them.
var (
	TickInterval      = 33 * time.Millisecond // ~30Hz simulation
	CountdownInterval = time.Second
	StartDelay        = time.Second // pause between "GO!" and the first tick
	WinGrace          = 300 * time.Millisecond
	IdleTimeout       = 90 * time.Second
)

// Shutdown reasons surfaced to subscribers.
const (
	ShutdownNormal  = "normal"  // a participant won
	ShutdownTimeout = "timeout" // nobody interacted for IdleTimeout
)

// Subscriber receives the actor's output: JSON events and binary msgpack
// snapshot frames. *Client implements it.
type Subscriber interface {
	SendJSON(msg interface{})
	SendBinary(data []byte)
}

// MatchResult describes a finished match for the history store.
type MatchResult struct {
	ID       string
	Name     string
	Word     string
	Winner   string
	Players  []string
	Duration float64 // seconds
}

// Mailbox commands. Everything that mutates the match arrives here and is
// handled by the one actor goroutine, so the Match itself needs no locking.
type joinCmd struct {
	name  string
	reply chan joinReply
}

type joinReply struct {
	joined JoinedMsg
	err    error
}

type leaveCmd struct{ name string }

type velocityCmd struct {
	name   string
	vx, vy float64
}

type startCountdownCmd struct{}

type startMatchCmd struct{}

type subscribeCmd struct{ sub Subscriber }

type unsubscribeCmd struct{ sub Subscriber }

type infoCmd struct{ reply chan MatchInfo }

type shutdownCmd struct{ reason string }

// MatchActor owns one Match plus its timers and subscriber fan-out.
type MatchActor struct {
	ID   string
	Name string

	inbox chan any
	done  chan struct{}

	match *Match
	subs  map[Subscriber]bool

	tick      *time.Ticker // active only while running
	countdown *time.Ticker // active only during the countdown
	idle      *time.Timer
	lastTouch time.Time
	createdAt time.Time
	finishing bool

	// Set by the registry before Run.
	OnClose  func(id string)
	OnResult func(MatchResult)
}

// NewMatchActor wraps a match. Call Run in its own goroutine.
func NewMatchActor(id, name string, match *Match) *MatchActor {
	now := time.Now()
	return &MatchActor{
		ID:        id,
		Name:      name,
		inbox:     make(chan any, 64),
		done:      make(chan struct{}),
		match:     match,
		subs:      make(map[Subscriber]bool),
		lastTouch: now,
		createdAt: now,
	}
}

// Run is the actor loop. Exactly one mutation is in flight at any time; the
// tick, countdown and idle timers all feed the same serialized select.
func (a *MatchActor) Run() {
	a.idle = time.NewTimer(IdleTimeout)
	defer a.idle.Stop()

	for {
		select {
		case cmd := <-a.inbox:
			if a.handle(cmd) {
				return
			}

		case <-tickChan(a.tick):
			a.match.Update()
			if a.match.Winner != "" && !a.finishing {
				a.finish()
			}
			a.broadcastSnapshot()

		case <-tickChan(a.countdown):
			v := a.match.Countdown
			a.broadcast(Envelope{T: MsgCountdown, Data: CountdownMsg{Value: CountdownLabel(v)}})
			if v == 0 {
				a.countdown.Stop()
				a.countdown = nil
				time.AfterFunc(StartDelay, func() { a.post(startMatchCmd{}) })
			} else {
				a.match.CountdownTick()
			}

		case <-a.idle.C:
			// The deadline is tracked as a timestamp so a stale timer fire
			// after a Reset race can never kill an active match.
			remaining := IdleTimeout - time.Since(a.lastTouch)
			if remaining > 0 {
				a.idle.Reset(remaining)
				continue
			}
			a.shutdown(ShutdownTimeout)
			return
		}
	}
}

// handle applies one mailbox command. Returns true when the actor is done.
func (a *MatchActor) handle(cmd any) bool {
	switch c := cmd.(type) {
	case joinCmd:
		// Stop clears Running during the win grace period, so the match
		// itself would accept a join again. The actor is terminal once
		// finishing is set; latecomers get the same error as a dead actor.
		if a.finishing {
			c.reply <- joinReply{err: ErrMatchNotFound}
			return false
		}
		p, err := a.match.Join(c.name)
		if err != nil {
			c.reply <- joinReply{err: err}
			return false
		}
		a.touch()
		c.reply <- joinReply{joined: JoinedMsg{
			MatchID: a.ID,
			Name:    p.Name,
			Number:  p.Number,
			Color:   p.Color,
			Word:    a.match.Word.Text,
		}}
		a.broadcastSnapshot()

	case leaveCmd:
		a.match.Leave(c.name)
		a.touch()
		a.broadcastSnapshot()

	case velocityCmd:
		a.match.SetVelocity(c.name, c.vx, c.vy)
		a.touch()

	case startCountdownCmd:
		if a.match.Running || a.countdown != nil || a.finishing {
			return false
		}
		a.touch()
		a.countdown = time.NewTicker(CountdownInterval)

	case startMatchCmd:
		if a.match.Running || a.finishing {
			return false
		}
		a.match.Start()
		a.touch()
		a.broadcast(Envelope{T: MsgStarted})
		a.broadcastSnapshot()
		a.tick = time.NewTicker(TickInterval)

	case subscribeCmd:
		a.subs[c.sub] = true
		if data, err := msgpack.Marshal(a.match.Snapshot()); err == nil {
			c.sub.SendBinary(data)
		}

	case unsubscribeCmd:
		delete(a.subs, c.sub)

	case infoCmd:
		c.reply <- MatchInfo{
			ID:      a.ID,
			Name:    a.Name,
			Players: len(a.match.Participants),
			Running: a.match.Running,
		}

	case shutdownCmd:
		a.shutdown(c.reason)
		return true
	}
	return false
}

// finish runs once when a winner appears: freeze the simulation and give
// subscribers a grace period to receive the final snapshot before the actor
// disappears.
func (a *MatchActor) finish() {
	a.finishing = true
	a.match.Stop()
	a.tick.Stop()
	a.tick = nil
	time.AfterFunc(WinGrace, func() { a.post(shutdownCmd{reason: ShutdownNormal}) })
}

// shutdown broadcasts the reason, reports to the registry and ends the actor.
func (a *MatchActor) shutdown(reason string) {
	if a.tick != nil {
		a.tick.Stop()
	}
	if a.countdown != nil {
		a.countdown.Stop()
	}
	winner := a.match.Winner
	a.match.Stop()
	a.broadcast(Envelope{T: MsgShutdown, Data: ShutdownMsg{Reason: reason}})
	close(a.done)

	if reason == ShutdownNormal && winner != "" && a.OnResult != nil {
		players := make([]string, 0, len(a.match.Participants))
		for _, p := range a.match.Ordered() {
			players = append(players, p.Name)
		}
		a.OnResult(MatchResult{
			ID:       a.ID,
			Name:     a.Name,
			Word:     a.match.Word.Text,
			Winner:   winner,
			Players:  players,
			Duration: time.Since(a.createdAt).Seconds(),
		})
	}
	if a.OnClose != nil {
		a.OnClose(a.ID)
	}
	log.Printf("match %s shut down (%s)", a.ID, reason)
}

// touch refreshes the inactivity deadline. Called for every externally
// triggered mutation, never for bare ticks: a running but untouched match
// still times out.
func (a *MatchActor) touch() {
	a.lastTouch = time.Now()
}

func (a *MatchActor) broadcastSnapshot() {
	data, err := msgpack.Marshal(a.match.Snapshot())
	if err != nil {
		log.Printf("snapshot marshal: %v", err)
		return
	}
	for sub := range a.subs {
		sub.SendBinary(data)
	}
}

func (a *MatchActor) broadcast(env Envelope) {
	for sub := range a.subs {
		sub.SendJSON(env)
	}
}

// post delivers a command unless the actor has already shut down.
func (a *MatchActor) post(cmd any) bool {
	select {
	case a.inbox <- cmd:
		return true
	case <-a.done:
		return false
	}
}

// tickChan adapts a possibly-nil ticker for use in select.
func tickChan(t *time.Ticker) <-chan time.Time {
	if t == nil {
		return nil
	}
	return t.C
}

// --- public command surface ---

// Join is the one synchronous command: the caller needs the result to either
// greet the player or show a reason.
func (a *MatchActor) Join(name string) (JoinedMsg, error) {
	reply := make(chan joinReply, 1)
	if !a.post(joinCmd{name: name, reply: reply}) {
		return JoinedMsg{}, ErrMatchNotFound
	}
	select {
	case r := <-reply:
		return r.joined, r.err
	case <-a.done:
		return JoinedMsg{}, ErrMatchNotFound
	}
}

func (a *MatchActor) Leave(name string) { a.post(leaveCmd{name: name}) }

func (a *MatchActor) SetVelocity(name string, vx, vy float64) {
	a.post(velocityCmd{name: name, vx: vx, vy: vy})
}

func (a *MatchActor) StartCountdown() { a.post(startCountdownCmd{}) }

func (a *MatchActor) Subscribe(sub Subscriber)   { a.post(subscribeCmd{sub: sub}) }
func (a *MatchActor) Unsubscribe(sub Subscriber) { a.post(unsubscribeCmd{sub: sub}) }

// Info reports the lobby listing view. A zero MatchInfo means the actor is
// already gone.
func (a *MatchActor) Info() MatchInfo {
	reply := make(chan MatchInfo, 1)
	if !a.post(infoCmd{reply: reply}) {
		return MatchInfo{}
	}
	select {
	case info := <-reply:
		return info
	case <-a.done:
		return MatchInfo{}
	}
}

// Shutdown asks the actor to terminate with the given reason.
func (a *MatchActor) Shutdown(reason string) { a.post(shutdownCmd{reason: reason}) }

// Done is closed when the actor has terminated.
func (a *MatchActor) Done() <-chan struct{} { return a.done }
