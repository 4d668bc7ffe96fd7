package main

import (
	"math/rand"
	"testing"
)

func TestSpawnCorners(t *testing.T) {
	corners := map[int]Vec2{
		1: {X: 0, Y: 0},
		2: {X: ArenaWidth - ParticipantSize, Y: 0},
		3: {X: 0, Y: ArenaHeight - ParticipantSize},
		4: {X: ArenaWidth - ParticipantSize, Y: ArenaHeight - ParticipantSize},
	}
	for num, want := range corners {
		got := SpawnCorner(num)
		if got != want {
			t.Errorf("corner %d: want %+v, got %+v", num, want, got)
		}
		box := SquareHitbox(got, ParticipantSize)
		if box.X1 < 0 || box.Y1 < 0 || box.X2 > ArenaWidth || box.Y2 > ArenaHeight {
			t.Errorf("corner %d box %+v out of bounds", num, box)
		}
	}
}

func TestSpawnLetterInBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	word := NewTargetWord("ELIXIR")

	for i := 0; i < 200; i++ {
		l := SpawnLetter(rng, word, nil)
		if l.Box.X1 < LetterPadding || l.Box.Y1 < LetterPadding {
			t.Fatalf("letter at %+v inside padding", l.Pos)
		}
		if l.Box.X2 > ArenaWidth-LetterPadding || l.Box.Y2 > ArenaHeight-LetterPadding {
			t.Fatalf("letter at %+v past padded edge", l.Pos)
		}
		if word.Count(l.Char) == 0 {
			t.Fatalf("letter %q not in target word", l.Char)
		}
	}
}

// Spawning against a fully occupied four-corner arena must never place the
// letter on a participant.
func TestSpawnLetterAvoidsParticipants(t *testing.T) {
	word := NewTargetWord("ELIXIR")
	occupied := make([]Hitbox, 0, 4)
	for n := 1; n <= 4; n++ {
		occupied = append(occupied, SquareHitbox(SpawnCorner(n), ParticipantSize))
	}

	for seed := int64(0); seed < 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		for i := 0; i < 100; i++ {
			l := SpawnLetter(rng, word, occupied)
			if l.Box.OverlapsAny(occupied) {
				t.Fatalf("seed %d: letter at %+v overlaps a participant", seed, l.Pos)
			}
		}
	}
}

// Even when random sampling cannot find a free spot, the spawned letter must
// not overlap anything occupied. Two blocks leave exactly one free cell at
// the padded origin; sampling essentially always exhausts its attempts, so
// this exercises the grid-scan path.
func TestSpawnLetterNearFullArena(t *testing.T) {
	word := NewTargetWord("ELIXIR")
	occupied := []Hitbox{
		{X1: 0, Y1: 72, X2: ArenaWidth, Y2: ArenaHeight},
		{X1: 72, Y1: 0, X2: ArenaWidth, Y2: 72},
	}

	for seed := int64(0); seed < 10; seed++ {
		rng := rand.New(rand.NewSource(seed))
		l := SpawnLetter(rng, word, occupied)
		if l.Box.OverlapsAny(occupied) {
			t.Fatalf("seed %d: letter at %+v overlaps the occupied set", seed, l.Pos)
		}
		if l.Pos != (Vec2{X: LetterPadding, Y: LetterPadding}) {
			t.Fatalf("seed %d: only one cell is free, got %+v", seed, l.Pos)
		}
	}
}

// Letters are drawn from the word's multiset, so "I" shows up roughly twice
// as often as single-occurrence letters.
func TestSpawnLetterDistribution(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	word := NewTargetWord("ELIXIR")

	counts := make(map[rune]int)
	const n = 6000
	for i := 0; i < n; i++ {
		counts[word.Random(rng)]++
	}

	// Expect ~1000 per slot: E,L,X,R ~1000 each, I ~2000
	for _, c := range []rune{'E', 'L', 'X', 'R'} {
		if counts[c] < 800 || counts[c] > 1200 {
			t.Errorf("letter %c: got %d draws, expected ~1000", c, counts[c])
		}
	}
	if counts['I'] < 1700 || counts['I'] > 2300 {
		t.Errorf("letter I: got %d draws, expected ~2000", counts['I'])
	}
}
