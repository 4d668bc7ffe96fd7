package main

import "math/rand"

const (
	ArenaWidth  = 1024
	ArenaHeight = 576

	ParticipantSize = 48
	LetterSize      = 48
	LetterPadding   = 24 // keeps letters clear of the arena edges

	maxSpawnAttempts = 64
)

// Letter is the single collectible token on the arena.
type Letter struct {
	Char rune
	Pos  Vec2
	Box  Hitbox
}

// SpawnCorner returns the spawn position for the given join-order number.
// Numbers 1-4 map to the four arena corners, offset inward so the box stays
// in bounds.
func SpawnCorner(number int) Vec2 {
	switch number {
	case 1:
		return Vec2{X: 0, Y: 0}
	case 2:
		return Vec2{X: ArenaWidth - ParticipantSize, Y: 0}
	case 3:
		return Vec2{X: 0, Y: ArenaHeight - ParticipantSize}
	default:
		return Vec2{X: ArenaWidth - ParticipantSize, Y: ArenaHeight - ParticipantSize}
	}
}

// SpawnLetter picks a random letter from the word's multiset and places it
// inside the padded arena, rejection-sampling positions until the letter
// overlaps no occupied hitbox. With four 48px players in a 1024x576 arena a
// retry is already rare; should sampling ever exhaust its attempts, a grid
// scan finds a free cell, so the result never overlaps an occupied hitbox.
func SpawnLetter(rng *rand.Rand, word TargetWord, occupied []Hitbox) *Letter {
	char := word.Random(rng)

	for i := 0; i < maxSpawnAttempts; i++ {
		pos := Vec2{
			X: letterCoord(rng, ArenaWidth),
			Y: letterCoord(rng, ArenaHeight),
		}
		box := SquareHitbox(pos, LetterSize)
		if !box.OverlapsAny(occupied) {
			return &Letter{Char: char, Pos: pos, Box: box}
		}
	}

	for y := LetterPadding; y+LetterSize+LetterPadding <= ArenaHeight; y += LetterSize {
		for x := LetterPadding; x+LetterSize+LetterPadding <= ArenaWidth; x += LetterSize {
			pos := Vec2{X: x, Y: y}
			box := SquareHitbox(pos, LetterSize)
			if !box.OverlapsAny(occupied) {
				return &Letter{Char: char, Pos: pos, Box: box}
			}
		}
	}

	// Unreachable: the occupied set is at most four participants.
	pos := Vec2{X: LetterPadding, Y: LetterPadding}
	return &Letter{Char: char, Pos: pos, Box: SquareHitbox(pos, LetterSize)}
}

// letterCoord draws a coordinate within [padding, dim-size-padding].
func letterCoord(rng *rand.Rand, dim int) int {
	lo := LetterPadding
	hi := dim - LetterSize - LetterPadding
	return lo + rng.Intn(hi-lo+1)
}
