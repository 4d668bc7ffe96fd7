package main

import (
	"math/rand"
	"strings"
)

// TargetWord is the word a match is played for. Slot i of every inventory is
// assigned the i-th letter of the word, so a letter that occurs twice owns
// two slots, filled in index order.
type TargetWord struct {
	Text    string
	letters []rune
}

// NewTargetWord normalizes text to upper case and precomputes the slot letters.
func NewTargetWord(text string) TargetWord {
	up := strings.ToUpper(strings.TrimSpace(text))
	return TargetWord{Text: up, letters: []rune(up)}
}

// Len returns the number of inventory slots the word defines.
func (w TargetWord) Len() int { return len(w.letters) }

// Letter returns the letter assigned to slot i.
func (w TargetWord) Letter(i int) rune { return w.letters[i] }

// Count returns how many slots are assigned to c, i.e. how many copies of c
// an inventory can hold.
func (w TargetWord) Count(c rune) int {
	n := 0
	for _, l := range w.letters {
		if l == c {
			n++
		}
	}
	return n
}

// Random draws a letter uniformly from the word's letter multiset, so a
// letter occurring twice is twice as likely.
func (w TargetWord) Random(rng *rand.Rand) rune {
	return w.letters[rng.Intn(len(w.letters))]
}

// Inventory tracks which of a participant's word slots are filled.
type Inventory struct {
	word   TargetWord
	filled []bool
}

// NewInventory returns an empty inventory for the given word.
func NewInventory(word TargetWord) *Inventory {
	return &Inventory{word: word, filled: make([]bool, word.Len())}
}

// Count returns how many copies of c the inventory currently holds.
func (inv *Inventory) Count(c rune) int {
	n := 0
	for i, f := range inv.filled {
		if f && inv.word.Letter(i) == c {
			n++
		}
	}
	return n
}

// HasCapacity reports whether another copy of c still fits.
func (inv *Inventory) HasCapacity(c rune) bool {
	return inv.Count(c) < inv.word.Count(c)
}

// Add places c into its first empty assigned slot. Returns false when every
// slot for c is already filled.
func (inv *Inventory) Add(c rune) bool {
	for i := range inv.filled {
		if !inv.filled[i] && inv.word.Letter(i) == c {
			inv.filled[i] = true
			return true
		}
	}
	return false
}

// RemoveLast clears the highest-indexed filled slot holding c. Returns false
// when the inventory holds no copy of c.
func (inv *Inventory) RemoveLast(c rune) bool {
	for i := len(inv.filled) - 1; i >= 0; i-- {
		if inv.filled[i] && inv.word.Letter(i) == c {
			inv.filled[i] = false
			return true
		}
	}
	return false
}

// Complete reports whether every slot is filled, i.e. the inventory spells
// the full target word.
func (inv *Inventory) Complete() bool {
	for _, f := range inv.filled {
		if !f {
			return false
		}
	}
	return true
}

// Slots returns the slot contents for broadcasting: the slot's letter when
// filled, "" when empty.
func (inv *Inventory) Slots() []string {
	out := make([]string, len(inv.filled))
	for i, f := range inv.filled {
		if f {
			out[i] = string(inv.word.Letter(i))
		}
	}
	return out
}
