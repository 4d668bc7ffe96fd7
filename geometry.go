package main

// Vec2 is an integer pixel coordinate in the arena.
type Vec2 struct {
	X int `json:"x" msgpack:"x"`
	Y int `json:"y" msgpack:"y"`
}

// Hitbox is an axis-aligned rectangle with X2 = X1 + width and Y2 = Y1 + height.
// It is always derived from a position and a size, never mutated on its own.
type Hitbox struct {
	X1, Y1 int
	X2, Y2 int
}

// NewHitbox builds the hitbox for an entity at pos with the given dimensions.
func NewHitbox(pos Vec2, width, height int) Hitbox {
	return Hitbox{
		X1: pos.X,
		Y1: pos.Y,
		X2: pos.X + width,
		Y2: pos.Y + height,
	}
}

// SquareHitbox builds the hitbox for a square entity of the given side length.
func SquareHitbox(pos Vec2, side int) Hitbox {
	return NewHitbox(pos, side, side)
}

// Overlaps reports whether a and b share interior area.
// Boxes that merely touch along an edge do not overlap.
func (a Hitbox) Overlaps(b Hitbox) bool {
	return !(a.X2 <= b.X1 || a.X1 >= b.X2 || a.Y2 <= b.Y1 || a.Y1 >= b.Y2)
}

// OverlapsAny reports whether h overlaps any hitbox in boxes.
func (h Hitbox) OverlapsAny(boxes []Hitbox) bool {
	for _, b := range boxes {
		if h.Overlaps(b) {
			return true
		}
	}
	return false
}
