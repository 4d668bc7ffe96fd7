package main

// ResolveMove resolves a move from cur toward target against the hitboxes of
// every other entity, producing sliding behavior along obstacles.
//
// Resolution is per axis: X first, then Y against the already-resolved X.
// X is never revisited after Y resolves, so an entity approaching a corner is
// blocked on one axis while still sliding along the other. The X-before-Y
// order is part of the movement contract; swapping it changes how corners
// behave.
//
// others must not contain the mover's own hitbox.
func ResolveMove(cur, target Vec2, others []Hitbox, size int) (Vec2, Hitbox) {
	x := cur.X
	if !SquareHitbox(Vec2{X: target.X, Y: cur.Y}, size).OverlapsAny(others) {
		x = target.X
	}

	y := cur.Y
	if !SquareHitbox(Vec2{X: x, Y: target.Y}, size).OverlapsAny(others) {
		y = target.Y
	}

	pos := Vec2{X: x, Y: y}
	return pos, SquareHitbox(pos, size)
}
