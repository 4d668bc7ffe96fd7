package main

// Colors assigned by join-order number (1-4). A replacement taking over a
// freed number gets the same color.
var participantColors = [MaxParticipants]string{
	"#ef4444", // red
	"#3b82f6", // blue
	"#22c55e", // green
	"#eab308", // yellow
}

// Participant is one player inside a match.
type Participant struct {
	Name   string
	Number int // join-order number 1-4, fixes corner and color
	Color  string
	Pos    Vec2
	Box    Hitbox
	VX, VY float64 // nominally in [-1, 1] per axis
	Inv    *Inventory
}

// NewParticipant spawns a participant at the corner for its join-order number.
func NewParticipant(name string, number int, word TargetWord) *Participant {
	pos := SpawnCorner(number)
	return &Participant{
		Name:   name,
		Number: number,
		Color:  participantColors[number-1],
		Pos:    pos,
		Box:    SquareHitbox(pos, ParticipantSize),
		Inv:    NewInventory(word),
	}
}

// ToState converts to the broadcast representation. Velocity is a server
// internal and stays out of snapshots.
func (p *Participant) ToState() ParticipantState {
	return ParticipantState{
		Name:   p.Name,
		Number: p.Number,
		Color:  p.Color,
		X:      p.Pos.X,
		Y:      p.Pos.Y,
		Slots:  p.Inv.Slots(),
	}
}
