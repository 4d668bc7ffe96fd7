package main

import "encoding/json"

// Client -> Server message types
const (
	MsgCreate   = "create" // create a match
	MsgList     = "list"   // list open matches
	MsgCheck    = "check"  // check if a match exists
	MsgJoin     = "join"
	MsgLeave    = "leave"
	MsgInput    = "input" // velocity update
	MsgStart    = "start" // begin the countdown
	MsgRegister = "register"
	MsgLogin    = "login"
	MsgAuth     = "auth" // resume with a token
)

// Server -> Client message types. Match snapshots travel as msgpack binary
// frames and carry no envelope; everything else is a JSON Envelope.
const (
	MsgCreated   = "created"
	MsgMatches   = "matches"
	MsgChecked   = "checked"
	MsgJoined    = "joined"
	MsgCountdown = "countdown"
	MsgStarted   = "started"
	MsgShutdown  = "shutdown"
	MsgError     = "error"
	MsgAuthOK    = "auth_ok"
)

// Envelope wraps all outgoing JSON messages with a type field
type Envelope struct {
	T    string      `json:"t"`
	Data interface{} `json:"d,omitempty"`
}

// InEnvelope is the incoming counterpart; json.RawMessage avoids a double unmarshal
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

// CreateMsg asks for a new match
type CreateMsg struct {
	MatchName string `json:"mname"`
}

// JoinMsg asks to join a match under a display name
type JoinMsg struct {
	Name    string `json:"name"`
	MatchID string `json:"mid"`
}

// VelocityMsg is the movement input, each axis nominally in [-1, 1]
type VelocityMsg struct {
	VX float64 `json:"vx"`
	VY float64 `json:"vy"`
}

// CheckMsg asks whether a match exists
type CheckMsg struct {
	MatchID string `json:"mid"`
}

// CheckedMsg is the response to a check
type CheckedMsg struct {
	MatchID string `json:"mid"`
	Exists  bool   `json:"exists"`
	Name    string `json:"name,omitempty"`
	Players int    `json:"players,omitempty"`
}

// JoinedMsg confirms a join and tells the client who it is
type JoinedMsg struct {
	MatchID string `json:"mid"`
	Name    string `json:"name"`
	Number  int    `json:"num"`
	Color   string `json:"color"`
	Word    string `json:"word"`
}

// CountdownMsg carries "3", "2", "1" or "GO!"
type CountdownMsg struct {
	Value string `json:"v"`
}

// ShutdownMsg tells subscribers why the match went away
type ShutdownMsg struct {
	Reason string `json:"reason"` // "normal" or "timeout"
}

// ErrorMsg sends an error to the client
type ErrorMsg struct {
	Msg string `json:"msg"`
}

// MatchInfo is one entry of the match list
type MatchInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Players int    `json:"players"`
	Running bool   `json:"running"`
}

// ParticipantState is the broadcast view of one participant
type ParticipantState struct {
	Name   string   `json:"n" msgpack:"n"`
	Number int      `json:"num" msgpack:"num"`
	Color  string   `json:"c" msgpack:"c"`
	X      int      `json:"x" msgpack:"x"`
	Y      int      `json:"y" msgpack:"y"`
	Slots  []string `json:"inv" msgpack:"inv"`
}

// LetterState is the broadcast view of the current letter token
type LetterState struct {
	Char string `json:"ch" msgpack:"ch"`
	X    int    `json:"x" msgpack:"x"`
	Y    int    `json:"y" msgpack:"y"`
}

// MatchSnapshot is the per-tick state broadcast, msgpack-encoded as a binary
// frame. Velocities and the tick counter are deliberately absent.
type MatchSnapshot struct {
	Players []ParticipantState `json:"p" msgpack:"p"`
	Letter  *LetterState       `json:"l,omitempty" msgpack:"l,omitempty"`
	Winner  string             `json:"w,omitempty" msgpack:"w,omitempty"`
	Running bool               `json:"run" msgpack:"run"`
}

// RegisterMsg creates an account
type RegisterMsg struct {
	Username string `json:"u"`
	Password string `json:"p"`
}

// LoginMsg authenticates an account
type LoginMsg struct {
	Username string `json:"u"`
	Password string `json:"p"`
}

// AuthMsg resumes a session with a token
type AuthMsg struct {
	Token string `json:"token"`
}

// AuthOKMsg confirms register/login/resume
type AuthOKMsg struct {
	Token    string `json:"token"`
	Username string `json:"u"`
	PlayerID int64  `json:"pid"`
}
