package sim

import "time"

// CommandType enumerates the supported simulation commands.
type CommandType string

const (
	CommandMove      CommandType = "Move"
	CommandJump      CommandType = "Jump"
	CommandHeartbeat CommandType = "Heartbeat"
)

// MoveCommand carries the captured horizontal axis for one input frame.
type MoveCommand struct {
	Horizontal float32 `json:"horizontal"`
	InputX     float32 `json:"inputX"`
	InputY     float32 `json:"inputY"`
	DeltaTime  float32 `json:"deltaTime"`
}

// JumpCommand carries a requested jump impulse. ClientGrounded is advisory
// only; validation always consults the authoritative ground check.
type JumpCommand struct {
	InputX         float32 `json:"inputX"`
	InputY         float32 `json:"inputY"`
	Strength       float32 `json:"strength"`
	ClientGrounded bool    `json:"clientGrounded"`
}

// HeartbeatCommand updates connectivity metadata for a player.
type HeartbeatCommand struct {
	ReceivedAt time.Time     `json:"receivedAt"`
	ClientSent int64         `json:"clientSent"`
	RTT        time.Duration `json:"rtt"`
}

// Command represents an intent captured for processing on the next tick.
// Exactly one payload pointer matching Type is set; Sequence is the
// session-monotonic command id assigned at enqueue.
type Command struct {
	Sequence   uint64            `json:"sequence"`
	OriginTick uint64            `json:"originTick"`
	PlayerID   uint64            `json:"playerId"`
	Type       CommandType       `json:"type"`
	IssuedAt   time.Time         `json:"issuedAt"`
	Move       *MoveCommand      `json:"move,omitempty"`
	Jump       *JumpCommand      `json:"jump,omitempty"`
	Heartbeat  *HeartbeatCommand `json:"heartbeat,omitempty"`
}
