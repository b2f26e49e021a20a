package main

import (
	"github.com/vmihailenco/msgpack/v5"
)

// Snapshot is the relayed state of one craft plus the shots and score
// events its owner produced. It is the payload of every relay frame.
type Snapshot struct {
	Player      int               `msgpack:"p" json:"player"`
	Seq         uint64            `msgpack:"q" json:"seq"`
	X           float64           `msgpack:"x" json:"x"`
	Y           float64           `msgpack:"y" json:"y"`
	VX          float64           `msgpack:"vx" json:"vx"`
	VY          float64           `msgpack:"vy" json:"vy"`
	Rotation    int               `msgpack:"r" json:"rot"`
	Fuel        int               `msgpack:"f" json:"fuel"`
	FuelMax     int               `msgpack:"fm" json:"fuel_max"`
	Landed      bool              `msgpack:"l" json:"landed"`
	Thrusting   bool              `msgpack:"t" json:"thrusting"`
	Exploded    bool              `msgpack:"e" json:"exploded"`
	LastShot    float64           `msgpack:"ls" json:"last_shot"`
	Projectiles []ProjectileState `msgpack:"pr" json:"projectiles,omitempty"`
	Events      []ScoreEvent      `msgpack:"ev" json:"events,omitempty"`
}

// ProjectileState is one relayed shot
type ProjectileState struct {
	ID      uint32  `msgpack:"id" json:"id"`
	X       float64 `msgpack:"x" json:"x"`
	Y       float64 `msgpack:"y" json:"y"`
	VX      float64 `msgpack:"vx" json:"vx"`
	VY      float64 `msgpack:"vy" json:"vy"`
	Heading int     `msgpack:"h" json:"heading"`
	Sender  int     `msgpack:"s" json:"sender"`
}

// EncodeSnapshot serializes a snapshot for the wire
func EncodeSnapshot(s Snapshot) ([]byte, error) {
	return msgpack.Marshal(&s)
}

// DecodeSnapshot parses a wire snapshot
func DecodeSnapshot(b []byte) (Snapshot, error) {
	var s Snapshot
	err := msgpack.Unmarshal(b, &s)
	return s, err
}

// SpectatorPeer is the per-slot view pushed to spectators
type SpectatorPeer struct {
	Connected bool      `msgpack:"c" json:"connected"`
	Craft     *Snapshot `msgpack:"s,omitempty" json:"craft,omitempty"`
}

// SpectatorFrame is broadcast to websocket spectators
type SpectatorFrame struct {
	Tick    uint64           `msgpack:"tick" json:"tick"`
	MatchID string           `msgpack:"m" json:"match"`
	Peers   [2]SpectatorPeer `msgpack:"p" json:"peers"`
	Scores  [2]int           `msgpack:"sc" json:"scores"`
}

// StatusMsg is served on /status
type StatusMsg struct {
	MatchID    string `json:"match"`
	Peers      int    `json:"peers"`
	Spectators int    `json:"spectators"`
	Relay      string `json:"relay"`
}
