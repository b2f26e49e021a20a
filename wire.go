package main

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// FrameType identifies a relay frame
type FrameType uint8

const (
	FrameSpawn    FrameType = 0x01 // server -> client: initial craft state
	FrameSnapshot FrameType = 0x02 // client -> server: local craft state
	FrameRelay    FrameType = 0x03 // server -> client: opponent's latest state
	FrameNoPeer   FrameType = 0x04 // server -> client: opponent never connected
	FramePeerLost FrameType = 0x05 // server -> client: opponent gone, last state attached
	FrameReject   FrameType = 0x06 // server -> client: both slots taken
)

func (t FrameType) String() string {
	switch t {
	case FrameSpawn:
		return "spawn"
	case FrameSnapshot:
		return "snapshot"
	case FrameRelay:
		return "relay"
	case FrameNoPeer:
		return "no_peer"
	case FramePeerLost:
		return "peer_lost"
	case FrameReject:
		return "reject"
	}
	return fmt.Sprintf("frame(0x%02x)", uint8(t))
}

// Frame header: [Type:1][Len:4]
const (
	frameHeaderSize = 5
	MaxFramePayload = 64 << 10
)

var ErrFrameTooLarge = errors.New("relay frame exceeds maximum size")

// Frame is one length-prefixed relay message
type Frame struct {
	Type    FrameType
	Payload []byte
}

// WriteFrame writes one frame with a single Write call
func WriteFrame(w io.Writer, f Frame) error {
	if len(f.Payload) > MaxFramePayload {
		return ErrFrameTooLarge
	}
	buf := make([]byte, frameHeaderSize+len(f.Payload))
	buf[0] = byte(f.Type)
	binary.BigEndian.PutUint32(buf[1:5], uint32(len(f.Payload)))
	copy(buf[frameHeaderSize:], f.Payload)
	_, err := w.Write(buf)
	return err
}

// ReadFrame reads one frame. A clean EOF before the header is returned
// as io.EOF.
func ReadFrame(r io.Reader) (Frame, error) {
	var header [frameHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return Frame{}, err
	}
	n := binary.BigEndian.Uint32(header[1:5])
	if n > MaxFramePayload {
		return Frame{}, ErrFrameTooLarge
	}
	f := Frame{Type: FrameType(header[0])}
	if n > 0 {
		f.Payload = make([]byte, n)
		if _, err := io.ReadFull(r, f.Payload); err != nil {
			return Frame{}, err
		}
	}
	return f, nil
}

// WriteSnapshot encodes s into a frame of type t
func WriteSnapshot(w io.Writer, t FrameType, s Snapshot) error {
	payload, err := EncodeSnapshot(s)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return WriteFrame(w, Frame{Type: t, Payload: payload})
}

// Snapshot decodes the frame payload
func (f Frame) Snapshot() (Snapshot, error) {
	if len(f.Payload) == 0 {
		return Snapshot{}, fmt.Errorf("%s frame has no snapshot", f.Type)
	}
	return DecodeSnapshot(f.Payload)
}
