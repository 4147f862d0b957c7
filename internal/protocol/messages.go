// Package protocol implements the newline-delimited JSON wire format
// spoken between the launcher and a running child script, and the
// process lifecycle around it: a bufio.Scanner over one JSON object per
// line, with malformed lines skipped rather than failing the read.
package protocol

import (
	"encoding/json"
	"fmt"
)

// Message type discriminators.
const (
	TypeSetPrompt   = "SET_PROMPT"
	TypeSetActions  = "SET_ACTIONS"
	TypeHUD         = "HUD"
	TypeLog         = "LOG"
	TypeStreamChunk = "STREAM_CHUNK"
	TypeDone        = "DONE"

	TypeResponse     = "RESPONSE"
	TypeCancel       = "CANCEL"
	TypeSigtermGrace = "SIGTERM_GRACE"
)

// envelope is the wire shape common to every message in both directions:
// a type discriminator, a monotonically increasing seq, and a payload.
type envelope struct {
	Type    string          `json:"type"`
	Seq     uint64          `json:"seq"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// SetPromptPayload carries the new view spec a child wants rendered.
type SetPromptPayload struct {
	View string          `json:"view"`
	Spec json.RawMessage `json:"spec"`
}

// ActionSpec is the wire shape of one entry in a SET_ACTIONS payload.
type ActionSpec struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Shortcut    string `json:"shortcut,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Section     string `json:"section,omitempty"`
	Close       *bool  `json:"close,omitempty"`
}

// HUDPayload is a fire-and-forget toast notification.
type HUDPayload struct {
	Level string `json:"level"` // "info" | "warn" | "error"
	Text  string `json:"text"`
	TTLMs int    `json:"ttl_ms,omitempty"`
}

// LogPayload is a structured log line forwarded from the child.
type LogPayload struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

// StreamChunkPayload carries incremental output for Chat/Term prompts.
type StreamChunkPayload struct {
	Channel string `json:"channel"` // "assistant" | "stdout" | "stderr"
	Data    string `json:"data"`    // base64-or-utf8
}

// DonePayload is the child's final record before exit.
type DonePayload struct {
	ExitCode int    `json:"exit_code"`
	Summary  string `json:"summary,omitempty"`
}

// ChildMessage is the decoded, typed union of every message a child can
// send. Exactly one of the pointer fields is non-nil, selected by Type.
type ChildMessage struct {
	Type string
	Seq  uint64

	SetPrompt   *SetPromptPayload
	SetActions  []ActionSpec
	HUD         *HUDPayload
	Log         *LogPayload
	StreamChunk *StreamChunkPayload
	Done        *DonePayload
}

// DecodeChildLine parses one line of child stdout. A malformed line
// returns an error; the caller (Session's reader loop) is expected to
// log it and continue reading rather than tearing down the session.
func DecodeChildLine(line []byte) (ChildMessage, error) {
	var env envelope
	if err := json.Unmarshal(line, &env); err != nil {
		return ChildMessage{}, fmt.Errorf("protocol: malformed line: %w", err)
	}

	msg := ChildMessage{Type: env.Type, Seq: env.Seq}
	switch env.Type {
	case TypeSetPrompt:
		var p SetPromptPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return ChildMessage{}, fmt.Errorf("protocol: SET_PROMPT payload: %w", err)
		}
		msg.SetPrompt = &p
	case TypeSetActions:
		var acts []ActionSpec
		if err := json.Unmarshal(env.Payload, &acts); err != nil {
			return ChildMessage{}, fmt.Errorf("protocol: SET_ACTIONS payload: %w", err)
		}
		msg.SetActions = acts
	case TypeHUD:
		var p HUDPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return ChildMessage{}, fmt.Errorf("protocol: HUD payload: %w", err)
		}
		msg.HUD = &p
	case TypeLog:
		var p LogPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return ChildMessage{}, fmt.Errorf("protocol: LOG payload: %w", err)
		}
		msg.Log = &p
	case TypeStreamChunk:
		var p StreamChunkPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return ChildMessage{}, fmt.Errorf("protocol: STREAM_CHUNK payload: %w", err)
		}
		msg.StreamChunk = &p
	case TypeDone:
		var p DonePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return ChildMessage{}, fmt.Errorf("protocol: DONE payload: %w", err)
		}
		msg.Done = &p
	default:
		return ChildMessage{}, fmt.Errorf("protocol: unknown message type %q", env.Type)
	}
	return msg, nil
}

// EncodeResponse builds the wire line for a RESPONSE message with its own
// sequence number seq, answering the prompt whose sequence number is
// seqRef.
func EncodeResponse(seq uint64, seqRef uint64, value any) ([]byte, error) {
	payload, err := json.Marshal(struct {
		SeqRef uint64 `json:"seq_ref"`
		Value  any    `json:"value"`
	}{SeqRef: seqRef, Value: value})
	if err != nil {
		return nil, fmt.Errorf("protocol: encode RESPONSE payload: %w", err)
	}
	return encodeEnvelope(TypeResponse, seq, payload)
}

// EncodeCancel builds the wire line for a CANCEL message.
func EncodeCancel(seq uint64) ([]byte, error) {
	return encodeEnvelope(TypeCancel, seq, json.RawMessage("{}"))
}

// EncodeSigtermGrace builds the wire line for the internal
// SIGTERM_GRACE notice (not user-visible).
func EncodeSigtermGrace(seq uint64, ms int) ([]byte, error) {
	payload, err := json.Marshal(struct {
		Ms int `json:"ms"`
	}{Ms: ms})
	if err != nil {
		return nil, fmt.Errorf("protocol: encode SIGTERM_GRACE payload: %w", err)
	}
	return encodeEnvelope(TypeSigtermGrace, seq, payload)
}

func encodeEnvelope(typ string, seq uint64, payload json.RawMessage) ([]byte, error) {
	line, err := json.Marshal(envelope{Type: typ, Seq: seq, Payload: payload})
	if err != nil {
		return nil, err
	}
	return append(line, '\n'), nil
}
