package proto

import (
	"encoding/json"
	"errors"
)

var (
	ErrMalformed   = errors.New("malformed_message")
	ErrUnknownType = errors.New("unknown_message_type")
	ErrBadField    = errors.New("invalid_field_value")
)

// DecodeClient parses one wire message into its typed variant, validating
// shape before any component acts on it. Unknown or malformed payloads are
// an error for the caller to answer; they never reach a handler.
func DecodeClient(data []byte) (ClientMessage, error) {
	var base struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &base); err != nil {
		return nil, ErrMalformed
	}
	switch base.Type {
	case TypeHello:
		var m Hello
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, ErrMalformed
		}
		return m, nil
	case TypeJoin:
		var m Join
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, ErrMalformed
		}
		return m, nil
	case TypeInput:
		var m Input
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, ErrMalformed
		}
		return m, nil
	case TypeRestart:
		var m Restart
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, ErrMalformed
		}
		return m, nil
	case TypePauseRequest:
		var m PauseRequest
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, ErrMalformed
		}
		if m.Action != ActionPause && m.Action != ActionResume {
			return nil, ErrBadField
		}
		return m, nil
	case TypePauseVote:
		var m PauseVote
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, ErrMalformed
		}
		if m.RequestID == "" {
			return nil, ErrBadField
		}
		if m.Vote != VoteAccept && m.Vote != VoteReject {
			return nil, ErrBadField
		}
		return m, nil
	default:
		return nil, ErrUnknownType
	}
}
