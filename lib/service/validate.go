package service

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/nbd-wtf/go-nostr"
)

// Validation failures. Every rejected event maps to exactly one of these;
// they are counted and dropped, never propagated as faults.
var (
	ErrEventMalformed    = errors.New("event malformed")
	ErrEventIdMismatch   = errors.New("event id does not match content hash")
	ErrEventBadSignature = errors.New("event signature invalid")
)

// ValidateEvent checks an incoming event before storage: structural
// well-formedness first, then the content-derived id, then the schnorr
// signature over the id. Pure, no side effects.
func ValidateEvent(ev *nostr.Event) error {
	if ev == nil {
		return fmt.Errorf("%w: nil event", ErrEventMalformed)
	}
	if !isHex(ev.ID, 64) {
		return fmt.Errorf("%w: bad id %q", ErrEventMalformed, ev.ID)
	}
	if !isHex(ev.PubKey, 64) {
		return fmt.Errorf("%w: bad pubkey %q", ErrEventMalformed, ev.PubKey)
	}
	if !isHex(ev.Sig, 128) {
		return fmt.Errorf("%w: bad sig", ErrEventMalformed)
	}
	if ev.Kind < 0 {
		return fmt.Errorf("%w: negative kind %d", ErrEventMalformed, ev.Kind)
	}
	if ev.CreatedAt <= 0 {
		return fmt.Errorf("%w: bad created_at %d", ErrEventMalformed, ev.CreatedAt)
	}

	if ev.GetID() != ev.ID {
		return ErrEventIdMismatch
	}

	ok, err := ev.CheckSignature()
	if err != nil || !ok {
		return ErrEventBadSignature
	}
	return nil
}

func isHex(s string, length int) bool {
	if len(s) != length {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
