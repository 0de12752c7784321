package service

import (
	"strings"
	"testing"

	"github.com/nbd-wtf/go-nostr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedEvent(t *testing.T, kind int, content string, tags nostr.Tags) *nostr.Event {
	t.Helper()
	sk := nostr.GeneratePrivateKey()
	pk, err := nostr.GetPublicKey(sk)
	require.NoError(t, err)

	ev := &nostr.Event{
		PubKey:    pk,
		CreatedAt: nostr.Now(),
		Kind:      kind,
		Tags:      tags,
		Content:   content,
	}
	require.NoError(t, ev.Sign(sk))
	return ev
}

func TestValidateEventAcceptsSignedEvent(t *testing.T) {
	ev := signedEvent(t, nostr.KindTextNote, "hello", nostr.Tags{})
	assert.NoError(t, ValidateEvent(ev))
}

func TestValidateEventTamperedContent(t *testing.T) {
	ev := signedEvent(t, nostr.KindTextNote, "hello", nostr.Tags{})
	ev.Content = "tampered"

	err := ValidateEvent(ev)
	assert.ErrorIs(t, err, ErrEventIdMismatch)
}

func TestValidateEventBadSignature(t *testing.T) {
	ev := signedEvent(t, nostr.KindTextNote, "hello", nostr.Tags{})
	// signature from a different key over the same content
	other := signedEvent(t, nostr.KindTextNote, "hello", nostr.Tags{})
	ev.Sig = other.Sig

	err := ValidateEvent(ev)
	assert.ErrorIs(t, err, ErrEventBadSignature)
}

func TestValidateEventMalformed(t *testing.T) {
	base := func() *nostr.Event {
		return signedEvent(t, nostr.KindTextNote, "hello", nostr.Tags{})
	}

	tests := []struct {
		name   string
		mutate func(ev *nostr.Event)
	}{
		{"empty id", func(ev *nostr.Event) { ev.ID = "" }},
		{"short id", func(ev *nostr.Event) { ev.ID = "abcd" }},
		{"non-hex id", func(ev *nostr.Event) { ev.ID = "zz" + ev.ID[2:] }},
		{"empty pubkey", func(ev *nostr.Event) { ev.PubKey = "" }},
		{"short sig", func(ev *nostr.Event) { ev.Sig = "beef" }},
		{"negative kind", func(ev *nostr.Event) { ev.Kind = -1 }},
		{"zero created_at", func(ev *nostr.Event) { ev.CreatedAt = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := base()
			tt.mutate(ev)
			assert.ErrorIs(t, ValidateEvent(ev), ErrEventMalformed)
		})
	}
}

func TestValidateEventIsPure(t *testing.T) {
	ev := signedEvent(t, nostr.KindTextNote, "hello", nostr.Tags{{"e", strings.Repeat("ab", 32)}})
	before := *ev
	require.NoError(t, ValidateEvent(ev))
	assert.Equal(t, before, *ev)
}
