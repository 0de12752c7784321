package models

import (
	"encoding/json"

	"github.com/nbd-wtf/go-nostr"
)

// Event : stored Nostr event. Immutable once inserted; the tags are kept
// as their JSON serialization.
type Event struct {
	ID        int64  `bun:",pk,autoincrement" json:"-"`
	EventID   string `bun:",notnull,unique" json:"id"`
	Pubkey    string `bun:",notnull" json:"pubkey"`
	CreatedAt int64  `bun:",notnull" json:"created_at"`
	Kind      int64  `bun:",notnull" json:"kind"`
	Content   string `bun:",notnull" json:"content"`
	Sig       string `bun:",notnull" json:"sig"`
	Tags      string `bun:",notnull" json:"tags"`
	Folder    string `bun:",notnull" json:"folder"`
}

// EventFromNostr converts a validated wire event into its storage row.
func EventFromNostr(ev *nostr.Event, folder string) (*Event, error) {
	tags, err := json.Marshal(ev.Tags)
	if err != nil {
		return nil, err
	}
	return &Event{
		EventID:   ev.ID,
		Pubkey:    ev.PubKey,
		CreatedAt: int64(ev.CreatedAt),
		Kind:      int64(ev.Kind),
		Content:   ev.Content,
		Sig:       ev.Sig,
		Tags:      string(tags),
		Folder:    folder,
	}, nil
}

// ToNostr rebuilds the canonical wire shape from the storage row.
func (e *Event) ToNostr() (*nostr.Event, error) {
	var tags nostr.Tags
	if err := json.Unmarshal([]byte(e.Tags), &tags); err != nil {
		return nil, err
	}
	return &nostr.Event{
		ID:        e.EventID,
		PubKey:    e.Pubkey,
		CreatedAt: nostr.Timestamp(e.CreatedAt),
		Kind:      int(e.Kind),
		Tags:      tags,
		Content:   e.Content,
		Sig:       e.Sig,
	}, nil
}
