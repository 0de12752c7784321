package models

// EventRef : reference index entry. Maps a referenced event id (the first
// value of an "e" tag) to a stored event in a folder. Rows exist only
// alongside their referencing event; they are written in the same
// transaction.
type EventRef struct {
	ID      int64  `bun:",pk,autoincrement"`
	RefID   string `bun:",notnull"`
	EventID string `bun:",notnull"`
	Folder  string `bun:",notnull"`
}
