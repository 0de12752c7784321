package common

import "github.com/nbd-wtf/go-nostr"

// Folder names partition the event store by role. Every tracked kind maps
// to exactly one folder.
const (
	FolderUsers     = "users"
	FolderNotes     = "notes"
	FolderReactions = "reactions"
	FolderZaps      = "zaps"
	FolderLong      = "long"
)

const (
	KindLongFormArticle = 30023
	KindLongFormDraft   = 30024
)

// FolderForKind returns the storage folder for a kind. The second return
// value is false for kinds the archive does not classify.
func FolderForKind(kind int) (string, bool) {
	switch kind {
	case nostr.KindProfileMetadata:
		return FolderUsers, true
	case nostr.KindTextNote:
		return FolderNotes, true
	case nostr.KindReaction:
		return FolderReactions, true
	case nostr.KindZapRequest, nostr.KindZap:
		return FolderZaps, true
	case KindLongFormArticle, KindLongFormDraft:
		return FolderLong, true
	default:
		return "", false
	}
}

// ReferenceFolders are the folders exposed through reference lookups.
var ReferenceFolders = []string{FolderNotes, FolderReactions, FolderZaps}
