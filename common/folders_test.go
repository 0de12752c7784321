package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFolderForKind(t *testing.T) {
	tests := []struct {
		kind   string
		value  int
		folder string
	}{
		{"profile metadata", 0, FolderUsers},
		{"text note", 1, FolderNotes},
		{"reaction", 7, FolderReactions},
		{"zap request", 9734, FolderZaps},
		{"zap receipt", 9735, FolderZaps},
		{"long-form article", 30023, FolderLong},
		{"long-form draft", 30024, FolderLong},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			folder, ok := FolderForKind(tt.value)
			assert.True(t, ok)
			assert.Equal(t, tt.folder, folder)
		})
	}
}

func TestFolderForKindUnclassified(t *testing.T) {
	for _, kind := range []int{2, 3, 4, 5, 6, 42, 1984, 10002, 30000} {
		folder, ok := FolderForKind(kind)
		assert.False(t, ok, "kind %d should not be classified", kind)
		assert.Empty(t, folder)
	}
}
