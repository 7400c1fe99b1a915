package chunking

import (
	"strings"
	"testing"
)

func TestSplitProducesOverlappingWindows(t *testing.T) {
	s := NewSplitter(10, 4)
	text := "abcdefghijklmnopqrstuvwxyz"

	chunks := s.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	if chunks[0] != "abcdefghij" {
		t.Fatalf("unexpected first chunk %q", chunks[0])
	}
	// step is size-overlap, so each chunk restarts 4 runes back
	if !strings.HasPrefix(chunks[1], "ghij") {
		t.Fatalf("expected second chunk to overlap, got %q", chunks[1])
	}
}

func TestSplitEmptyTextReturnsNothing(t *testing.T) {
	s := NewSplitter(900, 150)
	if chunks := s.Split(""); chunks != nil {
		t.Fatalf("expected nil for empty input, got %v", chunks)
	}
}

func TestSplitKeepsMultibyteRunesIntact(t *testing.T) {
	s := NewSplitter(5, 2)
	text := "привет мир как дела"

	for _, chunk := range s.Split(text) {
		if strings.ContainsRune(chunk, '�') {
			t.Fatalf("chunk %q contains replacement rune", chunk)
		}
	}
}

func TestNewSplitterClampsBadConfig(t *testing.T) {
	s := NewSplitter(0, -1)
	if s.ChunkSize != 900 {
		t.Fatalf("expected fallback chunk size 900, got %d", s.ChunkSize)
	}
	if s.Overlap != 0 {
		t.Fatalf("expected overlap clamped to 0, got %d", s.Overlap)
	}

	s = NewSplitter(100, 100)
	if s.Overlap != 25 {
		t.Fatalf("expected overlap reduced to size/4, got %d", s.Overlap)
	}
}
