package utils

import "testing"

func TestChunkLines(t *testing.T) {
	lines := []string{"a", "b", "c", "d", "e"}
	chunks := ChunkLines(lines, 2)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if chunks[0] != "a\nb" || chunks[2] != "e" {
		t.Fatalf("unexpected chunks: %v", chunks)
	}
}

func TestChunkLinesEmpty(t *testing.T) {
	if chunks := ChunkLines(nil, 20); len(chunks) != 0 {
		t.Fatalf("expected no chunks, got %v", chunks)
	}
}
