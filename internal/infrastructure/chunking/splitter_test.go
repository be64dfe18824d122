package chunking

import (
	"strings"
	"testing"
)

func TestFixedSplitterWindows(t *testing.T) {
	s := NewFixedSplitter(4, 2)
	chunks := s.Split("abcdefgh")

	want := []string{"abcd", "cdef", "efgh"}
	if len(chunks) != len(want) {
		t.Fatalf("got %d chunks %v, want %v", len(chunks), chunks, want)
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Fatalf("chunk %d = %q, want %q", i, chunks[i], want[i])
		}
	}
}

func TestFixedSplitterCoversEveryByte(t *testing.T) {
	text := strings.Repeat("lorem ipsum dolor sit amet ", 40)
	s := NewFixedSplitter(100, 20)

	chunks := s.Split(text)
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}

	// Each window starts step bytes after the previous one, so the
	// concatenation of steps plus the last window length covers the text.
	step := s.Size - s.Overlap
	covered := step*(len(chunks)-1) + len(chunks[len(chunks)-1])
	if covered < len(text) {
		t.Fatalf("windows cover %d of %d bytes", covered, len(text))
	}
	for i, chunk := range chunks {
		if i < len(chunks)-1 && len(chunk) != s.Size {
			t.Fatalf("interior chunk %d has length %d, want %d", i, len(chunk), s.Size)
		}
	}
}

func TestFixedSplitterKeepsShortTail(t *testing.T) {
	s := NewFixedSplitter(4, 0)
	chunks := s.Split("abcdef")
	if len(chunks) != 2 || chunks[1] != "ef" {
		t.Fatalf("got %v, want tail \"ef\"", chunks)
	}
}

func TestFixedSplitterReconstructsThroughWhitespaceWindows(t *testing.T) {
	s := NewFixedSplitter(4, 0)
	text := "abcd    efgh"
	chunks := s.Split(text)

	want := []string{"abcd", "    ", "efgh"}
	if len(chunks) != len(want) {
		t.Fatalf("got %v, want %v", chunks, want)
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Fatalf("chunk %d = %q, want %q", i, chunks[i], want[i])
		}
	}
	if strings.Join(chunks, "") != text {
		t.Fatalf("zero-overlap windows must reconstruct the input, got %q", strings.Join(chunks, ""))
	}
}

func TestFixedSplitterEmptyInput(t *testing.T) {
	if got := NewFixedSplitter(10, 2).Split(""); got != nil {
		t.Fatalf("expected nil for empty input, got %v", got)
	}
}

func TestNewFixedSplitterClampsOverlap(t *testing.T) {
	s := NewFixedSplitter(100, 100)
	if s.Overlap != 25 {
		t.Fatalf("overlap >= size must fall back to size/4, got %d", s.Overlap)
	}
}
