// Package chunking splits extracted text into overlapping retrievable
// units. Two strategies exist: FixedSplitter for exact, reproducible byte
// offsets, and SentenceSplitter for fragments that read cleanly when shown
// to a human or an LLM.
package chunking

// FixedSplitter emits windows of exactly Size bytes stepping by
// Size-Overlap, so fragment i covers text[i*(Size-Overlap) :
// i*(Size-Overlap)+Size]. The last fragment is kept even when shorter.
// Every window is emitted, whitespace-only ones included: dropping any
// would break offset-exact reconstruction of the input.
type FixedSplitter struct {
	Size    int
	Overlap int
}

func NewFixedSplitter(size, overlap int) *FixedSplitter {
	if size <= 0 {
		size = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 4
	}
	return &FixedSplitter{Size: size, Overlap: overlap}
}

func (s *FixedSplitter) Split(text string) []string {
	if len(text) == 0 {
		return nil
	}

	step := s.Size - s.Overlap
	out := make([]string, 0, len(text)/step+1)
	for start := 0; start < len(text); start += step {
		end := start + s.Size
		if end > len(text) {
			end = len(text)
		}
		out = append(out, text[start:end])
		if end == len(text) {
			break
		}
	}
	return out
}
