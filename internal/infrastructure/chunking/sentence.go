package chunking

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	lineBreaks  = regexp.MustCompile(`[\r\n]+`)
	multiSpace  = regexp.MustCompile(`\s{2,}`)
	sentenceEnd = regexp.MustCompile(`[^.!?]+[.!?]+`)
)

// SentenceSplitter normalizes whitespace, splits on terminal punctuation
// and greedily packs sentences into fragments of at most Size characters.
// On overflow the next fragment is re-seeded with the trailing Overlap
// characters of the previous one, so neighboring fragments share context.
type SentenceSplitter struct {
	Size    int
	Overlap int
}

func NewSentenceSplitter(size, overlap int) *SentenceSplitter {
	if size <= 0 {
		size = 1500
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 10
	}
	return &SentenceSplitter{Size: size, Overlap: overlap}
}

func (s *SentenceSplitter) Split(text string) []string {
	cleaned := normalizeWhitespace(text)
	if cleaned == "" {
		return nil
	}

	sentences := sentenceEnd.FindAllString(cleaned, -1)
	if len(sentences) == 0 {
		// No terminal punctuation at all; the whole text is one fragment.
		return []string{cleaned}
	}

	var chunks []string
	var current string
	for _, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		if current == "" {
			current = sentence
			continue
		}
		if len(current)+1+len(sentence) <= s.Size {
			current += " " + sentence
			continue
		}

		chunks = append(chunks, current)
		current = strings.TrimSpace(overlapTail(current, s.Overlap) + " " + sentence)
	}
	if strings.TrimSpace(current) != "" {
		chunks = append(chunks, strings.TrimSpace(current))
	}
	return chunks
}

func normalizeWhitespace(text string) string {
	cleaned := lineBreaks.ReplaceAllString(text, " ")
	cleaned = multiSpace.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

// overlapTail returns at most overlap trailing bytes of chunk, advanced to
// the next rune boundary so the seam never bisects a multibyte rune.
func overlapTail(chunk string, overlap int) string {
	if overlap <= 0 {
		return ""
	}
	if overlap >= len(chunk) {
		return chunk
	}
	cut := len(chunk) - overlap
	for cut < len(chunk) && !utf8.RuneStart(chunk[cut]) {
		cut++
	}
	return chunk[cut:]
}
