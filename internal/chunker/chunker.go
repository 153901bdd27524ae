// Package chunker splits document text into overlapping, word-bounded chunks
// suitable for embedding.
package chunker

import (
	"strings"
	"unicode"
)

// Split breaks text into chunks of at most maxWords words each, accumulated
// sentence by sentence. When a chunk overflows, the next chunk is seeded with
// the last overlap words of the previous one so neighbouring chunks share
// context. A single sentence longer than maxWords is emitted whole; words are
// never split mid-sentence.
//
// Empty or whitespace-only input yields no chunks. Output is a pure function
// of the inputs.
func Split(text string, maxWords, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	sentences := splitSentences(text)

	var chunks []string
	var current []string
	currentLen := 0

	for _, sent := range sentences {
		words := strings.Fields(sent)
		if currentLen+len(words) <= maxWords || len(current) == 0 {
			current = append(current, sent)
			currentLen += len(words)
			continue
		}

		closed := strings.Join(current, " ")
		chunks = append(chunks, closed)

		if overlap > 0 {
			all := strings.Fields(closed)
			tail := all
			if len(all) > overlap {
				tail = all[len(all)-overlap:]
			}
			current = []string{strings.Join(tail, " "), sent}
			currentLen = len(tail) + len(words)
		} else {
			current = []string{sent}
			currentLen = len(words)
		}
	}

	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}

	return chunks
}

// splitSentences segments text at sentence boundaries: any of '.', '!' or '?'
// followed by whitespace ends a sentence. The punctuation stays with its
// sentence and the separating whitespace is consumed. No language-specific
// boundary detection is attempted.
func splitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 >= len(runes) || !unicode.IsSpace(runes[i+1]) {
			continue
		}

		sentences = append(sentences, string(runes[start:i+1]))

		// Skip the whitespace run separating sentences.
		j := i + 1
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		start = j
		i = j - 1
	}

	if start < len(runes) {
		sentences = append(sentences, string(runes[start:]))
	}

	return sentences
}
