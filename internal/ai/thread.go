package ai

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// NumberingReserve is kept free in every chunk for the " (i/total)" marker.
const NumberingReserve = 10

// SplitThread packs whitespace separated words greedily into chunks of at
// most limit-NumberingReserve characters. Text that already fits the limit is
// returned as a single chunk. Words longer than a chunk are cut.
func SplitThread(text string, limit int) []string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	budget := limit - NumberingReserve
	if budget <= 0 {
		budget = limit
	}

	var (
		chunks []string
		chunk  strings.Builder
		size   int
	)
	flush := func() {
		if size > 0 {
			chunks = append(chunks, chunk.String())
			chunk.Reset()
			size = 0
		}
	}

	for _, word := range strings.Fields(text) {
		for _, piece := range cutWord(word, budget) {
			n := utf8.RuneCountInString(piece)
			if size > 0 && size+n+1 > budget {
				flush()
			}
			if size > 0 {
				chunk.WriteByte(' ')
				size++
			}
			chunk.WriteString(piece)
			size += n
		}
	}
	flush()

	return chunks
}

// NumberThread appends "(i/total)" to every chunk but the last.
func NumberThread(chunks []string) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		if i < len(chunks)-1 {
			out[i] = fmt.Sprintf("%s (%d/%d)", c, i+1, len(chunks))
			continue
		}
		out[i] = c
	}
	return out
}

func cutWord(word string, max int) []string {
	runes := []rune(word)
	if len(runes) <= max {
		return []string{word}
	}
	var pieces []string
	for len(runes) > max {
		pieces = append(pieces, string(runes[:max]))
		runes = runes[max:]
	}
	if len(runes) > 0 {
		pieces = append(pieces, string(runes))
	}
	return pieces
}
