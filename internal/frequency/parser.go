// Package frequency reads frequency-ranked word lists.
// Parse is a pure function: text in, domain structs out.
package frequency

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/heartmarshall/wrdict/internal/domain"
)

const maxLineSize = 1 << 20

// Parse reads lines of the form "<word> [rank]". Blank lines are skipped.
// When the last field is not a positive integer the rank is derived from the
// position: len(list) - index, so earlier lines rank higher.
func Parse(r io.Reader) ([]domain.FrequencyItem, error) {
	type line struct {
		word string
		rank int
	}

	var lines []line
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		l := line{word: fields[0]}
		if len(fields) > 1 {
			if n, err := strconv.Atoi(fields[len(fields)-1]); err == nil && n > 0 {
				l.rank = n
			}
		}
		lines = append(lines, l)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("frequency: scan: %w", err)
	}

	items := make([]domain.FrequencyItem, len(lines))
	for i, l := range lines {
		rank := l.rank
		if rank == 0 {
			rank = len(lines) - i
		}
		items[i] = domain.FrequencyItem{Word: l.word, Frequency: rank}
	}
	return items, nil
}

// FromWords builds items for an explicit word list, ranked by position.
// Empty words are dropped.
func FromWords(words []string) []domain.FrequencyItem {
	var clean []string
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			clean = append(clean, w)
		}
	}
	items := make([]domain.FrequencyItem, len(clean))
	for i, w := range clean {
		items[i] = domain.FrequencyItem{Word: w, Frequency: len(clean) - i}
	}
	return items
}

// Slice returns the window [offset, offset+n). n <= 0 means "to the end".
// Out-of-range windows are clamped.
func Slice(items []domain.FrequencyItem, offset, n int) []domain.FrequencyItem {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []domain.FrequencyItem{}
	}
	end := len(items)
	if n > 0 && offset+n < end {
		end = offset + n
	}
	return items[offset:end]
}
