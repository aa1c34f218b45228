// Package aggregator folds lookup results into an exportable dictionary.
package aggregator

import (
	"cmp"
	"slices"
	"strings"

	"github.com/heartmarshall/wrdict/internal/domain"
)

// Options controls entry construction.
type Options struct {
	Header string
	// IncludeExamplesInDefinition appends the examples to each definition
	// on a new line.
	IncludeExamplesInDefinition bool
}

// Aggregate builds a Dictionary from results. The input slice is not modified.
func Aggregate(results []domain.LookupResult, opts Options) domain.Dictionary {
	return domain.Dictionary{
		Header:         opts.Header,
		FrequencyOrder: FrequencyOrder(results),
		Conjugations:   Conjugations(results),
		Entries:        Entries(results, opts.IncludeExamplesInDefinition),
	}
}

// FrequencyOrder returns every result word sorted by descending frequency.
// Ties keep their input order; a missing frequency counts as 0.
func FrequencyOrder(results []domain.LookupResult) []string {
	sorted := slices.Clone(results)
	slices.SortStableFunc(sorted, func(a, b domain.LookupResult) int {
		return cmp.Compare(b.FrequencyValue(), a.FrequencyValue())
	})

	words := make([]string, len(sorted))
	for i := range sorted {
		words[i] = sorted[i].Word
	}
	return words
}

// Conjugations emits one item per non-empty inflection, pointing back at the
// result's word. Forms shared by several words are not merged.
func Conjugations(results []domain.LookupResult) []domain.ConjugationItem {
	conj := []domain.ConjugationItem{}
	for _, r := range results {
		for _, form := range r.Inflections {
			if form == "" {
				continue
			}
			conj = append(conj, domain.ConjugationItem{Inflected: form, Dict: []string{r.Word}})
		}
	}
	return conj
}

// Entries flattens every translation item into a dictionary entry, merging
// entries with the same term and definition. The first entry seen wins;
// later duplicates only fill its empty fields.
func Entries(results []domain.LookupResult, includeExamples bool) []domain.DictionaryEntry {
	entries := []domain.DictionaryEntry{}
	index := make(map[domain.EntryKey]int)

	for _, r := range results {
		for _, block := range r.Translations {
			for _, item := range block.Items {
				e := newEntry(r, item, includeExamples)
				if i, ok := index[e.Key()]; ok {
					entries[i].FillMissing(e)
					continue
				}
				index[e.Key()] = len(entries)
				entries = append(entries, e)
			}
		}
	}
	return entries
}

func newEntry(r domain.LookupResult, item domain.TranslationItem, includeExamples bool) domain.DictionaryEntry {
	examples := strings.Join(item.Example.All(), "\n")

	definition := item.To
	if includeExamples && examples != "" {
		definition += "\n" + examples
	}

	alt := ""
	if r.Word != "" && domain.NormalizeText(r.Word) != domain.NormalizeText(item.From) {
		alt = r.Word
	}

	audio := ""
	if len(r.Audio) > 0 {
		audio = r.Audio[0]
	}

	return domain.DictionaryEntry{
		Term:          item.From,
		AltTerm:       alt,
		Pronunciation: r.Pronunciation,
		Definition:    definition,
		PartOfSpeech:  item.FromType,
		Examples:      examples,
		Audio:         audio,
	}
}
