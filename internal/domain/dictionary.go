package domain

// Dictionary is the aggregate written to a Migaku dictionary archive.
type Dictionary struct {
	Header         string
	FrequencyOrder []string
	Conjugations   []ConjugationItem
	Entries        []DictionaryEntry
}

// DictionaryEntry is one term/definition row of the exported dictionary.
// Two entries are the same iff Term and Definition match exactly.
type DictionaryEntry struct {
	Term          string `json:"term"`
	AltTerm       string `json:"altterm"`
	Pronunciation string `json:"pronunciation"`
	Definition    string `json:"definition"`
	PartOfSpeech  string `json:"pos"`
	Examples      string `json:"examples"`
	Audio         string `json:"audio"`
}

// Key returns the deduplication key of the entry.
func (e *DictionaryEntry) Key() EntryKey {
	return EntryKey{Term: e.Term, Definition: e.Definition}
}

// FillMissing copies every field of other into e where e's field is empty.
// Populated fields of e are never overwritten.
func (e *DictionaryEntry) FillMissing(other DictionaryEntry) {
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&e.AltTerm, other.AltTerm)
	fill(&e.Pronunciation, other.Pronunciation)
	fill(&e.PartOfSpeech, other.PartOfSpeech)
	fill(&e.Examples, other.Examples)
	fill(&e.Audio, other.Audio)
}

// EntryKey identifies a dictionary entry.
type EntryKey struct {
	Term       string
	Definition string
}

// ConjugationItem maps an inflected surface form back to its headword(s).
type ConjugationItem struct {
	Inflected string   `json:"inflected"`
	Dict      []string `json:"dict"`
}
