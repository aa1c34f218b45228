package domain

// FrequencyItem is one line of a frequency list: a word and its rank value.
// Higher Frequency means the word is more common.
type FrequencyItem struct {
	Word      string `json:"word"`
	Frequency int    `json:"frequency"`
}

// LookupResult is the normalized outcome of one WordReference lookup.
// JSON names match the save files written by earlier versions of the tool,
// so old save files load unchanged.
type LookupResult struct {
	Word          string             `json:"word"`
	Pronunciation string             `json:"pronWR,omitempty"`
	Audio         []string           `json:"audio"`
	Inflections   []string           `json:"inflections,omitempty"`
	Translations  []TranslationBlock `json:"translations"`
	Frequency     *int               `json:"frequency,omitempty"`
}

// HasTranslations reports whether at least one block carries an item.
func (r *LookupResult) HasTranslations() bool {
	for _, b := range r.Translations {
		if len(b.Items) > 0 {
			return true
		}
	}
	return false
}

// FrequencyValue returns the frequency or 0 when it is unknown.
func (r *LookupResult) FrequencyValue() int {
	if r.Frequency == nil {
		return 0
	}
	return *r.Frequency
}

// PlaceholderResult stands in for a word whose lookup failed, so that every
// input word is still accounted for downstream.
func PlaceholderResult(item FrequencyItem) LookupResult {
	freq := item.Frequency
	return LookupResult{
		Word:         item.Word,
		Audio:        []string{},
		Translations: []TranslationBlock{},
		Frequency:    &freq,
	}
}

// TranslationBlock groups translation items under a heading
// (part of speech or sense title). Title may be empty.
type TranslationBlock struct {
	Title string            `json:"title"`
	Items []TranslationItem `json:"translations"`
}

// TranslationItem is a single source→target pair with its examples.
type TranslationItem struct {
	From     string   `json:"from"`
	FromType string   `json:"fromType"`
	To       string   `json:"to"`
	ToType   string   `json:"toType"`
	Example  Examples `json:"example"`
}

// Examples holds example sentences on each side of a translation.
type Examples struct {
	From []string `json:"from"`
	To   []string `json:"to"`
}

// All returns source examples followed by target examples.
func (e Examples) All() []string {
	all := make([]string, 0, len(e.From)+len(e.To))
	all = append(all, e.From...)
	all = append(all, e.To...)
	return all
}
