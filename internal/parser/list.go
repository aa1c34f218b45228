package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/heartmarshall/wrdict/internal/domain"
)

const (
	articleSelector  = "#article"
	headwordSelector = "span.hw"
	posSelector      = "span.rh_pos"
)

// parseList reads the monolingual layout. The article is split into entry
// fragments at every span.hw; each fragment yields a block titled with its
// headword, followed by the blocks fanned out from nested sub-lists.
// The second return value is the first fragment headword, used when the
// page has no h3.headerWord.
func parseList(doc *goquery.Document, pageWord string) ([]domain.TranslationBlock, string) {
	blocks := []domain.TranslationBlock{}
	article := doc.Find(articleSelector).First()
	if article.Length() == 0 {
		return blocks, ""
	}

	firstWord := ""
	for _, frag := range splitFragments(article) {
		word := frag.word
		if firstWord == "" {
			firstWord = word
		}
		if word == "" {
			word = pageWord
		}
		blocks = append(blocks, parseFragment(frag, word)...)
	}
	return blocks, firstWord
}

// fragment is one dictionary entry of the article: the headword, its
// part-of-speech labels and its top-level definition lists, in page order.
type fragment struct {
	word   string
	labels []string
	lists  []*goquery.Selection
}

func (f fragment) empty() bool {
	return f.word == "" && len(f.labels) == 0 && len(f.lists) == 0
}

// splitFragments walks the article in document order and starts a new
// fragment at every headword marker, however deeply it is wrapped. Labels
// and lists before the first marker form a fragment without a headword.
func splitFragments(article *goquery.Selection) []fragment {
	var (
		frags   []fragment
		current fragment
	)
	walkElements(article.Nodes[0], func(n *html.Node) bool {
		s := article.FindNodes(n)
		switch {
		case s.Is(headwordSelector):
			if !current.empty() {
				frags = append(frags, current)
			}
			current = fragment{word: textWithout(s, "sup")}
			return false
		case s.Is(posSelector):
			current.labels = append(current.labels, cleanText(s.Text()))
			return false
		case n.DataAtom == atom.Ol:
			current.lists = append(current.lists, s)
			return false
		}
		return true
	})
	if !current.empty() {
		frags = append(frags, current)
	}
	return frags
}

// walkElements visits the element descendants of n in document order.
// Children of an element are skipped when visit returns false.
func walkElements(n *html.Node, visit func(*html.Node) bool) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if visit(c) {
			walkElements(c, visit)
		}
	}
}

func parseFragment(frag fragment, word string) []domain.TranslationBlock {
	head := domain.TranslationBlock{Title: word, Items: []domain.TranslationItem{}}
	var fanOut []domain.TranslationBlock

	for i, ol := range frag.lists {
		pos := ""
		if i < len(frag.labels) {
			pos = frag.labels[i]
		}
		ol.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
			items, blocks := expandItem(li, word, pos)
			head.Items = append(head.Items, items...)
			fanOut = append(fanOut, blocks...)
		})
	}

	var out []domain.TranslationBlock
	if len(head.Items) > 0 {
		out = append(out, head)
	}
	return append(out, fanOut...)
}

// expandItem turns one li into items for the enclosing block. An li with a
// nested list yields no item of its own; each nested li becomes a block
// titled with the parent definition up to the first colon.
func expandItem(li *goquery.Selection, word, pos string) ([]domain.TranslationItem, []domain.TranslationBlock) {
	sub := li.ChildrenFiltered("ol").ChildrenFiltered("li")
	if sub.Length() == 0 {
		item := leafItem(li, word, pos)
		if item.To == "" {
			return nil, nil
		}
		return []domain.TranslationItem{item}, nil
	}

	title, _, _ := strings.Cut(definition(li, boldTexts(li)), ":")
	title = trimDefinition(title)

	var blocks []domain.TranslationBlock
	sub.Each(func(_ int, child *goquery.Selection) {
		items, nested := expandItem(child, word, pos)
		if len(items) > 0 {
			blocks = append(blocks, domain.TranslationBlock{Title: title, Items: items})
		}
		blocks = append(blocks, nested...)
	})
	return nil, blocks
}

func leafItem(li *goquery.Selection, word, pos string) domain.TranslationItem {
	bold := boldTexts(li)
	alts := mergeBySubstring(bold)

	examples := texts(li.Find(".rh_ex"))
	examples = append(examples, texts(li.Find(".rh_ex2"))...)
	if examples == nil {
		examples = []string{}
	}

	from := strings.Join(alts, " or ")
	if from == "" {
		from = word
	}

	return domain.TranslationItem{
		From:     from,
		FromType: pos,
		To:       definition(li, bold),
		Example:  domain.Examples{From: examples, To: []string{}},
	}
}

// boldTexts returns the alternate headword forms of an li. Bold text in
// nested lists and usage examples is not a headword form.
func boldTexts(li *goquery.Selection) []string {
	c := li.Clone()
	c.Find("ol, .rh_ex, .rh_ex2").Remove()
	return texts(c.Find("b"))
}

// definition is the li's own text without nested lists and examples, with
// the alternate headword tokens removed.
func definition(li *goquery.Selection, bold []string) string {
	drop := make(map[string]bool)
	for _, alt := range bold {
		for _, tok := range strings.Fields(alt) {
			drop[tok] = true
		}
	}
	return trimDefinition(dropTokens(textWithout(li, "ol, .rh_ex, .rh_ex2"), drop))
}
