package parser

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/heartmarshall/wrdict/internal/domain"
)

type rowKind int

const (
	rowOther rowKind = iota
	rowTitle
	rowItem
	rowExample
)

func classifyRow(row *goquery.Selection) rowKind {
	class, _ := row.Attr("class")
	if class == "wrtopsection" {
		return rowTitle
	}
	if class != "even" && class != "odd" {
		return rowOther
	}
	if _, hasID := row.Attr("id"); hasID {
		return rowItem
	}
	return rowExample
}

// tableFold accumulates one table.WRD into a block. Example rows attach to
// the item at open; open is -1 until the first item row.
type tableFold struct {
	block domain.TranslationBlock
	open  int
}

func newTableFold() *tableFold {
	return &tableFold{
		block: domain.TranslationBlock{Items: []domain.TranslationItem{}},
		open:  -1,
	}
}

func (f *tableFold) row(row *goquery.Selection) {
	switch classifyRow(row) {
	case rowTitle:
		f.block.Title = cleanText(row.Text())
	case rowItem:
		f.block.Items = append(f.block.Items, translationItem(row))
		f.open = len(f.block.Items) - 1
	case rowExample:
		if f.open < 0 {
			return
		}
		ex := &f.block.Items[f.open].Example
		if fr := row.Find(".FrEx"); cleanText(fr.Text()) != "" {
			if t := textWithout(fr, ".tooltip"); t != "" {
				ex.From = append(ex.From, t)
			}
		} else if to := row.Find(".ToEx"); cleanText(to.Text()) != "" {
			if t := textWithout(to, ".tooltip"); t != "" {
				ex.To = append(ex.To, t)
			}
		}
	}
}

func translationItem(row *goquery.Selection) domain.TranslationItem {
	c := row.Clone()
	from := cleanText(c.Find("strong").Text())
	c.Find(".FrWrd em span").Remove()
	c.Find(".ToWrd em span").Remove()
	fromType := cleanText(c.Find(".FrWrd em").Text())
	toType := cleanText(c.Find(".ToWrd em").Text())
	c.Find(".ToWrd em").Remove()

	return domain.TranslationItem{
		From:     from,
		FromType: fromType,
		To:       cleanText(c.Find(".ToWrd").Text()),
		ToType:   toType,
		Example:  domain.Examples{From: []string{}, To: []string{}},
	}
}

// parseTables maps every table.WRD to one block in document order.
// A table without items is kept only when it carries a title.
func parseTables(doc *goquery.Document) []domain.TranslationBlock {
	blocks := []domain.TranslationBlock{}
	doc.Find("table.WRD").Each(func(_ int, table *goquery.Selection) {
		fold := newTableFold()
		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			fold.row(row)
		})
		if len(fold.block.Items) == 0 && fold.block.Title == "" {
			return
		}
		blocks = append(blocks, fold.block)
	})
	return blocks
}
