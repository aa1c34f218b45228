// Package parser turns a WordReference page into a domain.LookupResult.
// Pure function: markup in, domain structs out. No network access.
package parser

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/heartmarshall/wrdict/internal/domain"
)

// Options selects the page layout and resolves relative links.
type Options struct {
	// Monolingual selects the list layout used when source and target
	// languages are the same. Otherwise the table layout is parsed.
	Monolingual bool
	// BaseURL resolves relative audio sources. Empty leaves them unchanged.
	BaseURL string
}

// Parse reads one page and extracts its header fields and translation blocks.
// It never fails on missing markup: absent sections yield empty fields.
func Parse(r io.Reader, opts Options) (domain.LookupResult, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return domain.LookupResult{}, fmt.Errorf("parser: read document: %w", err)
	}

	result := domain.LookupResult{
		Word:          headword(doc),
		Pronunciation: pronunciation(doc),
		Audio:         audioSources(doc, opts.BaseURL),
		Inflections:   inflections(doc),
	}

	if opts.Monolingual {
		blocks, listWord := parseList(doc, result.Word)
		if result.Word == "" {
			result.Word = listWord
		}
		result.Translations = blocks
	} else {
		result.Translations = parseTables(doc)
	}

	return result, nil
}

func headword(doc *goquery.Document) string {
	return cleanText(doc.Find("h3.headerWord").First().Text())
}

// pronunciation drops tooltip spans nested inside span.pronWR.
func pronunciation(doc *goquery.Document) string {
	var parts []string
	doc.Find("span.pronWR").Each(func(_ int, s *goquery.Selection) {
		c := s.Clone()
		c.Find("span").Not(".pronWR").Remove()
		if text := cleanText(c.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, " ")
}

func audioSources(doc *goquery.Document, baseURL string) []string {
	base, err := url.Parse(baseURL)
	if baseURL == "" || err != nil {
		base = nil
	}

	audio := []string{}
	doc.Find("div#listen_widget audio source").Each(func(_ int, s *goquery.Selection) {
		src, ok := s.Attr("src")
		src = strings.TrimSpace(src)
		if !ok || src == "" {
			return
		}
		audio = append(audio, resolve(base, src))
	})
	return domain.DeduplicateStrings(audio)
}

func resolve(base *url.URL, ref string) string {
	if base == nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}

func inflections(doc *goquery.Document) []string {
	var forms []string
	doc.Find(".inflectionsSection .ListInfl").Each(func(_ int, s *goquery.Selection) {
		forms = append(forms, cleanText(s.Text()))
	})
	return domain.DeduplicateStrings(forms)
}
