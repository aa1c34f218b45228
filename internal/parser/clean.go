package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// cleanText collapses whitespace runs (including non-breaking spaces) and trims.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// trimDefinition strips whitespace, dots and commas from both ends.
func trimDefinition(s string) string {
	return strings.Trim(cleanText(s), " .,")
}

// textWithout returns the cleaned text of s after removing the descendants
// matching selector. s itself is left untouched.
func textWithout(s *goquery.Selection, selector string) string {
	c := s.Clone()
	c.Find(selector).Remove()
	return cleanText(c.Text())
}

// texts collects the non-empty cleaned texts of a selection.
func texts(s *goquery.Selection) []string {
	var out []string
	s.Each(func(_ int, item *goquery.Selection) {
		if t := cleanText(item.Text()); t != "" {
			out = append(out, t)
		}
	})
	return out
}

// dropTokens removes every whitespace-separated token of s that is in drop.
func dropTokens(s string, drop map[string]bool) string {
	if len(drop) == 0 {
		return cleanText(s)
	}
	fields := strings.Fields(s)
	kept := fields[:0]
	for _, f := range fields {
		if !drop[f] {
			kept = append(kept, f)
		}
	}
	return strings.Join(kept, " ")
}

// mergeBySubstring drops every candidate that contains, or is contained in,
// an earlier kept value.
func mergeBySubstring(candidates []string) []string {
	var kept []string
	for _, c := range candidates {
		covered := false
		for _, k := range kept {
			if strings.Contains(k, c) || strings.Contains(c, k) {
				covered = true
				break
			}
		}
		if !covered {
			kept = append(kept, c)
		}
	}
	return kept
}
