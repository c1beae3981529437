// Package render converts scraped or parsed HTML symbol bodies into the
// Markdown returned by the query tool, grounded on
// engine/internal/processor/processor.go's HTMLToMarkdownConverter.
package render

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/PuerkitoBio/goquery"
)

// HTML converts a fragment of HTML into cleaned Markdown. Providers whose
// upstream already returns Markdown (Apple's some endpoints, MDN's JSON
// API) skip this and set SymbolBody directly.
func HTML(fragment string) (string, error) {
	if strings.TrimSpace(fragment) == "" {
		return "", fmt.Errorf("render: empty HTML fragment")
	}
	conv := converter.NewConverter(converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
		table.NewTablePlugin(),
	))
	md, err := conv.ConvertString(fragment)
	if err != nil {
		return "", fmt.Errorf("render: convert: %w", err)
	}
	return clean(md), nil
}

// ExtractMain pulls the main content region out of a full HTML document
// using a selector list tried in order, falling back to <body> with
// boilerplate elements stripped.
func ExtractMain(html string, selectors []string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("render: parse html: %w", err)
	}
	for _, sel := range selectors {
		region := doc.Find(sel)
		if region.Length() == 0 {
			continue
		}
		content, err := region.Html()
		if err != nil {
			continue
		}
		return strings.TrimSpace(content), nil
	}
	body := doc.Find("body")
	if body.Length() == 0 {
		return "", fmt.Errorf("render: no body element")
	}
	body.Find("script, style, nav, footer, aside, header").Remove()
	body.Find(".advertisement, .ad, .ads, .sidebar").Remove()
	content, err := body.Html()
	if err != nil {
		return "", fmt.Errorf("render: extract body: %w", err)
	}
	return strings.TrimSpace(content), nil
}

var (
	htmlCommentRE = regexp.MustCompile(`<!--[\s\S]*?-->`)
	blankRunRE    = regexp.MustCompile(`\n{3,}`)
)

func clean(markdown string) string {
	out := htmlCommentRE.ReplaceAllString(markdown, "")
	out = blankRunRE.ReplaceAllString(out, "\n\n")
	lines := strings.Split(out, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
