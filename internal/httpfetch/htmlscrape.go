package httpfetch

import (
	"bytes"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"docsmcp/internal/docsmcperr"
)

// HTMLScraper fetches one HTML page and hands back a parsed goquery
// Document, for the providers that scrape HTML rather than call a JSON API
// (Rust rustdoc, QuickNode, the MDN HTML fallback, web-framework index
// pages). It visits a single page per call rather than crawling, since
// this service fetches one symbol at a time.
type HTMLScraper struct {
	collector *colly.Collector
}

// NewHTMLScraper builds a scraper whose collector carries the given
// timeout and a conservative rate limit: at most two parallel requests per
// domain, with a 100ms delay between requests.
func NewHTMLScraper(timeout time.Duration, userAgent string) (*HTMLScraper, error) {
	c := colly.NewCollector()
	if timeout > 0 {
		c.SetRequestTimeout(timeout)
	}
	if userAgent != "" {
		c.UserAgent = userAgent
	}
	if err := c.Limit(&colly.LimitRule{DomainGlob: "*", Parallelism: 2, Delay: 100 * time.Millisecond}); err != nil {
		return nil, fmt.Errorf("set scraper rate limit: %w", err)
	}
	return &HTMLScraper{collector: c}, nil
}

// Fetch visits url and returns the parsed document plus the response
// status. Degraded extraction (selectors finding nothing) is the caller's
// concern, not this layer's — spec §9 note (b).
func (s *HTMLScraper) Fetch(url string) (*goquery.Document, int, error) {
	var doc *goquery.Document
	var status int
	var parseErr error

	c := s.collector.Clone()
	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		d, err := goquery.NewDocumentFromReader(bytes.NewReader(r.Body))
		if err != nil {
			parseErr = err
			return
		}
		doc = d
	})
	var visitErr error
	c.OnError(func(r *colly.Response, err error) {
		visitErr = err
		if r != nil {
			status = r.StatusCode
		}
	})

	if err := c.Visit(url); err != nil && visitErr == nil {
		visitErr = err
	}
	if visitErr != nil {
		return nil, status, docsmcperr.New(docsmcperr.UpstreamTransport, url, visitErr)
	}
	if parseErr != nil {
		return nil, status, docsmcperr.New(docsmcperr.ParseFailure, url, parseErr)
	}
	if status != 0 && (status < 200 || status >= 300) {
		return nil, status, docsmcperr.HTTPStatus(url, status)
	}
	return doc, status, nil
}
