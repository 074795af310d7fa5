package adapters

import (
	"context"
	"fmt"
	"strings"

	"showroom-etl/internal/types"
	"showroom-etl/utils"

	"github.com/PuerkitoBio/goquery"
)

// BaseAdapter provides the fetch and parse helpers shared by showroom
// adapters. Site-specific adapters embed it and only add selectors.
type BaseAdapter struct {
	config  *types.Config // Showroom URLs, headers and timeouts
	logger  types.Logger
	fetcher types.Fetcher // HTTP client or headless browser
	closer  func()
}

// NewBaseAdapter creates a base adapter that fetches with the HTTP client,
// or with the headless browser when UseHeadlessBrowser is set.
func NewBaseAdapter(config *types.Config, logger types.Logger) *BaseAdapter {
	if config.UseHeadlessBrowser {
		return NewBaseAdapterWithFetcher(config, logger, utils.NewBrowserClient(config, logger))
	}

	httpClient := utils.NewHTTPClient(config, logger)
	b := NewBaseAdapterWithFetcher(config, logger, httpClient)
	b.closer = httpClient.Close
	return b
}

// NewBaseAdapterWithFetcher creates a base adapter around an existing fetcher
func NewBaseAdapterWithFetcher(config *types.Config, logger types.Logger, fetcher types.Fetcher) *BaseAdapter {
	return &BaseAdapter{
		config:  config,
		logger:  logger,
		fetcher: fetcher,
	}
}

// GetPageContent retrieves the HTML content of a page
func (b *BaseAdapter) GetPageContent(ctx context.Context, url string) (string, error) {
	return b.fetcher.GetPageContent(ctx, url)
}

// ParseHTML parses HTML content into a goquery document
func (b *BaseAdapter) ParseHTML(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrMarkupShapeChange, err)
	}
	return doc, nil
}

// FetchDocument fetches url and parses it
func (b *BaseAdapter) FetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	html, err := b.GetPageContent(ctx, url)
	if err != nil {
		return nil, err
	}
	return b.ParseHTML(html)
}

// ExtractText extracts the text of the first element matching selector
func (b *BaseAdapter) ExtractText(doc *goquery.Document, selector string) (string, error) {
	element := doc.Find(selector).First()
	if element.Length() == 0 {
		return "", fmt.Errorf("%w: element not found with selector: %s", types.ErrMarkupShapeChange, selector)
	}

	return element.Text(), nil
}

// ExtractAttribute extracts an attribute value from a selection
func (b *BaseAdapter) ExtractAttribute(s *goquery.Selection, attribute string) (string, error) {
	value, exists := s.Attr(attribute)
	if !exists || strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("%w: attribute %s not found", types.ErrMarkupShapeChange, attribute)
	}

	return strings.TrimSpace(value), nil
}

// ProductURL returns the detail page URL of a product or color variant
func (b *BaseAdapter) ProductURL(productID string) string {
	return fmt.Sprintf("%s/productpage.%s.html", strings.TrimRight(b.config.BaseURL, "/"), productID)
}

// Close cleans up resources
func (b *BaseAdapter) Close() {
	if b.closer != nil {
		b.closer()
	}
}
