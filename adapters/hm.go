package adapters

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"showroom-etl/internal/types"

	"github.com/PuerkitoBio/goquery"
)

// Selectors of the H&M showroom markup
const (
	listingContainerSelector = "ul.products-listing.small"
	listingCardSelector      = "article.hm-product-item"
	cardNameSelector         = "a.link"
	cardPriceSelector        = "span.price.regular"
	activeColorSelector      = "a.filter-option.miniature.active"
	otherColorSelector       = "a.filter-option.miniature:not(.active)"
	variantNameSelector      = "h1.primary.product-item-headline"
	variantPriceSelector     = "div.primary-row.product-item-price"
	attributeBlockSelector   = "div.pdp-description-list-item"
)

var priceRe = regexp.MustCompile(`\d+\.?\d+`)

// HMAdapter handles extraction for the H&M showroom pages
type HMAdapter struct {
	*BaseAdapter
}

// NewHMAdapter creates a new H&M adapter
func NewHMAdapter(config *types.Config, logger types.Logger) *HMAdapter {
	return &HMAdapter{
		BaseAdapter: NewBaseAdapter(config, logger),
	}
}

// NewHMAdapterWithFetcher creates an H&M adapter around an existing fetcher
func NewHMAdapterWithFetcher(config *types.Config, logger types.Logger, fetcher types.Fetcher) *HMAdapter {
	return &HMAdapter{
		BaseAdapter: NewBaseAdapterWithFetcher(config, logger, fetcher),
	}
}

// GetStoreName returns the store name
func (h *HMAdapter) GetStoreName() string {
	return "hm.com"
}

// ListProducts fetches the listing page and reads every product card.
// Name and price are read inside the card that carries the article code,
// so a broken card can never shift the data of the cards after it.
// Incomplete cards are reported with a *types.ListingError next to the
// records of the complete ones.
func (h *HMAdapter) ListProducts(ctx context.Context, listingURL string) ([]types.ListingRecord, error) {
	h.logger.Infof("Fetching listing page: %s", listingURL)

	doc, err := h.FetchDocument(ctx, listingURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get listing page: %w", err)
	}

	return h.ParseListing(doc)
}

// ParseListing reads the product cards of a parsed listing page
func (h *HMAdapter) ParseListing(doc *goquery.Document) ([]types.ListingRecord, error) {
	container := doc.Find(listingContainerSelector).First()
	if container.Length() == 0 {
		return nil, fmt.Errorf("%w: listing container %s not found", types.ErrMarkupShapeChange, listingContainerSelector)
	}

	cards := container.Find(listingCardSelector)
	if cards.Length() == 0 {
		return nil, fmt.Errorf("%w: no product cards found", types.ErrMarkupShapeChange)
	}

	var records []types.ListingRecord
	var issues []types.CardIssue

	cards.Each(func(i int, card *goquery.Selection) {
		record := types.ListingRecord{
			ProductID: strings.TrimSpace(card.AttrOr("data-articlecode", "")),
			Category:  strings.TrimSpace(card.AttrOr("data-category", "")),
		}

		var missing []string
		if record.ProductID == "" {
			missing = append(missing, "id")
		}

		if name := card.Find(cardNameSelector).First(); name.Length() > 0 {
			record.Name = strings.TrimSpace(name.Text())
		}
		if record.Name == "" {
			missing = append(missing, "name")
		}

		if price := card.Find(cardPriceSelector).First(); price.Length() > 0 {
			record.Price = strings.TrimSpace(price.Text())
		}
		if record.Price == "" {
			missing = append(missing, "price")
		}

		if len(missing) > 0 {
			issues = append(issues, types.CardIssue{Index: i, ProductID: record.ProductID, Missing: missing})
			return
		}
		records = append(records, record)
	})

	h.logger.Infof("Found %d product cards, %d complete", cards.Length(), len(records))

	if len(issues) > 0 {
		return records, &types.ListingError{Cards: cards.Length(), Issues: issues}
	}
	return records, nil
}

// ColorVariants fetches a product page and lists its color variants,
// the active color first.
func (h *HMAdapter) ColorVariants(ctx context.Context, productID string) ([]types.ColorVariant, error) {
	doc, err := h.FetchDocument(ctx, h.ProductURL(productID))
	if err != nil {
		return nil, fmt.Errorf("failed to get product page %s: %w", productID, err)
	}

	return h.ParseColorVariants(doc)
}

// ParseColorVariants reads the color picker of a parsed product page
func (h *HMAdapter) ParseColorVariants(doc *goquery.Document) ([]types.ColorVariant, error) {
	var variants []types.ColorVariant
	seen := make(map[string]bool)

	collect := func(_ int, s *goquery.Selection) {
		id, err := h.ExtractAttribute(s, "data-articlecode")
		if err != nil {
			h.logger.Debugf("Skipping color option without article code: %v", err)
			return
		}
		if seen[id] {
			return
		}
		seen[id] = true
		variants = append(variants, types.ColorVariant{
			ProductID: id,
			ColorName: strings.TrimSpace(s.AttrOr("data-color", "")),
		})
	}

	doc.Find(activeColorSelector).Each(collect)
	doc.Find(otherColorSelector).Each(collect)

	if len(variants) == 0 {
		return nil, fmt.Errorf("%w: no color variants found", types.ErrMarkupShapeChange)
	}

	return variants, nil
}

// ExtractVariant fetches a color variant page and returns its attribute rows
func (h *HMAdapter) ExtractVariant(ctx context.Context, productID string) ([]types.DetailRecord, error) {
	doc, err := h.FetchDocument(ctx, h.ProductURL(productID))
	if err != nil {
		return nil, fmt.Errorf("failed to get variant page %s: %w", productID, err)
	}

	return h.ParseVariant(doc)
}

// ParseVariant reads name, price and attribute rows of a parsed variant page
func (h *HMAdapter) ParseVariant(doc *goquery.Document) ([]types.DetailRecord, error) {
	name, err := h.ExtractText(doc, variantNameSelector)
	if err != nil {
		return nil, fmt.Errorf("product name: %w", err)
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: empty product name", types.ErrMarkupShapeChange)
	}

	priceText, err := h.ExtractText(doc, variantPriceSelector)
	if err != nil {
		return nil, fmt.Errorf("product price: %w", err)
	}
	price := priceRe.FindString(priceText)
	if price == "" {
		return nil, fmt.Errorf("%w: no price in %q", types.ErrParseFailure, strings.TrimSpace(priceText))
	}

	var blocks []attributeBlock
	doc.Find(attributeBlockSelector).Each(func(_ int, s *goquery.Selection) {
		blocks = append(blocks, parseAttributeBlock(s))
	})

	attrs := foldAttributes(blocks)
	for _, a := range attrs {
		if a.Column == "" {
			h.logger.Debugf("Ignoring unknown attribute %q", a.Label)
		}
	}

	rows := expandRows(attrs)
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no attribute blocks found", types.ErrMarkupShapeChange)
	}

	records := make([]types.DetailRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, types.DetailRecord{
			ProductID:                row[colProductID],
			Name:                     name,
			Price:                    price,
			Fit:                      row[colFit],
			Composition:              stripCompositionPrefixes(row[colComposition]),
			Size:                     row[colSize],
			ProductSafety:            row[colProductSafety],
			MoreSustainableMaterials: row[colMoreSustainableMaterials],
		})
	}

	return records, nil
}

// SelectorCount is the number of elements a showroom selector matched
type SelectorCount struct {
	Name     string
	Selector string
	Count    int
}

// ProbeSelectors counts the matches of every showroom selector in doc.
// A zero count on a page that should carry the element points at a
// markup change.
func (h *HMAdapter) ProbeSelectors(doc *goquery.Document) []SelectorCount {
	probes := []SelectorCount{
		{Name: "listing container", Selector: listingContainerSelector},
		{Name: "listing card", Selector: listingCardSelector},
		{Name: "card name", Selector: listingCardSelector + " " + cardNameSelector},
		{Name: "card price", Selector: listingCardSelector + " " + cardPriceSelector},
		{Name: "active color", Selector: activeColorSelector},
		{Name: "other color", Selector: otherColorSelector},
		{Name: "variant name", Selector: variantNameSelector},
		{Name: "variant price", Selector: variantPriceSelector},
		{Name: "attribute block", Selector: attributeBlockSelector},
	}
	for i := range probes {
		probes[i].Count = doc.Find(probes[i].Selector).Length()
	}
	return probes
}
