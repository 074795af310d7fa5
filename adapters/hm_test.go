package adapters

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"showroom-etl/internal/types"
)

type pageFetcher map[string]string

func (p pageFetcher) GetPageContent(_ context.Context, url string) (string, error) {
	html, ok := p[url]
	if !ok {
		return "", fmt.Errorf("%w: unexpected status code: 404", types.ErrNetworkFailure)
	}
	return html, nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestAdapter(pages pageFetcher) *HMAdapter {
	config := types.DefaultConfig()
	config.BaseURL = "https://shop.test/en_us"
	return NewHMAdapterWithFetcher(config, testLogger(), pages)
}

const variantPage = `<html><body>
<h1 class="primary product-item-headline">
	Slim  Jeans
</h1>
<div class="primary-row product-item-price"><span>$ 19.99</span></div>
<div class="pdp-description-list-item"><dt>Fit</dt><dd>Slim fit</dd></div>
<div class="pdp-description-list-item"><dt>Composition</dt><dd>Shell: Cotton 98%, Elastane 2%
Pocket lining: Polyester 65%, Cotton 35%</dd></div>
<div class="pdp-description-list-item"><dt>Art. No.</dt><dd>0985159001</dd></div>
<div class="pdp-description-list-item"><dt>Size</dt><dd>The model is 185cm/6'1" and wears a size 32/32</dd></div>
<div class="pdp-description-list-item"><dt>Description</dt><dd>Denim blue, Solid-color</dd></div>
</body></html>`

const productPage = `<html><body>
<a class="filter-option miniature" data-articlecode="0985159002" data-color="Black"></a>
<a class="filter-option miniature active" data-articlecode="0985159001" data-color="Denim blue"></a>
<a class="filter-option miniature" data-color="Grey"></a>
</body></html>`

func TestParseListing(t *testing.T) {
	html, err := os.ReadFile("testdata/listing.html")
	require.NoError(t, err)

	a := newTestAdapter(nil)
	doc, err := a.ParseHTML(string(html))
	require.NoError(t, err)

	records, err := a.ParseListing(doc)

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, types.ListingRecord{
		ProductID: "0985159001",
		Category:  "men_jeans_slim",
		Name:      "Slim Jeans",
		Price:     "$ 19.99",
	}, records[0])
	assert.Equal(t, "0690449022", records[1].ProductID)
	assert.Equal(t, "$ 24.99", records[1].Price)
}

func TestParseListing_IncompleteCardIsReported(t *testing.T) {
	// The first card has no price. Reading name and price inside each card
	// keeps the second card intact instead of shifting prices by one.
	html := `<ul class="products-listing small">
<article class="hm-product-item" data-articlecode="0000000001" data-category="a">
	<a class="link">First</a>
</article>
<article class="hm-product-item" data-articlecode="0000000002" data-category="b">
	<a class="link">Second</a><span class="price regular">$ 9.99</span>
</article>
</ul>`

	a := newTestAdapter(nil)
	doc, err := a.ParseHTML(html)
	require.NoError(t, err)

	records, err := a.ParseListing(doc)

	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrListingMisaligned))
	assert.True(t, errors.Is(err, types.ErrMarkupShapeChange))

	var listingErr *types.ListingError
	require.True(t, errors.As(err, &listingErr))
	assert.Equal(t, 2, listingErr.Cards)
	require.Len(t, listingErr.Issues, 1)
	assert.Equal(t, "0000000001", listingErr.Issues[0].ProductID)
	assert.Equal(t, []string{"price"}, listingErr.Issues[0].Missing)

	require.Len(t, records, 1)
	assert.Equal(t, types.ListingRecord{ProductID: "0000000002", Category: "b", Name: "Second", Price: "$ 9.99"}, records[0])
}

func TestParseListing_MissingContainer(t *testing.T) {
	a := newTestAdapter(nil)
	doc, err := a.ParseHTML(`<html><body><p>redesigned</p></body></html>`)
	require.NoError(t, err)

	_, err = a.ParseListing(doc)

	assert.True(t, errors.Is(err, types.ErrMarkupShapeChange))
}

func TestListProducts_OverHTTP(t *testing.T) {
	html, err := os.ReadFile("testdata/listing.html")
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Write(html)
	}))
	defer server.Close()

	config := types.DefaultConfig()
	a := NewHMAdapter(config, testLogger())
	defer a.Close()

	records, err := a.ListProducts(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestListProducts_FetchFailure(t *testing.T) {
	a := newTestAdapter(pageFetcher{})

	_, err := a.ListProducts(context.Background(), "https://shop.test/en_us/men/products/jeans.html")

	assert.True(t, errors.Is(err, types.ErrNetworkFailure))
}

func TestColorVariants(t *testing.T) {
	a := newTestAdapter(pageFetcher{
		"https://shop.test/en_us/productpage.0985159001.html": productPage,
	})

	variants, err := a.ColorVariants(context.Background(), "0985159001")

	require.NoError(t, err)
	assert.Equal(t, []types.ColorVariant{
		{ProductID: "0985159001", ColorName: "Denim blue"},
		{ProductID: "0985159002", ColorName: "Black"},
	}, variants)
}

func TestColorVariants_NoPicker(t *testing.T) {
	a := newTestAdapter(pageFetcher{
		"https://shop.test/en_us/productpage.0985159001.html": `<html><body></body></html>`,
	})

	_, err := a.ColorVariants(context.Background(), "0985159001")

	assert.True(t, errors.Is(err, types.ErrMarkupShapeChange))
}

func TestExtractVariant(t *testing.T) {
	a := newTestAdapter(pageFetcher{
		"https://shop.test/en_us/productpage.0985159001.html": variantPage,
	})

	records, err := a.ExtractVariant(context.Background(), "0985159001")

	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "0985159001", records[0].ProductID)
	assert.Equal(t, "19.99", records[0].Price)
	assert.Contains(t, records[0].Name, "Slim  Jeans")
	assert.Equal(t, "Slim fit", records[0].Fit)
	assert.Equal(t, "Cotton 98%, Elastane 2%", records[0].Composition)
	assert.Equal(t, `The model is 185cm/6'1" and wears a size 32/32`, records[0].Size)

	// single-valued attributes are forward filled onto the second row
	assert.Equal(t, "0985159001", records[1].ProductID)
	assert.Equal(t, "Slim fit", records[1].Fit)
	assert.Equal(t, "Polyester 65%, Cotton 35%", records[1].Composition)
	assert.Equal(t, records[0].Size, records[1].Size)
}

func TestExtractVariant_MissingName(t *testing.T) {
	a := newTestAdapter(pageFetcher{
		"https://shop.test/en_us/productpage.0985159001.html": `<div class="primary-row product-item-price">$ 19.99</div>`,
	})

	_, err := a.ExtractVariant(context.Background(), "0985159001")

	assert.True(t, errors.Is(err, types.ErrMarkupShapeChange))
}

func TestExtractVariant_UnparseablePrice(t *testing.T) {
	a := newTestAdapter(pageFetcher{
		"https://shop.test/en_us/productpage.0985159001.html": `<h1 class="primary product-item-headline">Jeans</h1>
<div class="primary-row product-item-price">Sold out</div>`,
	})

	_, err := a.ExtractVariant(context.Background(), "0985159001")

	assert.True(t, errors.Is(err, types.ErrParseFailure))
}

func TestProductURL(t *testing.T) {
	a := newTestAdapter(nil)

	assert.Equal(t, "https://shop.test/en_us/productpage.0985159001.html", a.ProductURL("0985159001"))
}

func TestProbeSelectors(t *testing.T) {
	a := newTestAdapter(nil)
	doc, err := a.ParseHTML(productPage + variantPage)
	require.NoError(t, err)

	counts := map[string]int{}
	for _, p := range a.ProbeSelectors(doc) {
		counts[p.Name] = p.Count
	}

	assert.Equal(t, 0, counts["listing card"])
	assert.Equal(t, 1, counts["active color"])
	assert.Equal(t, 2, counts["other color"])
	assert.Equal(t, 1, counts["variant name"])
	assert.Equal(t, 5, counts["attribute block"])
}

func TestParseVariant_UnknownTextBlockIsIgnored(t *testing.T) {
	a := newTestAdapter(nil)
	doc, err := a.ParseHTML(`<h1 class="primary product-item-headline">Slim Jeans</h1>
<div class="primary-row product-item-price">$ 19.99</div>
<div class="pdp-description-list-item">Art. No.
0985159001</div>
<div class="pdp-description-list-item">Composition
Cotton 99%, Elastane 1%</div>
<div class="pdp-description-list-item">Description
Denim blue, Solid-color</div>`)
	require.NoError(t, err)

	records, err := a.ParseVariant(doc)

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "0985159001", records[0].ProductID)
	assert.Equal(t, "Cotton 99%, Elastane 1%", records[0].Composition)
}
