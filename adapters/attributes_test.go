package adapters

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blocksFrom(t *testing.T, html string) []attributeBlock {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	var blocks []attributeBlock
	doc.Find(attributeBlockSelector).Each(func(_ int, s *goquery.Selection) {
		blocks = append(blocks, parseAttributeBlock(s))
	})
	return blocks
}

func TestParseAttributeBlock_TextLines(t *testing.T) {
	blocks := blocksFrom(t, `
<div class="pdp-description-list-item">
Composition

Cotton 80%, Elastane 20%
</div>
<div class="pdp-description-list-item">
Lining: Polyester 100%
</div>`)

	require.Len(t, blocks, 2)
	assert.Equal(t, attributeBlock{Label: "Composition", Values: []string{"Cotton 80%, Elastane 20%"}}, blocks[0])
	assert.True(t, blocks[1].continuation())
	assert.Equal(t, []string{"Lining: Polyester 100%"}, blocks[1].Values)
}

func TestFoldAttributes(t *testing.T) {
	attrs := foldAttributes([]attributeBlock{
		{Values: []string{"orphan"}},
		{Label: "Composition", Values: []string{"Cotton 100%"}},
		{Label: "Fit", Values: []string{"Regular fit"}},
		{Label: "Composition:", Values: []string{"Polyester 100%"}},
		{Values: []string{"Elastane 5%"}},
		{Label: "Concept", Values: []string{"DENIM"}},
	})

	require.Len(t, attrs, 3)
	assert.Equal(t, colComposition, attrs[0].Column)
	assert.Equal(t, []string{"Cotton 100%", "Polyester 100%", "Elastane 5%"}, attrs[0].Values)
	assert.Equal(t, colFit, attrs[1].Column)
	assert.Equal(t, "", attrs[2].Column)
}

func TestExpandRows_ForwardFill(t *testing.T) {
	rows := expandRows([]attribute{
		{Column: colProductID, Values: []string{"0985159001"}},
		{Column: colComposition, Values: []string{"a", "b", "c"}},
		{Column: colSize, Values: nil},
		{Column: "", Values: []string{"x", "y", "z", "w"}},
	})

	require.Len(t, rows, 3)
	for i, want := range []string{"a", "b", "c"} {
		assert.Equal(t, "0985159001", rows[i][colProductID])
		assert.Equal(t, want, rows[i][colComposition])
		_, hasSize := rows[i][colSize]
		assert.False(t, hasSize)
	}
}

func TestExpandRows_Empty(t *testing.T) {
	assert.Nil(t, expandRows(nil))
	assert.Nil(t, expandRows([]attribute{{Label: "Concept", Values: []string{"DENIM"}}}))
}

func TestStripCompositionPrefixes(t *testing.T) {
	assert.Equal(t, "Cotton 98%, Elastane 2%", stripCompositionPrefixes("Shell: Cotton 98%, Elastane 2%"))
	assert.Equal(t, "Polyester 65%, Cotton 35%", stripCompositionPrefixes("Pocket lining: Polyester 65%, Cotton 35%"))
	assert.Equal(t, "Polyester 100%", stripCompositionPrefixes("Lining: Polyester 100%"))
	assert.Equal(t, "Cotton 100%", stripCompositionPrefixes("Cotton 100%"))
}

func TestParseAttributeBlock_UnknownTextLabel(t *testing.T) {
	blocks := blocksFrom(t, `
<div class="pdp-description-list-item">
Description
Denim blue, Solid-color
</div>
<div class="pdp-description-list-item">
Size
</div>`)

	require.Len(t, blocks, 2)
	assert.Equal(t, attributeBlock{Label: "Description", Values: []string{"Denim blue, Solid-color"}}, blocks[0])
	assert.False(t, blocks[0].continuation())
	assert.Equal(t, attributeBlock{Label: "Size"}, blocks[1])

	attrs := foldAttributes(blocks)
	require.Len(t, attrs, 2)
	assert.Equal(t, "", attrs[0].Column)
}
