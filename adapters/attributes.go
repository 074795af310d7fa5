package adapters

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Column names of the labelled attribute blocks on a variant page
const (
	colProductID                = "product_id"
	colComposition              = "composition"
	colFit                      = "fit"
	colProductSafety            = "product_safety"
	colSize                     = "size"
	colMoreSustainableMaterials = "more_sustainable_materials"
)

var attributeLabels = map[string]string{
	"art. no.":                   colProductID,
	"composition":                colComposition,
	"fit":                        colFit,
	"product safety":             colProductSafety,
	"size":                       colSize,
	"more sustainable materials": colMoreSustainableMaterials,
}

// Garment layer markers that precede a composition
var compositionPrefixes = []string{"Pocket lining: ", "Shell: ", "Lining: "}

// attributeBlock is either a named attribute or, when Label is empty,
// a continuation of the attribute before it.
type attributeBlock struct {
	Label  string
	Values []string
}

func (a attributeBlock) continuation() bool {
	return a.Label == ""
}

// attribute is a folded block with its column assignment
type attribute struct {
	Column string
	Label  string
	Values []string
}

// splitSegments splits text on line breaks and drops blank segments
func splitSegments(text string) []string {
	var segments []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			segments = append(segments, line)
		}
	}
	return segments
}

func lookupLabel(label string) (string, bool) {
	key := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(label), ":"))
	col, ok := attributeLabels[key]
	return col, ok
}

// parseAttributeBlock reads one description list item. A <dt> carries the
// label when present. Otherwise the first of several lines is the label,
// known or not, and a single line is a label only if it is a known one.
func parseAttributeBlock(s *goquery.Selection) attributeBlock {
	if dt := s.Find("dt").First(); dt.Length() > 0 {
		label := strings.TrimSpace(dt.Text())
		var values []string
		s.Find("dd").Each(func(_ int, dd *goquery.Selection) {
			values = append(values, splitSegments(dd.Text())...)
		})
		return attributeBlock{Label: label, Values: values}
	}

	segments := splitSegments(s.Text())
	if len(segments) == 0 {
		return attributeBlock{}
	}
	if len(segments) == 1 {
		if _, ok := lookupLabel(segments[0]); ok {
			return attributeBlock{Label: segments[0]}
		}
		return attributeBlock{Values: segments}
	}
	return attributeBlock{Label: segments[0], Values: segments[1:]}
}

// foldAttributes merges continuations and repeated labels into the
// attribute they continue. Unknown labels keep an empty Column.
func foldAttributes(blocks []attributeBlock) []attribute {
	var attrs []attribute
	index := map[string]int{}
	current := -1

	for _, block := range blocks {
		if block.continuation() {
			if current < 0 {
				continue
			}
			attrs[current].Values = append(attrs[current].Values, block.Values...)
			continue
		}

		key := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(block.Label), ":"))
		if i, ok := index[key]; ok {
			attrs[i].Values = append(attrs[i].Values, block.Values...)
			current = i
			continue
		}

		col, _ := lookupLabel(block.Label)
		attrs = append(attrs, attribute{Column: col, Label: block.Label, Values: block.Values})
		current = len(attrs) - 1
		index[key] = current
	}

	return attrs
}

// expandRows lays the attributes out as rows. Row i takes the i-th value of
// every attribute, repeating an attribute's last value once it runs out.
func expandRows(attrs []attribute) []map[string]string {
	n := 0
	for _, a := range attrs {
		if a.Column != "" && len(a.Values) > n {
			n = len(a.Values)
		}
	}
	if n == 0 {
		return nil
	}

	rows := make([]map[string]string, n)
	for i := range rows {
		row := make(map[string]string)
		for _, a := range attrs {
			if a.Column == "" || len(a.Values) == 0 {
				continue
			}
			j := i
			if j >= len(a.Values) {
				j = len(a.Values) - 1
			}
			row[a.Column] = a.Values[j]
		}
		rows[i] = row
	}
	return rows
}

// stripCompositionPrefixes removes garment layer markers from a composition
func stripCompositionPrefixes(composition string) string {
	for _, prefix := range compositionPrefixes {
		composition = strings.ReplaceAll(composition, prefix, "")
	}
	return strings.TrimSpace(composition)
}
