package types

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNetworkFailure    = errors.New("network failure")
	ErrMarkupShapeChange = errors.New("markup shape changed")
	ErrParseFailure      = errors.New("parse failure")
	ErrDataIntegrity     = errors.New("data integrity failure")
	ErrListingMisaligned = errors.New("listing cards incomplete")
)

// CardIssue describes a listing card that could not be read completely
type CardIssue struct {
	Index     int
	ProductID string
	Missing   []string
}

// ListingError reports listing cards that were skipped. The records of all
// other cards are still valid.
type ListingError struct {
	Cards  int
	Issues []CardIssue
}

func (e *ListingError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, fmt.Sprintf("card %d (%q) missing %s", issue.Index, issue.ProductID, strings.Join(issue.Missing, "/")))
	}
	return fmt.Sprintf("%d of %d listing cards incomplete: %s", len(e.Issues), e.Cards, strings.Join(parts, "; "))
}

func (e *ListingError) Unwrap() []error {
	return []error{ErrListingMisaligned, ErrMarkupShapeChange}
}
