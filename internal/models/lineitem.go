// internal/models/lineitem.go
package models

import (
	"fmt"
	"strings"
)

// Unit is the pricing unit for a scope line item.
type Unit string

const (
	UnitSquare     Unit = "SQ" // roofing square (100 sq ft)
	UnitLinearFoot Unit = "LF"
	UnitEach       Unit = "EA"
	UnitSquareFoot Unit = "SF"
	UnitHour       Unit = "HR"
)

// ValidUnits lists every unit accepted at the boundary.
var ValidUnits = []Unit{UnitSquare, UnitLinearFoot, UnitEach, UnitSquareFoot, UnitHour}

// LineItem is one priced unit of repair work in a scope.
// Identity for matching is Code; when Code is empty, matching falls back to
// case-insensitive exact Description equality.
type LineItem struct {
	Code        string  `json:"code"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Unit        Unit    `json:"unit"`
	UnitPrice   float64 `json:"unitPrice"`
	TotalPrice  float64 `json:"totalPrice"`
	Category    string  `json:"category,omitempty"`
}

// MatchesCode reports whether the item is identified by the given trade code.
func (li LineItem) MatchesCode(code string) bool {
	return li.Code != "" && strings.EqualFold(li.Code, code)
}

// MatchesDescription reports a case-insensitive exact description match.
func (li LineItem) MatchesDescription(desc string) bool {
	return strings.EqualFold(strings.TrimSpace(li.Description), strings.TrimSpace(desc))
}

// ValidateLineItem rejects malformed records at the boundary rather than
// letting bad values propagate through scope arithmetic.
func ValidateLineItem(li LineItem) error {
	if li.Code == "" && strings.TrimSpace(li.Description) == "" {
		return fmt.Errorf("line item needs a code or a description")
	}
	if li.Quantity < 0 {
		return fmt.Errorf("line item %q: negative quantity %v", li.Code, li.Quantity)
	}
	if li.UnitPrice < 0 {
		return fmt.Errorf("line item %q: negative unit price %v", li.Code, li.UnitPrice)
	}
	if li.TotalPrice < 0 {
		return fmt.Errorf("line item %q: negative total price %v", li.Code, li.TotalPrice)
	}
	if li.Unit != "" {
		valid := false
		for _, u := range ValidUnits {
			if li.Unit == u {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("line item %q: unknown unit %q", li.Code, li.Unit)
		}
	}
	return nil
}

// ValidateScope validates every item in a scope, reporting the first failure.
func ValidateScope(scope []LineItem) error {
	for i, li := range scope {
		if err := ValidateLineItem(li); err != nil {
			return fmt.Errorf("scope item %d: %w", i, err)
		}
	}
	return nil
}

// TotalSquares sums the quantity of all SQ-denominated items in a scope.
// Used to estimate quantities for synthesized required items.
func TotalSquares(scope []LineItem) float64 {
	var total float64
	for _, li := range scope {
		if li.Unit == UnitSquare {
			total += li.Quantity
		}
	}
	return total
}

// Jurisdiction identifies where the loss property sits, for building-code
// upgrade evaluation.
type Jurisdiction struct {
	City  string `json:"city,omitempty"`
	State string `json:"state"`
	Zip   string `json:"zip,omitempty"`
}
