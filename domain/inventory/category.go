package inventory

import (
	"fmt"
	"strings"
)

// Category names a bucket inside an inventory.
type Category string

const (
	Beverages Category = "beverages"
	Food      Category = "food"
	Medicine  Category = "medicine"
	Fire      Category = "fire"
	Tools     Category = "tools"
	Money     Category = "money"
)

// legacyCustom was the name of the last bucket in an earlier frontend revision.
const legacyCustom = "custom"

// categoryOrder is the scan order used by Update, Remove and Find.
var categoryOrder = []Category{Beverages, Food, Medicine, Fire, Tools, Money}

// Categories returns the closed category set in scan order.
func Categories() []Category {
	out := make([]Category, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}

// ParseCategory normalizes s into a known category.
func ParseCategory(s string) (Category, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == legacyCustom {
		return Money, nil
	}
	for _, c := range categoryOrder {
		if string(c) == name {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// IsValid reports whether c belongs to the closed set.
func (c Category) IsValid() bool {
	for _, known := range categoryOrder {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string { return string(c) }
