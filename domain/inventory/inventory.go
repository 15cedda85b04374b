// Package inventory holds the inventory document and the pure operations that
// produce a new snapshot from an old one.
//
// Every operation returns a fresh Inventory and leaves its input untouched, so
// callers can persist the result as a whole record.
package inventory

import (
	"errors"
	"sort"
)

var (
	// ErrItemNotFound is returned when no item carries the requested id.
	ErrItemNotFound = errors.New("item not found")
	// ErrUnknownCategory is returned for names outside the closed category set.
	ErrUnknownCategory = errors.New("unknown category")
)

// Item is a single inventory entry.
type Item struct {
	ID     string `json:"id" dynamodbav:"id"`
	Name   string `json:"name" dynamodbav:"name"`
	Amount string `json:"amount" dynamodbav:"amount"`
	Date   string `json:"date,omitempty" dynamodbav:"date,omitempty"`
}

// Inventory maps each category to its ordered items.
type Inventory map[Category][]Item

// Record is the stored document for one identity.
type Record struct {
	Owner     string    `json:"userEmail"`
	Inventory Inventory `json:"inventory"`
}

// New returns an inventory with every category present and empty.
func New() Inventory {
	inv := make(Inventory, len(categoryOrder))
	for _, c := range categoryOrder {
		inv[c] = []Item{}
	}
	return inv
}

// NewRecord returns the initial record for owner.
func NewRecord(owner string) *Record {
	return &Record{Owner: owner, Inventory: New()}
}

// Clone returns a copy that shares no slices with inv.
func (inv Inventory) Clone() Inventory {
	if inv == nil {
		return Inventory{}
	}
	out := make(Inventory, len(inv))
	for c, items := range inv {
		if items == nil {
			out[c] = nil
			continue
		}
		cp := make([]Item, len(items))
		copy(cp, items)
		out[c] = cp
	}
	return out
}

// Count returns the number of items across all categories.
func (inv Inventory) Count() int {
	n := 0
	for _, items := range inv {
		n += len(items)
	}
	return n
}

// ScanOrder lists the categories present in inv in the order lookups visit
// them: the known categories first, then anything else sorted by name.
func (inv Inventory) ScanOrder() []Category {
	order := make([]Category, 0, len(inv))
	for _, c := range categoryOrder {
		if _, ok := inv[c]; ok {
			order = append(order, c)
		}
	}
	var extra []Category
	for c := range inv {
		if !c.IsValid() {
			extra = append(extra, c)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(order, extra...)
}

// locate returns the category and index of the first item with id.
func (inv Inventory) locate(id string) (Category, int, bool) {
	for _, c := range inv.ScanOrder() {
		for i, item := range inv[c] {
			if item.ID == id {
				return c, i, true
			}
		}
	}
	return "", -1, false
}

// Add appends item to category. The bucket is created when missing. Ids are
// not checked for uniqueness.
func Add(inv Inventory, category Category, item Item) Inventory {
	out := inv.Clone()
	if out[category] == nil {
		out[category] = []Item{}
	}
	out[category] = append(out[category], item)
	return out
}

// Update replaces the first item whose id matches. On ErrItemNotFound the
// input is returned as is.
func Update(inv Inventory, id string, replacement Item) (Inventory, error) {
	c, i, ok := inv.locate(id)
	if !ok {
		return inv, ErrItemNotFound
	}
	out := inv.Clone()
	out[c][i] = replacement
	return out, nil
}

// Remove deletes the first item whose id matches, keeping the order of the
// remaining items. On ErrItemNotFound the input is returned as is.
func Remove(inv Inventory, id string) (Inventory, error) {
	c, i, ok := inv.locate(id)
	if !ok {
		return inv, ErrItemNotFound
	}
	out := inv.Clone()
	bucket := out[c]
	out[c] = append(bucket[:i:i], bucket[i+1:]...)
	return out, nil
}

// Find returns the first item whose id matches and the category holding it.
func Find(inv Inventory, id string) (Category, Item, error) {
	c, i, ok := inv.locate(id)
	if !ok {
		return "", Item{}, ErrItemNotFound
	}
	return c, inv[c][i], nil
}
