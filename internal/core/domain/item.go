package domain

import (
	"encoding/json"
	"strings"
)

const (
	// DefaultExpiryThresholdDays is the global expiring-soon window applied
	// when a stored document carries no config.
	DefaultExpiryThresholdDays = 7

	// DefaultExpiryAlertDays is the per-item alert window used when an item
	// has no restock threshold of its own.
	DefaultExpiryAlertDays = 7
)

// Item is one tracked product within an inventory, keyed by name.
// Threshold doubles as the restock trigger for to-do reconciliation and the
// low-stock cutoff in statistics; it is serialized under the
// auto_add_to_list_quantity key with the legacy threshold key accepted on load.
type Item struct {
	Quantity       int    `json:"quantity"`
	Unit           string `json:"unit"`
	Category       string `json:"category"`
	ExpiryDate     string `json:"expiry_date"`
	AutoAddEnabled bool   `json:"auto_add_enabled"`
	Threshold      int    `json:"auto_add_to_list_quantity"`
	TodoList       string `json:"todo_list"`
}

func (it *Item) UnmarshalJSON(data []byte) error {
	type alias Item
	aux := struct {
		*alias
		LegacyThreshold *int `json:"threshold"`
	}{alias: (*alias)(it)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if it.Threshold == 0 && aux.LegacyThreshold != nil {
		it.Threshold = *aux.LegacyThreshold
	}
	return nil
}

// AlertDays returns the per-item expiry alert window, distinct from the
// global expiry_threshold_days of the document config.
func (it Item) AlertDays() int {
	if it.Threshold > 0 {
		return it.Threshold
	}
	return DefaultExpiryAlertDays
}

// ItemPatch carries optional field updates; nil fields are left untouched.
type ItemPatch struct {
	Quantity       *int
	Unit           *string
	Category       *string
	ExpiryDate     *string
	AutoAddEnabled *bool
	Threshold      *int
	TodoList       *string
}

// Apply merges the patch onto the item, flooring quantity and threshold at
// zero, and returns the names of fields whose value actually changed.
func (p ItemPatch) Apply(it *Item) []string {
	var changed []string
	if p.Quantity != nil {
		if v := floorZero(*p.Quantity); v != it.Quantity {
			it.Quantity = v
			changed = append(changed, "quantity")
		}
	}
	if p.Unit != nil && *p.Unit != it.Unit {
		it.Unit = *p.Unit
		changed = append(changed, "unit")
	}
	if p.Category != nil && *p.Category != it.Category {
		it.Category = *p.Category
		changed = append(changed, "category")
	}
	if p.ExpiryDate != nil && *p.ExpiryDate != it.ExpiryDate {
		it.ExpiryDate = *p.ExpiryDate
		changed = append(changed, "expiry_date")
	}
	if p.AutoAddEnabled != nil && *p.AutoAddEnabled != it.AutoAddEnabled {
		it.AutoAddEnabled = *p.AutoAddEnabled
		changed = append(changed, "auto_add_enabled")
	}
	if p.Threshold != nil {
		if v := floorZero(*p.Threshold); v != it.Threshold {
			it.Threshold = v
			changed = append(changed, "auto_add_to_list_quantity")
		}
	}
	if p.TodoList != nil && *p.TodoList != it.TodoList {
		it.TodoList = *p.TodoList
		changed = append(changed, "todo_list")
	}
	return changed
}

// ValidName reports whether an item name is usable as a key.
func ValidName(name string) bool {
	return strings.TrimSpace(name) != ""
}

func floorZero(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
