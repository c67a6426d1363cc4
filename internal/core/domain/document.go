package domain

import "encoding/json"

// Document is the whole persisted state: every inventory plus global config.
// It is written wholesale on each save, never partially.
type Document struct {
	Inventories map[string]Inventory `json:"inventories"`
	Config      Config               `json:"config"`
}

type Inventory struct {
	Items map[string]Item `json:"items"`
}

type Config struct {
	ExpiryThresholdDays int `json:"expiry_threshold_days"`
}

func NewDocument() *Document {
	return &Document{
		Inventories: make(map[string]Inventory),
		Config:      Config{ExpiryThresholdDays: DefaultExpiryThresholdDays},
	}
}

// UnmarshalJSON accepts the legacy single-inventory shape {"items": {...}}
// and wraps it under the "default" inventory id.
func (d *Document) UnmarshalJSON(data []byte) error {
	type alias Document
	aux := struct {
		*alias
		LegacyItems map[string]Item `json:"items"`
	}{alias: (*alias)(d)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if d.Inventories == nil && aux.LegacyItems != nil {
		d.Inventories = map[string]Inventory{
			"default": {Items: aux.LegacyItems},
		}
	}
	return nil
}

// Normalize is the one-way load-time migration: it initializes absent maps,
// backfills the config default, and floors negative counters. Item fields
// missing from the stored blob already decode to their defaults (0, "", false).
func (d *Document) Normalize() {
	if d.Inventories == nil {
		d.Inventories = make(map[string]Inventory)
	}
	if d.Config.ExpiryThresholdDays <= 0 {
		d.Config.ExpiryThresholdDays = DefaultExpiryThresholdDays
	}
	for id, inv := range d.Inventories {
		if inv.Items == nil {
			inv.Items = make(map[string]Item)
			d.Inventories[id] = inv
		}
		for name, it := range inv.Items {
			it.Quantity = floorZero(it.Quantity)
			it.Threshold = floorZero(it.Threshold)
			inv.Items[name] = it
		}
	}
}
