package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/homestack/pantry/internal/core/domain"
	"github.com/homestack/pantry/internal/port"
)

var ErrEmptyName = errors.New("item name cannot be empty")

const (
	// EventUpdated is fired once per save; per-inventory variants carry the
	// inventory id as a suffix, e.g. pantry_updated_kitchen.
	EventUpdated          = "pantry_updated"
	EventThresholdUpdated = "pantry_threshold_updated"
)

// InventoryService owns all inventory state. Every mutation goes through it,
// the whole document is persisted on each save, and registered listeners are
// invoked after each successful save. Operations are coarse-grained under a
// single mutex; add-then-rename across two calls is not atomic.
type InventoryService struct {
	repo   port.StateRepository
	events port.EventSink
	now    func() time.Time

	mu         sync.Mutex
	doc        *domain.Document
	listeners  []listenerEntry
	nextHandle int
}

type listenerEntry struct {
	id int
	fn func()
}

func NewInventoryService(repo port.StateRepository, events port.EventSink) *InventoryService {
	return &InventoryService{
		repo:   repo,
		events: events,
		now:    time.Now,
		doc:    domain.NewDocument(),
	}
}

// Load reads the stored document, migrating the legacy single-inventory shape
// and backfilling defaults. An empty store is not an error.
func (s *InventoryService) Load(ctx context.Context) error {
	doc, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	if doc == nil {
		doc = domain.NewDocument()
	} else {
		doc.Normalize()
	}

	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
	return nil
}

// Save persists the entire document. On success it fires a change event for
// the given inventory (or for every inventory plus a global event when the id
// is empty) and then invokes all listeners in registration order. Persistence
// failures are logged and returned; event sink failures are logged only.
func (s *InventoryService) Save(ctx context.Context, inventoryID string) error {
	s.mu.Lock()
	if err := s.repo.Save(ctx, s.doc); err != nil {
		s.mu.Unlock()
		log.Printf("failed to save inventory state: %v", err)
		return fmt.Errorf("save state: %w", err)
	}
	ids := make([]string, 0, len(s.doc.Inventories))
	for id := range s.doc.Inventories {
		ids = append(ids, id)
	}
	listeners := make([]func(), len(s.listeners))
	for i, l := range s.listeners {
		listeners[i] = l.fn
	}
	s.mu.Unlock()

	if inventoryID != "" {
		s.fire(ctx, EventUpdated+"_"+inventoryID, nil)
	} else {
		sort.Strings(ids)
		for _, id := range ids {
			s.fire(ctx, EventUpdated+"_"+id, nil)
		}
		s.fire(ctx, EventUpdated, nil)
	}

	for _, fn := range listeners {
		fn()
	}
	return nil
}

func (s *InventoryService) fire(ctx context.Context, event string, payload map[string]any) {
	if s.events == nil {
		return
	}
	if err := s.events.Fire(ctx, event, payload); err != nil {
		log.Printf("failed to fire event %s: %v", event, err)
	}
}

// GetInventory returns a copy of the inventory, or an empty one when unknown.
func (s *InventoryService) GetInventory(inventoryID string) domain.Inventory {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.Inventory{Items: s.copyItems(inventoryID)}
}

// EnsureInventory creates an empty inventory record if absent. Idempotent.
func (s *InventoryService) EnsureInventory(inventoryID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureInventory(inventoryID)
}

func (s *InventoryService) ensureInventory(inventoryID string) domain.Inventory {
	inv, ok := s.doc.Inventories[inventoryID]
	if !ok {
		inv = domain.Inventory{Items: make(map[string]domain.Item)}
		s.doc.Inventories[inventoryID] = inv
	}
	return inv
}

func (s *InventoryService) GetItem(inventoryID, name string) (domain.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.doc.Inventories[inventoryID].Items[name]
	return it, ok
}

// GetAllItems returns a copy of the item map; empty when the inventory is unknown.
func (s *InventoryService) GetAllItems(inventoryID string) map[string]domain.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyItems(inventoryID)
}

func (s *InventoryService) copyItems(inventoryID string) map[string]domain.Item {
	items := make(map[string]domain.Item, len(s.doc.Inventories[inventoryID].Items))
	for name, it := range s.doc.Inventories[inventoryID].Items {
		items[name] = it
	}
	return items
}

// InventoryIDs returns the known inventory ids, sorted.
func (s *InventoryService) InventoryIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.doc.Inventories))
	for id := range s.doc.Inventories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// AddItem adds quantity to an existing item (other fields untouched) or
// creates a new item from the patch and defaults. The one operation that
// returns an error instead of false: an empty name yields ErrEmptyName.
func (s *InventoryService) AddItem(inventoryID, name string, quantity int, patch domain.ItemPatch) error {
	if !domain.ValidName(name) {
		return ErrEmptyName
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	inv := s.ensureInventory(inventoryID)

	if it, ok := inv.Items[name]; ok {
		it.Quantity = floorZero(it.Quantity + quantity)
		inv.Items[name] = it
		log.Printf("restocked item %q in inventory %q to %d", name, inventoryID, it.Quantity)
		return nil
	}

	it := domain.Item{}
	patch.Quantity = nil
	patch.Apply(&it)
	it.Quantity = floorZero(quantity)
	inv.Items[name] = it
	log.Printf("added item %q to inventory %q", name, inventoryID)
	return nil
}

// RemoveItem hard-deletes the item; no cascading side effects.
func (s *InventoryService) RemoveItem(inventoryID, name string) bool {
	if !domain.ValidName(name) {
		log.Printf("cannot remove item with empty name from inventory %q", inventoryID)
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.doc.Inventories[inventoryID]
	if !ok {
		log.Printf("cannot remove item %q from unknown inventory %q", name, inventoryID)
		return false
	}
	if _, ok := inv.Items[name]; !ok {
		log.Printf("cannot remove non-existent item %q from inventory %q", name, inventoryID)
		return false
	}
	delete(inv.Items, name)
	log.Printf("removed item %q from inventory %q", name, inventoryID)
	return true
}

// UpdateItem merges the patch onto a copy of the existing record and, when the
// name changes, moves the record under the new key.
func (s *InventoryService) UpdateItem(inventoryID, oldName, newName string, patch domain.ItemPatch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.doc.Inventories[inventoryID]
	if !ok {
		log.Printf("cannot update item %q in unknown inventory %q", oldName, inventoryID)
		return false
	}
	it, ok := inv.Items[oldName]
	if !ok {
		log.Printf("cannot update non-existent item %q in inventory %q", oldName, inventoryID)
		return false
	}

	patch.Apply(&it)
	if oldName != newName {
		log.Printf("renaming item %q to %q in inventory %q", oldName, newName, inventoryID)
		delete(inv.Items, oldName)
		inv.Items[newName] = it
	} else {
		inv.Items[oldName] = it
	}
	return true
}

// UpdateQuantity sets the quantity, floored at zero.
func (s *InventoryService) UpdateQuantity(inventoryID, name string, newQuantity int) bool {
	if !domain.ValidName(name) {
		log.Printf("cannot update quantity for item with empty name in inventory %q", inventoryID)
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.doc.Inventories[inventoryID].Items[name]
	if !ok {
		log.Printf("cannot update quantity for non-existent item %q in inventory %q", name, inventoryID)
		return false
	}
	it.Quantity = floorZero(newQuantity)
	s.doc.Inventories[inventoryID].Items[name] = it
	return true
}

// IncrementItem adds amount to the quantity; no upper bound.
func (s *InventoryService) IncrementItem(inventoryID, name string, amount int) bool {
	if !domain.ValidName(name) || amount < 0 {
		log.Printf("cannot increment item with invalid parameters: name=%q amount=%d", name, amount)
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.doc.Inventories[inventoryID].Items[name]
	if !ok {
		log.Printf("cannot increment non-existent item %q in inventory %q", name, inventoryID)
		return false
	}
	it.Quantity += amount
	s.doc.Inventories[inventoryID].Items[name] = it
	return true
}

// DecrementItem subtracts amount from the quantity, flooring at zero.
func (s *InventoryService) DecrementItem(inventoryID, name string, amount int) bool {
	if !domain.ValidName(name) || amount < 0 {
		log.Printf("cannot decrement item with invalid parameters: name=%q amount=%d", name, amount)
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.doc.Inventories[inventoryID].Items[name]
	if !ok {
		log.Printf("cannot decrement non-existent item %q in inventory %q", name, inventoryID)
		return false
	}
	it.Quantity = floorZero(it.Quantity - amount)
	s.doc.Inventories[inventoryID].Items[name] = it
	return true
}

// UpdateItemSettings applies the patch to an existing item, coercing counters
// to non-negative values, and logs which fields actually changed.
func (s *InventoryService) UpdateItemSettings(inventoryID, name string, patch domain.ItemPatch) bool {
	if !domain.ValidName(name) {
		log.Printf("cannot update settings for item with empty name in inventory %q", inventoryID)
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.doc.Inventories[inventoryID].Items[name]
	if !ok {
		log.Printf("cannot update settings for non-existent item %q in inventory %q", name, inventoryID)
		return false
	}
	changed := patch.Apply(&it)
	s.doc.Inventories[inventoryID].Items[name] = it
	if len(changed) > 0 {
		log.Printf("updated settings for item %q in inventory %q: %s",
			name, inventoryID, strings.Join(changed, ", "))
	}
	return true
}

func (s *InventoryService) ExpiryThresholdDays() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Config.ExpiryThresholdDays
}

// SetExpiryThreshold updates the global expiring-soon window and fires a
// threshold-changed event. It does not persist; callers save explicitly.
func (s *InventoryService) SetExpiryThreshold(ctx context.Context, days int) {
	s.mu.Lock()
	old := s.doc.Config.ExpiryThresholdDays
	s.doc.Config.ExpiryThresholdDays = days
	s.mu.Unlock()

	log.Printf("expiry threshold changed from %d to %d days", old, days)
	s.fire(ctx, EventThresholdUpdated, map[string]any{"new_threshold": days})
}

// ExpiringSoon reports items whose expiry date falls within the global
// threshold window, including already-expired items, sorted soonest first.
// Items with empty or unparseable dates are skipped with a warning.
// An empty inventoryID scans every inventory.
func (s *InventoryService) ExpiringSoon(inventoryID string) []domain.ExpiringItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expiringSoon(inventoryID)
}

func (s *InventoryService) expiringSoon(inventoryID string) []domain.ExpiringItem {
	today := domain.DateOf(s.now())
	cutoff := today.AddDate(0, 0, s.doc.Config.ExpiryThresholdDays)

	scan := s.doc.Inventories
	if inventoryID != "" {
		scan = map[string]domain.Inventory{inventoryID: s.doc.Inventories[inventoryID]}
	}

	expiring := []domain.ExpiringItem{}
	for invID, inv := range scan {
		for name, it := range inv.Items {
			if strings.TrimSpace(it.ExpiryDate) == "" {
				continue
			}
			expiry, err := domain.ParseExpiryDate(it.ExpiryDate)
			if err != nil {
				log.Printf("invalid expiry date for item %q: %s", name, it.ExpiryDate)
				continue
			}
			if expiry.After(cutoff) {
				continue
			}
			days := domain.DaysUntil(expiry, today)
			expiring = append(expiring, domain.ExpiringItem{
				InventoryID:     invID,
				Name:            name,
				ExpiryDate:      it.ExpiryDate,
				DaysUntilExpiry: days,
				Quantity:        it.Quantity,
				Unit:            it.Unit,
				Category:        it.Category,
				Status:          domain.ClassifyExpiry(days, it.AlertDays()),
			})
		}
	}

	sort.SliceStable(expiring, func(i, j int) bool {
		if expiring[i].DaysUntilExpiry != expiring[j].DaysUntilExpiry {
			return expiring[i].DaysUntilExpiry < expiring[j].DaysUntilExpiry
		}
		return expiring[i].Name < expiring[j].Name
	})
	return expiring
}

// Statistics derives the per-inventory summary; purely read-only.
func (s *InventoryService) Statistics(inventoryID string) domain.Statistics {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.doc.Inventories[inventoryID].Items
	stats := domain.Statistics{
		TotalItems:     len(items),
		Categories:     make(map[string]int),
		BelowThreshold: []domain.LowStockItem{},
	}
	for name, it := range items {
		stats.TotalQuantity += it.Quantity
		if it.Category != "" {
			stats.Categories[it.Category]++
		}
		if it.Threshold > 0 && it.Quantity <= it.Threshold {
			stats.BelowThreshold = append(stats.BelowThreshold, domain.LowStockItem{
				Name:      name,
				Quantity:  it.Quantity,
				Threshold: it.Threshold,
				Unit:      it.Unit,
				Category:  it.Category,
			})
		}
	}
	sort.Slice(stats.BelowThreshold, func(i, j int) bool {
		return stats.BelowThreshold[i].Name < stats.BelowThreshold[j].Name
	})
	stats.ExpiringItems = s.expiringSoon(inventoryID)
	return stats
}

// AddListener registers a callback invoked after every successful save and
// returns its de-registration handle.
func (s *InventoryService) AddListener(fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextHandle++
	id := s.nextHandle
	s.listeners = append(s.listeners, listenerEntry{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

func floorZero(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
