package domain

import "time"

const expiryDateLayout = "2006-01-02"

type ExpiryStatus string

const (
	ExpiryStatusExpired  ExpiryStatus = "expired"
	ExpiryStatusExpiring ExpiryStatus = "expiring"
	ExpiryStatusSafe     ExpiryStatus = "safe"
)

// ParseExpiryDate parses the stored YYYY-MM-DD form.
func ParseExpiryDate(s string) (time.Time, error) {
	return time.Parse(expiryDateLayout, s)
}

// DaysUntil returns the calendar-day difference between an expiry date and
// today; both arguments must be midnight-truncated dates in the same location.
func DaysUntil(expiry, today time.Time) int {
	return int(expiry.Sub(today).Hours() / 24)
}

// DateOf truncates a timestamp to its calendar date.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ClassifyExpiry buckets a days-left value against an alert window.
func ClassifyExpiry(daysLeft, alertDays int) ExpiryStatus {
	switch {
	case daysLeft < 0:
		return ExpiryStatusExpired
	case daysLeft <= alertDays:
		return ExpiryStatusExpiring
	default:
		return ExpiryStatusSafe
	}
}

// ExpiringItem is one entry of the expiring-soon report.
type ExpiringItem struct {
	InventoryID     string       `json:"inventory_id"`
	Name            string       `json:"name"`
	ExpiryDate      string       `json:"expiry_date"`
	DaysUntilExpiry int          `json:"days_until_expiry"`
	Quantity        int          `json:"quantity"`
	Unit            string       `json:"unit"`
	Category        string       `json:"category"`
	Status          ExpiryStatus `json:"status"`
}

// LowStockItem is one entry of the below-threshold statistics report.
type LowStockItem struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Threshold int    `json:"threshold"`
	Unit      string `json:"unit"`
	Category  string `json:"category"`
}

// Statistics is the derived per-inventory summary.
type Statistics struct {
	TotalItems     int            `json:"total_items"`
	TotalQuantity  int            `json:"total_quantity"`
	Categories     map[string]int `json:"categories"`
	BelowThreshold []LowStockItem `json:"below_threshold"`
	ExpiringItems  []ExpiringItem `json:"expiring_items"`
}
