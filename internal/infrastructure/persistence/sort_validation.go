package persistence

import "strings"

// List endpoints accept sort parameters from the query string, which
// end up interpolated into ORDER BY. Both pieces go through a whitelist
// so a crafted parameter can never reach the SQL.

// ValidateSortOrder normalizes a direction to ASC or DESC, defaulting
// to DESC for anything unrecognized.
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "asc") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField when the whitelist allows it,
// otherwise defaultField.
func ValidateSortField(sortField string, allowed map[string]bool, defaultField string) string {
	if field := strings.TrimSpace(sortField); allowed[field] {
		return field
	}
	return defaultField
}

// UserSortFields whitelists the sortable user columns.
var UserSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"name":          true,
	"email":         true,
	"role":          true,
	"status":        true,
	"last_login_at": true,
}

// OrderSortFields whitelists the sortable order columns.
var OrderSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"user_id":      true,
	"status":       true,
	"total_price":  true,
	"is_paid":      true,
	"paid_at":      true,
	"is_delivered": true,
	"delivered_at": true,
}
