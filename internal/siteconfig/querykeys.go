package siteconfig

import "github.com/Simplici0/weddingquote/internal/lead"

// Query keys that carry document state rather than answers. Answers travel
// in the same query string keyed by question id, so no question may use one.
const (
	QueryKeyPackageID   = "packageId"
	QueryKeyCustom      = "custom"
	QueryKeyRequests    = "requests"
	QueryKeyAdjustments = "adjustments"
	QueryKeyLocale      = "lang"
)

var reservedQueryKeys = func() map[string]bool {
	keys := map[string]bool{
		QueryKeyPackageID:   true,
		QueryKeyCustom:      true,
		QueryKeyRequests:    true,
		QueryKeyAdjustments: true,
		QueryKeyLocale:      true,
	}
	for _, k := range lead.QueryKeys() {
		keys[k] = true
	}
	return keys
}()

// IsReservedQueryKey reports whether key carries something other than an
// answer, including the current and legacy lead keys.
func IsReservedQueryKey(key string) bool {
	return reservedQueryKeys[key]
}
