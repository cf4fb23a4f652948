package mercadolibre

import "strings"

// ListingIDPrefix is the prefix every MercadoLibre listing id carries
const ListingIDPrefix = "ML"

// ExtractListingID pulls a listing id out of a webhook resource path such as
// "/items/MLM123456" or "/items/MLM123456/variations?source=news". The path
// is scanned from its last segment backwards; the first segment that looks
// like a listing id wins. The id is returned uppercased.
func ExtractListingID(resource string) (string, bool) {
	resource, _, _ = strings.Cut(resource, "?")
	segments := strings.Split(resource, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		candidate := strings.ToUpper(strings.TrimSpace(segments[i]))
		if isListingID(candidate) {
			return candidate, true
		}
	}
	return "", false
}

// isListingID reports whether an uppercased segment is a plausible listing
// id: the ML prefix followed by at least one digit somewhere after it.
func isListingID(s string) bool {
	if !strings.HasPrefix(s, ListingIDPrefix) {
		return false
	}
	for _, r := range s[len(ListingIDPrefix):] {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}
