package helpers

import "strings"

// NormalizeIdentifier normalizes a search query into the title identifier
// stamped onto products crawled for that query. Lookup by identifier answers
// "have we already crawled this query" without re-hitting the network.
func NormalizeIdentifier(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}
