package search

import "fmt"

// FilterLevel builds a Meilisearch filter expression restricting a suggest
// query to one administrative level (prefecture/city/town).
func FilterLevel(level string) string {
	return fmt.Sprintf("level = %q", level)
}

// FilterLevelPref restricts a suggest query to one level within a single
// prefecture, narrowing typeahead results once a user has already picked
// a prefecture.
func FilterLevelPref(level, pref string) string {
	return fmt.Sprintf("level = %q AND pref = %q", level, pref)
}
