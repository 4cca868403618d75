package models

import "strings"

// FilterSewadars returns the sewadars whose name contains query, ignoring case.
// An empty query returns the list unchanged.
func FilterSewadars(list []Sewadar, query string) []Sewadar {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return list
	}
	filtered := make([]Sewadar, 0, len(list))
	for _, s := range list {
		if strings.Contains(strings.ToLower(s.Name), query) {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

// FindSewadarByName returns the first sewadar whose name matches, ignoring case
func FindSewadarByName(list []Sewadar, name string) (Sewadar, bool) {
	for _, s := range list {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return Sewadar{}, false
}

// FindCounterByName returns the first counter whose name matches, ignoring case
func FindCounterByName(list []Counter, name string) (Counter, bool) {
	for _, c := range list {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return Counter{}, false
}
