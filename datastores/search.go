package datastores

import (
	"strings"

	"golang.org/x/text/cases"
)

// matcher reports whether a contact's name or one of its phones contains
// query, ignoring case. A [cases.Caser] is stateful so each matcher owns one.
type matcher struct {
	fold  cases.Caser
	query string
}

func newMatcher(query string) *matcher {
	fold := cases.Fold()
	return &matcher{fold: fold, query: fold.String(query)}
}

func (m *matcher) match(c *Contact) bool {
	if strings.Contains(m.fold.String(c.Name), m.query) {
		return true
	}
	for _, phone := range c.Phones {
		if strings.Contains(m.fold.String(phone), m.query) {
			return true
		}
	}
	return false
}

func filter(contacts []*Contact, query string) []*Contact {
	m := newMatcher(query)
	found := make([]*Contact, 0)
	for _, c := range contacts {
		if m.match(c) {
			found = append(found, c)
		}
	}
	return found
}
