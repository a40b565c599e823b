package datastores

import (
	"context"
	"sync"
)

// ContactsInmem implements [ContactsStore].
// Contacts are copied on the way in and out so callers never share state with the store.
type ContactsInmem struct {
	mu       sync.Mutex
	index    map[string]int
	contacts []*Contact
}

var _ ContactsStore = (*ContactsInmem)(nil)

func NewContactsInmem(cs ...*Contact) *ContactsInmem {
	s := &ContactsInmem{index: make(map[string]int, len(cs))}
	for _, c := range cs {
		s.add(c)
	}
	return s
}

func (s *ContactsInmem) add(c *Contact) {
	if i, ok := s.index[c.Name]; ok {
		s.contacts[i] = c.Clone()
		return
	}
	s.index[c.Name] = len(s.contacts)
	s.contacts = append(s.contacts, c.Clone())
}

func (s *ContactsInmem) Add(_ context.Context, c *Contact) error {
	if err := ValidateName(c.Name).Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.add(c)
	return nil
}

func (s *ContactsInmem) Get(_ context.Context, name string) (*Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[name]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return s.contacts[i].Clone(), nil
}

func (s *ContactsInmem) All(_ context.Context) ([]*Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clones(s.contacts), nil
}

func (s *ContactsInmem) List(_ context.Context, offset, length int) ([]*Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := min(max(offset, 0), len(s.contacts))
	end := start + min(max(length, 0), len(s.contacts)-start)
	return clones(s.contacts[start:end]), nil
}

func (s *ContactsInmem) Search(_ context.Context, query string) ([]*Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clones(filter(s.contacts, query)), nil
}

func (s *ContactsInmem) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.contacts), nil
}

func clones(cs []*Contact) []*Contact {
	out := make([]*Contact, len(cs))
	for i, c := range cs {
		out[i] = c.Clone()
	}
	return out
}
