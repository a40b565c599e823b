package datastores

import (
	"context"
	"errors"
	"iter"
	"slices"
	"time"
)

// Contact is one address book record, keyed by its Name.
// A zero Birthday means the birthday is unknown.
type Contact struct {
	Name     string
	Phones   []string
	Birthday time.Time
}

// ContactsStore keeps contacts keyed by name, in insertion order.
type ContactsStore interface {
	// Add inserts c or replaces the contact with the same name.
	// A replaced contact keeps its position.
	Add(ctx context.Context, c *Contact) error
	Get(ctx context.Context, name string) (*Contact, error)
	All(ctx context.Context) ([]*Contact, error)
	List(ctx context.Context, offset, length int) ([]*Contact, error)
	Search(ctx context.Context, query string) ([]*Contact, error)
	Count(ctx context.Context) (int, error)
}

var (
	ErrObjectNotFound  = errors.New("store: object not found")
	ErrInvalidPageSize = errors.New("store: page size must be positive")
)

// NewContact returns a contact named name. An empty birthday leaves it unset.
func NewContact(name, birthday string) (*Contact, error) {
	if err := ValidateName(name).Err(); err != nil {
		return nil, err
	}
	c := &Contact{Name: name}
	if birthday != "" {
		if err := c.SetBirthday(birthday); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Contact) AddPhone(phone string) error {
	if err := ValidatePhone(phone).Err(); err != nil {
		return err
	}
	c.Phones = append(c.Phones, phone)
	return nil
}

func (c *Contact) RemovePhone(phone string) {
	c.Phones = slices.DeleteFunc(c.Phones, func(p string) bool { return p == phone })
}

// EditPhone replaces every occurrence of old with phone.
func (c *Contact) EditPhone(old, phone string) error {
	if err := ValidatePhone(phone).Err(); err != nil {
		return err
	}
	found := false
	for i, p := range c.Phones {
		if p == old {
			c.Phones[i], found = phone, true
		}
	}
	if !found {
		return ErrObjectNotFound
	}
	return nil
}

func (c *Contact) SetBirthday(value string) error {
	if err := ValidateBirthday(value).Err(); err != nil {
		return err
	}
	c.Birthday, _ = time.Parse(time.DateOnly, value)
	return nil
}

// DaysToBirthday reports the days left from today until the next birthday.
// It returns false when the birthday is unknown.
func (c *Contact) DaysToBirthday(today time.Time) (int, bool) {
	if c.Birthday.IsZero() {
		return 0, false
	}
	return DaysToNextBirthday(today, c.Birthday), true
}

// Clone returns a deep copy of c.
func (c *Contact) Clone() *Contact {
	clone := *c
	clone.Phones = slices.Clone(c.Phones)
	return &clone
}

// DaysToNextBirthday returns the number of days from today to the next
// occurrence of birthday's month and day, 0 when it is today.
// February 29 falls on March 1 in common years.
func DaysToNextBirthday(today, birthday time.Time) int {
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	next := time.Date(day.Year(), birthday.Month(), birthday.Day(), 0, 0, 0, 0, time.UTC)
	if next.Before(day) {
		next = time.Date(day.Year()+1, birthday.Month(), birthday.Day(), 0, 0, 0, 0, time.UTC)
	}
	return int(next.Sub(day).Hours() / 24) //nolint: mnd // hours per day in UTC
}

// Paginate returns a lazy sequence of pages of size contacts read from s.
// Only the last page may be shorter, and no empty page is produced.
func Paginate(ctx context.Context, s ContactsStore, size int) (iter.Seq2[[]*Contact, error], error) {
	if size <= 0 {
		return nil, ErrInvalidPageSize
	}
	return func(yield func([]*Contact, error) bool) {
		for offset := 0; ; offset += size {
			page, err := s.List(ctx, offset, size)
			if err != nil {
				yield(nil, err)
				return
			}
			if len(page) == 0 || !yield(page, nil) || len(page) < size {
				return
			}
		}
	}, nil
}
