package datastores

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// snapshotContact is the on-disk form of a [Contact].
type snapshotContact struct {
	Name     string   `yaml:"name"`
	Phones   []string `yaml:"phones,omitempty"`
	Birthday string   `yaml:"birthday,omitempty"`
}

type snapshot struct {
	Contacts []snapshotContact `yaml:"contacts"`
}

// WriteSnapshot encodes contacts to w as YAML, preserving their order.
func WriteSnapshot(w io.Writer, contacts []*Contact) error {
	var snap snapshot
	snap.Contacts = make([]snapshotContact, 0, len(contacts))
	for _, c := range contacts {
		snap.Contacts = append(snap.Contacts, snapshotContact{
			Name:     c.Name,
			Phones:   c.Phones,
			Birthday: formatBirthday(c.Birthday),
		})
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2) //nolint: mnd // yaml indentation
	if err := enc.Encode(&snap); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return enc.Close()
}

// ReadSnapshot decodes a snapshot written by [WriteSnapshot].
// Every record goes through the same validation as a fresh one.
func ReadSnapshot(r io.Reader) ([]*Contact, error) {
	var snap snapshot
	if err := yaml.NewDecoder(r).Decode(&snap); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	contacts := make([]*Contact, 0, len(snap.Contacts))
	for i, sc := range snap.Contacts {
		c, err := NewContact(sc.Name, sc.Birthday)
		if err != nil {
			return nil, fmt.Errorf("snapshot contact #%d: %w", i, err)
		}
		for _, phone := range sc.Phones {
			if err := c.AddPhone(phone); err != nil {
				return nil, fmt.Errorf("snapshot contact %q: %w", sc.Name, err)
			}
		}
		contacts = append(contacts, c)
	}
	return contacts, nil
}

// SaveFile writes every contact of s to path, replacing it atomically.
func SaveFile(ctx context.Context, s ContactsStore, path string) error {
	contacts, err := s.All(ctx)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint: errcheck // gone after a successful rename
	if err := WriteSnapshot(tmp, contacts); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// LoadFile adds the contacts saved at path to s and returns how many were loaded.
// A missing file loads nothing and is not an error.
func LoadFile(ctx context.Context, s ContactsStore, path string) (int, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load snapshot: %w", err)
	}
	defer f.Close()

	contacts, err := ReadSnapshot(f)
	if err != nil {
		return 0, err
	}
	for _, c := range contacts {
		if err := s.Add(ctx, c); err != nil {
			return 0, err
		}
	}
	return len(contacts), nil
}
