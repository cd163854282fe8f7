package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	bucketName  = []byte("preferences")
	darkModeKey = []byte("darkMode")
)

// Theme is the dashboard color scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func (t Theme) Valid() bool { return t == ThemeLight || t == ThemeDark }

// Store persists display preferences across restarts. A missing value reads
// as the light theme.
type Store struct {
	db *bolt.DB
}

func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open preferences: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, e := tx.CreateBucketIfNotExists(bucketName)
		return e
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Theme() (Theme, error) {
	dark := false
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketName).Get(darkModeKey)
		if len(v) == 0 {
			return nil
		}
		// Malformed values fall back to light.
		dark, _ = strconv.ParseBool(string(v))
		return nil
	})
	if err != nil {
		return ThemeLight, err
	}
	if dark {
		return ThemeDark, nil
	}
	return ThemeLight, nil
}

func (s *Store) SetTheme(t Theme) error {
	if !t.Valid() {
		return fmt.Errorf("unknown theme %q", t)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put(darkModeKey, []byte(strconv.FormatBool(t == ThemeDark)))
	})
}

// Toggle flips the stored theme in one transaction and returns the new value.
func (s *Store) Toggle() (Theme, error) {
	next := ThemeLight
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		dark, _ := strconv.ParseBool(string(b.Get(darkModeKey)))
		if !dark {
			next = ThemeDark
		}
		return b.Put(darkModeKey, []byte(strconv.FormatBool(!dark)))
	})
	if err != nil {
		return ThemeLight, err
	}
	return next, nil
}
