// Package codepage resolves legacy single-byte text encodings by name.
//
// Register must be called once at process start before Lookup is used;
// further calls are no-ops.
package codepage

import (
	"errors"
	"strings"
	"sync"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// ErrNotRegistered is returned by Lookup before Register has run.
var ErrNotRegistered = errors.New("codepage: encodings not registered")

var (
	once     sync.Once
	mu       sync.RWMutex
	registry map[string]encoding.Encoding
)

// Register installs the legacy code page table.
func Register() {
	once.Do(func() {
		m := map[string]encoding.Encoding{
			"utf8":   unicode.UTF8,
			"latin1": charmap.ISO8859_1,
		}
		for _, e := range charmap.All {
			cm, ok := e.(*charmap.Charmap)
			if !ok {
				continue
			}
			m[normalize(cm.String())] = cm
		}
		mu.Lock()
		registry = m
		mu.Unlock()
	})
}

// Lookup returns the encoding registered under name. Names are matched
// ignoring case, spaces, dashes and underscores ("Windows-1252",
// "windows1252"); IANA names and aliases such as "cp437" are accepted too.
func Lookup(name string) (encoding.Encoding, error) {
	mu.RLock()
	m := registry
	mu.RUnlock()
	if m == nil {
		return nil, ErrNotRegistered
	}
	if e, ok := m[normalize(name)]; ok {
		return e, nil
	}
	e, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, errors.New("codepage: unsupported encoding " + name)
	}
	return e, nil
}

func normalize(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_':
			return -1
		}
		if r >= 'A' && r <= 'Z' {
			return r + 'a' - 'A'
		}
		return r
	}, name)
}
