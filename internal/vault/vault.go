// Package vault is the in-memory set of passwords and TOTP records.
//
// Records are identified by their position. Deleting only sets a flag; the
// records are dropped by Compact right before the store is written out.
package vault

import (
	"encoding/json"
	"fmt"
	"time"
)

type Store struct {
	Passwords []Password `json:"pass"`
	TOTPs     []TOTP     `json:"totp"`
	Theme     int        `json:"ui_colour"`
}

func New() *Store {
	return &Store{Passwords: []Password{}, TOTPs: []TOTP{}}
}

// Parse decodes the plaintext JSON form of the store.
func Parse(data []byte) (*Store, error) {
	s := New()
	if err := json.Unmarshal(data, s); err != nil {
		return nil, err
	}
	if s.Passwords == nil {
		s.Passwords = []Password{}
	}
	if s.TOTPs == nil {
		s.TOTPs = []TOTP{}
	}
	return s, nil
}

// Marshal encodes the store. Deleted records are written too; call Compact
// first.
func (s *Store) Marshal() ([]byte, error) {
	out := *s
	if out.Passwords == nil {
		out.Passwords = []Password{}
	}
	if out.TOTPs == nil {
		out.TOTPs = []TOTP{}
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("marshal store: %w", err)
	}
	return data, nil
}

// AddPassword inserts rec right after index after, or appends it when after
// is the last index, and returns the new record's index.
func (s *Store) AddPassword(rec Password, after int) int {
	var at int
	s.Passwords, at = insertAfter(s.Passwords, rec, after)
	return at
}

func (s *Store) AddTOTP(rec TOTP, after int) int {
	var at int
	s.TOTPs, at = insertAfter(s.TOTPs, rec, after)
	return at
}

func (s *Store) ReplacePassword(i int, rec Password) {
	if i >= 0 && i < len(s.Passwords) {
		s.Passwords[i] = rec
	}
}

func (s *Store) ReplaceTOTP(i int, rec TOTP) {
	if i >= 0 && i < len(s.TOTPs) {
		s.TOTPs[i] = rec
	}
}

func (s *Store) TogglePassword(i int) {
	if i >= 0 && i < len(s.Passwords) {
		s.Passwords[i].Deleted = !s.Passwords[i].Deleted
	}
}

func (s *Store) ToggleTOTP(i int) {
	if i >= 0 && i < len(s.TOTPs) {
		s.TOTPs[i].Deleted = !s.TOTPs[i].Deleted
	}
}

// SwapPassword moves record i one slot up or down and returns its new
// index, which is i unchanged when it is already at that end.
func (s *Store) SwapPassword(i int, up bool) int {
	return swapAdjacent(s.Passwords, i, up)
}

func (s *Store) SwapTOTP(i int, up bool) int {
	return swapAdjacent(s.TOTPs, i, up)
}

// Compact drops every deleted record, keeping the order of the rest.
func (s *Store) Compact() {
	s.Passwords = compact(s.Passwords, func(p Password) bool { return p.Deleted })
	s.TOTPs = compact(s.TOTPs, func(t TOTP) bool { return t.Deleted })
}

// CycleTheme advances the theme index within a palette of n colours.
func (s *Store) CycleTheme(n int) {
	if n <= 0 {
		s.Theme = 0
		return
	}
	s.Theme = (s.Theme + 1) % n
}

// NormalizeTheme folds a stored theme index into a palette of n colours, so
// files written with a larger palette still load.
func (s *Store) NormalizeTheme(n int) {
	if n <= 0 {
		s.Theme = 0
		return
	}
	s.Theme %= n
	if s.Theme < 0 {
		s.Theme += n
	}
}

// RefreshCodes updates every TOTP code cache for now and reports whether any
// record moved to a new window.
func (s *Store) RefreshCodes(now time.Time) bool {
	changed := false
	for i := range s.TOTPs {
		if s.TOTPs[i].Refresh(now) {
			changed = true
		}
	}
	return changed
}

func insertAfter[T any](list []T, rec T, after int) ([]T, int) {
	if len(list) == 0 {
		return append(list, rec), 0
	}
	at := after + 1
	if at < 0 {
		at = 0
	}
	if at >= len(list) {
		return append(list, rec), len(list)
	}
	list = append(list, rec)
	copy(list[at+1:], list[at:])
	list[at] = rec
	return list, at
}

func swapAdjacent[T any](list []T, i int, up bool) int {
	if len(list) < 2 || i < 0 || i >= len(list) {
		return i
	}
	j := i + 1
	if up {
		j = i - 1
	}
	if j < 0 || j >= len(list) {
		return i
	}
	list[i], list[j] = list[j], list[i]
	return j
}

func compact[T any](list []T, deleted func(T) bool) []T {
	out := make([]T, 0, len(list))
	for _, rec := range list {
		if !deleted(rec) {
			out = append(out, rec)
		}
	}
	return out
}
