// Package storage moves the vault between memory and its data file.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"passrs/internal/crypto"
	"passrs/internal/vault"
)

var (
	ErrParse = errors.New("cannot parse data")
	ErrWrite = errors.New("could not save file")
)

// ParseError carries the text that failed to parse so it can be shown to the
// user, who may recover their data from it.
type ParseError struct {
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%v: %v", ErrParse, e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}

// Loaded is the result of reading the data file.
type Loaded struct {
	Store *vault.Store
	// Missing is set when there was no file and Store is a new empty set.
	Missing bool
}

// File is the data file plus its optional save journal.
type File struct {
	Path    string
	Journal *Journal
	Logger  *slog.Logger
}

func (f *File) logger() *slog.Logger {
	if f.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return f.Logger
}

// Load reads and decodes the data file. A nil key means the file holds plain
// JSON.
func (f *File) Load(key *crypto.Key) (*Loaded, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		f.logger().Info("data file missing, starting empty", "path", f.Path)
		return &Loaded{Store: vault.New(), Missing: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Path, err)
	}

	store, err := Decode(data, key)
	if err != nil {
		return nil, err
	}
	f.logger().Info("data file loaded", "path", f.Path, "passwords", len(store.Passwords), "totp", len(store.TOTPs), "encrypted", key != nil)
	return &Loaded{Store: store}, nil
}

// Decode opens (when key is set) and parses file contents.
func Decode(data []byte, key *crypto.Key) (*vault.Store, error) {
	plain := data
	if key != nil {
		var err error
		plain, err = crypto.Open(key, data)
		if err != nil {
			return nil, err
		}
	}

	store, err := vault.Parse(plain)
	if err != nil {
		return nil, &ParseError{Text: strings.ToValidUTF8(string(plain), "�"), Err: err}
	}
	return store, nil
}

// Encode compacts the store and returns the bytes to write: sealed under key,
// or plain JSON when key is nil.
func Encode(store *vault.Store, key *crypto.Key) ([]byte, error) {
	store.Compact()
	plain, err := store.Marshal()
	if err != nil {
		return nil, err
	}
	if key == nil {
		return plain, nil
	}
	return crypto.Seal(key, plain)
}

// Save compacts, encodes and writes the store over the data file in a single
// whole-file write.
func (f *File) Save(ctx context.Context, store *vault.Store, key *crypto.Key) error {
	data, err := Encode(store, key)
	if err != nil {
		return err
	}
	if err := f.write(data); err != nil {
		return err
	}
	f.journal(ctx, Entry{
		Path:      f.Path,
		Size:      len(data),
		Passwords: len(store.Passwords),
		TOTPs:     len(store.TOTPs),
		Encrypted: key != nil,
	})
	return nil
}

func (f *File) journal(ctx context.Context, e Entry) {
	if f.Journal == nil {
		return
	}
	if err := f.Journal.Append(ctx, e); err != nil {
		f.logger().Error("append save journal", "path", f.Path, "error", err)
	}
}

// TODO: write to a temp file and rename, so a failed write cannot leave a
// truncated data file behind.
func (f *File) write(data []byte) error {
	if err := os.WriteFile(f.Path, data, 0o600); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	f.logger().Info("data file saved", "path", f.Path, "bytes", len(data))
	return nil
}
