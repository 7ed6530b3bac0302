// Package fs persists the local note collection to a single snapshot file.
//
// The format follows the file extension: .json (the default) or .yaml/.yml.
// Writes are atomic (temp file + rename), so a crash mid-save leaves the
// previous snapshot intact.
package fs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/cirrus/pkg/core"
)

// ErrCorrupt is returned by Load when the snapshot cannot be decoded.
var ErrCorrupt = errors.New("snapshot is corrupt")

// Snapshot implements core.Persister on top of one file.
type Snapshot struct {
	Path string

	codec Codec
	now   func() time.Time

	mu        sync.Mutex
	lastLoad  *time.Time
	lastSave  *time.Time
	lastCount int
}

// Option configures a Snapshot.
type Option func(*Snapshot)

// WithCodec forces a codec regardless of the file extension.
func WithCodec(c Codec) Option {
	return func(s *Snapshot) { s.codec = c }
}

// WithClock sets the clock used for savedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Snapshot) { s.now = now }
}

// NewSnapshot creates a persister for path. The codec is picked by extension;
// unknown extensions fall back to JSON.
func NewSnapshot(path string, opts ...Option) *Snapshot {
	s := &Snapshot{Path: path, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.codec == nil {
		codec, ok := DefaultCodecs()[strings.ToLower(filepath.Ext(path))]
		if !ok {
			codec = JSONCodec{}
		}
		s.codec = codec
	}
	return s
}

// Load reads the snapshot. A missing file is an empty collection.
func (s *Snapshot) Load(ctx context.Context) ([]core.Note, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	snap, err := s.codec.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorrupt, s.Path, err)
	}
	if snap.Version > SnapshotVersion {
		return nil, fmt.Errorf("%w: %s: unsupported version %d", ErrCorrupt, s.Path, snap.Version)
	}
	notes := snap.notes()

	s.mu.Lock()
	now := s.now()
	s.lastLoad = &now
	s.lastCount = len(notes)
	s.mu.Unlock()
	return notes, nil
}

// Save writes the whole collection.
func (s *Snapshot) Save(ctx context.Context, notes []core.Note) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	data, err := s.codec.Encode(fromNotes(notes, now))
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := writeAtomic(s.Path, data, 0o644); err != nil {
		return err
	}
	s.lastSave = &now
	s.lastCount = len(notes)
	return nil
}

var _ core.Persister = (*Snapshot)(nil)
