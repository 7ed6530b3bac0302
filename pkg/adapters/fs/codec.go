package fs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/cirrus/pkg/core"
)

// SnapshotVersion is the format version written by Save.
const SnapshotVersion = 1

// snapshot is the on-disk document. Unlike the wire format it keeps Synced,
// so unconfirmed edits survive a restart.
type snapshot struct {
	Version int         `json:"version" yaml:"version"`
	SavedAt time.Time   `json:"savedAt" yaml:"savedAt"`
	Notes   []savedNote `json:"notes" yaml:"notes"`
}

type savedNote struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	Content   string    `json:"content" yaml:"content"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt"`
	Synced    bool      `json:"synced" yaml:"synced"`
}

func fromNotes(notes []core.Note, at time.Time) snapshot {
	s := snapshot{Version: SnapshotVersion, SavedAt: at, Notes: make([]savedNote, 0, len(notes))}
	for _, n := range notes {
		s.Notes = append(s.Notes, savedNote(n))
	}
	return s
}

func (s snapshot) notes() []core.Note {
	out := make([]core.Note, 0, len(s.Notes))
	for _, n := range s.Notes {
		out = append(out, core.Note(n))
	}
	return out
}

// Codec defines how a snapshot is read and written in a specific format.
type Codec interface {
	Decode(r io.Reader) (snapshot, error)
	Encode(s snapshot) ([]byte, error)
}

// DefaultCodecs returns the codecs keyed by file extension.
func DefaultCodecs() map[string]Codec {
	return map[string]Codec{
		".json": JSONCodec{},
		".yaml": YAMLCodec{},
		".yml":  YAMLCodec{},
	}
}

// JSONCodec handles JSON snapshots.
type JSONCodec struct{}

func (JSONCodec) Decode(r io.Reader) (snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return snapshot{}, err
	}
	var s snapshot
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return snapshot{}, fmt.Errorf("invalid json: %w", err)
	}
	return s, nil
}

func (JSONCodec) Encode(s snapshot) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// YAMLCodec handles YAML snapshots.
type YAMLCodec struct{}

func (YAMLCodec) Decode(r io.Reader) (snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return snapshot{}, err
	}
	var s snapshot
	if err := yaml.Unmarshal(data, &s); err != nil {
		return snapshot{}, fmt.Errorf("invalid yaml: %w", err)
	}
	return s, nil
}

func (YAMLCodec) Encode(s snapshot) ([]byte, error) {
	return yaml.Marshal(s)
}
