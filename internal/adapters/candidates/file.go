package candidates

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/gametaste/internal/domain/model"
)

// FileSource serves a fixed candidate list loaded once from disk.
// JSON files hold either a bare array or {"candidates": [...]}; YAML files
// hold a top-level candidates key. Entries of the wrong shape are skipped.
type FileSource struct {
	path    string
	items   []model.CandidateTitle
	skipped int
}

var _ Source = (*FileSource)(nil)

// LoadFile reads and decodes the candidates file at path.
func LoadFile(path string) (*FileSource, error) {
	var (
		elems []json.RawMessage
		err   error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		elems, err = loadJSON(path)
	case ".yaml", ".yml":
		elems, err = loadYAML(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("load candidates %s: %w", path, err)
	}
	items, skipped := DecodeElements(elems)
	return &FileSource{path: path, items: items, skipped: skipped}, nil
}

// Candidates returns a copy of the loaded list; the request is ignored.
func (s *FileSource) Candidates(_ context.Context, _ Request) ([]model.CandidateTitle, error) {
	out := make([]model.CandidateTitle, len(s.items))
	copy(out, s.items)
	return out, nil
}

// Len returns the number of loaded candidates.
func (s *FileSource) Len() int { return len(s.items) }

// Skipped returns the number of entries that could not be decoded.
func (s *FileSource) Skipped() int { return s.skipped }

func loadJSON(path string) ([]json.RawMessage, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	b = bytes.TrimSpace(b)
	var elems []json.RawMessage
	if len(b) > 0 && b[0] == '[' {
		if err := json.Unmarshal(b, &elems); err != nil {
			return nil, err
		}
		return elems, nil
	}
	var wrapped struct {
		Candidates []json.RawMessage `json:"candidates"`
	}
	if err := json.Unmarshal(b, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Candidates, nil
}

func loadYAML(path string) ([]json.RawMessage, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, err
	}
	if !k.Exists("candidates") {
		return nil, nil
	}
	values, ok := k.Get("candidates").([]any)
	if !ok {
		return nil, fmt.Errorf("candidates must be a list")
	}
	elems := make([]json.RawMessage, 0, len(values))
	for _, v := range values {
		// an entry that cannot be re-encoded is kept empty and skipped on decode
		b, _ := json.Marshal(v)
		elems = append(elems, b)
	}
	return elems, nil
}

// DecodeElements decodes each catalog entry on its own and returns the
// entries that fit the candidate shape with the count of those that did not.
func DecodeElements(elems []json.RawMessage) ([]model.CandidateTitle, int) {
	items := make([]model.CandidateTitle, 0, len(elems))
	skipped := 0
	for _, elem := range elems {
		var c model.CandidateTitle
		if len(elem) == 0 || json.Unmarshal(elem, &c) != nil {
			skipped++
			continue
		}
		items = append(items, c)
	}
	return items, skipped
}
