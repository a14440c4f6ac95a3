package feed

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/waterfall/pkg/errors"
)

// Item is one card in a feed.
type Item struct {
	ID    string   `json:"id" toml:"id" bson:"_id"`
	Title string   `json:"title" toml:"title" bson:"title"`
	Body  string   `json:"body,omitempty" toml:"body,omitempty" bson:"body,omitempty"`
	Tags  []string `json:"tags,omitempty" toml:"tags,omitempty" bson:"tags,omitempty"`
	Image string   `json:"image,omitempty" toml:"image,omitempty" bson:"image,omitempty"`
}

type document struct {
	Items []Item `json:"items" toml:"items"`
}

// Format is an item file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// FormatOf picks the encoding from a file extension. Anything that is not
// .toml is treated as JSON.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatJSON
}

// Read decodes an item document from r.
//
// JSON input is an object with an "items" array; TOML input is a list of
// [[items]] tables. Items without an ID are rejected.
func Read(r io.Reader, format Format) ([]Item, error) {
	var doc document
	switch format {
	case FormatTOML:
		if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode toml")
		}
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode json")
		}
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "item format %q", format)
	}
	for i, it := range doc.Items {
		if it.ID == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "item %d has no id", i)
		}
	}
	return doc.Items, nil
}

// Write encodes items to w.
func Write(w io.Writer, items []Item, format Format) error {
	doc := document{Items: items}
	switch format {
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(doc); err != nil {
			return fmt.Errorf("encode toml: %w", err)
		}
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
	default:
		return errors.New(errors.ErrCodeUnsupported, "item format %q", format)
	}
	return nil
}

// ReadFile reads an item file, choosing the format by extension.
func ReadFile(path string) ([]Item, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	items, err := Read(f, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return items, nil
}

// WriteFile writes items to path, choosing the format by extension.
func WriteFile(path string, items []Item) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(f, items, FormatOf(path)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
