package cache

import "fmt"

// Keyer derives cache keys.
type Keyer interface {
	// HTTPKey generates a key for a raw HTTP response.
	HTTPKey(namespace, key string) string

	// PageKey generates a key for one page of items from source.
	PageKey(source string, offset, limit int) string

	// LayoutKey generates a key for a layout artifact of the items
	// identified by itemsHash.
	LayoutKey(itemsHash string, opts LayoutKeyOpts) string
}

// LayoutKeyOpts holds the inputs that change a layout artifact.
type LayoutKeyOpts struct {
	Columns int    `json:"columns"`
	Gap     int    `json:"gap"`
	Width   int    `json:"width"`
	Format  string `json:"format"`
	Variant string `json:"variant,omitempty"` // rendering options that change the output
}

// DefaultKeyer is the standard key scheme.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard key scheme.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HTTPKey returns "http:<namespace>:<key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return fmt.Sprintf("http:%s:%s", namespace, key)
}

// PageKey hashes the source and page bounds.
func (DefaultKeyer) PageKey(source string, offset, limit int) string {
	return hashKey("page", source, offset, limit)
}

// LayoutKey hashes the items hash and layout options.
func (DefaultKeyer) LayoutKey(itemsHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", itemsHash, opts)
}
