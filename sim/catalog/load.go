package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultCatalogYAML []byte

// Default parses the catalog embedded in the binary.
func Default() (*Catalog, error) {
	return Parse(defaultCatalogYAML)
}

// MustDefault is Default for callers that cannot recover from a broken build.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	return c
}

// Load reads a catalog file, or the embedded defaults when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		logrus.Debug("no catalog file given; using embedded defaults")
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logrus.Infof("loaded catalog %s: %d tracks, %d drivers", path, len(c.Tracks), len(c.Drivers))
	return c, nil
}

// Parse decodes and validates catalog YAML.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&c); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return &c, nil
}

// Marshal renders the catalog as YAML.
func (c *Catalog) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
