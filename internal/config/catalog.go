package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Catalog is the set of choices offered by the public filter bar.
type Catalog struct {
	PriceBands    []Option `yaml:"price_bands" json:"price_bands"`
	Neighborhoods []string `yaml:"neighborhoods" json:"neighborhoods"`
	Beds          []Option `yaml:"beds" json:"beds"`
}

// Option is a labelled filter value, e.g. "Under $2M" -> "0-2000000".
type Option struct {
	Label string `yaml:"label" json:"label"`
	Value string `yaml:"value" json:"value"`
}

// LoadCatalog reads the catalog at path, or the embedded default when path
// is empty.
func LoadCatalog(path string) (*Catalog, error) {
	data := defaultCatalog
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config.LoadCatalog: %w", err)
		}
		data = b
	}
	return ParseCatalog(data)
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("config.ParseCatalog: %w", err)
	}
	for _, b := range c.PriceBands {
		if b.Value == "" {
			return nil, fmt.Errorf("config.ParseCatalog: price band %q has no value", b.Label)
		}
	}
	return &c, nil
}
