package taxonomy

import (
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// fileLayout is the YAML shape accepted by LoadFile:
//
//	domains:
//	  - key: tech
//	    name: Technology
//	    skills: [System Design, Code Quality]
type fileLayout struct {
	Domains []Domain `koanf:"domains"`
}

// LoadFile reads a taxonomy override from a YAML file. The result replaces
// the built-in table entirely; it is not merged.
func LoadFile(path string) (*Taxonomy, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("taxonomy: load %s: %w", path, err)
	}
	var layout fileLayout
	if err := k.UnmarshalWithConf("", &layout, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("taxonomy: decode %s: %w", path, err)
	}
	return New(layout.Domains)
}
