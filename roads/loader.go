package roads

import (
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// document is the on-disk network format.
//
//	name: envigado
//	nodes:
//	  - {id: 1, lat: 6.17, lon: -75.59}
//	edges:
//	  - {from: 1, to: 2, highway: residential}
type document struct {
	Name   string     `yaml:"name"`
	Speeds SpeedTable `yaml:"speeds,omitempty" validate:"dive,gt=0"`
	Nodes  []Node     `yaml:"nodes" validate:"required,min=1,dive"`
	Edges  []Edge     `yaml:"edges" validate:"dive"`
}

// LoadFile reads a YAML network file. speeds overrides the speed table in
// the file when non-nil.
func LoadFile(path string, speeds SpeedTable) (*Network, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("roads: open network: %w", err)
	}
	defer file.Close()
	return Decode(file, speeds)
}

// Decode reads a YAML network from r.
func Decode(r io.Reader, speeds SpeedTable) (*Network, error) {
	var doc document
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("roads: decode network: %w", err)
	}
	if err := validate.Struct(doc); err != nil {
		return nil, fmt.Errorf("roads: invalid network: %w", err)
	}
	table := DefaultSpeeds()
	for highway, speed := range doc.Speeds {
		table[highway] = speed
	}
	for highway, speed := range speeds {
		table[highway] = speed
	}
	return NewNetwork(doc.Name, doc.Nodes, doc.Edges, table)
}
