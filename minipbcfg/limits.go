// Package minipbcfg loads the resource limits that bound a scan: how
// deep scopes may nest, how large a single gathered record may grow,
// and how much buffer space to start with.
package minipbcfg

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultMaxNestingDepth mirrors scanner.DefaultMaxNestingDepth; kept
// independent so this package does not need to import scanner just for
// a constant.
const DefaultMaxNestingDepth = 64

const (
	defaultMaxRecordSize    = 16 << 20 // 16 MiB
	defaultInitialBufferSize = 4096
)

// Limits bounds a single scan.
type Limits struct {
	// MaxNestingDepth caps the scanner's frame stack.
	MaxNestingDepth int `yaml:"maxNestingDepth,omitempty"`
	// MaxRecordSize caps how many buffered bytes a single gathered
	// record, or a single NeedMoreBytes suspension, may grow to before
	// streamreader gives up rather than growing the buffer further.
	MaxRecordSize int64 `yaml:"maxRecordSize,omitempty"`
	// InitialBufferSize is the streamreader's starting buffer capacity.
	InitialBufferSize int `yaml:"initialBufferSize,omitempty"`
}

// Default returns the zero-configuration Limits.
func Default() Limits {
	return Limits{
		MaxNestingDepth:   DefaultMaxNestingDepth,
		MaxRecordSize:     defaultMaxRecordSize,
		InitialBufferSize: defaultInitialBufferSize,
	}
}

// withDefaults fills any zero field with its default, matching the
// zero-value-fill convention other configuration loaders in this
// codebase use.
func (l *Limits) withDefaults() {
	if l.MaxNestingDepth <= 0 {
		l.MaxNestingDepth = DefaultMaxNestingDepth
	}
	if l.MaxRecordSize <= 0 {
		l.MaxRecordSize = defaultMaxRecordSize
	}
	if l.InitialBufferSize <= 0 {
		l.InitialBufferSize = defaultInitialBufferSize
	}
}

// Load reads a YAML limits file from path, filling in defaults for any
// field it leaves zero.
func Load(path string) (*Limits, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("minipbcfg: read %s: %w", path, err)
	}
	var l Limits
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("minipbcfg: parse %s: %w", path, err)
	}
	l.withDefaults()
	return &l, nil
}
