// Package entrypoints decides which functions form the root set for
// reachability traversal. Detectors are independent and additive: a
// function is an entrypoint if any detector matches, and the first match
// sets the kind.
package entrypoints

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/BurntSushi/toml"
)

//go:embed patterns.toml
var defaultPatternsTOML []byte

// Patterns is the per-language pattern table. Static configuration data,
// never mutated after load, so concurrent project scans can share one copy.
type Patterns struct {
	Python struct {
		MainFiles         []string `toml:"main_files"`
		HandlerDecorators []string `toml:"handler_decorators"`
		JobDecorators     []string `toml:"job_decorators"`
	} `toml:"python"`

	Ruby struct {
		ControllerDirs []string `toml:"controller_dirs"`
		MailerDirs     []string `toml:"mailer_dirs"`
		JobDirs        []string `toml:"job_dirs"`
		JobMethods     []string `toml:"job_methods"`
	} `toml:"ruby"`

	JavaScript struct {
		MainFiles  []string `toml:"main_files"`
		RouteCalls []string `toml:"route_calls"`
	} `toml:"javascript"`

	Go struct {
		MainFunction string `toml:"main_function"`
	} `toml:"go"`

	Rust struct {
		MainFunction      string   `toml:"main_function"`
		HandlerAttributes []string `toml:"handler_attributes"`
		TestAttributes    []string `toml:"test_attributes"`
	} `toml:"rust"`

	Java struct {
		MainDescriptor     string   `toml:"main_descriptor"`
		HandlerAnnotations []string `toml:"handler_annotations"`
		JobAnnotations     []string `toml:"job_annotations"`
		TestAnnotations    []string `toml:"test_annotations"`
	} `toml:"java"`
}

var (
	defaultOnce     sync.Once
	defaultPatterns *Patterns
	defaultErr      error
)

// Default returns the embedded pattern table, decoded once.
func Default() (*Patterns, error) {
	defaultOnce.Do(func() {
		p := &Patterns{}
		if err := toml.Unmarshal(defaultPatternsTOML, p); err != nil {
			defaultErr = fmt.Errorf("decode embedded patterns: %w", err)
			return
		}
		defaultPatterns = p
	})
	return defaultPatterns, defaultErr
}
