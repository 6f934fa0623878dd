// Package scope implements the spawn allow-list the local host enforces
// before creating any process: named command entries with fixed or
// regex-validated arguments, plus the sidecar list of bundled executables
// that are resolved outside PATH.
package scope

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// ArgRule constrains one positional argument of an allowed command.
// Exactly one of Value and Validator should be set: Value requires an
// exact match, Validator an anchored regular expression match.
type ArgRule struct {
	Value     string `yaml:"value,omitempty"`
	Validator string `yaml:"validator,omitempty"`
}

// Entry allows one command. Spawn requests address entries by Name; the
// process actually created runs Command (defaulting to Name).
type Entry struct {
	Name    string `yaml:"name"`
	Command string `yaml:"command,omitempty"`

	// Args constrains the argument list position by position. Ignored
	// when AnyArgs is set; an absent list means the command takes no
	// arguments.
	Args    []ArgRule `yaml:"args,omitempty"`
	AnyArgs bool      `yaml:"anyArgs,omitempty"`

	// Sidecar marks the entry as a bundled executable. Sidecar spawn
	// requests only match sidecar entries and vice versa.
	Sidecar bool `yaml:"sidecar,omitempty"`
}

// Config is the YAML shape of a scope file.
type Config struct {
	Allow []Entry `yaml:"allow"`
}

// Scope is a compiled allow-list.
type Scope struct {
	entries []compiledEntry
}

type compiledEntry struct {
	entry      Entry
	validators []*regexp.Regexp // index-aligned with entry.Args; nil for fixed values
}

// New compiles the entries of cfg. Argument validators are anchored so a
// pattern must match the whole argument, mirroring the plugin scope this
// replaces.
func New(cfg Config) (*Scope, error) {
	s := &Scope{entries: make([]compiledEntry, 0, len(cfg.Allow))}

	for _, e := range cfg.Allow {
		ce := compiledEntry{entry: e, validators: make([]*regexp.Regexp, len(e.Args))}

		for i, rule := range e.Args {
			if rule.Validator == "" {
				continue
			}

			re, err := regexp.Compile("^(?:" + rule.Validator + ")$")
			if err != nil {
				return nil, fmt.Errorf("scope entry %q arg %d: %w", e.Name, i, err)
			}

			ce.validators[i] = re
		}

		s.entries = append(s.entries, ce)
	}

	return s, nil
}

// Load reads and compiles a YAML scope file.
func Load(path string) (*Scope, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scope file: %w", err)
	}

	return Parse(data)
}

// Parse compiles a YAML scope document.
func Parse(data []byte) (*Scope, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse scope file: %w", err)
	}

	return New(cfg)
}

// Resolve checks a spawn request against the allow-list and returns the
// command the host should actually run. Sidecar requests match sidecar
// entries by name with any file extension stripped.
func (s *Scope) Resolve(program string, args []string, sidecar bool) (string, error) {
	for _, ce := range s.entries {
		if ce.entry.Sidecar != sidecar {
			continue
		}

		if !matchesName(ce.entry, program, sidecar) {
			continue
		}

		if err := ce.validateArgs(args); err != nil {
			return "", fmt.Errorf("program %q: %w", program, err)
		}

		if ce.entry.Command != "" {
			return ce.entry.Command, nil
		}

		return ce.entry.Name, nil
	}

	if sidecar {
		return "", fmt.Errorf("sidecar %q not configured", program)
	}

	return "", fmt.Errorf("program %q not allowed by scope", program)
}

func matchesName(e Entry, program string, sidecar bool) bool {
	if e.Name == program {
		return true
	}

	if sidecar {
		return trimExt(e.Name) == trimExt(program)
	}

	return false
}

func trimExt(name string) string {
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		return name[:i]
	}

	return name
}

func (ce compiledEntry) validateArgs(args []string) error {
	if ce.entry.AnyArgs {
		return nil
	}

	if len(args) != len(ce.entry.Args) {
		return fmt.Errorf("expected %d argument(s), got %d", len(ce.entry.Args), len(args))
	}

	for i, arg := range args {
		rule := ce.entry.Args[i]

		if re := ce.validators[i]; re != nil {
			if !re.MatchString(arg) {
				return fmt.Errorf("argument %d %q does not match validator %q", i, arg, rule.Validator)
			}

			continue
		}

		if arg != rule.Value {
			return fmt.Errorf("argument %d %q is not the allowed value %q", i, arg, rule.Value)
		}
	}

	return nil
}
