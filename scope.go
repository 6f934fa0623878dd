package shell

import "github.com/mitchelljustin/tauri-plugin-shell/internal/scope"

// Scope is the compiled spawn allow-list the default local host enforces.
type Scope = scope.Scope

// ScopeConfig is the YAML shape of a scope file.
type ScopeConfig = scope.Config

// ScopeEntry allows one command, with fixed or regex-validated arguments.
type ScopeEntry = scope.Entry

// ArgRule constrains one positional argument of an allowed command.
type ArgRule = scope.ArgRule

// NewScope compiles a scope from its configuration.
func NewScope(cfg ScopeConfig) (*Scope, error) { return scope.New(cfg) }

// LoadScope reads and compiles a YAML scope file.
func LoadScope(path string) (*Scope, error) { return scope.Load(path) }

// ParseScope compiles a YAML scope document.
func ParseScope(data []byte) (*Scope, error) { return scope.Parse(data) }
