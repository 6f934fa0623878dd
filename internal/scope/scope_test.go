package scope

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestResolve_DenyByDefault tests that an empty scope allows nothing.
func TestResolve_DenyByDefault(t *testing.T) {
	s, err := New(Config{})
	require.NoError(t, err)

	_, err = s.Resolve("echo", nil, false)
	require.Error(t, err)
	require.Contains(t, err.Error(), "not allowed by scope")
}

// TestResolve_FixedArgs tests exact-value argument rules.
func TestResolve_FixedArgs(t *testing.T) {
	s, err := New(Config{Allow: []Entry{{
		Name: "git-status",
		Command: "git",
		Args: []ArgRule{{Value: "status"}},
	}}})
	require.NoError(t, err)

	cmd, err := s.Resolve("git-status", []string{"status"}, false)
	require.NoError(t, err)
	require.Equal(t, "git", cmd)

	_, err = s.Resolve("git-status", []string{"push"}, false)
	require.Error(t, err)

	_, err = s.Resolve("git-status", nil, false)
	require.Error(t, err)
	require.Contains(t, err.Error(), "expected 1 argument(s)")
}

// TestResolve_ValidatorAnchored tests that regex validators must match the
// whole argument, not a substring.
func TestResolve_ValidatorAnchored(t *testing.T) {
	s, err := New(Config{Allow: []Entry{{
		Name: "git-log",
		Command: "git",
		Args: []ArgRule{{Value: "log"}, {Validator: `-n \d+`}},
	}}})
	require.NoError(t, err)

	_, err = s.Resolve("git-log", []string{"log", "-n 5"}, false)
	require.NoError(t, err)

	_, err = s.Resolve("git-log", []string{"log", "-n 5; rm -rf /"}, false)
	require.Error(t, err)
	require.Contains(t, err.Error(), "does not match validator")
}

// TestResolve_AnyArgs tests that AnyArgs entries accept arbitrary argument
// lists.
func TestResolve_AnyArgs(t *testing.T) {
	s, err := New(Config{Allow: []Entry{{Name: "sh", AnyArgs: true}}})
	require.NoError(t, err)

	cmd, err := s.Resolve("sh", []string{"-c", "echo hi"}, false)
	require.NoError(t, err)
	require.Equal(t, "sh", cmd)

	_, err = s.Resolve("sh", nil, false)
	require.NoError(t, err)
}

// TestResolve_Sidecar tests that sidecar requests only match sidecar
// entries, with extensions stripped for the comparison.
func TestResolve_Sidecar(t *testing.T) {
	s, err := New(Config{Allow: []Entry{
		{Name: "helper.exe", Command: "./bin/helper", Sidecar: true, AnyArgs: true},
		{Name: "helper", AnyArgs: true},
	}})
	require.NoError(t, err)

	cmd, err := s.Resolve("helper", nil, true)
	require.NoError(t, err)
	require.Equal(t, "./bin/helper", cmd)

	// A plain spawn must not match the sidecar entry's command.
	cmd, err = s.Resolve("helper", nil, false)
	require.NoError(t, err)
	require.Equal(t, "helper", cmd)

	_, err = s.Resolve("unknown", nil, true)
	require.Error(t, err)
	require.Contains(t, err.Error(), "sidecar")
}

// TestNew_BadValidator tests that an invalid regex fails compilation with
// a pointer to the offending entry.
func TestNew_BadValidator(t *testing.T) {
	_, err := New(Config{Allow: []Entry{{
		Name: "broken",
		Args: []ArgRule{{Validator: "("}},
	}}})

	require.Error(t, err)
	require.Contains(t, err.Error(), `scope entry "broken" arg 0`)
}

// TestParse_YAML tests loading a scope from its YAML document form.
func TestParse_YAML(t *testing.T) {
	doc := []byte(`
allow:
  - name: git-status
    command: git
    args:
      - value: status
  - name: tail
    anyArgs: true
  - name: my-sidecar
    sidecar: true
    anyArgs: true
`)

	s, err := Parse(doc)
	require.NoError(t, err)

	_, err = s.Resolve("git-status", []string{"status"}, false)
	require.NoError(t, err)

	_, err = s.Resolve("tail", []string{"-f", "x.log"}, false)
	require.NoError(t, err)

	_, err = s.Resolve("my-sidecar", nil, true)
	require.NoError(t, err)
}
