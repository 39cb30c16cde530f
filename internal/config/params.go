package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Params are the named string inputs of one job run, merged from the job
// file and command-line flags.
type Params map[string]string

// ValidationError reports required job parameters that are absent. It is
// raised before any I/O happens.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required job parameter(s): %s", strings.Join(e.Missing, ", "))
}

// Require fails fast when any of the named parameters is absent or empty.
func (p Params) Require(names ...string) error {
	var missing []string
	for _, name := range names {
		if p[name] == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return &ValidationError{Missing: missing}
	}
	return nil
}

// Int returns a numeric parameter, or fallback when absent. A present but
// malformed value is a validation failure, not a silent default.
func (p Params) Int(name string, fallback int) (int, error) {
	raw, ok := p[name]
	if !ok || raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parameter %s: %w", name, err)
	}
	return v, nil
}

// Merge overlays non-empty values of other onto a copy of p.
func (p Params) Merge(other Params) Params {
	merged := make(Params, len(p)+len(other))
	for k, v := range p {
		merged[k] = v
	}
	for k, v := range other {
		if v != "" {
			merged[k] = v
		}
	}
	return merged
}
