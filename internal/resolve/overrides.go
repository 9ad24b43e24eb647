package resolve

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Match describes which rule of an override table matched.
type Match string

const (
	// MatchFilename is an exact (case-insensitive) filename match.
	MatchFilename Match = "filename"
	// MatchName is a match on the normalized name or an embedded mod id.
	MatchName Match = "name"
)

// Overrides maps local names to catalog slugs. Keys are compared
// case-insensitively. Lookup precedence: exact filename, then normalized name,
// then embedded mod ids.
type Overrides map[string]string

// DefaultOverrides returns the built-in table for mods whose file names do not
// match their catalog slug.
func DefaultOverrides() Overrides {
	return Overrides{
		"voicechat":        "simple-voice-chat",
		"voicechat-fabric": "simple-voice-chat",
	}
}

// overridesFile is the on-disk layout:
//
//	[overrides]
//	voicechat = "simple-voice-chat"
type overridesFile struct {
	Overrides map[string]string `toml:"overrides"`
}

// LoadOverrides reads an override table from a TOML file.
func LoadOverrides(path string) (Overrides, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from config
	if err != nil {
		return nil, fmt.Errorf("failed to read overrides file: %w", err)
	}

	var f overridesFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse overrides file %s: %w", path, err)
	}

	return Overrides(f.Overrides).normalized(), nil
}

// Merge returns a new table with entries from others layered over o.
func (o Overrides) Merge(others ...Overrides) Overrides {
	out := o.normalized()
	for _, other := range others {
		for k, v := range other {
			out[strings.ToLower(k)] = v
		}
	}
	return out
}

// Lookup returns the slug for a file. names are the normalized name followed
// by any embedded ids, in precedence order.
func (o Overrides) Lookup(filename string, names ...string) (string, Match, bool) {
	if slug, ok := o[strings.ToLower(filename)]; ok {
		return slug, MatchFilename, true
	}
	for _, n := range names {
		if slug, ok := o[strings.ToLower(n)]; ok && n != "" {
			return slug, MatchName, true
		}
	}
	return "", "", false
}

func (o Overrides) normalized() Overrides {
	out := make(Overrides, len(o))
	for k, v := range o {
		out[strings.ToLower(k)] = v
	}
	return out
}
