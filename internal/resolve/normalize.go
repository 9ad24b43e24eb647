// Package resolve maps local mod files to catalog projects.
package resolve

import (
	"path"
	"regexp"
	"strings"
)

// Loaders are the loader identifiers recognized in filenames.
var Loaders = []string{"fabric", "forge", "quilt", "neoforge"}

var (
	tokenSep     = regexp.MustCompile(`[-_+\s]+`)
	versionToken = regexp.MustCompile(`^(mc|v)?\d`)
	nonWord      = regexp.MustCompile(`[^a-z0-9]+`)
)

// noise tokens are dropped anywhere but the leading position.
var noise = map[string]bool{
	"fabric":   true,
	"forge":    true,
	"quilt":    true,
	"neoforge": true,
	"mc":       true,
}

// Normalize turns a mod filename into a slug candidate: the extension and
// everything from the first version-like token on are dropped, loader tokens
// are removed unless they lead the name ("fabric-api"), and the remaining
// tokens are joined with "-".
//
//	sodium-fabric-0.5.jar           -> sodium
//	fabric-api-0.102.0+1.21.1.jar   -> fabric-api
//	Xaeros_Minimap_24.0_Fabric.jar  -> xaeros-minimap
//	3dskinlayers-fabric-1.5.6.jar   -> 3dskinlayers
func Normalize(filename string) string {
	base := strings.ToLower(strings.TrimSuffix(filename, path.Ext(filename)))

	var kept []string
	for i, tok := range tokenSep.Split(base, -1) {
		tok = strings.Trim(tok, ".")
		if tok == "" {
			continue
		}
		// a leading token is the name even when it starts with a digit
		if len(kept) > 0 && versionToken.MatchString(tok) {
			break
		}
		if i > 0 && noise[tok] {
			continue
		}
		kept = append(kept, tok)
	}

	if len(kept) == 0 {
		return strings.Trim(base, "-_.")
	}
	return strings.Join(kept, "-")
}

// Slugify lowercases a display title and joins its words with "-", dropping
// apostrophes: "Xaero's Minimap" -> "xaeros-minimap".
func Slugify(title string) string {
	s := strings.ToLower(strings.ReplaceAll(title, "'", ""))
	return strings.Trim(nonWord.ReplaceAllString(s, "-"), "-")
}

// LoaderTag returns the loader named in the filename, or "".
func LoaderTag(filename string) string {
	base := strings.ToLower(strings.TrimSuffix(filename, path.Ext(filename)))
	for _, tok := range tokenSep.Split(base, -1) {
		switch tok {
		case "neoforge":
			return "neoforge"
		case "fabric", "forge", "quilt":
			return tok
		}
	}
	return ""
}
