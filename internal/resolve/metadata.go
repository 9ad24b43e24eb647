package resolve

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
)

const maxMetadataSize = 1 << 20

type fabricModJSON struct {
	ID     string `json:"id"`
	Custom struct {
		Modrinth string `json:"modrinth"`
	} `json:"custom"`
}

type quiltModJSON struct {
	QuiltLoader struct {
		ID       string `json:"id"`
		Metadata struct {
			Contact struct {
				Modrinth string `json:"modrinth"`
			} `json:"contact"`
		} `json:"metadata"`
	} `json:"quilt_loader"`
}

type forgeModsTOML struct {
	Mods []struct {
		ModID string `toml:"modId"`
	} `toml:"mods"`
}

// EmbeddedIDs returns the mod ids declared in a jar's loader metadata, most
// specific first: an explicit catalog slug, then the loader mod id. A jar
// without recognizable metadata yields no ids and no error.
func EmbeddedIDs(fs afero.Fs, path string) ([]string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("not a jar: %w", err)
	}

	var ids []string
	add := func(id string) {
		if id == "" {
			return
		}
		for _, existing := range ids {
			if existing == id {
				return
			}
		}
		ids = append(ids, id)
	}

	for _, entry := range zr.File {
		switch entry.Name {
		case "fabric.mod.json":
			var m fabricModJSON
			if readEntry(entry, func(b []byte) error { return json.Unmarshal(b, &m) }) == nil {
				add(m.Custom.Modrinth)
				add(m.ID)
			}
		case "quilt.mod.json":
			var m quiltModJSON
			if readEntry(entry, func(b []byte) error { return json.Unmarshal(b, &m) }) == nil {
				add(m.QuiltLoader.Metadata.Contact.Modrinth)
				add(m.QuiltLoader.ID)
			}
		case "META-INF/mods.toml", "META-INF/neoforge.mods.toml":
			var m forgeModsTOML
			if readEntry(entry, func(b []byte) error { return toml.Unmarshal(b, &m) }) == nil {
				for _, mod := range m.Mods {
					add(mod.ModID)
				}
			}
		}
	}

	return ids, nil
}

func readEntry(entry *zip.File, decode func([]byte) error) error {
	rc, err := entry.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxMetadataSize))
	if err != nil {
		return err
	}
	return decode(data)
}
