// Package docset discovers buildable source files under a docset root and
// tags each with its routing attributes.
package docset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/docpublish/internal/config"
	"git.home.luguber.info/inful/docpublish/internal/document"
	"git.home.luguber.info/inful/docpublish/internal/pipeline"
	"git.home.luguber.info/inful/docpublish/internal/util/sets"
)

// yamlMimePrefix is the first-line tag selecting a yaml file's schema type.
const yamlMimePrefix = "### YamlMime:"

// Discover walks the docset root and returns one FileInput per buildable
// source file, in walk order.
func Discover(root string, cfg *config.Config) ([]pipeline.FileInput, error) {
	dataTypes := sets.New(cfg.DataSchemaTypes...)

	var files []pipeline.FileInput
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if document.FileKindFromPath(path) == document.KindUnknown {
			return nil
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		doc := Describe(rel, raw, cfg, dataTypes)
		files = append(files, pipeline.FileInput{Doc: doc, Raw: raw})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover docset %s: %w", root, err)
	}
	return files, nil
}

// Describe tags one source file with its routing attributes.
func Describe(relPath string, raw []byte, cfg *config.Config, dataTypes sets.Set[string]) document.SourceDocument {
	schemaType := DetectSchemaType(relPath, raw)

	kind := document.ContentPage
	if schemaType != "" && dataTypes.Has(schemaType) {
		kind = document.ContentData
	}

	return document.SourceDocument{
		FilePath:    document.SitePath(relPath),
		ContentKind: kind,
		SchemaType:  schemaType,
		Locale:      cfg.Localization.DefaultLocale,
		Legacy:      cfg.Legacy,
		Monikers:    cfg.Monikers,
		IsPage:      kind == document.ContentPage,
	}
}

// DetectSchemaType reads the per-file mime/type tag: the YamlMime header
// comment for yaml sources, the $schema file stem for json. Markdown is
// always conceptual (empty type).
func DetectSchemaType(relPath string, raw []byte) string {
	switch document.FileKindFromPath(relPath) {
	case document.KindYaml:
		return yamlMimeType(raw)
	case document.KindJson:
		return jsonSchemaType(raw)
	default:
		return ""
	}
}

func yamlMimeType(raw []byte) string {
	line := raw
	if idx := bytes.IndexByte(raw, '\n'); idx >= 0 {
		line = raw[:idx]
	}
	text := strings.TrimSpace(string(line))
	if !strings.HasPrefix(text, yamlMimePrefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(text, yamlMimePrefix))
}

// jsonSchemaType extracts the schema type from a "$schema" URL's file
// stem, e.g. ".../LandingData.schema.json" yields "LandingData".
func jsonSchemaType(raw []byte) string {
	var probe struct {
		Schema string `json:"$schema"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil || probe.Schema == "" {
		return ""
	}

	name := probe.Schema
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	name = strings.TrimSuffix(name, ".json")
	name = strings.TrimSuffix(name, ".schema")
	return name
}
