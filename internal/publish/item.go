// Package publish owns the manifest entry for each built file, the global
// uniqueness registry, and artifact emission.
package publish

// PublishItem is the manifest record asserting a file's claim to one
// output location. Visible to downstream tooling.
type PublishItem struct {
	URL           string         `json:"url"`
	Path          string         `json:"path"`
	SourcePath    string         `json:"sourcePath"`
	Locale        string         `json:"locale"`
	Monikers      []string       `json:"monikers"`
	MonikerGroup  string         `json:"monikerGroup,omitempty"`
	ExtensionData map[string]any `json:"extensionData,omitempty"`
}
