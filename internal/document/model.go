package document

// Canonical model keys shared across loaders and the output builder.
const (
	KeyConceptual = "conceptual"
	KeyWordCount  = "wordCount"
	KeyTitle      = "title"
	KeyRawTitle   = "rawTitle"
	KeyMetadata   = "metadata"
	KeyExtension  = "extensionData"
)

// Model is the canonical content model: a mapping of string keys to
// JSON-like values. Conceptual content uses the fixed shape below;
// schema-typed content is an arbitrary validated object with an optional
// nested metadata object. Produced once per file by the content loader and
// never mutated afterward except by the merge that builds the output model.
type Model map[string]any

// NewConceptual builds the conceptual model shape.
func NewConceptual(html string, wordCount int, title, rawTitle string) Model {
	return Model{
		KeyConceptual: html,
		KeyWordCount:  wordCount,
		KeyTitle:      title,
		KeyRawTitle:   rawTitle,
	}
}

// IsConceptual reports whether the model carries a conceptual body. Legacy
// landing pages re-wrap their rendered output into this shape, so this is
// true for them as well.
func (m Model) IsConceptual() bool {
	_, ok := m[KeyConceptual]
	return ok
}

// Metadata returns the nested metadata object of a schema-typed model, or
// an empty map when absent or of the wrong shape.
func (m Model) Metadata() map[string]any {
	if meta, ok := m[KeyMetadata].(map[string]any); ok {
		return meta
	}
	return map[string]any{}
}

// Clone returns a shallow copy. Merge operations copy before writing so
// the canonical model stays immutable.
func (m Model) Clone() Model {
	out := make(Model, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// TemplateModel is the shape handed to the markup renderer on non-raw
// output branches.
type TemplateModel struct {
	Content                        string         `json:"content"`
	RawMetadata                    map[string]any `json:"rawMetadata"`
	PageMetadata                   string         `json:"pageMetadata"`
	ThemesRelativePathToOutputRoot string         `json:"themesRelativePathToOutputRoot"`
}
