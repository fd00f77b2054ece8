package metadata

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SystemMetadata is the fixed record of fields computed by the build
// itself, always present regardless of source format. Built once per file,
// then treated as immutable.
type SystemMetadata struct {
	Locale                        string    `json:"locale"`
	TocRelativePath               string    `json:"tocRel,omitempty"`
	CanonicalURL                  string    `json:"canonicalUrl"`
	CanonicalURLPrefix            string    `json:"canonicalUrlPrefix"`
	BreadcrumbPath                string    `json:"breadcrumbPath,omitempty"`
	Monikers                      []string  `json:"monikers"`
	MonikerGroup                  string    `json:"monikerGroup,omitempty"`
	DocumentID                    string    `json:"documentId"`
	DocumentVersionIndependentID  string    `json:"documentVersionIndependentId"`
	ContentGitURL                 string    `json:"contentGitUrl,omitempty"`
	OriginalContentGitURL         string    `json:"originalContentGitUrl,omitempty"`
	OriginalContentGitURLTemplate string    `json:"originalContentGitUrlTemplate,omitempty"`
	GitCommit                     string    `json:"gitCommit,omitempty"`
	Author                        string    `json:"author,omitempty"`
	UpdatedAt                     time.Time `json:"updatedAt"`
	SearchProduct                 string    `json:"searchProduct,omitempty"`
	SearchDocsetName              string    `json:"searchDocsetName,omitempty"`
	Path                          string    `json:"path"`
	PdfURLPrefixTemplate          string    `json:"pdfUrlPrefixTemplate,omitempty"`
}

// AsMap returns the metadata as a generic object for merging into output
// models. Zero-valued optional fields are omitted so they never shadow
// author metadata with empty strings.
func (m SystemMetadata) AsMap() map[string]any {
	out := map[string]any{
		"locale":                       m.Locale,
		"canonicalUrl":                 m.CanonicalURL,
		"canonicalUrlPrefix":           m.CanonicalURLPrefix,
		"documentId":                   m.DocumentID,
		"documentVersionIndependentId": m.DocumentVersionIndependentID,
		"path":                         m.Path,
		"monikers":                     m.Monikers,
		"updatedAt":                    m.UpdatedAt,
	}
	optional := map[string]string{
		"tocRel":                        m.TocRelativePath,
		"breadcrumbPath":                m.BreadcrumbPath,
		"monikerGroup":                  m.MonikerGroup,
		"contentGitUrl":                 m.ContentGitURL,
		"originalContentGitUrl":         m.OriginalContentGitURL,
		"originalContentGitUrlTemplate": m.OriginalContentGitURLTemplate,
		"gitCommit":                     m.GitCommit,
		"author":                        m.Author,
		"searchProduct":                 m.SearchProduct,
		"searchDocsetName":              m.SearchDocsetName,
		"pdfUrlPrefixTemplate":          m.PdfURLPrefixTemplate,
	}
	for k, v := range optional {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// docIDNamespace seeds deterministic document IDs. Stable across builds.
var docIDNamespace = uuid.MustParse("6c8d6c19-a2a5-4c0e-9c9d-2f7b8b9e4f21")

// documentID derives a stable UUID from the docset name and site path.
func documentID(docsetName, sitePath string) string {
	return uuid.NewSHA1(docIDNamespace, []byte(docsetName+"|"+sitePath)).String()
}

// monikerGroup identifies an ordered moniker set by a short stable hash.
func monikerGroup(monikers []string) string {
	if len(monikers) == 0 {
		return ""
	}
	sum := sha256.Sum256([]byte(strings.Join(monikers, ",")))
	return hex.EncodeToString(sum[:])[:12]
}
