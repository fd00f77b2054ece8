package output

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docpublish/internal/document"
	berrors "git.home.luguber.info/inful/docpublish/internal/errors"
	"git.home.luguber.info/inful/docpublish/internal/metadata"
	"git.home.luguber.info/inful/docpublish/internal/render"
)

func sysMetaFixture() metadata.SystemMetadata {
	return metadata.SystemMetadata{
		Locale:                       "en-us",
		CanonicalURL:                 "https://docs.example.com/en-us/guide",
		CanonicalURLPrefix:           "https://docs.example.com/en-us/",
		DocumentID:                   "doc-id",
		DocumentVersionIndependentID: "vi-id",
		Path:                         "guide.md",
		Monikers:                     []string{"v1"},
	}
}

func TestBuild_ConceptualPage_SystemMetadataFoldsAtTopLevel(t *testing.T) {
	b := NewBuilder(nil)
	doc := document.SourceDocument{FilePath: "guide.md", ContentKind: document.ContentPage}
	model := document.NewConceptual("<p>hi</p>", 1, "Hi", "<h1>Hi</h1>")
	author := map[string]any{"title": "Authored", "locale": "authored-locale"}
	errs := berrors.NewList()

	res := b.Build(context.Background(), doc, model, author, sysMetaFixture(), errs)

	out, ok := res.Model.(map[string]any)
	require.True(t, ok)
	// System metadata wins over author metadata at the top level.
	require.Equal(t, "en-us", out["locale"])
	// The canonical model wins over author metadata.
	require.Equal(t, "Hi", out["title"])
	require.Equal(t, "<p>hi</p>", out[document.KeyConceptual])

	require.Equal(t, "en-us", res.Metadata["locale"])
	require.Equal(t, "Authored", res.Metadata["title"])
	require.Zero(t, errs.Len())
}

func TestBuild_SchemaTypedPage_SystemMetadataFoldsIntoNestedMetadata(t *testing.T) {
	b := NewBuilder(nil)
	doc := document.SourceDocument{FilePath: "ref.yml", ContentKind: document.ContentPage, SchemaType: "Reference"}
	model := document.Model{
		"items": []any{"one"},
		"metadata": map[string]any{
			"title":  "Reference Page",
			"locale": "content-locale",
		},
	}
	errs := berrors.NewList()

	res := b.Build(context.Background(), doc, model, map[string]any{}, sysMetaFixture(), errs)

	out, ok := res.Model.(map[string]any)
	require.True(t, ok)
	// No system metadata at the top level for schema-typed pages.
	require.NotContains(t, out, "canonicalUrl")
	require.Equal(t, []any{"one"}, out["items"])

	nested, ok := out["metadata"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "en-us", nested["locale"])
	require.Equal(t, "Reference Page", nested["title"])
	require.Equal(t, "https://docs.example.com/en-us/guide", nested["canonicalUrl"])

	require.Equal(t, res.Metadata, nested)
}

func TestBuild_SchemaTypedPage_MissingMetadataObjectDefaultsToEmpty(t *testing.T) {
	b := NewBuilder(nil)
	doc := document.SourceDocument{FilePath: "ref.yml", ContentKind: document.ContentPage, SchemaType: "Reference"}
	model := document.Model{"items": []any{}}
	errs := berrors.NewList()

	res := b.Build(context.Background(), doc, model, map[string]any{}, sysMetaFixture(), errs)

	out := res.Model.(map[string]any)
	nested, ok := out["metadata"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "doc-id", nested["documentId"])
}

func TestBuild_DataKind_TransformRunsAndMetadataIsNil(t *testing.T) {
	scripts := render.NewFuncScriptRenderer(false)
	scripts.Register("Toc.json", func(model map[string]any) (any, error) {
		return []any{"flattened"}, nil
	})
	b := NewBuilder(scripts)
	doc := document.SourceDocument{FilePath: "toc.yml", ContentKind: document.ContentData, SchemaType: "Toc"}
	errs := berrors.NewList()

	res := b.Build(context.Background(), doc, document.Model{"items": []any{}}, map[string]any{}, sysMetaFixture(), errs)

	require.Equal(t, []any{"flattened"}, res.Model)
	require.Nil(t, res.Metadata)
	require.Zero(t, errs.Len())
}

func TestBuild_DataKind_ScriptFailureIsCollectedNotFatal(t *testing.T) {
	scripts := render.NewFuncScriptRenderer(false)
	b := NewBuilder(scripts)
	doc := document.SourceDocument{FilePath: "toc.yml", ContentKind: document.ContentData, SchemaType: "Unregistered"}
	errs := berrors.NewList()

	res := b.Build(context.Background(), doc, document.Model{}, map[string]any{}, sysMetaFixture(), errs)

	require.NotNil(t, res.Model)
	require.Equal(t, 1, errs.Len())
	require.False(t, errs.HasFatal())
}
