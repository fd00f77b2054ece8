package pipeline

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docpublish/internal/config"
	"git.home.luguber.info/inful/docpublish/internal/document"
	berrors "git.home.luguber.info/inful/docpublish/internal/errors"
	"git.home.luguber.info/inful/docpublish/internal/loader"
	"git.home.luguber.info/inful/docpublish/internal/metadata"
	"git.home.luguber.info/inful/docpublish/internal/output"
	"git.home.luguber.info/inful/docpublish/internal/publish"
	"git.home.luguber.info/inful/docpublish/internal/render"
	"git.home.luguber.info/inful/docpublish/internal/schema"
)

// nullWriter records artifact writes in memory.
type nullWriter struct {
	mu     sync.Mutex
	writes []string
	jsons  map[string]any
}

func (w *nullWriter) WriteText(relativePath, _ string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.writes = append(w.writes, relativePath)
	return nil
}

func (w *nullWriter) WriteJSON(relativePath string, value any) error {
	w.mu.Lock()
	if w.jsons == nil {
		w.jsons = make(map[string]any)
	}
	w.jsons[relativePath] = value
	w.mu.Unlock()
	return w.WriteText(relativePath, "")
}

type testHarness struct {
	pipeline *Pipeline
	registry *publish.MemoryRegistry
	writer   *nullWriter
	cfg      *config.Config
}

func newHarness(t *testing.T, mutate func(cfg *config.Config)) *testHarness {
	t.Helper()

	cfg := &config.Config{
		Product:      "contoso",
		Name:         "handbook",
		HostName:     "docs.example.com",
		SiteBasePath: "/",
	}
	cfg.Localization.DefaultLocale = "en-us"
	cfg.Output.Json = true
	if mutate != nil {
		mutate(cfg)
	}

	registry := schema.NewRegistry()
	registry.Register("TestType", schema.Passthrough{})

	templates := render.NewTemplateRenderer()
	require.NoError(t, templates.Register("page.html", "{{.Content}}"))

	contentLoader := loader.New(render.NewGoldmarkConverter(), nil, templates, registry)
	sysBuilder := metadata.NewBuilder(cfg, metadata.StaticMonikerProvider(cfg.Monikers), nil, nil, nil)
	outputs := output.NewBuilder(nil)
	strategy := output.NewStrategy(cfg.Output.Json, cfg.Legacy, nil, templates, nil)

	reg := publish.NewMemoryRegistry()
	writer := &nullWriter{}
	assembler := publish.NewAssembler(reg, writer, cfg.Legacy)

	p := New(cfg, contentLoader, nil, sysBuilder, outputs, strategy, assembler)
	return &testHarness{pipeline: p, registry: reg, writer: writer, cfg: cfg}
}

func TestBuildFile_Markdown_ProducesPublishItem(t *testing.T) {
	h := newHarness(t, nil)

	doc := document.SourceDocument{FilePath: "guides/intro.md", ContentKind: document.ContentPage, IsPage: true}
	report := h.pipeline.BuildFile(context.Background(), doc, []byte("# Intro\n\nhello there\n"))

	require.False(t, report.Fatal())
	require.Empty(t, report.Errors)
	require.NotNil(t, report.Item)
	require.Equal(t, "/en-us/guides/intro", report.Item.URL)
	require.Equal(t, "guides/intro.raw.page.json", report.Item.Path)
	require.Equal(t, "guides/intro.md", report.Item.SourcePath)
	require.Equal(t, "en-us", report.Item.Locale)
}

func TestBuildFile_Markdown_FrontmatterWinsOverProvidedMetadata(t *testing.T) {
	h := newHarness(t, nil)

	provider := metadata.StaticMetadataProvider{
		"guides/intro.md": {"title": "Provided", "owner": "docs-team"},
	}
	p := New(h.cfg, h.pipeline.loader, provider, h.pipeline.sysBuilder, h.pipeline.outputs, h.pipeline.strategy, h.pipeline.assembler)

	raw := []byte("---\ntitle: Declared\n---\n# Heading\n\nbody\n")
	report := p.BuildFile(context.Background(), document.SourceDocument{FilePath: "guides/intro.md", ContentKind: document.ContentPage, IsPage: true}, raw)

	require.False(t, report.Fatal())
	model, ok := report.Item.ExtensionData["title"]
	require.True(t, ok)
	require.Equal(t, "Declared", model)
	require.Equal(t, "docs-team", report.Item.ExtensionData["owner"])
}

func TestBuildFile_NonObjectYaml_FatalNoItem(t *testing.T) {
	h := newHarness(t, nil)

	doc := document.SourceDocument{FilePath: "data/list.yml", ContentKind: document.ContentPage, SchemaType: "TestType"}
	report := h.pipeline.BuildFile(context.Background(), doc, []byte("- a\n- b\n"))

	require.True(t, report.Fatal())
	require.Nil(t, report.Item)

	items, err := h.registry.Items(context.Background())
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestBuildFile_RawBranch_ModelPublishedVerbatim(t *testing.T) {
	h := newHarness(t, nil)

	doc := document.SourceDocument{FilePath: "a.md", ContentKind: document.ContentPage, IsPage: true}
	report := h.pipeline.BuildFile(context.Background(), doc, []byte("# T\n\nbody text\n"))

	require.NotNil(t, report.Item)
	require.Equal(t, "en-us", report.Item.ExtensionData["locale"])

	// Raw JSON branch: the merged model is published verbatim, no template
	// pass in between.
	artifact, ok := h.writer.jsons["a.raw.page.json"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "T", artifact["title"])
	require.Contains(t, artifact[document.KeyConceptual], "body text")
}

func TestBuildFile_MarkupBranch_WritesHTMLArtifact(t *testing.T) {
	h := newHarness(t, func(cfg *config.Config) { cfg.Output.Json = false })

	doc := document.SourceDocument{FilePath: "guides/intro.md", ContentKind: document.ContentPage, IsPage: true}
	report := h.pipeline.BuildFile(context.Background(), doc, []byte("# Intro\n\nhello\n"))

	require.False(t, report.Fatal())
	require.Equal(t, "guides/intro.html", report.Item.Path)
	require.Contains(t, h.writer.writes, "guides/intro.html")
}

func TestBuildFile_DuplicateOutputPath_SecondFileSkipped(t *testing.T) {
	h := newHarness(t, nil)
	doc := document.SourceDocument{FilePath: "guides/intro.md", ContentKind: document.ContentPage, IsPage: true}

	first := h.pipeline.BuildFile(context.Background(), doc, []byte("# One\n\nbody\n"))
	require.NotNil(t, first.Item)

	second := h.pipeline.BuildFile(context.Background(), doc, []byte("# Two\n\nbody\n"))
	require.Nil(t, second.Item)
	require.True(t, second.Skipped)
	require.False(t, second.Fatal())
}

func TestRun_FatalFileDoesNotAbortSiblings(t *testing.T) {
	h := newHarness(t, nil)
	runner := NewRunner(h.pipeline, 4, nil, nil)

	files := []FileInput{
		{Doc: document.SourceDocument{FilePath: "good.md", ContentKind: document.ContentPage, IsPage: true}, Raw: []byte("# Good\n\nbody\n")},
		{Doc: document.SourceDocument{FilePath: "bad.yml", ContentKind: document.ContentPage, SchemaType: "TestType"}, Raw: []byte("- broken\n")},
		{Doc: document.SourceDocument{FilePath: "also-good.md", ContentKind: document.ContentPage, IsPage: true}, Raw: []byte("# Also\n\nbody\n")},
	}

	reports := runner.Run(context.Background(), files)
	require.Len(t, reports, 3)
	require.False(t, reports[0].Fatal())
	require.NotNil(t, reports[0].Item)
	require.True(t, reports[1].Fatal())
	require.Nil(t, reports[1].Item)
	require.False(t, reports[2].Fatal())
	require.NotNil(t, reports[2].Item)
}

// gateConverter signals when the first conversion starts, then holds every
// conversion until the build context is cancelled.
type gateConverter struct {
	started   chan struct{}
	startOnce sync.Once
}

func (c *gateConverter) Convert(ctx context.Context, _ []byte) (string, []error) {
	c.startOnce.Do(func() { close(c.started) })
	<-ctx.Done()
	return "<h1>T</h1><p>body</p>", nil
}

func TestRun_MidBuildCancellation_StopsSchedulingQueuedFiles(t *testing.T) {
	cfg := &config.Config{
		Name:         "handbook",
		HostName:     "docs.example.com",
		SiteBasePath: "/",
	}
	cfg.Localization.DefaultLocale = "en-us"
	cfg.Output.Json = true

	gate := &gateConverter{started: make(chan struct{})}
	contentLoader := loader.New(gate, nil, nil, schema.NewRegistry())
	sysBuilder := metadata.NewBuilder(cfg, nil, nil, nil, nil)
	assembler := publish.NewAssembler(publish.NewMemoryRegistry(), &nullWriter{}, false)
	p := New(cfg, contentLoader, nil, sysBuilder, output.NewBuilder(nil), output.NewStrategy(true, false, nil, nil, nil), assembler)

	runner := NewRunner(p, 1, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-gate.started
		cancel()
	}()

	files := []FileInput{
		{Doc: document.SourceDocument{FilePath: "a.md", ContentKind: document.ContentPage, IsPage: true}, Raw: []byte("# A\n")},
		{Doc: document.SourceDocument{FilePath: "b.md", ContentKind: document.ContentPage, IsPage: true}, Raw: []byte("# B\n")},
		{Doc: document.SourceDocument{FilePath: "c.md", ContentKind: document.ContentPage, IsPage: true}, Raw: []byte("# C\n")},
	}
	reports := runner.Run(ctx, files)
	require.Len(t, reports, 3)

	// The in-flight file completes.
	require.NotNil(t, reports[0].Item)

	// With parallelism 1 the last file is still queued when the build is
	// cancelled; it must never be scheduled.
	require.True(t, reports[2].Skipped)
	require.Nil(t, reports[2].Item)
}

func TestRun_CancelledContext_RemainingFilesSkipped(t *testing.T) {
	h := newHarness(t, nil)
	runner := NewRunner(h.pipeline, 1, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	files := []FileInput{
		{Doc: document.SourceDocument{FilePath: "a.md", ContentKind: document.ContentPage, IsPage: true}, Raw: []byte("# A\n\nbody\n")},
	}
	reports := runner.Run(ctx, files)
	require.Len(t, reports, 1)
	require.True(t, reports[0].Skipped)
	require.Nil(t, reports[0].Item)
}

func TestBuildFile_MalformedFrontmatter_CollectedAsParseError(t *testing.T) {
	h := newHarness(t, nil)

	raw := []byte("---\ntitle: Unclosed\n# Heading\n\nbody\n")
	doc := document.SourceDocument{FilePath: "a.md", ContentKind: document.ContentPage, IsPage: true}
	report := h.pipeline.BuildFile(context.Background(), doc, raw)

	found := false
	for _, e := range report.Errors {
		if berrors.IsCategory(e, berrors.CategoryParse) {
			found = true
		}
	}
	require.True(t, found)
}
