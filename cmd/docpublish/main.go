package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/docpublish/internal/config"
	"git.home.luguber.info/inful/docpublish/internal/docset"
	"git.home.luguber.info/inful/docpublish/internal/events"
	"git.home.luguber.info/inful/docpublish/internal/gitinfo"
	"git.home.luguber.info/inful/docpublish/internal/loader"
	"git.home.luguber.info/inful/docpublish/internal/metadata"
	"git.home.luguber.info/inful/docpublish/internal/metrics"
	"git.home.luguber.info/inful/docpublish/internal/observability"
	"git.home.luguber.info/inful/docpublish/internal/output"
	"git.home.luguber.info/inful/docpublish/internal/pipeline"
	"git.home.luguber.info/inful/docpublish/internal/publish"
	"git.home.luguber.info/inful/docpublish/internal/render"
	"git.home.luguber.info/inful/docpublish/internal/schema"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"docpublish.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Build struct {
		Source string `short:"s" help:"Docset source directory" default:"."`
		Output string `short:"o" help:"Output directory override"`
	} `cmd:"" help:"Build all source files in the docset into publishable artifacts"`
}

func main() {
	// Best effort; a missing .env is fine.
	_ = godotenv.Load()

	kctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	switch kctx.Command() {
	case "build":
		if err := runBuild(); err != nil {
			slog.Error("build failed", "error", err)
			os.Exit(1)
		}
	default:
		kctx.FatalIfErrorf(fmt.Errorf("unknown command: %s", kctx.Command()))
	}
}

func runBuild() error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}
	if CLI.Build.Output != "" {
		cfg.Output.Directory = CLI.Build.Output
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	buildID := uuid.NewString()
	ctx = observability.WithBuildID(ctx, buildID)

	registry, err := openRegistry(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = registry.Close() }()

	reporter, err := events.NewReporter(cfg.Events, buildID)
	if err != nil {
		return err
	}
	defer reporter.Close()

	runner, err := buildRunner(cfg, registry, reporter)
	if err != nil {
		return err
	}

	files, err := docset.Discover(CLI.Build.Source, cfg)
	if err != nil {
		return err
	}
	observability.InfoContext(ctx, "docset discovered", slog.Int("files", len(files)))

	reports := runner.Run(ctx, files)

	published := 0
	failed := 0
	for _, report := range reports {
		for _, e := range report.Errors {
			observability.WarnContext(ctx, "build diagnostic",
				slog.String("file", report.Doc.FilePath),
				slog.String("category", string(e.Category)),
				slog.String("error", e.Error()))
		}
		if report.Item != nil {
			published++
		}
		if report.Fatal() {
			failed++
		}
	}

	items, err := registry.Items(ctx)
	if err != nil {
		return err
	}
	writer := publish.NewFSWriter(cfg.Output.Directory)
	if err := writer.WriteJSON("publish.json", items); err != nil {
		return err
	}

	observability.InfoContext(ctx, "build finished",
		slog.Int("published", published),
		slog.Int("failed", failed))
	if failed > 0 {
		return fmt.Errorf("%d file(s) failed to build", failed)
	}
	return nil
}

func openRegistry(cfg *config.Config) (publish.Registry, error) {
	if cfg.Registry.Driver == "sqlite" {
		return publish.NewSQLiteRegistry(cfg.Registry.Path)
	}
	return publish.NewMemoryRegistry(), nil
}

func buildRunner(cfg *config.Config, registry publish.Registry, reporter *events.Reporter) (*pipeline.Runner, error) {
	registryTypes := schema.NewRegistry()
	for _, t := range append([]string{schema.LandingDataType}, cfg.DataSchemaTypes...) {
		registryTypes.Register(t, schema.Passthrough{})
	}

	templates := render.NewTemplateRenderer()
	if err := registerBuiltinTemplates(templates); err != nil {
		return nil, err
	}
	scripts := render.NewFuncScriptRenderer(true)

	contentLoader := loader.New(render.NewGoldmarkConverter(), nil, templates, registryTypes)

	contrib := gitinfo.NewProvider(CLI.Build.Source)
	sysBuilder := metadata.NewBuilder(cfg, metadata.StaticMonikerProvider(cfg.Monikers), contrib, nil, nil)

	outputs := output.NewBuilder(scripts)
	strategy := output.NewStrategy(cfg.Output.Json, cfg.Legacy, scripts, templates, nil)

	writer := publish.NewFSWriter(cfg.Output.Directory)
	assembler := publish.NewAssembler(registry, writer, cfg.Legacy)

	p := pipeline.New(cfg, contentLoader, nil, sysBuilder, outputs, strategy, assembler)

	recorder := metrics.NewPrometheusRecorder(nil)
	return pipeline.NewRunner(p, cfg.Parallelism, recorder, reporter), nil
}

// registerBuiltinTemplates installs the fallback page and landing page
// templates used when a deployment does not bring its own theme.
func registerBuiltinTemplates(templates *render.TemplateRenderer) error {
	if err := templates.Register("page.html", pageTemplate); err != nil {
		return err
	}
	return templates.Register(schema.LandingDataType, landingTemplate)
}

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
{{.PageMetadata}}</head>
<body>
{{.Content}}
</body>
</html>
`

const landingTemplate = `<h1>{{.Title}}</h1>
{{if .Summary}}<p>{{.Summary}}</p>
{{end}}{{range .Sections}}<section>{{if .title}}<h2>{{.title}}</h2>
{{end}}{{if .summary}}<p>{{.summary}}</p>
{{end}}</section>
{{end}}`
