// Package cli runs generation passes over a set of input files: loading
// and indexing declarations, generating companions in parallel, checking
// outputs against disk and cleaning them up.
package cli

import (
	"context"
	stderrors "errors"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/annotations"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/config"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/emitter"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/errors"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/generator"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/models"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/parser"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/profiles"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/registry"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/templates"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/transform"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/utils"
)

// Workspace is the indexed input of one pass. It is read-only once Load
// returns.
type Workspace struct {
	Files     []*models.SourceFile
	Hierarchy *registry.Hierarchy
	Decoder   *annotations.Decoder
	Resolver  *config.Resolver
	Targets   []*models.TypeDecl
	Warnings  []string
}

// Report is the outcome of generating every target of a workspace
type Report struct {
	Results  []*generator.Result
	Failures []error
	Summary  GenerationSummary
}

// Err combines the per-type failures, nil when every type succeeded
func (r *Report) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	if len(r.Failures) == 1 {
		return r.Failures[0]
	}
	multi := errors.NewMultipleErrors()
	for _, err := range r.Failures {
		var typed errors.ReversalError
		if stderrors.As(err, &typed) {
			multi.Add(typed)
		} else {
			multi.Add(errors.Wrap(errors.UnknownErrorCode, "generation failed", err))
		}
	}
	return multi
}

// ProcessorOption configures a Processor
type ProcessorOption func(*Processor)

// WithProcessorLogger sets the structured logger
func WithProcessorLogger(logger *zap.Logger) ProcessorOption {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithDiagnostics sets the user-facing progress output
func WithDiagnostics(d *utils.DiagnosticSystem) ProcessorOption {
	return func(p *Processor) {
		if d != nil {
			p.diagnostics = d
		}
	}
}

// Processor loads inputs and generates companion types for them
type Processor struct {
	settings    *Settings
	logger      *zap.Logger
	diagnostics *utils.DiagnosticSystem
	files       *utils.FileProcessor
	parser      *parser.Parser
}

// NewProcessor creates a processor for settings
func NewProcessor(settings *Settings, opts ...ProcessorOption) *Processor {
	files := utils.NewFileProcessor()
	p := &Processor{
		settings:    settings,
		logger:      zap.NewNop(),
		diagnostics: utils.NewDiagnosticSystem(utils.DiagnosticSilent),
		files:       files,
		parser:      parser.NewParserWithReader(files.GetFileReader()),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Settings returns the settings of the processor
func (p *Processor) Settings() *Settings {
	return p.settings
}

// Renderer creates the renderer for the configured header
func (p *Processor) Renderer() (*templates.Renderer, error) {
	return templates.NewRenderer(p.settings.Header)
}

// Load expands inputs, parses every file and selects the types to generate.
// Output roots are never scanned as inputs.
func (p *Processor) Load(ctx context.Context, inputs []string) (*Workspace, error) {
	paths, err := p.files.ExpandInputs(inputs, utils.FileWalkOptions{
		FileFilter:      utils.KotlinInputFilter(),
		DirectoryFilter: utils.ExcludingDirectories(utils.DefaultDirectoryFilter(), p.settings.Output.JVM, p.settings.Output.JS),
	})
	if err != nil {
		return nil, err
	}
	p.diagnostics.PhaseHeader("Loading")
	p.diagnostics.PhaseItem("%d input file(s)", len(paths))
	p.logger.Debug("inputs expanded", zap.Strings("inputs", inputs), zap.Int("files", len(paths)))

	files, err := p.parse(ctx, paths)
	if err != nil {
		return nil, err
	}

	ws := &Workspace{
		Files:   files,
		Decoder: annotations.NewDecoder(annotations.DefaultRegistry()),
	}
	for _, qn := range p.settings.Markers {
		ws.Decoder.RegisterExternalAlias(qn)
	}
	for _, f := range files {
		for _, t := range f.AllTypes() {
			if ws.Decoder.RegisterAlias(t) {
				p.logger.Debug("configuration alias", zap.String("alias", t.QualifiedName()))
			}
		}
	}

	ws.Hierarchy, err = registry.Build(files)
	if err != nil {
		return nil, err
	}
	ws.Resolver = config.NewResolver(ws.Decoder, p.settings.Defaults)
	p.selectTargets(ws)

	p.diagnostics.PhaseItem("%d type(s) indexed, %d to generate", ws.Hierarchy.Size(), len(ws.Targets))
	for _, w := range ws.Warnings {
		p.diagnostics.Warn("%s", w)
	}
	return ws, nil
}

// parse parses paths in parallel. Every syntax error is collected before
// the pass gives up.
func (p *Processor) parse(ctx context.Context, paths []string) ([]*models.SourceFile, error) {
	files := make([]*models.SourceFile, len(paths))
	failures := errors.NewMultipleErrors()
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.settings.Workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			file, err := p.parser.ParseFile(path)
			if err != nil {
				var typed errors.ReversalError
				if !stderrors.As(err, &typed) {
					typed = errors.WrapParseError(path, err)
				}
				mu.Lock()
				failures.Add(typed)
				mu.Unlock()
				return nil
			}
			files[i] = file
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := failures.ErrorOrNil(); err != nil {
		return nil, err
	}
	return files, nil
}

// selectTargets picks the interfaces and abstract classes that are
// annotated themselves, or that sit in an annotated scope and declare
// suspend functions to reverse.
func (p *Processor) selectTargets(ws *Workspace) {
	for _, t := range ws.Hierarchy.Types() {
		if t.Kind == models.KindAnnotation {
			continue
		}
		own := ws.Resolver.HasOwnMarker(t)
		if !t.IsAbstract() {
			if own {
				ws.Warnings = append(ws.Warnings,
					t.QualifiedName()+" is annotated but is neither an interface nor an abstract class")
			}
			continue
		}
		if own || (ws.Resolver.IsConfigured(t) && len(t.AsyncMethods()) > 0) {
			ws.Targets = append(ws.Targets, t)
		}
	}
}

// Run generates every target of ws through out. A failing type does not
// stop the others; its error is recorded in the report.
func (p *Processor) Run(ctx context.Context, ws *Workspace, out generator.Emitter) (*Report, error) {
	driver := generator.NewDriver(
		generator.ResolverSource{Resolver: ws.Resolver},
		profiles.NewRegistry(ws.Decoder),
		transform.NewSynthesizer(transform.NewHierarchyResolver(ws.Hierarchy), transform.DefaultAnnotationPolicy()),
		out,
		generator.WithLogger(p.logger),
	)

	results := make([]*generator.Result, len(ws.Targets))
	failures := make([]error, len(ws.Targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.settings.Workers)
	for i, t := range ws.Targets {
		g.Go(func() error {
			results[i], failures[i] = driver.Generate(gctx, t)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, errors.Annotate(err, "generation pass aborted")
	}

	p.diagnostics.PhaseHeader("Generating")
	report := &Report{Results: results}
	report.Summary.FilesParsed = len(ws.Files)
	report.Summary.Warnings = ws.Warnings
	for i, res := range results {
		report.Summary.TypesProcessed++
		report.Summary.Skipped += len(res.Skipped)
		for _, s := range res.Skipped {
			p.diagnostics.Warn("skipped %s.%s for %s: %v", res.Type.QualifiedName(), s.Method, s.Profile, s.Err)
		}
		if failures[i] != nil {
			report.Summary.TypesFailed++
			report.Failures = append(report.Failures, failures[i])
			p.diagnostics.Error("%s: %v", res.Type.QualifiedName(), failures[i])
			continue
		}
		report.Summary.CompanionsEmitted += len(res.Companions)
		for _, c := range res.Companions {
			p.diagnostics.PhaseItem("%s", c.QualifiedName())
		}
	}
	p.logger.Info("generation pass finished",
		zap.Int("types", report.Summary.TypesProcessed),
		zap.Int("companions", report.Summary.CompanionsEmitted),
		zap.Int("failed", report.Summary.TypesFailed))
	return report, nil
}

// Generate loads inputs and writes the companions of every target to the
// configured output roots.
func (p *Processor) Generate(ctx context.Context, inputs []string, dryRun bool) (*Report, []emitter.Output, error) {
	ws, err := p.Load(ctx, inputs)
	if err != nil {
		return nil, nil, err
	}
	renderer, err := p.Renderer()
	if err != nil {
		return nil, nil, err
	}
	files := emitter.NewFileEmitter(renderer, p.settings.Roots(),
		emitter.WithLogger(p.logger),
		emitter.WithDryRun(dryRun))

	report, err := p.Run(ctx, ws, files)
	if err != nil {
		return nil, nil, err
	}
	outputs := files.Outputs()
	for _, out := range outputs {
		if out.Status == emitter.Unchanged {
			p.diagnostics.Verbose("%s unchanged", out.Path)
			continue
		}
		p.diagnostics.PhaseWrite("%s (%s)", out.Path, out.Status)
	}
	return report, outputs, nil
}
