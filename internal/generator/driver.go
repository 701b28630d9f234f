// Package generator drives the generation of all companion types of one
// input type, from configuration lookup to emission.
package generator

import (
	"context"

	"go.uber.org/zap"

	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/errors"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/models"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/profiles"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/transform"
)

// State is a step of the per-type generation state machine
type State int

const (
	Resolving State = iota
	Selecting
	Transforming
	Collecting
	Emitting
	Done
	Failed
)

// String returns the state name
func (s State) String() string {
	switch s {
	case Resolving:
		return "Resolving"
	case Selecting:
		return "Selecting"
	case Transforming:
		return "Transforming"
	case Collecting:
		return "Collecting"
	case Emitting:
		return "Emitting"
	case Done:
		return "Done"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Skipped is a method/profile pair left out in non-strict mode
type Skipped struct {
	Method  string
	Profile models.Profile
	Err     error
}

// Result is the outcome of generating one type
type Result struct {
	Type        *models.TypeDecl
	State       State
	Config      models.GenerationConfig
	Companions  []*models.CompanionType
	Skipped     []Skipped
	Transitions []State
}

// Option configures a Driver
type Option func(*Driver)

// WithLogger sets the structured logger
func WithLogger(logger *zap.Logger) Option {
	return func(d *Driver) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// Driver generates the companions of one type at a time. It keeps no
// per-type state, so one Driver may serve many goroutines as long as its
// collaborators allow concurrent reads.
type Driver struct {
	source   DeclarationSource
	profiles *profiles.Registry
	synth    *transform.Synthesizer
	emitter  Emitter
	logger   *zap.Logger
}

// NewDriver creates a driver
func NewDriver(source DeclarationSource, registry *profiles.Registry, synth *transform.Synthesizer, emitter Emitter, opts ...Option) *Driver {
	d := &Driver{
		source:   source,
		profiles: registry,
		synth:    synth,
		emitter:  emitter,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// run carries the state of one Generate call
type run struct {
	*Driver
	ctx    context.Context
	t      *models.TypeDecl
	result *Result
	log    *zap.Logger
}

func (r *run) enter(s State) {
	r.result.State = s
	r.result.Transitions = append(r.result.Transitions, s)
	r.log.Debug("state", zap.Stringer("state", s))
}

func (r *run) fail(err error) (*Result, error) {
	from := r.result.State
	r.enter(Failed)
	r.log.Warn("generation failed", zap.Stringer("during", from), zap.Error(err))
	return r.result, err
}

// Generate runs the state machine for t. Companions reach the emitter only
// once every pair of t is built and checked; a ctx cancelled before that
// discards them all.
func (d *Driver) Generate(ctx context.Context, t *models.TypeDecl) (*Result, error) {
	r := &run{
		Driver: d,
		ctx:    ctx,
		t:      t,
		result: &Result{Type: t},
		log:    d.logger.With(zap.String("type", t.QualifiedName())),
	}

	r.enter(Resolving)
	cfg, err := d.source.LookupEnclosingConfig(t)
	if err != nil {
		return r.fail(err)
	}
	r.result.Config = cfg

	r.enter(Selecting)
	entries := d.profiles.Enabled(cfg)
	if len(entries) == 0 {
		r.log.Debug("every profile is disabled")
		r.enter(Done)
		return r.result, nil
	}

	r.enter(Transforming)
	pairs, err := r.transform(entries)
	if err != nil {
		return r.fail(err)
	}

	r.enter(Collecting)
	companions := make([]*models.CompanionType, 0, len(entries))
	for i, entry := range entries {
		checked, err := r.checkClashes(entry, pairs[i])
		if err != nil {
			return r.fail(err)
		}
		companions = append(companions, r.companion(entry, checked))
	}

	r.enter(Emitting)
	if err := ctx.Err(); err != nil {
		return r.fail(r.aborted(err))
	}
	// Once emitting starts every companion is handed over, even if ctx is
	// cancelled meanwhile. A failing emitter still leaves the companions
	// emitted before it in place.
	emitCtx := context.WithoutCancel(ctx)
	for _, c := range companions {
		if err := d.emitter.Emit(emitCtx, c); err != nil {
			return r.fail(errors.NewEmissionFailed(t.QualifiedName(), c.QualifiedName(), err).WithLocation(t.Loc))
		}
		r.log.Debug("emitted", zap.String("companion", c.QualifiedName()))
	}
	r.result.Companions = companions

	r.enter(Done)
	return r.result, nil
}

// transform builds the pairs of every async method, grouped by entry
func (r *run) transform(entries []profiles.Entry) ([][]models.GeneratedPair, error) {
	pairs := make([][]models.GeneratedPair, len(entries))
	for _, method := range r.source.AsyncMethods(r.t) {
		for i, entry := range entries {
			if err := r.ctx.Err(); err != nil {
				return nil, r.aborted(err)
			}
			pair, err := r.pair(method, entry)
			if err != nil {
				if r.skip(method.Name, entry.Profile, err) {
					continue
				}
				return nil, err
			}
			pairs[i] = append(pairs[i], pair)
		}
	}
	return pairs, nil
}

func (r *run) pair(method *models.FunctionDecl, entry profiles.Entry) (models.GeneratedPair, error) {
	naming, err := r.profiles.MethodNaming(r.t, method, entry)
	if err != nil {
		return models.GeneratedPair{}, err
	}
	return r.synth.Pair(r.t, method, entry.Policy, naming, r.result.Config)
}

// skip records err and reports true when it may be tolerated: only
// unsupported signatures outside strict mode are.
func (r *run) skip(method string, profile models.Profile, err error) bool {
	if r.result.Config.Strict || !errors.Is(err, errors.ErrUnsupportedSignature) {
		return false
	}
	r.log.Info("skipping unsupported signature",
		zap.String("method", method),
		zap.Stringer("profile", profile),
		zap.Error(err))
	r.result.Skipped = append(r.result.Skipped, Skipped{Method: method, Profile: profile, Err: err})
	return true
}

func (r *run) aborted(cause error) error {
	return errors.Annotatef(cause, "generation of '%s' aborted", r.t.QualifiedName())
}
