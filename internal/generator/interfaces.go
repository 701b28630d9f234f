package generator

import (
	"context"

	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/config"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/models"
)

// DeclarationSource is what the driver asks about an input type
type DeclarationSource interface {
	LookupEnclosingConfig(t *models.TypeDecl) (models.GenerationConfig, error)
	AsyncMethods(t *models.TypeDecl) []*models.FunctionDecl
}

// Emitter receives every companion type of a successfully generated type
type Emitter interface {
	Emit(ctx context.Context, companion *models.CompanionType) error
}

// EmitterFunc adapts a function to Emitter
type EmitterFunc func(ctx context.Context, companion *models.CompanionType) error

// Emit calls f
func (f EmitterFunc) Emit(ctx context.Context, companion *models.CompanionType) error {
	return f(ctx, companion)
}

// ResolverSource is the DeclarationSource backed by a configuration
// resolver and the declaration model itself.
type ResolverSource struct {
	*config.Resolver
}

// AsyncMethods returns the abstract suspend functions of t in declaration order
func (ResolverSource) AsyncMethods(t *models.TypeDecl) []*models.FunctionDecl {
	return t.AsyncMethods()
}
