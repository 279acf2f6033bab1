// Package effector defines the capability interface through which scaling
// actions take effect, plus the built-in implementations. The executor
// treats every effector as opaque, possibly slow and possibly failing.
package effector

import (
	"context"

	"github.com/sells-group/scaling-cli/internal/model"
)

// Result is the outcome of applying one action to one candidate.
type Result struct {
	Status model.ExecutionStatus `json:"status"`
	Detail string                `json:"detail,omitempty"`
}

// Effector applies a single scaling action to a target candidate. An
// implementation must honor ctx cancellation; it may return an error or a
// non-success Result, both of which the executor degrades to a failed unit.
type Effector interface {
	Apply(ctx context.Context, action model.Action, target model.Candidate) (*Result, error)
}

// Func adapts a plain function to the Effector interface.
type Func func(ctx context.Context, action model.Action, target model.Candidate) (*Result, error)

// Apply implements Effector.
func (f Func) Apply(ctx context.Context, action model.Action, target model.Candidate) (*Result, error) {
	return f(ctx, action, target)
}

// Registry maps action kinds to the effector responsible for them. Kinds
// without a registered effector resolve to unknown-action at execution time.
type Registry struct {
	effectors map[model.ActionKind]Effector
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{effectors: make(map[model.ActionKind]Effector)}
}

// Register binds an effector to an action kind, replacing any previous one.
func (r *Registry) Register(kind model.ActionKind, e Effector) {
	r.effectors[kind] = e
}

// RegisterAll binds one effector to every known action kind.
func (r *Registry) RegisterAll(e Effector) {
	for _, kind := range model.KnownActionKinds {
		r.effectors[kind] = e
	}
}

// Lookup returns the effector for a kind, or false when none is registered.
func (r *Registry) Lookup(kind model.ActionKind) (Effector, bool) {
	e, ok := r.effectors[kind]
	return e, ok
}

// Kinds returns the registered action kinds.
func (r *Registry) Kinds() []model.ActionKind {
	kinds := make([]model.ActionKind, 0, len(r.effectors))
	for k := range r.effectors {
		kinds = append(kinds, k)
	}
	return kinds
}
