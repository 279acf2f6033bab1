package effector

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/scaling-cli/internal/model"
)

func TestRegistry_LookupUnregisteredKind(t *testing.T) {
	reg := NewRegistry()
	_, ok := reg.Lookup(model.ActionAdSpendIncrease)
	assert.False(t, ok)
}

func TestRegistry_RegisterAll(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterAll(NewSimulated())

	for _, kind := range model.KnownActionKinds {
		_, ok := reg.Lookup(kind)
		assert.True(t, ok, "kind %s", kind)
	}
	assert.Len(t, reg.Kinds(), len(model.KnownActionKinds))
}

func TestSimulated_Success(t *testing.T) {
	sim := &Simulated{Latency: time.Millisecond}

	res, err := sim.Apply(context.Background(),
		model.Action{Kind: model.ActionAdSpendIncrease, Budget: 225},
		model.Candidate{ID: "p1"},
	)
	require.NoError(t, err)
	assert.Equal(t, model.StatusSuccess, res.Status)
}

func TestSimulated_HonorsContextCancellation(t *testing.T) {
	sim := &Simulated{Latency: time.Minute}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := sim.Apply(ctx,
		model.Action{Kind: model.ActionPriceOptimization},
		model.Candidate{ID: "p1"},
	)
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestFuncAdapter(t *testing.T) {
	var gotKind model.ActionKind
	fn := Func(func(ctx context.Context, action model.Action, target model.Candidate) (*Result, error) {
		gotKind = action.Kind
		return &Result{Status: model.StatusSuccess}, nil
	})

	res, err := fn.Apply(context.Background(),
		model.Action{Kind: model.ActionAudienceExpansion},
		model.Candidate{ID: "p1"},
	)
	require.NoError(t, err)
	assert.Equal(t, model.StatusSuccess, res.Status)
	assert.Equal(t, model.ActionAudienceExpansion, gotKind)
}
