package population

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"curaframe/internal/comparator"
	"curaframe/internal/constraint"
)

func baseConstraints() []*constraint.Constraint {
	return []*constraint.Constraint{
		constraint.MustNew("logP", comparator.Scalar(4.0), comparator.LessOrEqual, "", constraint.SeverityCritical, nil),
		constraint.MustNew("hERG_IC50", comparator.Scalar(10.0), comparator.GreaterOrEqual, "", constraint.SeverityCritical, nil),
	}
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	r := NewRegistry(WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
	r.Add("elderly", Modifiers{"hERG_IC50": constraint.Multiply(1.5)})
	base := baseConstraints()

	t.Run("no population returns input", func(t *testing.T) {
		out, known, err := r.Apply(ctx, "", base)
		require.NoError(t, err)
		assert.True(t, known)
		assert.Equal(t, base, out)
	})

	t.Run("registered population clones modified constraints only", func(t *testing.T) {
		out, known, err := r.Apply(ctx, "elderly", base)
		require.NoError(t, err)
		assert.True(t, known)
		require.Len(t, out, 2)
		assert.Same(t, base[0], out[0])
		assert.NotSame(t, base[1], out[1])
		assert.Equal(t, 15.0, out[1].Threshold.Value)
		assert.Equal(t, 10.0, base[1].Threshold.Value)
	})

	t.Run("unknown population warns and returns input", func(t *testing.T) {
		out, known, err := r.Apply(ctx, "martian", base)
		require.NoError(t, err)
		assert.False(t, known)
		assert.Equal(t, base, out)
		assert.Contains(t, buf.String(), "unknown population")
	})
}

func TestAddOverwrites(t *testing.T) {
	var buf bytes.Buffer
	r := NewRegistry(WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
	r.Add("pediatric", Modifiers{"hERG_IC50": constraint.Multiply(1.3)})
	r.Add("pediatric", Modifiers{"hERG_IC50": constraint.Multiply(2)})
	r.Add("asthmatic", nil)

	assert.Contains(t, buf.String(), "overwriting existing population")
	assert.Equal(t, []string{"asthmatic", "pediatric"}, r.Names())

	out, _, err := r.Apply(context.Background(), "pediatric", baseConstraints())
	require.NoError(t, err)
	assert.Equal(t, 20.0, out[1].Threshold.Value)
}
