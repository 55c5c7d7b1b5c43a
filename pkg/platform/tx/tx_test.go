package tx

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type beginnerFunc func(context.Context, *sql.TxOptions) (*sql.Tx, error)

func (f beginnerFunc) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return f(ctx, opts)
}

func TestFrom(t *testing.T) {
	_, ok := From(context.Background())
	assert.False(t, ok)

	ctx := WithTx(context.Background(), nil)
	_, ok = From(ctx)
	assert.False(t, ok, "nil transactions are not stored")
}

func TestRun(t *testing.T) {
	t.Run("begin failure skips fn", func(t *testing.T) {
		db := beginnerFunc(func(context.Context, *sql.TxOptions) (*sql.Tx, error) {
			return nil, errors.New("too many connections")
		})
		called := false
		err := Run(context.Background(), db, func(context.Context) error {
			called = true
			return nil
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "begin tx")
		assert.False(t, called)
	})

	t.Run("joins a transaction already in context", func(t *testing.T) {
		db := beginnerFunc(func(context.Context, *sql.TxOptions) (*sql.Tx, error) {
			t.Fatal("BeginTx must not be called")
			return nil, nil
		})
		outer := &sql.Tx{}
		ctx := WithTx(context.Background(), outer)
		want := errors.New("boom")

		err := Run(ctx, db, func(ctx context.Context) error {
			got, ok := From(ctx)
			assert.True(t, ok)
			assert.Same(t, outer, got)
			return want
		})
		assert.ErrorIs(t, err, want)
	})
}
