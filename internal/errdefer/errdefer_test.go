package errdefer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClose(t *testing.T) {
	t.Parallel()

	t.Run("nil", func(t *testing.T) {
		t.Parallel()

		var err error
		Close(&err, stubCloser{})
		assert.NoError(t, err)
	})

	t.Run("close error", func(t *testing.T) {
		t.Parallel()

		give := errors.New("sadness")

		var err error
		Close(&err, stubCloser{err: give})
		assert.ErrorIs(t, err, give)
	})

	t.Run("both", func(t *testing.T) {
		t.Parallel()

		first := errors.New("write failed")
		second := errors.New("close failed")

		err := first
		Close(&err, stubCloser{err: second})
		assert.ErrorIs(t, err, first)
		assert.ErrorIs(t, err, second)
	})
}

func TestOnError(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		var (
			err    error
			called bool
		)
		OnError(&err, func() error {
			called = true
			return nil
		})
		assert.NoError(t, err)
		assert.False(t, called)
	})

	t.Run("failure", func(t *testing.T) {
		t.Parallel()

		give := errors.New("render failed")

		err := give
		var called bool
		OnError(&err, func() error {
			called = true
			return nil
		})
		assert.True(t, called)
		assert.Equal(t, give, err)
	})

	t.Run("rollback error", func(t *testing.T) {
		t.Parallel()

		give := errors.New("render failed")
		rollback := errors.New("remove failed")

		err := give
		OnError(&err, func() error { return rollback })
		assert.ErrorIs(t, err, give)
		assert.ErrorIs(t, err, rollback)
	})
}

type stubCloser struct {
	err error
}

func (s stubCloser) Close() error {
	return s.err
}
