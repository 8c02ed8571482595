package health

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubChecker struct {
	name  string
	err   error
	calls int
}

func (s *stubChecker) Name() string { return s.name }

func (s *stubChecker) Check(context.Context) error {
	s.calls++
	return s.err
}

func TestReady(t *testing.T) {
	pg := &stubChecker{name: "postgres"}
	rd := &stubChecker{name: "redis"}
	assert.NoError(t, NewService(pg, rd).Ready(context.Background()))

	down := errors.New("connection refused")
	pg.err = down
	err := NewService(pg, rd).Ready(context.Background())
	assert.ErrorIs(t, err, down)
	assert.EqualError(t, err, "postgres: connection refused")
	assert.Equal(t, 1, rd.calls)
}

func TestReady_NoCheckers(t *testing.T) {
	assert.NoError(t, NewService().Ready(context.Background()))
}
