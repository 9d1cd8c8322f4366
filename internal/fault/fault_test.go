package fault

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindInvalidInput, KindOf(InvalidInput("bad")))
	assert.Equal(t, KindNotFound, KindOf(NotFound("missing")))
	assert.Equal(t, KindForbidden, KindOf(Forbidden("no")))
	assert.Equal(t, KindInvalidState, KindOf(InvalidState("stuck")))
	assert.Equal(t, KindConflict, KindOf(Conflict("dup")))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
}

func TestKindOfWrappedError(t *testing.T) {
	err := fmt.Errorf("handler: %w", NotFound("invoice 7 not found"))
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, "invoice 7 not found", MessageOf(err))
}

func TestMessageOfHidesInternalDetail(t *testing.T) {
	err := Internal("database error", errors.New("pq: connection refused"))
	assert.Equal(t, "database error", MessageOf(err))
	assert.Contains(t, err.Error(), "connection refused")

	assert.Equal(t, "internal error", MessageOf(errors.New("raw driver error")))
}
