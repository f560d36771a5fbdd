package errors

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestSentinelsSurviveWrapping(t *testing.T) {
	wrapped := errors.Wrap(ErrStorage, "failed to write invoice.pdf")
	assert.True(t, errors.Is(wrapped, ErrStorage))

	twice := errors.Wrapf(errors.Wrap(ErrConnection, "dial tcp"), "account cfg_1")
	assert.True(t, errors.Is(twice, ErrConnection))
	assert.False(t, errors.Is(twice, ErrCredential))
}

func TestSentinelMessages(t *testing.T) {
	assert.Contains(t, errors.Wrap(ErrConnection, "graph probe failed").Error(), "connection failed")
	assert.Contains(t, ErrPassInProgress.Error(), "in progress")
}
