package palette

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigError(t *testing.T) {
	err := configError("num_clusters", 5, ErrTooManyClusters)

	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorIs(t, err, ErrTooManyClusters)
	assert.NotErrorIs(t, err, ErrEmptySamples)
	assert.Contains(t, err.Error(), "num_clusters")

	var ce *ConfigError
	assert.True(t, errors.As(err, &ce))
	assert.Equal(t, 5, ce.Value)
}
