package tokenstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "user-3f2a", key("3f2a"))
}
