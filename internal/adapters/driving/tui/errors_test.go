package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_AreDistinct(t *testing.T) {
	assert.NotEqual(t, ErrMissingWorkspace.Error(), ErrInvalidPorts.Error())
}

func TestErrMissingWorkspace_Message(t *testing.T) {
	assert.Contains(t, ErrMissingWorkspace.Error(), "workspace service")
	assert.Contains(t, ErrMissingWorkspace.Error(), "tui:")
}
