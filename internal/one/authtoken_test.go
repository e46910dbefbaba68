package one

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultAuthtokenPathKnownOS(t *testing.T) {
	switch runtime.GOOS {
	case "linux", "windows", "darwin":
		path, err := DefaultAuthtokenPath()
		require.NoError(t, err)
		assert.NotEmpty(t, path)
	default:
		_, err := DefaultAuthtokenPath()
		assert.Error(t, err)
	}
}
