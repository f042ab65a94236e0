package platform

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateLoginItem(t *testing.T) {
	assert.NoError(t, validateLoginItem("RestCycle", "/bin/restcycle"))
	assert.ErrorIs(t, validateLoginItem(" ", "/bin/restcycle"), ErrEmptyAppName)
	assert.ErrorIs(t, validateLoginItem("RestCycle", ""), ErrEmptyExecPath)
}

func TestSlugName(t *testing.T) {
	assert.Equal(t, "rest-cycle", slugName(" Rest Cycle "))
	assert.Equal(t, "restcycle", slugName(""))
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()

	exists, err := fileExists(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = fileExists(dir)
	require.NoError(t, err)
	assert.True(t, exists)
}
