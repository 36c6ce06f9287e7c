package devenv

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolvePathPassthrough(t *testing.T) {
	resolved, err := ResolvePath("some/dir")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "some/dir", resolved)
}

func TestResolvePathState(t *testing.T) {
	resolved, err := ResolvePath("<dev_state>/resty/session")
	if err != nil {
		t.Fatal(err)
	}
	root, err := GetWorkspaceRoot()
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, filepath.Join(root, "dev", ".state", "resty", "session"), resolved)
}
