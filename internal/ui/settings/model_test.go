package settings

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPictureDataURLEncodesImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "avatar.png")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	url, err := pictureDataURL(path)
	require.NoError(t, err)

	// aGVsbG8= is "hello" in base64.
	assert.Equal(t, "data:image/png;base64,aGVsbG8=", url)
}

func TestPictureDataURLJpegExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photo.JPG")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	url, err := pictureDataURL(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "data:image/jpeg;base64,"))
}

func TestPictureDataURLRejectsUnknownType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	_, err := pictureDataURL(path)
	assert.Error(t, err)
}

func TestPictureDataURLMissingFile(t *testing.T) {
	_, err := pictureDataURL(filepath.Join(t.TempDir(), "absent.png"))
	assert.Error(t, err)
}
