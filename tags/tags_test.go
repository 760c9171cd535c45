package tags

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, AlbumArtist, NormKey("album_artist"))
	assert.Equal(t, AlbumArtist, NormKey("AlbumArtist"))
	assert.Equal(t, Date, NormKey("year"))
	assert.Equal(t, TrackNumber, NormKey("track"))
	assert.Equal(t, Lyrics, NormKey("USLT:DESCRIPTION"))
	assert.Equal(t, "CUSTOM", NormKey("custom"))
}

func TestGet(t *testing.T) {
	t.Parallel()

	f := NewFile(
		"artist", "",
		"artist", "Autechre",
		"year", "1994",
	)
	assert.Equal(t, "Autechre", f.Get(Artist))
	assert.Equal(t, "1994", f.Get(Date))
	assert.Equal(t, "", f.Get(Title))

	var empty File
	assert.Equal(t, "", empty.Get(Title))
}

func TestNewFileOddPanics(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() { NewFile("artist") })
}

func TestCanRead(t *testing.T) {
	t.Parallel()

	for _, p := range []string{"a.mp3", "a.FLAC", "dir/a b.ogg", "a.opus", "a.m4a", "a.aac", "a.oga"} {
		assert.True(t, CanRead(p), p)
	}
	for _, p := range []string{"a.wav", "a.wma", "a.jpg", "a", filepath.Join("x.mp3", "cover")} {
		assert.False(t, CanRead(p), p)
	}
}

func TestReadMissing(t *testing.T) {
	t.Parallel()

	var tg TagLib
	_, err := tg.Read(filepath.Join(t.TempDir(), "missing.flac"))
	require.ErrorIs(t, err, ErrRead)
}
