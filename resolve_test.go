package s3koel

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/s3koel/s3koel/storage"
	"github.com/s3koel/s3koel/tags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.senan.xyz/taglib"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func TestResolveNoAssume(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cfg := validConfig()
	obj := storage.Object{Bucket: "music", Key: "songs/Unknown.mp3"}

	rec := ResolveTags(ctx, cfg, obj, tags.NewFile())
	assert.Equal(t, "", rec.Artist)
	assert.Equal(t, "", rec.Title)
	assert.Equal(t, "", rec.Album)
	assert.Equal(t, "", rec.Lyrics)
	assert.Nil(t, rec.Cover)

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	for _, k := range []string{"artist", "title", "album", "track", "lyrics"} {
		assert.Contains(t, m, k)
		assert.Equal(t, "", m[k])
	}
	assert.NotContains(t, m, "cover")
}

func TestResolveEmbedded(t *testing.T) {
	t.Parallel()

	file := tags.NewFile(
		"artist", "Autechre",
		"title", "Foil",
		"album", "Amber",
		"tracknumber", "1/11",
		"discnumber", "1/1",
		"date", "1994",
		"genre", "IDM",
		"albumartist", "Autechre",
		"lyrics", "none",
	)
	file.Properties = taglib.Properties{Length: 361 * time.Second, Bitrate: 320, SampleRate: 44100, Channels: 2}
	file.Image = pngHeader

	rec := ResolveTags(context.Background(), validConfig(), storage.Object{Key: "x/y.flac"}, file)
	assert.Equal(t, "Autechre", rec.Artist)
	assert.Equal(t, "Foil", rec.Title)
	assert.Equal(t, "Amber", rec.Album)
	assert.Equal(t, "1", rec.Track)
	assert.Equal(t, "none", rec.Lyrics)
	if assert.NotNil(t, rec.Cover) {
		assert.Equal(t, "png", rec.Cover.Extension)
		assert.NotEmpty(t, rec.Cover.Data)
	}
	assert.Equal(t, map[string]any{
		"albumartist": "Autechre",
		"genre":       "IDM",
		"year":        1994,
		"disc":        "1",
		"duration":    361.0,
		"bitrate":     320,
		"samplerate":  44100,
		"channels":    2,
	}, rec.Extra)

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "Autechre", m["artist"])
	assert.Equal(t, "IDM", m["genre"])
	assert.Equal(t, 361.0, m["duration"])
	assert.Equal(t, map[string]any{"data": rec.Cover.Data, "extension": "png"}, m["cover"])
}

func TestResolveBadImage(t *testing.T) {
	t.Parallel()

	file := tags.NewFile()
	file.Image = []byte("not an image at all")

	rec := ResolveTags(context.Background(), validConfig(), storage.Object{Key: "songs/a.mp3"}, file)
	assert.Nil(t, rec.Cover)
}

func TestResolveFill(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.AssumeTags = true
	cfg.AlbumsRoot = "albums"
	obj := storage.Object{Key: "albums/Artist/2001 - Album/02. Title.mp3"}

	// nothing missing, nothing guessed
	full := tags.NewFile("artist", "Real Artist", "title", "Real Title", "album", "Real Album")
	rec := ResolveTags(context.Background(), cfg, obj, full)
	assert.Equal(t, "Real Artist", rec.Artist)
	assert.Equal(t, "Real Title", rec.Title)
	assert.Equal(t, "Real Album", rec.Album)
	assert.Equal(t, "", rec.Track)

	// only gaps are filled
	partial := tags.NewFile("artist", "Real Artist", "title", "Real Title", "tracknumber", "9")
	rec = ResolveTags(context.Background(), cfg, obj, partial)
	assert.Equal(t, "Real Artist", rec.Artist)
	assert.Equal(t, "Real Title", rec.Title)
	assert.Equal(t, "Album", rec.Album)
	assert.Equal(t, "9", rec.Track)

	rec = ResolveTags(context.Background(), cfg, obj, tags.NewFile())
	assert.Equal(t, "Artist", rec.Artist)
	assert.Equal(t, "Title", rec.Title)
	assert.Equal(t, "Album", rec.Album)
	assert.Equal(t, "02", rec.Track)
}

func TestResolveForce(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.AssumeTags = true
	cfg.ForceAssumeTags = true
	cfg.AlbumsRoot = "albums"

	full := tags.NewFile("artist", "Real Artist", "title", "Real Title", "album", "Real Album", "tracknumber", "9")

	rec := ResolveTags(context.Background(), cfg, storage.Object{Key: "albums/Artist/2001 - Album/02. Title.mp3"}, full)
	assert.Equal(t, "Artist", rec.Artist)
	assert.Equal(t, "Title", rec.Title)
	assert.Equal(t, "Album", rec.Album)
	assert.Equal(t, "02", rec.Track)

	// general guesses no album or track, so those stay
	rec = ResolveTags(context.Background(), cfg, storage.Object{Key: "songs/Guessed - Song.mp3"}, full)
	assert.Equal(t, "Guessed", rec.Artist)
	assert.Equal(t, "Song", rec.Title)
	assert.Equal(t, "Real Album", rec.Album)
	assert.Equal(t, "9", rec.Track)
}

func TestResolveAlbumArtist(t *testing.T) {
	t.Parallel()

	file := tags.NewFile("albumartist", "Various Artists")

	cfg := validConfig()
	cfg.RemoveAlbumArtist = true
	rec := ResolveTags(context.Background(), cfg, storage.Object{Key: "songs/a.mp3"}, file)
	assert.NotContains(t, rec.Extra, "albumartist")

	cfg = validConfig()
	cfg.AssumeTags = true
	cfg.AssumeCompilation = true
	cfg.CompilationsRoot = "compilations"
	obj := storage.Object{Key: "compilations/Now 42/Blur - Song 2.mp3"}

	rec = ResolveTags(context.Background(), cfg, obj, tags.NewFile())
	assert.Equal(t, "Now%2042", rec.Extra["albumartist"])
	assert.Equal(t, "Blur", rec.Artist)

	// fill keeps the embedded album artist
	rec = ResolveTags(context.Background(), cfg, obj, file)
	assert.Equal(t, "Various Artists", rec.Extra["albumartist"])

	cfg.ForceAssumeTags = true
	cfg.CompilationTag = "compilation"
	rec = ResolveTags(context.Background(), cfg, obj, file)
	assert.Equal(t, "Now%2042", rec.Extra["compilation"])
	assert.Equal(t, "Various Artists", rec.Extra["albumartist"])
}

func TestReleaseYear(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1994, releaseYear("1994"))
	assert.Equal(t, 2007, releaseYear("2007-11-05"))
	assert.Equal(t, 1973, releaseYear("1973-03-01T00:00:00Z"))
	assert.Equal(t, "unknown", releaseYear("unknown"))
}
