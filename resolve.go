package s3koel

import (
	"context"
	"encoding/json"
	"log/slog"
	"maps"
	"strings"

	"github.com/araddon/dateparse"
	"github.com/s3koel/s3koel/coverparse"
	"github.com/s3koel/s3koel/pathguess"
	"github.com/s3koel/s3koel/storage"
	"github.com/s3koel/s3koel/tags"
)

// TagRecord is the metadata sent to the catalog for one song.
type TagRecord struct {
	Artist string
	Title  string
	Album  string
	Track  string
	Lyrics string
	Cover  *coverparse.Cover

	// Extra holds other fields read from the file, eg. "genre" or "duration".
	Extra map[string]any
}

func (r TagRecord) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(r.Extra)+6)
	maps.Copy(m, r.Extra)
	m["artist"] = r.Artist
	m["title"] = r.Title
	m["album"] = r.Album
	m["track"] = r.Track
	m["lyrics"] = r.Lyrics
	if r.Cover != nil {
		m["cover"] = r.Cover
	}
	return json.Marshal(m)
}

const albumArtistKey = "albumartist"

// ResolveTags builds the record for obj from what was read from its file, filling gaps
// from the object key if the config allows it.
func ResolveTags(ctx context.Context, cfg *Config, obj storage.Object, file tags.File) TagRecord {
	rec := TagRecord{
		Artist: file.Get(tags.Artist),
		Title:  file.Get(tags.Title),
		Album:  file.Get(tags.Album),
		Track:  leadingNum(file.Get(tags.TrackNumber)),
		Lyrics: file.Get(tags.Lyrics),
		Extra:  extraTags(file),
	}

	if len(file.Image) > 0 {
		cover, err := coverparse.Parse(file.Image)
		if err != nil {
			slog.DebugContext(ctx, "ignoring embedded image", "object", obj, "err", err)
		} else {
			rec.Cover = cover
		}
	}

	if cfg.RemoveAlbumArtist {
		delete(rec.Extra, albumArtistKey)
	}

	if !cfg.AssumeTags {
		return rec
	}
	force := cfg.ForceAssumeTags
	if !force && rec.Artist != "" && rec.Album != "" && rec.Title != "" {
		return rec
	}

	guess := pathguess.FromKey(obj.Key, cfg.guessOptions())
	slog.DebugContext(ctx, "guessed tags", "object", obj, "artist", guess.Artist, "title", guess.Title, "album", guess.Album, "track", guess.Track, "force", force)

	assume := func(dest *string, v string) {
		if v != "" && (force || *dest == "") {
			*dest = v
		}
	}
	assume(&rec.Artist, guess.Artist)
	assume(&rec.Title, guess.Title)
	assume(&rec.Album, guess.Album)
	assume(&rec.Track, guess.Track)

	if guess.Extra != nil {
		if v, _ := rec.Extra[guess.Extra.Name].(string); force || v == "" {
			rec.Extra[guess.Extra.Name] = guess.Extra.Value
		}
	}
	return rec
}

func extraTags(file tags.File) map[string]any {
	extra := map[string]any{}
	for key, tag := range map[string]string{
		albumArtistKey: tags.AlbumArtist,
		"genre":        tags.Genre,
		"composer":     tags.Composer,
		"comment":      tags.Comment,
	} {
		if v := file.Get(tag); v != "" {
			extra[key] = v
		}
	}
	if date := file.Get(tags.Date); date != "" {
		extra["year"] = releaseYear(date)
	}
	if disc := leadingNum(file.Get(tags.DiscNumber)); disc != "" {
		extra["disc"] = disc
	}

	props := file.Properties
	if props.Length > 0 {
		extra["duration"] = props.Length.Seconds()
	}
	if props.Bitrate > 0 {
		extra["bitrate"] = int(props.Bitrate)
	}
	if props.SampleRate > 0 {
		extra["samplerate"] = int(props.SampleRate)
	}
	if props.Channels > 0 {
		extra["channels"] = int(props.Channels)
	}
	return extra
}

// releaseYear is the year of a date tag, or the tag as is if it can't be parsed.
func releaseYear(date string) any {
	t, err := dateparse.ParseAny(date)
	if err != nil {
		return date
	}
	return t.Year()
}

// leadingNum returns n from "n/total"
func leadingNum(s string) string {
	s, _, _ = strings.Cut(s, "/")
	return strings.TrimSpace(s)
}
