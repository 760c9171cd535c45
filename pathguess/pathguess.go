// Package pathguess infers track metadata from an object's file name and path
// for files that carry no usable embedded tags.
package pathguess

import (
	"net/url"
	"path"
	"strings"
)

// NoArtist is used by the general strategy when the file name doesn't name an artist.
const NoArtist = "No Artist"

const (
	sepDash = " - "
	sepDot  = "."
)

type Options struct {
	// AlbumsRoot is the key prefix under which keys follow the
	// Artist/[Year - ]Album/[Track. ]Title layout. Empty disables the by-album strategy.
	AlbumsRoot string

	AssumeCompilation bool
	CompilationsRoot  string
	CompilationTag    string

	// KeepYear leaves a leading year in the album folder name as part of the album.
	KeepYear bool
}

type Guess struct {
	Artist string
	Title  string
	Album  string
	Track  string

	Extra *Tag
}

type Tag struct {
	Name  string
	Value string
}

// FromKey guesses with the by-album strategy when the key is under the albums root,
// falling back to the general strategy when it doesn't fit that layout.
func FromKey(key string, opts Options) Guess {
	if g, ok := ByAlbum(key, opts); ok {
		return g
	}
	return General(key, opts)
}

// General guesses from a flat "Artist - Title.ext" file name.
func General(key string, opts Options) Guess {
	stem := stem(key)

	var g Guess
	artist, title, ok := strings.Cut(stem, sepDash)
	switch num, rest, isTrack := strings.Cut(stem, sepDot); {
	case ok:
		g.Title = strings.TrimSpace(title)
	case isTrack && isDecimal(num):
		g.Title = strings.TrimSpace(rest)
	default:
		g.Title = stem
	}
	g.Artist = artist
	if !ok || isDecimal(artist) {
		g.Artist = NoArtist
	}

	if opts.AssumeCompilation {
		if dir, ok := relDir(key, opts.CompilationsRoot); ok {
			g.Extra = &Tag{Name: opts.CompilationTag, Value: url.PathEscape(dir)}
		}
	}
	return g
}

// ByAlbum guesses from an AlbumsRoot/Artist/[Year - ]Album/[Track. ]Title.ext key.
// ok is false if the key isn't under the albums root or has too few segments.
func ByAlbum(key string, opts Options) (g Guess, ok bool) {
	rel, ok := under(key, opts.AlbumsRoot)
	if !ok {
		return Guess{}, false
	}
	segs := strings.Split(rel, "/")
	if len(segs) < 3 || segs[0] == "" {
		return Guess{}, false
	}

	g.Artist = segs[0]

	g.Album = segs[len(segs)-2]
	if _, album, ok := cutNumeric(g.Album, sepDash, sepDot); ok && !opts.KeepYear {
		g.Album = strings.TrimSpace(album)
	}

	title := stem(segs[len(segs)-1])
	if track, rest, ok := cutNumeric(title, sepDot, sepDash); ok {
		g.Track, g.Title = track, strings.TrimLeft(rest, " ")
	} else {
		g.Title = title
	}
	return g, true
}

// cutNumeric splits s on the first separator from seps for which s starts with a
// numeric token followed by that separator.
func cutNumeric(s string, seps ...string) (num, rest string, ok bool) {
	for _, sep := range seps {
		if num, rest, ok := strings.Cut(s, sep); ok && isDecimal(num) {
			return num, rest, true
		}
	}
	return "", "", false
}

func under(key, root string) (string, bool) {
	root = strings.Trim(root, "/")
	if root == "" {
		return "", false
	}
	return strings.CutPrefix(key, root+"/")
}

func relDir(key, root string) (string, bool) {
	rel, ok := under(key, root)
	if !ok {
		return "", false
	}
	dir := path.Dir(rel)
	if dir == "." {
		return "", false
	}
	return dir, true
}

func stem(key string) string {
	base := path.Base(key)
	return strings.TrimSuffix(base, path.Ext(base))
}

func isDecimal(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
