// tags wraps go-taglib to read embedded tags, audio properties and cover art
package tags

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.senan.xyz/taglib"
)

var ErrRead = errors.New("error reading tags")

// https://taglib.org/api/p_propertymapping.html

const (
	Album       = "ALBUM"
	AlbumArtist = "ALBUMARTIST"
	Artist      = "ARTIST"
	Title       = "TITLE"
	TrackNumber = "TRACKNUMBER"
	DiscNumber  = "DISCNUMBER"
	Date        = "DATE"
	Genre       = "GENRE"
	Composer    = "COMPOSER"
	Comment     = "COMMENT"
	Lyrics      = "LYRICS"
)

var alternatives = map[string]string{
	"ALBUM_ARTIST":       AlbumArtist,
	"ALBUM ARTIST":       AlbumArtist,
	"YEAR":               Date,
	"TRACK":              TrackNumber,
	"DISC":               DiscNumber,
	"UNSYNCEDLYRICS":     Lyrics,
	"LYRICS:DESCRIPTION": Lyrics,
	"USLT:DESCRIPTION":   Lyrics,
	"©LYR":               Lyrics,
}

// CanRead reports whether path has an extension of a format the library accepts.
func CanRead(path string) bool {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".mp3", ".flac", ".ogg", ".oga", ".opus", ".m4a", ".aac":
		return true
	}
	return false
}

type File struct {
	Tags       map[string][]string
	Properties taglib.Properties
	Image      []byte
}

func NewFile(vs ...string) File {
	if len(vs)%2 != 0 {
		panic("vs should be kv pairs")
	}
	f := File{Tags: map[string][]string{}}
	for i := 0; i < len(vs)-1; i += 2 {
		k := NormKey(vs[i])
		f.Tags[k] = append(f.Tags[k], vs[i+1])
	}
	return f
}

func (f File) Get(key string) string {
	for _, v := range f.Tags[NormKey(key)] {
		if v != "" {
			return v
		}
	}
	return ""
}

func NormKey(k string) string {
	k = strings.ToUpper(k)
	if nk, ok := alternatives[k]; ok {
		return nk
	}
	return k
}

type TagLib struct{}

func (TagLib) Read(path string) (File, error) {
	raw, err := taglib.ReadTags(path)
	if err != nil {
		return File{}, fmt.Errorf("%w: read tags: %w", ErrRead, err)
	}
	props, err := taglib.ReadProperties(path)
	if err != nil {
		return File{}, fmt.Errorf("%w: read properties: %w", ErrRead, err)
	}
	img, err := taglib.ReadImage(path)
	if err != nil {
		return File{}, fmt.Errorf("%w: read image: %w", ErrRead, err)
	}

	f := File{Tags: make(map[string][]string, len(raw)), Properties: props, Image: img}
	for k, vs := range raw {
		k = NormKey(k)
		f.Tags[k] = append(f.Tags[k], vs...)
	}
	return f, nil
}
