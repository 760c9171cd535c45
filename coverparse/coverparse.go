// Package coverparse turns embedded picture bytes into the cover payload the catalog accepts.
package coverparse

import (
	"encoding/base64"
	"errors"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var ErrNotImage = errors.New("data is not a known image format")

type Cover struct {
	Data      string `json:"data"`
	Extension string `json:"extension"`
}

// Parse encodes data as URL-safe base64 and detects its image format from the
// byte signature, eg. "jpeg" or "png".
func Parse(data []byte) (*Cover, error) {
	ext, err := Format(data)
	if err != nil {
		return nil, err
	}
	return &Cover{
		Data:      base64.URLEncoding.EncodeToString(data),
		Extension: ext,
	}, nil
}

func Format(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrNotImage
	}
	mtype := mimetype.Detect(data)
	for m := mtype; m != nil; m = m.Parent() {
		if format, ok := strings.CutPrefix(m.String(), "image/"); ok {
			if short, ok := shortFormats[format]; ok {
				return short, nil
			}
			return format, nil
		}
	}
	return "", ErrNotImage
}

var shortFormats = map[string]string{
	"x-icon":              "ico",
	"vnd.adobe.photoshop": "psd",
	"svg+xml":             "svg",
}
