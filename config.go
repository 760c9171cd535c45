package s3koel

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/s3koel/s3koel/pathguess"
)

var ErrConfig = errors.New("invalid configuration")

const DefaultCompilationTag = "albumartist"

type Config struct {
	KoelHost         string `flag:"koel-host" validate:"required,url"`
	KoelAppKey       string `flag:"koel-app-key" validate:"required"`
	StorageAccessKey string `flag:"storage-access-key" validate:"required"`
	StorageSecretKey string `flag:"storage-secret-key" validate:"required"`

	// AssumeTags guesses missing artist, title, album and track from the object key.
	AssumeTags bool `flag:"assume-tags"`
	// ForceAssumeTags prefers guessed values over embedded ones.
	ForceAssumeTags bool   `flag:"force-assume-tags" validate:"excluded_without=AssumeTags"`
	AlbumsRoot      string `flag:"albums-root"`
	KeepYear        bool   `flag:"keep-year"`

	AssumeCompilation bool   `flag:"assume-compilation"`
	CompilationsRoot  string `flag:"compilations-root" validate:"required_if=AssumeCompilation true"`
	CompilationTag    string `flag:"compilation-tag"`

	RemoveAlbumArtist bool `flag:"remove-album-artist" validate:"excluded_with=AssumeCompilation"`

	TempDir string `flag:"temp-dir"`
}

var validate = validator.New()

func init() {
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("flag")
	})
}

// Validate reports all problems with the config as one ErrConfig.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: no config", ErrConfig)
	}
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}
	var problems []string
	for _, fe := range verrs {
		problems = append(problems, describe(fe))
	}
	return fmt.Errorf("%w: %s", ErrConfig, strings.Join(problems, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("missing %s", fe.Field())
	case "required_if":
		return fmt.Sprintf("missing %s, needed by %s", fe.Field(), flagName(fe.Param()))
	case "url":
		return fmt.Sprintf("%s %q is not a url", fe.Field(), fe.Value())
	case "excluded_with":
		return fmt.Sprintf("%s can't be used with %s", fe.Field(), flagName(fe.Param()))
	case "excluded_without":
		return fmt.Sprintf("%s needs %s", fe.Field(), flagName(fe.Param()))
	}
	return fmt.Sprintf("%s: failed %s", fe.Field(), fe.Tag())
}

func flagName(param string) string {
	name, _, _ := strings.Cut(param, " ")
	if f, ok := reflect.TypeFor[Config]().FieldByName(name); ok {
		return f.Tag.Get("flag")
	}
	return name
}

func (c *Config) guessOptions() pathguess.Options {
	tag := c.CompilationTag
	if tag == "" {
		tag = DefaultCompilationTag
	}
	return pathguess.Options{
		AlbumsRoot:        c.AlbumsRoot,
		AssumeCompilation: c.AssumeCompilation,
		CompilationsRoot:  c.CompilationsRoot,
		CompilationTag:    tag,
		KeepYear:          c.KeepYear,
	}
}

func (c *Config) tempDir() string {
	if c.TempDir != "" {
		return c.TempDir
	}
	return os.TempDir()
}
