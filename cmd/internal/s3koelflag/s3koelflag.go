package s3koelflag

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/s3koel/s3koel"
	"github.com/s3koel/s3koel/clientutil"
	"github.com/s3koel/s3koel/event"
	"github.com/s3koel/s3koel/koel"
	"github.com/s3koel/s3koel/notifications"
	"github.com/s3koel/s3koel/storage"
	"go.senan.xyz/flagconf"
)

// DefaultClient wraps the default transport. Call it after Parse so the logging
// flags are applied.
func DefaultClient() {
	chain := clientutil.Chain(
		clientutil.WithLogging(slog.Default()),
		clientutil.WithUserAgent(fmt.Sprintf(`%s/%s`, s3koel.Name, s3koel.Version)),
	)

	http.DefaultTransport = chain(http.DefaultTransport)
}

func Parse() {
	configPath := flag.String("config-path", defaultConfigPath(), "Path to config file")

	printVersion := flag.Bool("version", false, "Print the version and exit")
	printConfig := flag.Bool("config", false, "Print the parsed config and exit")

	flag.Parse()
	flagconf.ReadEnvPrefix = func(_ *flag.FlagSet) string { return s3koel.Name }
	flagconf.ParseEnv()
	flagconf.ParseConfig(*configPath)

	if *printVersion {
		fmt.Printf("%s %s\n", filepath.Base(flag.CommandLine.Name()), s3koel.Version)
		os.Exit(0)
	}
	if *printConfig {
		flag.VisitAll(func(f *flag.Flag) {
			fmt.Printf("%-20s %s\n", f.Name, f.Value)
		})
		os.Exit(0)
	}
}

// defaultConfigPath is empty when there is no user config dir, eg. on Lambda.
func defaultConfigPath() string {
	userConfig, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(userConfig, s3koel.Name, "config")
}

func Config() *s3koel.Config {
	var cfg s3koel.Config

	flag.StringVar(&cfg.KoelHost, "koel-host", "", "Base URL of the Koel server")
	flag.Var(&secretParser{&cfg.KoelAppKey}, "koel-app-key", "Koel APP_KEY used to authenticate storage requests")
	flag.StringVar(&cfg.StorageAccessKey, "storage-access-key", "", "Object storage access key")
	flag.Var(&secretParser{&cfg.StorageSecretKey}, "storage-secret-key", "Object storage secret key")

	flag.BoolVar(&cfg.AssumeTags, "assume-tags", false, "Guess missing artist, title, album and track from the object key")
	flag.BoolVar(&cfg.ForceAssumeTags, "force-assume-tags", false, "Prefer guessed tags over embedded ones (needs -assume-tags)")
	flag.StringVar(&cfg.AlbumsRoot, "albums-root", "", "Key prefix of objects laid out as Artist/[Year - ]Album/[Track. ]Title")
	flag.BoolVar(&cfg.KeepYear, "keep-year", false, "Keep a leading year in album folder names")

	flag.BoolVar(&cfg.AssumeCompilation, "assume-compilation", false, "Tag objects under -compilations-root with their folder")
	flag.StringVar(&cfg.CompilationsRoot, "compilations-root", "", "Key prefix of compilation objects")
	flag.StringVar(&cfg.CompilationTag, "compilation-tag", s3koel.DefaultCompilationTag, "Tag set to the compilation folder")

	flag.BoolVar(&cfg.RemoveAlbumArtist, "remove-album-artist", false, "Don't send the album artist tag")

	flag.StringVar(&cfg.TempDir, "temp-dir", "", "Directory for fetched files (default system temp dir)")

	return &cfg
}

func Notifications() *notifications.Notifications {
	n := notifications.Notifications{Title: s3koel.Name}
	flag.Var(&notificationsParser{&n}, "notification-uri", "Add a shoutrrr notification URI for an event, eg. \"ingest-error,sync-error uri\" (stackable)")
	return &n
}

// Clients holds the flags for the remote services.
type Clients struct {
	provider        string
	storageEndpoint string
	storageRegion   string
	koelRateLimit   time.Duration
}

func ClientFlags() *Clients {
	var c Clients
	flag.StringVar(&c.provider, "provider", "aws", fmt.Sprintf("Storage provider, one of %s", strings.Join(providerNames(), ", ")))
	flag.StringVar(&c.storageEndpoint, "storage-endpoint", "", "Override the provider's S3 endpoint")
	flag.StringVar(&c.storageRegion, "storage-region", "", "Object storage region")
	flag.DurationVar(&c.koelRateLimit, "koel-rate-limit", 0, "Minimum time between Koel requests")
	return &c
}

var ErrUnknownProvider = errors.New("unknown provider")

func (c *Clients) Provider() (event.Provider, error) {
	p, ok := event.Providers[c.provider]
	if !ok {
		return event.Provider{}, fmt.Errorf("%w %q, expected one of %s", ErrUnknownProvider, c.provider, strings.Join(providerNames(), ", "))
	}
	if c.storageEndpoint != "" {
		p.Endpoint = c.storageEndpoint
	}
	return p, nil
}

func (c *Clients) Storage(cfg *s3koel.Config, endpoint string) (*storage.S3, error) {
	return storage.NewS3(storage.S3Config{
		Endpoint:  endpoint,
		AccessKey: cfg.StorageAccessKey,
		SecretKey: cfg.StorageSecretKey,
		Region:    c.storageRegion,
	}, http.DefaultTransport)
}

func (c *Clients) Koel(cfg *s3koel.Config) *koel.Client {
	return &koel.Client{
		BaseURL:    cfg.KoelHost,
		AppKey:     cfg.KoelAppKey,
		HTTPClient: clientutil.WrapClient(&http.Client{Timeout: time.Minute}, clientutil.WithRateLimit(c.koelRateLimit)),
	}
}

func providerNames() []string {
	return slices.Sorted(maps.Keys(event.Providers))
}

var _ flag.Value = (*notificationsParser)(nil)
var _ flag.Value = (*secretParser)(nil)

type notificationsParser struct{ *notifications.Notifications }

func (n *notificationsParser) Set(value string) error {
	eventsRaw, uri, ok := strings.Cut(value, " ")
	if !ok {
		return fmt.Errorf("invalid notification uri format. expected eg \"ev1,ev2 uri\"")
	}
	var lineErrs []error
	for _, ev := range strings.Split(eventsRaw, ",") {
		ev, uri = strings.TrimSpace(ev), strings.TrimSpace(uri)
		err := n.AddURI(notifications.Event(ev), uri)
		lineErrs = append(lineErrs, err)
	}
	return errors.Join(lineErrs...)
}
func (n notificationsParser) String() string {
	if n.Notifications == nil {
		return ""
	}
	var parts []string
	n.Notifications.IterMappings(func(e notifications.Event, uri string) {
		url, _ := url.Parse(uri)
		parts = append(parts, fmt.Sprintf("%s: %s://%s/...", e, url.Scheme, url.Host))
	})
	slices.Sort(parts)
	return strings.Join(parts, ", ")
}

// secretParser keeps secrets out of -config output.
type secretParser struct{ v *string }

func (s *secretParser) Set(value string) error {
	*s.v = value
	return nil
}
func (s secretParser) String() string {
	if s.v == nil || *s.v == "" {
		return ""
	}
	return "****"
}
