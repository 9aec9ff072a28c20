package mirror

import (
	"net/url"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// DefaultMirrors is the built-in list of public Invidious instances.
// Entries are normalized and deduplicated by NewRegistry.
var DefaultMirrors = []string{
	"https://rust.oskamp.nl/",
	"https://siawaseok-wakame-server2.glitch.me",
	"https://clover-pitch-position.glitch.me/",
	"https://inv.nadeko.net/",
	"https://iv.duti.dev/",
	"https://yewtu.be/",
	"https://id.420129.xyz/",
	"https://invidious.f5.si/",
	"https://invidious.nerdvpn.de/",
	"https://invidious.tiekoetter.com/",
	"https://lekker.gay/",
	"https://nyc1.iv.ggtyler.dev/",
	"https://iv.ggtyler.dev/",
	"https://invid-api.poketube.fun/",
	"https://iv.melmac.space/",
	"https://cal1.iv.ggtyler.dev/",
	"https://pol1.iv.ggtyler.dev/",
	"https://yt.artemislena.eu/",
	"https://invidious.lunivers.trade",
	"https://eu-proxy.poketube.fun",
	"https://invidious.reallyaweso.me",
	"https://invidious.dhusch.de",
	"https://usa-proxy2.poketube.fun",
	"https://invidious.darkness.service",
	"https://iv.datura.network",
	"https://invidious.private.coffee",
	"https://invidious.projectsegfau.lt",
	"https://invidious.perennialte.ch",
	"https://usa-proxy.poketube.fun/",
	"https://invidious.exma.de/",
	"https://invidious.einfachzocken.eu/",
	"https://inv.zzls.xyz/",
	"https://yt.yoc.ovh/",
	"https://invidious.adminforge.de",
	"https://invidious.catspeed.cc/",
	"https://inst1.inv.catspeed.cc/",
	"https://inst2.inv.catspeed.cc/",
	"https://materialious.nadeko.net/",
	"https://inv.us.projectsegfau.lt/",
	"https://invidious.qwik.space/",
	"https://invidious.jing.rocks/",
	"https://yt.thechangebook.org/",
	"https://vro.omcat.info/",
	"https://iv.nboeck.de/",
	"https://youtube.mosesmang.com/",
	"https://iteroni.com/",
	"https://subscriptions.gir.st/",
	"https://invidious.fdn.fr/",
	"https://inv.vern.cc/",
	"https://invi.susurrando.com/",
	"https://youtube.alt.tyil.nl/",
	"https://invidious.schenkel.eti.br/",
	"https://invidious.nikkosphere.com/",
}

// Registry is an immutable, ordered set of mirror base URLs.
// Every base URL ends with exactly one slash.
type Registry struct {
	mirrors []string
}

// NewRegistry normalizes and deduplicates the given base URLs.
// Invalid entries are skipped; an empty result is an error.
func NewRegistry(urls []string) (*Registry, error) {
	seen := make(map[string]bool, len(urls))
	mirrors := make([]string, 0, len(urls))
	for _, raw := range urls {
		n, err := Normalize(raw)
		if err != nil {
			log.WithError(err).WithField("mirror", raw).Warn("skipping invalid mirror")
			continue
		}
		if seen[n] {
			log.WithField("mirror", n).Debug("skipping duplicate mirror")
			continue
		}
		seen[n] = true
		mirrors = append(mirrors, n)
	}
	if len(mirrors) == 0 {
		return nil, errors.New("no valid mirrors configured")
	}
	return &Registry{mirrors: mirrors}, nil
}

// Normalize returns the canonical form of a mirror base URL:
// lower-cased scheme and host, no query or fragment, exactly one trailing slash.
func Normalize(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("empty mirror url")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", errors.Wrap(err, "failed to parse mirror url")
	}
	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", errors.Errorf("unsupported mirror scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", errors.New("mirror url has no host")
	}
	u.Host = strings.ToLower(u.Host)
	u.RawQuery = ""
	u.Fragment = ""
	u.RawPath = ""
	u.Path = strings.TrimRight(u.Path, "/") + "/"
	return u.String(), nil
}

// List returns the mirrors in registry order.
func (s *Registry) List() []string {
	out := make([]string, len(s.mirrors))
	copy(out, s.mirrors)
	return out
}

// Len returns the pool size.
func (s *Registry) Len() int {
	return len(s.mirrors)
}

// Join concatenates a normalized base and a relative API path without
// producing a double or missing slash.
func Join(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
