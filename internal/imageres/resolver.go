// Package imageres turns image URLs into displayable bytes and picks
// random receipt images from a remote listing endpoint.
package imageres

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"sync"
	"syscall"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultEndpoint = "https://api-css-tools.vercel.app/images"
	DefaultMaxBytes = 10 << 20
	// DefaultTimeout bounds a whole request when Config.Timeout is zero.
	DefaultTimeout = 60 * time.Second
)

var (
	// ErrNoImage means the URL is not something we fetch (sentinel, blank, non-http).
	ErrNoImage     = errors.New("no fetchable image")
	ErrNotAnImage  = errors.New("response is not a decodable image")
	ErrTooLarge    = errors.New("image exceeds size limit")
	ErrBadResponse = errors.New("unexpected response")
	// ErrForbiddenTarget is returned when a URL resolves to a loopback,
	// private, link-local or otherwise internal address.
	ErrForbiddenTarget = errors.New("image host is not publicly routable")
)

// Image is a fetched and verified image.
type Image struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
	Format      string
}

// Config for a Resolver. Zero values fall back to defaults.
type Config struct {
	Endpoint string
	MaxBytes int64
	Timeout  time.Duration
	// AllowPrivate lets the built-in client dial internal addresses. It has
	// no effect when Client is set.
	AllowPrivate bool
	Client       *http.Client
	// Intn returns a value in [0,n); used to pick the random image index.
	Intn func(n int) int
}

// Resolver fetches images. Nothing is cached: concurrent requests for the
// same URL share one in-flight fetch, later requests fetch again. A shared
// fetch is cancelled once every caller waiting on it has gone.
type Resolver struct {
	client   *http.Client
	endpoint string
	maxBytes int64
	intn     func(int) int
	inflight singleflight.Group
	logger   *slog.Logger

	mu      sync.Mutex
	flights map[string]*flight
}

// flight is the cancellable context of one shared fetch and the number of
// callers still waiting for it.
type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

func New(cfg Config) *Resolver {
	client := cfg.Client
	if client == nil {
		client = newClient(cfg.Timeout, cfg.AllowPrivate)
	}
	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	intn := cfg.Intn
	if intn == nil {
		intn = randIntn
	}
	return &Resolver{
		client:   client,
		endpoint: endpoint,
		maxBytes: maxBytes,
		intn:     intn,
		logger:   slog.Default().With("component", "image_resolver"),
		flights:  make(map[string]*flight),
	}
}

func newClient(timeout time.Duration, allowPrivate bool) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !allowPrivate {
		dialer := &net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second, Control: publicOnly}
		transport.DialContext = dialer.DialContext
		// The dial check must see the image host, not a proxy.
		transport.Proxy = nil
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}

// publicOnly refuses connections to addresses that are not publicly
// routable. It runs after name resolution, for redirects too.
func publicOnly(_, address string, _ syscall.RawConn) error {
	ap, err := netip.ParseAddrPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrForbiddenTarget, address)
	}
	if !Routable(ap.Addr()) {
		return fmt.Errorf("%w: %s", ErrForbiddenTarget, ap.Addr())
	}
	return nil
}

// Routable reports whether addr is a public unicast address.
func Routable(addr netip.Addr) bool {
	addr = addr.Unmap()
	return addr.IsValid() &&
		addr.IsGlobalUnicast() &&
		!addr.IsPrivate() &&
		!addr.IsLoopback() &&
		!addr.IsLinkLocalUnicast()
}

// Fetchable reports whether raw is an absolute http(s) URL.
func Fetchable(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Fetch downloads raw and checks that the bytes decode as an image.
func (r *Resolver) Fetch(ctx context.Context, raw string) (Image, error) {
	raw = strings.TrimSpace(raw)
	if !Fetchable(raw) {
		return Image{}, ErrNoImage
	}
	for {
		f, ch := r.join(ctx, raw)
		select {
		case <-ctx.Done():
			r.leave(raw, f)
			return Image{}, ctx.Err()
		case res := <-ch:
			r.leave(raw, f)
			if res.Err != nil {
				// Joined a flight its last waiter had just abandoned.
				if errors.Is(res.Err, context.Canceled) && ctx.Err() == nil {
					continue
				}
				return Image{}, res.Err
			}
			if res.Shared {
				r.logger.DebugContext(ctx, "Image fetch shared", "url", raw)
			}
			img := res.Val.(Image)
			img.Data = bytes.Clone(img.Data)
			return img, nil
		}
	}
}

// join registers the caller on the shared fetch for raw, starting one if
// none is running. The fetch context outlives any single caller but is
// cancelled by leave once nobody waits for it.
func (r *Resolver) join(ctx context.Context, raw string) (*flight, <-chan singleflight.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.flights[raw]
	if !ok {
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		f = &flight{ctx: fctx, cancel: cancel}
		r.flights[raw] = f
	}
	f.waiters++
	ch := r.inflight.DoChan(raw, func() (any, error) {
		defer r.finish(raw, f)
		return r.fetch(f.ctx, raw)
	})
	return f, ch
}

func (r *Resolver) leave(raw string, f *flight) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f.waiters--
	if f.waiters > 0 {
		return
	}
	f.cancel()
	if r.flights[raw] == f {
		delete(r.flights, raw)
	}
}

func (r *Resolver) finish(raw string, f *flight) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.flights[raw] == f {
		delete(r.flights, raw)
	}
}

func (r *Resolver) fetch(ctx context.Context, raw string) (Image, error) {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, raw, nil)
	if err != nil {
		return Image{}, fmt.Errorf("build image request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return Image{}, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Image{}, fmt.Errorf("%w: status %d", ErrBadResponse, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, r.maxBytes+1))
	if err != nil {
		return Image{}, fmt.Errorf("read image body: %w", err)
	}
	if int64(len(data)) > r.maxBytes {
		return Image{}, ErrTooLarge
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrNotAnImage, err)
	}
	r.logger.DebugContext(ctx, "Image fetched",
		"url", raw,
		"bytes", len(data),
		"format", format,
		"duration_ms", time.Since(start).Milliseconds())

	return Image{
		Data:        data,
		ContentType: http.DetectContentType(data),
		Width:       cfg.Width,
		Height:      cfg.Height,
		Format:      format,
	}, nil
}
