// Package source opens VICAR byte sources: local files, stdin, HTTP(S)
// URLs and Google Storage objects, all exposed as io.ReaderAt.
package source

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
)

// Source is an open, sized, random-access byte source
type Source interface {
	io.ReaderAt
	io.Closer
	Size() int64
	Name() string
}

// Config controls how remote sources are fetched
type Config struct {
	HTTPTimeout time.Duration
	InsecureTLS bool
	// Dump receives request/response dumps for HTTP sources when set
	Dump io.Writer
	// Storage is used for gs:// paths; a default client is created (and
	// closed with the source) when nil
	Storage *storage.Client
}

// Open resolves uri to a Source. Recognized forms: "-" (stdin), file://,
// http(s)://, gs://bucket/object and plain paths.
func Open(ctx context.Context, uri string, cfg Config) (Source, error) {
	switch {
	case uri == "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return NewBytes("stdin", data), nil
	case strings.HasPrefix(uri, "http://"), strings.HasPrefix(uri, "https://"):
		return openHTTP(ctx, uri, cfg)
	case strings.HasPrefix(uri, "gs://"):
		return openGS(ctx, uri, cfg)
	default:
		return OpenFile(strings.TrimPrefix(uri, "file://"))
	}
}

type fileSource struct {
	*os.File
	size int64
}

func (f *fileSource) Size() int64 { return f.size }

// OpenFile opens a local file
func OpenFile(path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	return &fileSource{File: f, size: st.Size()}, nil
}

type bytesSource struct {
	*bytes.Reader
	name string
}

func (b *bytesSource) Name() string { return b.name }
func (b *bytesSource) Close() error { return nil }

// NewBytes wraps an in-memory file
func NewBytes(name string, data []byte) Source {
	return &bytesSource{Reader: bytes.NewReader(data), name: name}
}

func openHTTP(ctx context.Context, uri string, cfg Config) (Source, error) {
	cl := &http.Client{Timeout: cfg.HTTPTimeout}
	if cfg.InsecureTLS {
		cl.Transport = &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: true}}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := cl.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download: %w", err)
	}
	defer resp.Body.Close()
	if cfg.Dump != nil {
		reqDump, _ := httputil.DumpRequest(req, true)
		cfg.Dump.Write(reqDump)
		resDump, _ := httputil.DumpResponse(resp, false)
		cfg.Dump.Write(resDump)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download %s: %s", uri, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	return NewBytes(uri, data), nil
}

// gsSource reads ranges of a Google Storage object on demand
type gsSource struct {
	ctx    context.Context
	obj    *storage.ObjectHandle
	name   string
	size   int64
	client *storage.Client // owned, closed with the source
}

func splitGSPath(uri string) (bucket, object string, err error) {
	parts := strings.SplitN(strings.TrimPrefix(uri, "gs://"), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("expected gs://bucket/object, got %q", uri)
	}
	return parts[0], parts[1], nil
}

func openGS(ctx context.Context, uri string, cfg Config) (Source, error) {
	bucket, object, err := splitGSPath(uri)
	if err != nil {
		return nil, pfx.Err(err)
	}
	client, owned := cfg.Storage, false
	if client == nil {
		if client, err = storage.NewClient(ctx); err != nil {
			return nil, pfx.Err(fmt.Errorf("%s: %w", uri, err))
		}
		owned = true
	}
	src := &gsSource{ctx: ctx, obj: client.Bucket(bucket).Object(object), name: uri}
	if owned {
		src.client = client
	}

	// one hard call for the size; reads are ranged
	attrs, err := src.obj.Attrs(ctx)
	if err != nil {
		src.Close()
		return nil, pfx.Err(fmt.Errorf("%s: %w", uri, err))
	}
	src.size = attrs.Size
	return src, nil
}

func (g *gsSource) ReadAt(p []byte, off int64) (int, error) {
	if off >= g.size {
		return 0, io.EOF
	}
	want := int64(len(p))
	if rest := g.size - off; want > rest {
		want = rest
	}
	r, err := g.obj.NewRangeReader(g.ctx, off, want)
	if err != nil {
		return 0, pfx.Err(err)
	}
	defer r.Close()
	n, err := io.ReadFull(r, p[:want])
	if err != nil {
		return n, err
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (g *gsSource) Size() int64  { return g.size }
func (g *gsSource) Name() string { return g.name }

func (g *gsSource) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}
