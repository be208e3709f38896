package dataset

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	gzip "github.com/klauspost/compress/gzip"
	"golang.org/x/sync/errgroup"
)

// Loader fetches the item table and the optional sidecar. Sources are local
// paths or http(s) URLs; .gz files and gzip Content-Encoding are
// decompressed transparently.
type Loader struct {
	DataSource string
	MetaSource string // empty means no sidecar

	client *http.Client
}

// NewLoader creates a Loader for the given sources.
func NewLoader(dataSource, metaSource string) *Loader {
	return &Loader{
		DataSource: dataSource,
		MetaSource: metaSource,
		client:     &http.Client{Timeout: 30 * time.Second},
	}
}

// Load fetches both sources concurrently and returns decoded rows plus the
// parsed sidecar (nil when no sidecar is configured). Either fetch failing
// fails the whole load; the caller must not serve a partial dataset.
func (l *Loader) Load(ctx context.Context) ([][]string, Sidecar, error) {
	var (
		rows    [][]string
		sidecar Sidecar
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		data, err := l.fetch(ctx, l.DataSource)
		if err != nil {
			return fmt.Errorf("load table: %w", err)
		}
		rows = Decode(string(data))
		return nil
	})
	if l.MetaSource != "" {
		g.Go(func() error {
			data, err := l.fetch(ctx, l.MetaSource)
			if err != nil {
				return fmt.Errorf("load sidecar: %w", err)
			}
			sidecar, err = ParseSidecar(data)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	log.Debugf("loaded %d rows from %s (sidecar entries: %d)", len(rows), l.DataSource, len(sidecar))
	return rows, sidecar, nil
}

func (l *Loader) fetch(ctx context.Context, source string) ([]byte, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return l.fetchHTTP(ctx, source)
	}
	return l.fetchFile(source)
}

func (l *Loader) fetchFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("gunzip %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}
	return io.ReadAll(r)
}

func (l *Loader) fetchHTTP(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}

	var r io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" || strings.HasSuffix(url, ".gz") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gunzip %s: %w", url, err)
		}
		defer gz.Close()
		r = gz
	}
	return io.ReadAll(r)
}
