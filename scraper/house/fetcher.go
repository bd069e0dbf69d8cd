package house

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"congress-trades/config"
	"congress-trades/utils"
)

// ErrNotFound is returned for documents the server does not have.
var ErrNotFound = errors.New("house: document not found")

// Fetcher downloads a document by URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// NewFetcher returns the fetcher selected by cfg.FetchMode and a function
// that releases its resources.
func NewFetcher(cfg *config.Config, logger *utils.Logger) (Fetcher, func(), error) {
	timeout := time.Duration(cfg.HTTPTimeoutSec) * time.Second
	switch cfg.FetchMode {
	case "", "http":
		return NewHTTPFetcher(cfg.UserAgent, timeout), func() {}, nil
	case "browser":
		bf, err := NewBrowserFetcher(cfg.BaseURL, cfg.UserAgent, cfg.ChromeBin, timeout, logger)
		if err != nil {
			return nil, nil, err
		}
		return bf, bf.Close, nil
	default:
		return nil, nil, fmt.Errorf("house: unknown fetch mode %q", cfg.FetchMode)
	}
}

// HTTPFetcher downloads documents with a plain HTTP client.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

func NewHTTPFetcher(userAgent string, timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("house: build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("house: get %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, url)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("house: get %s: unexpected status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("house: read %s: %w", url, err)
	}
	return data, nil
}

// fetchJS downloads a URL from inside the page and returns it base64 encoded.
const fetchJS = `(async function(url) {
	const resp = await fetch(url, {credentials: 'include'});
	if (resp.status === 404) { return '!404'; }
	if (!resp.ok) { throw new Error('status ' + resp.status); }
	const bytes = new Uint8Array(await resp.arrayBuffer());
	let bin = '';
	for (let i = 0; i < bytes.length; i += 0x8000) {
		bin += String.fromCharCode.apply(null, bytes.subarray(i, i + 0x8000));
	}
	return btoa(bin);
})(%s)`

// BrowserFetcher downloads documents through headless Chrome, for hosts that
// refuse non-browser clients. Each fetch opens a tab on the disclosure site
// and issues a same-origin fetch() from it.
type BrowserFetcher struct {
	baseURL string
	timeout time.Duration
	logger  *utils.Logger

	browserCtx    context.Context
	cancelAlloc   context.CancelFunc
	cancelBrowser context.CancelFunc
}

// NewBrowserFetcher launches the browser. Tabs opened by Fetch share it.
func NewBrowserFetcher(baseURL, userAgent, chromeBin string, timeout time.Duration, logger *utils.Logger) (*BrowserFetcher, error) {
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	logger.Info("[house] Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(userAgent),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	// Suppress chromedp log noise
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("house: start browser: %w", err)
	}

	return &BrowserFetcher{
		baseURL:       baseURL,
		timeout:       timeout,
		logger:        logger,
		browserCtx:    browserCtx,
		cancelAlloc:   cancelAlloc,
		cancelBrowser: cancelBrowser,
	}, nil
}

func (b *BrowserFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	tabCtx, cancel := chromedp.NewContext(b.browserCtx)
	defer cancel()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, b.timeout)
	defer cancelTimeout()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var encoded string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(b.baseURL),
		chromedp.Evaluate(fmt.Sprintf(fetchJS, strconv.Quote(url)), &encoded,
			func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
				return p.WithAwaitPromise(true)
			}),
	)
	if err != nil {
		return nil, fmt.Errorf("house: browser fetch %s: %w", url, err)
	}
	if encoded == "!404" {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, url)
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("house: decode browser payload: %w", err)
	}
	b.logger.Debug("[house] Browser fetched %s (%d bytes)", url, len(data))
	return data, nil
}

// Close shuts the browser down.
func (b *BrowserFetcher) Close() {
	b.cancelBrowser()
	b.cancelAlloc()
}

// findChromeBinary locates Chrome/Chromium binary.
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
