package rod

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// DefaultMaxPages is the default number of pages before browser recycling.
const DefaultMaxPages = 75

// ErrManagerClosed is returned by Browser after Close.
var ErrManagerClosed = errors.New("browser manager is closed")

// generation is one launched browser process. A retired generation is
// closed once its last page is released.
type generation struct {
	browser *rod.Browser
	close   func() error
	pid     int
	active  int
	retired bool
}

// BrowserManager is a scoped handle to a headless Chrome session. The
// browser is launched on first use and recycled after a fixed number of
// pages, since Chrome's memory baseline grows over time even with proper
// page cleanup. A recycled browser stays open until every page handed out
// on it has been released.
//
// BrowserManager is safe for concurrent use. The owner must call Close.
type BrowserManager struct {
	mu        sync.Mutex
	current   *generation
	retired   map[*generation]struct{}
	pageCount int
	maxPages  int
	bin       string
	closed    bool

	launch func() (*generation, error)
}

// ManagerOption configures a BrowserManager.
type ManagerOption func(*BrowserManager)

// WithMaxPages sets the maximum number of pages before the browser is recycled.
// Defaults to 75 if not specified.
func WithMaxPages(n int) ManagerOption {
	return func(bm *BrowserManager) {
		bm.maxPages = n
	}
}

// WithBrowserBin sets the path of the Chrome binary. By default the
// launcher looks up a local installation or downloads one.
func WithBrowserBin(path string) ManagerOption {
	return func(bm *BrowserManager) {
		bm.bin = path
	}
}

// NewBrowserManager creates a new BrowserManager. No browser is launched
// until the first call to Browser.
func NewBrowserManager(opts ...ManagerOption) *BrowserManager {
	bm := &BrowserManager{
		maxPages: DefaultMaxPages,
		retired:  make(map[*generation]struct{}),
	}
	for _, opt := range opts {
		opt(bm)
	}
	bm.launch = bm.launchBrowser
	return bm
}

// Browser returns the current browser for one page, launching it if needed
// and recycling it once maxPages pages have been opened. The caller must
// call release when the page is closed; release is safe to call more than
// once.
func (bm *BrowserManager) Browser() (browser *rod.Browser, release func(), err error) {
	var idle *generation
	defer func() {
		if idle != nil {
			_ = idle.close()
		}
	}()
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.closed {
		return nil, nil, ErrManagerClosed
	}
	if bm.current == nil {
		g, err := bm.launch()
		if err != nil {
			return nil, nil, err
		}
		bm.current = g
		bm.pageCount = 0
	} else if bm.maxPages > 0 && bm.pageCount >= bm.maxPages {
		idle = bm.recycleBrowser()
	}

	g := bm.current
	bm.pageCount++
	g.active++

	var once sync.Once
	return g.browser, func() { once.Do(func() { bm.release(g) }) }, nil
}

func (bm *BrowserManager) release(g *generation) {
	bm.mu.Lock()
	g.active--
	drained := g.retired && g.active == 0 && !bm.closed
	if drained {
		delete(bm.retired, g)
	}
	bm.mu.Unlock()

	if drained {
		_ = g.close()
	}
}

// Close releases browser resources, including recycled browsers that still
// have pages open. Close is safe to call multiple times.
func (bm *BrowserManager) Close() error {
	bm.mu.Lock()
	if bm.closed {
		bm.mu.Unlock()
		return nil
	}
	bm.closed = true
	gens := make([]*generation, 0, len(bm.retired)+1)
	for g := range bm.retired {
		gens = append(gens, g)
	}
	bm.retired = map[*generation]struct{}{}
	if bm.current != nil {
		gens = append(gens, bm.current)
		bm.current = nil
	}
	bm.mu.Unlock()

	var errs []error
	for _, g := range gens {
		if err := g.close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// launchBrowser starts a new browser instance with stability flags.
func (bm *BrowserManager) launchBrowser() (*generation, error) {
	lnchr := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Set("disable-hang-monitor").
		Set("ignore-certificate-errors").
		Leakless(true).
		Headless(true)
	if bm.bin != "" {
		lnchr = lnchr.Bin(bm.bin)
	}

	u, err := lnchr.Launch()
	if err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		lnchr.Kill()
		return nil, fmt.Errorf("connecting to browser: %w", err)
	}

	return &generation{
		browser: browser,
		pid:     lnchr.PID(),
		close: func() error {
			err := browser.Close()
			lnchr.Kill()
			return err
		},
	}, nil
}

// recycleBrowser starts a fresh browser and retires the old one. It returns
// the old generation when no page holds it, for the caller to close after
// unlocking; otherwise the release of its last page closes it. If launching
// the new browser fails, the old browser is kept.
// Must be called with mu held.
func (bm *BrowserManager) recycleBrowser() *generation {
	g, err := bm.launch()
	if err != nil {
		return nil
	}

	old := bm.current
	bm.current = g
	bm.pageCount = 0

	old.retired = true
	if old.active == 0 {
		return old
	}
	bm.retired[old] = struct{}{}
	return nil
}

// LauncherPID returns the process ID of the current browser launcher, or 0
// when no browser is running.
func (bm *BrowserManager) LauncherPID() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	if bm.current == nil {
		return 0
	}
	return bm.current.pid
}
