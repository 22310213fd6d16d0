package scraper

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"github.com/ericyum/tour-agent-backend/pkg/config"
)

// Naver blogs render the post inside iframe#mainFrame; older editors use
// the later selectors.
const mainFrameSelector = "iframe#mainFrame"

var contentSelectors = []string{
	"div.se-main-container",
	"div.post-view",
	"#postViewArea",
}

// lazy-loaded images carry the real URL in a data attribute
var imageAttributes = []string{"data-lazy-src", "data-src", "src"}

// RodLoader reads blog posts with a shared headless Chrome. The browser is
// started on first use and reconnected when it dies.
type RodLoader struct {
	cfg   config.BrowserConfig
	pages *semaphore.Weighted

	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
}

// NewRodLoader creates a loader; no browser is started until the first Load.
func NewRodLoader(cfg config.BrowserConfig) *RodLoader {
	maxPages := cfg.MaxPages
	if maxPages <= 0 {
		maxPages = 1
	}
	return &RodLoader{cfg: cfg, pages: semaphore.NewWeighted(int64(maxPages))}
}

func (l *RodLoader) ensureBrowser() (*rod.Browser, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.browser != nil {
		if _, err := l.browser.Version(); err == nil {
			return l.browser, nil
		}
		log.Warn().Msg("stale browser connection detected, reconnecting")
		_ = l.browser.Close()
		l.browser = nil
	}

	controlURL := l.cfg.ControlURL
	if controlURL == "" {
		lc := launcher.New().Headless(l.cfg.Headless)
		if l.cfg.Bin != "" {
			lc = lc.Bin(l.cfg.Bin)
		}
		u, err := lc.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch chrome: %w", err)
		}
		l.launcher = lc
		controlURL = u
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}
	l.browser = browser
	return browser, nil
}

// Load returns the post body text and its image URLs. A page without any
// known content container yields empty text and no error.
func (l *RodLoader) Load(ctx context.Context, link string) (string, []string, error) {
	if err := l.pages.Acquire(ctx, 1); err != nil {
		return "", nil, err
	}
	defer l.pages.Release(1)

	browser, err := l.ensureBrowser()
	if err != nil {
		return "", nil, err
	}

	page, err := browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", nil, fmt.Errorf("open page: %w", err)
	}
	defer page.Close()

	nav := page.Timeout(l.navigationTimeout())
	err = nav.Navigate(link)
	if err == nil {
		if err := nav.WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
			log.Debug().Err(err).Str("link", link).Msg("page did not settle")
		}
	}
	nav.CancelTimeout()
	if err != nil {
		return "", nil, fmt.Errorf("navigate: %w", err)
	}

	root := l.contentRoot(page)
	for _, selector := range contentSelectors {
		timed := root.Timeout(l.selectorTimeout())
		el, err := timed.Element(selector)
		if err != nil {
			timed.CancelTimeout()
			continue
		}
		el = el.CancelTimeout()
		text, err := el.Text()
		if err != nil || strings.TrimSpace(text) == "" {
			continue
		}
		return text, FilterImages(imageSources(el)), nil
	}
	return "", nil, nil
}

// contentRoot returns the blog's main iframe when present, otherwise the page
// itself. The frame is rebound to the page's own context so each later
// selector lookup gets a fresh timeout.
func (l *RodLoader) contentRoot(page *rod.Page) *rod.Page {
	timed := page.Timeout(l.selectorTimeout())
	frameEl, err := timed.Element(mainFrameSelector)
	if err != nil {
		timed.CancelTimeout()
		return page
	}
	frameEl = frameEl.CancelTimeout()
	frame, err := frameEl.Frame()
	if err != nil {
		return page
	}
	return frame.Context(page.GetContext())
}

func imageSources(container *rod.Element) []string {
	imgs, err := container.Elements("img")
	if err != nil {
		return nil
	}
	srcs := make([]string, 0, len(imgs))
	for _, img := range imgs {
		for _, attr := range imageAttributes {
			v, err := img.Attribute(attr)
			if err == nil && v != nil && *v != "" {
				srcs = append(srcs, *v)
				break
			}
		}
	}
	return srcs
}

func (l *RodLoader) navigationTimeout() time.Duration {
	if l.cfg.NavigationTimeout > 0 {
		return l.cfg.NavigationTimeout
	}
	return 20 * time.Second
}

func (l *RodLoader) selectorTimeout() time.Duration {
	if l.cfg.SelectorTimeout > 0 {
		return l.cfg.SelectorTimeout
	}
	return 5 * time.Second
}

// Close shuts the browser down and removes a launched Chrome's profile.
func (l *RodLoader) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	var err error
	if l.browser != nil {
		err = l.browser.Close()
		l.browser = nil
	}
	if l.launcher != nil {
		l.launcher.Cleanup()
		l.launcher = nil
	}
	return err
}

// FilterImages keeps absolute URLs in first-seen order, dropping duplicates,
// sticker emoticons and static map tiles.
func FilterImages(srcs []string) []string {
	seen := make(map[string]struct{}, len(srcs))
	out := make([]string, 0, len(srcs))
	for _, src := range srcs {
		if !strings.HasPrefix(src, "http") {
			continue
		}
		if strings.Contains(src, "storep-phinf.pstatic.net") && strings.Contains(src, "ogq_") {
			continue
		}
		if strings.Contains(src, "simg.pstatic.net") && strings.Contains(src, "static.map") {
			continue
		}
		if _, dup := seen[src]; dup {
			continue
		}
		seen[src] = struct{}{}
		out = append(out, src)
	}
	return out
}
