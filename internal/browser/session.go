package browser

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Options configures the launched browser.
type Options struct {
	Width      int
	Height     int
	Headful    bool
	Username   string // basic-auth user, sent on every request when set
	Password   string
	ProfileDir string // Chrome/Chromium profile directory for authenticated sessions
}

// Session wraps the Rod browser and the single page every operation runs on.
type Session struct {
	keepData bool
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
}

var _ Driver = (*Session)(nil)

// Launch starts a browser and opens a blank page configured with the
// viewport and basic-auth header.
func Launch(opts Options) (*Session, error) {
	if opts.Width == 0 {
		opts.Width = 1280
	}
	if opts.Height == 0 {
		opts.Height = 720
	}

	path, _ := launcher.LookPath()
	l := launcher.New().Bin(path).Headless(!opts.Headful)
	if opts.ProfileDir != "" {
		l = l.UserDataDir(opts.ProfileDir)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	s := &Session{launcher: l, browser: b, keepData: opts.ProfileDir != ""}

	s.page, err = b.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("open page: %w", err)
	}

	err = s.page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             opts.Width,
		Height:            opts.Height,
		DeviceScaleFactor: 1,
	})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("set viewport: %w", err)
	}

	if opts.Username != "" || opts.Password != "" {
		token := base64.StdEncoding.EncodeToString([]byte(opts.Username + ":" + opts.Password))
		if _, err := s.page.SetExtraHeaders([]string{"Authorization", "Basic " + token}); err != nil {
			s.Close()
			return nil, fmt.Errorf("set auth header: %w", err)
		}
	}

	return s, nil
}

// Close cleans up browser resources.
func (s *Session) Close() {
	if s.page != nil {
		_ = s.page.Close()
	}
	if s.browser != nil {
		_ = s.browser.Close()
	}
	if s.launcher != nil && !s.keepData {
		s.launcher.Cleanup()
	}
}

// Open navigates to url and waits for the page and its network to settle.
func (s *Session) Open(ctx context.Context, url string, timeout time.Duration) error {
	if err := s.Navigate(ctx, url); err != nil {
		return err
	}
	if err := s.WaitLoad(ctx, timeout); err != nil {
		return err
	}

	// Don't hang on persistent connections (WebSockets, polling, etc.)
	s.page.Context(ctx).Timeout(5*time.Second).WaitRequestIdle(500*time.Millisecond, nil, nil, nil)()
	return nil
}

func (s *Session) Evaluate(ctx context.Context, js string, out any, args ...any) error {
	res, err := s.page.Context(ctx).Eval(js, args...)
	if err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}
	if out == nil {
		return nil
	}
	data, err := res.Value.MarshalJSON()
	if err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode evaluate result: %w", err)
	}
	return nil
}

func (s *Session) Location(ctx context.Context) (Location, error) {
	info, err := s.page.Context(ctx).Info()
	if err != nil {
		return Location{}, fmt.Errorf("page info: %w", err)
	}
	return Location{URL: info.URL, Title: info.Title}, nil
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := s.page.Context(ctx).Navigate(url); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	return nil
}

func (s *Session) Back(ctx context.Context) error {
	if err := s.page.Context(ctx).NavigateBack(); err != nil {
		return fmt.Errorf("navigate back: %w", err)
	}
	return nil
}

func (s *Session) WaitLoad(ctx context.Context, timeout time.Duration) error {
	if err := s.page.Context(ctx).Timeout(timeout).WaitLoad(); err != nil {
		return fmt.Errorf("wait for load: %w", err)
	}
	return nil
}

func (s *Session) element(ctx context.Context, selector string, timeout time.Duration) (*rod.Element, error) {
	el, err := s.page.Context(ctx).Timeout(timeout).Element(selector)
	if err != nil {
		return nil, fmt.Errorf("element not found: %s: %w", selector, err)
	}
	// Detach the element from the lookup timeout.
	return el.Context(ctx), nil
}

func (s *Session) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	el, err := s.page.Context(ctx).Timeout(timeout).Element(selector)
	if err != nil {
		return fmt.Errorf("element not found: %s: %w", selector, err)
	}
	if err := el.WaitVisible(); err != nil {
		return fmt.Errorf("element not visible: %s: %w", selector, err)
	}
	return nil
}

func (s *Session) Click(ctx context.Context, selector string) error {
	el, err := s.element(ctx, selector, actionLookup)
	if err != nil {
		return err
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click %s: %w", selector, err)
	}
	return nil
}

func (s *Session) ClickFirst(ctx context.Context, selector string) (bool, error) {
	has, el, err := s.page.Context(ctx).Has(selector)
	if err != nil {
		return false, fmt.Errorf("query %s: %w", selector, err)
	}
	if !has {
		return false, nil
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return true, fmt.Errorf("click %s: %w", selector, err)
	}
	return true, nil
}

// Fill replaces the element's value the way a user would: focus, clear,
// then type.
func (s *Session) Fill(ctx context.Context, selector, value string) error {
	el, err := s.element(ctx, selector, actionLookup)
	if err != nil {
		return err
	}
	if err := el.Focus(); err != nil {
		return fmt.Errorf("focus %s: %w", selector, err)
	}
	_, err = el.Eval(`() => {
		this.value = '';
		this.dispatchEvent(new Event('input', { bubbles: true }));
	}`)
	if err != nil {
		return fmt.Errorf("clear %s: %w", selector, err)
	}
	if value == "" {
		return nil
	}
	if err := el.Input(value); err != nil {
		return fmt.Errorf("input into %s: %w", selector, err)
	}
	return nil
}

func (s *Session) Value(ctx context.Context, selector string) (string, error) {
	el, err := s.element(ctx, selector, actionLookup)
	if err != nil {
		return "", err
	}
	v, err := el.Property("value")
	if err != nil {
		return "", fmt.Errorf("read value of %s: %w", selector, err)
	}
	return v.Str(), nil
}

func (s *Session) Blur(ctx context.Context, selector string) error {
	el, err := s.element(ctx, selector, actionLookup)
	if err != nil {
		return err
	}
	if _, err := el.Eval(`() => this.blur()`); err != nil {
		return fmt.Errorf("blur %s: %w", selector, err)
	}
	return nil
}

func (s *Session) PressEnter(ctx context.Context) error {
	if err := s.page.Context(ctx).Keyboard.Type(input.Enter); err != nil {
		return fmt.Errorf("press enter: %w", err)
	}
	return nil
}

func (s *Session) Texts(ctx context.Context, selector string) ([]string, error) {
	els, err := s.page.Context(ctx).Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", selector, err)
	}
	var texts []string
	for _, el := range els {
		t, err := el.Text()
		if err != nil {
			continue
		}
		if t = strings.TrimSpace(t); t != "" {
			texts = append(texts, t)
		}
	}
	return texts, nil
}

func (s *Session) Bounds(ctx context.Context, selector string) (Rect, bool, error) {
	var box *struct {
		X, Y, Width, Height float64
	}
	err := s.Evaluate(ctx, `(sel) => {
		let el;
		try { el = document.querySelector(sel); } catch (e) { return null; }
		if (!el) return null;
		const r = el.getBoundingClientRect();
		return { X: r.left + window.scrollX, Y: r.top + window.scrollY, Width: r.width, Height: r.height };
	}`, &box, selector)
	if err != nil {
		return Rect{}, false, err
	}
	if box == nil {
		return Rect{}, false, nil
	}
	return Rect{X: box.X, Y: box.Y, Width: box.Width, Height: box.Height}, true, nil
}

func (s *Session) WatchNavigation(ctx context.Context, timeout time.Duration, action func() error) (bool, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	navigated := make(chan struct{}, 1)
	wait := s.page.Context(ctx).EachEvent(func(e *proto.PageFrameNavigated) bool {
		if e.Frame == nil || e.Frame.ParentID != "" {
			return false
		}
		select {
		case navigated <- struct{}{}:
		default:
		}
		return true
	})
	go wait()

	if err := action(); err != nil {
		return false, err
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-navigated:
		return true, nil
	case <-timer.C:
		return false, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

func (s *Session) Capture(ctx context.Context) ([]byte, error) {
	data, err := s.page.Context(ctx).Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot: %w", err)
	}
	return data, nil
}

func (s *Session) Screenshot(ctx context.Context, path string) error {
	data, err := s.Capture(ctx)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write screenshot: %w", err)
	}
	return nil
}

// actionLookup bounds element lookups inside actions that already waited
// for their target.
const actionLookup = 5 * time.Second
