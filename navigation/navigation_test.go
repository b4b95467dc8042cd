package navigation

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vcrobe/adminnav/activestate"
	"github.com/vcrobe/adminnav/config"
	"github.com/vcrobe/adminnav/dom"
	"github.com/vcrobe/adminnav/events"
	"github.com/vcrobe/adminnav/history"
	"github.com/vcrobe/adminnav/swap"
)

const shell = `<html><body>
<nav id="main-navigation">
  <a class="nav-link-ajax" id="link-users" href="/users/">Users</a>
  <a class="nav-link-ajax" id="link-clients" href="/clients/" data-url="/clients/list/">Clients</a>
  <a class="nav-link-ajax" id="link-empty" href="#">Nothing</a>
  <div class="nav-item-dropdown" id="reports">
    <a class="nav-link-ajax nav-link-dropdown" id="reports-toggle" href="#">Reports</a>
    <div class="nav-submenu">
      <a class="nav-link-ajax nav-submenu-link" id="link-sales" href="/reports/sales/">Sales</a>
    </div>
  </div>
</nav>
<main id="main-content-area"><p>dashboard</p></main>
</body></html>`

// fakeFetcher serves canned fragments and records every request.
type fakeFetcher struct {
	mu       sync.Mutex
	pages    map[string]string
	requests []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, url)
	html, ok := f.pages[url]
	if !ok {
		return "", errors.New("connection refused")
	}
	return html, nil
}

func (f *fakeFetcher) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

type harness struct {
	doc       *dom.MemoryDocument
	fetcher   *fakeFetcher
	hist      *history.Memory
	tracker   *activestate.Tracker
	swapper   *swap.Swapper
	delegator *events.Delegator
	orch      *Orchestrator
}

func newHarness(t *testing.T, fetcher FragmentFetcher) *harness {
	t.Helper()
	cfg := config.DefaultConfig()
	doc := dom.MustParseString(shell)
	region := doc.Query(cfg.Content.Region)
	require.NotNil(t, region)

	h := &harness{
		doc:       doc,
		hist:      history.NewMemory(),
		tracker:   activestate.New(doc, cfg, nil),
		swapper:   swap.New(region, doc, cfg, nil),
		delegator: events.NewDelegator(nil),
	}
	if ff, ok := fetcher.(*fakeFetcher); ok {
		h.fetcher = ff
	}
	h.orch = New(fetcher, h.swapper, h.tracker, history.NewBridge(h.hist, nil), cfg,
		WithRunner(func(f func()) { f() }))
	h.tracker.Bind(h.delegator)
	h.swapper.BindDismiss(h.delegator)
	h.orch.Bind(h.delegator)
	h.orch.Start()
	t.Cleanup(h.orch.Close)
	return h
}

func defaultPages() *fakeFetcher {
	return &fakeFetcher{pages: map[string]string{
		"/users/":         `<div>Users</div>`,
		"/clients/list/":  `<div>Clients</div><a class="ajax-link" id="client-7" href="/clients/7/">7</a>`,
		"/clients/7/":     `<div>Client 7</div>`,
		"/reports/sales/": `<div>Sales</div>`,
	}}
}

func (h *harness) click(t *testing.T, selector string) *events.Event {
	t.Helper()
	el := h.doc.Query(selector)
	require.NotNil(t, el, selector)
	e := events.NewEvent("click", el)
	h.delegator.Dispatch(e)
	return e
}

func (h *harness) content() string {
	return h.swapper.Region().InnerHTML()
}

// TestClickNavLink_Success verifies a nav click: content swapped, link active, one history entry.
func TestClickNavLink_Success(t *testing.T) {
	h := newHarness(t, defaultPages())

	e := h.click(t, "#link-users")

	assert.True(t, e.DefaultPrevented())
	assert.Equal(t, `<div>Users</div>`, h.content())
	assert.True(t, h.doc.Query("#link-users").HasClass("active"))
	assert.Equal(t, []string{"", "/users/"}, h.hist.URLs())
	assert.Equal(t, 1, h.doc.ScrollCount())

	st := h.orch.State()
	assert.Equal(t, Idle, st.Phase)
	assert.Equal(t, Success, st.Last)
	assert.Equal(t, "/users/", st.URL)
}

// TestClickNavLink_PrefersDataURL verifies data-url wins over href.
func TestClickNavLink_PrefersDataURL(t *testing.T) {
	h := newHarness(t, defaultPages())

	h.click(t, "#link-clients")

	assert.Equal(t, []string{"/clients/list/"}, h.fetcher.Requests())
	assert.Equal(t, "/clients/list/", h.hist.Current().URL)
}

// TestClickNavLink_FetchFails verifies the failure scenario: only the notice is shown, nothing else changes.
func TestClickNavLink_FetchFails(t *testing.T) {
	h := newHarness(t, &fakeFetcher{pages: map[string]string{}})
	navBefore := h.doc.Query("#main-navigation").InnerHTML()

	h.click(t, "#link-users")

	notices := h.swapper.Region().QueryAll(".ajax-error")
	require.Len(t, notices, 1)
	assert.Nil(t, h.swapper.Region().Query(".ajax-loading"))
	assert.NotContains(t, h.content(), "dashboard")
	assert.Contains(t, h.content(), config.DefaultConfig().Messages.LoadError)
	assert.False(t, h.doc.Query("#link-users").HasClass("active"))
	assert.Equal(t, navBefore, h.doc.Query("#main-navigation").InnerHTML())
	assert.Equal(t, 1, h.hist.Len())

	st := h.orch.State()
	assert.Equal(t, Idle, st.Phase)
	assert.Equal(t, Failed, st.Last)
	assert.Error(t, st.LastErr)
}

// TestNavigate_InvalidTargets verifies empty and placeholder URLs are rejected before any fetch.
func TestNavigate_InvalidTargets(t *testing.T) {
	h := newHarness(t, defaultPages())
	before := h.doc.HTML()

	for _, url := range []string{"", "#", "  ", " # "} {
		err := h.orch.Navigate(context.Background(), Target{URL: url})
		assert.ErrorIs(t, err, ErrInvalidTarget, "url %q", url)
	}
	h.click(t, "#link-empty")

	assert.Empty(t, h.fetcher.Requests())
	assert.Equal(t, before, h.doc.HTML())
	assert.Equal(t, 1, h.hist.Len())
	assert.Equal(t, uint64(0), h.orch.State().Seq)
}

// TestClickDropdownToggle_DoesNotNavigate verifies toggles open the menu without fetching.
func TestClickDropdownToggle_DoesNotNavigate(t *testing.T) {
	h := newHarness(t, defaultPages())

	h.click(t, "#reports-toggle")

	assert.Empty(t, h.fetcher.Requests())
	assert.True(t, h.tracker.IsOpen(h.doc.Query("#reports")))
}

// TestClickSubmenuLink_KeepsDropdownOpen verifies a submenu navigation marks the link active and its container stays open.
func TestClickSubmenuLink_KeepsDropdownOpen(t *testing.T) {
	h := newHarness(t, defaultPages())
	h.click(t, "#reports-toggle")

	h.click(t, "#link-sales")

	assert.Equal(t, `<div>Sales</div>`, h.content())
	assert.True(t, h.doc.Query("#link-sales").HasClass("active"))
	assert.True(t, h.tracker.IsOpen(h.doc.Query("#reports")))
}

// TestSubmenuActive_ResyncOpensDropdown verifies that navigating to a submenu link opens its container even when closed.
func TestSubmenuActive_ResyncOpensDropdown(t *testing.T) {
	h := newHarness(t, defaultPages())
	require.False(t, h.tracker.IsOpen(h.doc.Query("#reports")))

	err := h.orch.Navigate(context.Background(), Target{URL: "/reports/sales/", Trigger: h.doc.Query("#link-sales")})

	require.NoError(t, err)
	assert.True(t, h.tracker.IsOpen(h.doc.Query("#reports")))
}

// TestInFragmentLink verifies ajax-link clicks inside swapped content navigate without touching the active link.
func TestInFragmentLink(t *testing.T) {
	h := newHarness(t, defaultPages())
	h.click(t, "#link-clients")

	e := h.click(t, "#client-7")

	assert.True(t, e.DefaultPrevented())
	assert.Equal(t, `<div>Client 7</div>`, h.content())
	assert.True(t, h.doc.Query("#link-clients").HasClass("active"))
	assert.Equal(t, []string{"", "/clients/list/", "/clients/7/"}, h.hist.URLs())
}

// TestBackButton_ReplaysWithoutPush verifies the back scenario: A→B, back reloads A without a new entry.
func TestBackButton_ReplaysWithoutPush(t *testing.T) {
	h := newHarness(t, defaultPages())
	h.click(t, "#link-users")
	h.click(t, "#link-clients")
	require.Equal(t, 3, h.hist.Len())

	require.True(t, h.hist.Back())

	assert.Equal(t, `<div>Users</div>`, h.content())
	assert.Equal(t, 3, h.hist.Len())
	assert.Equal(t, "/users/", h.hist.Current().URL)
	assert.Equal(t, []string{"/users/", "/clients/list/", "/users/"}, h.fetcher.Requests())

	require.True(t, h.hist.Forward())
	assert.Contains(t, h.content(), "Clients")
	assert.Equal(t, 3, h.hist.Len())
}

// TestBackToInitialPage_Reloads verifies a popstate with no state reloads instead of fetching.
func TestBackToInitialPage_Reloads(t *testing.T) {
	h := newHarness(t, defaultPages())
	h.click(t, "#link-users")

	require.True(t, h.hist.Back())

	assert.Equal(t, 1, h.hist.Reloads())
	assert.Equal(t, []string{"/users/"}, h.fetcher.Requests())
}

// TestRestore_FailureLeavesHistory verifies a failed popstate load shows the notice and pushes nothing.
func TestRestore_FailureLeavesHistory(t *testing.T) {
	h := newHarness(t, &fakeFetcher{pages: map[string]string{}})

	err := h.orch.Restore(context.Background(), "/gone/")

	require.Error(t, err)
	assert.NotNil(t, h.swapper.Region().Query(".ajax-error"))
	assert.Equal(t, 1, h.hist.Len())
}

// TestLoadContent_Callback verifies the programmatic API reports the fragment and records history.
func TestLoadContent_Callback(t *testing.T) {
	h := newHarness(t, defaultPages())
	var got string
	var gotErr error

	h.orch.LoadContent(context.Background(), "/users/", func(html string, err error) {
		got, gotErr = html, err
	})

	require.NoError(t, gotErr)
	assert.Equal(t, `<div>Users</div>`, got)
	assert.Equal(t, "/users/", h.hist.Current().URL)

	h.orch.LoadContent(context.Background(), "/nope/", func(html string, err error) {
		got, gotErr = html, err
	})
	assert.Error(t, gotErr)
	assert.Empty(t, got)
	h.orch.LoadContent(context.Background(), "/users/", nil)
}

// TestReinitAndDismissAfterFailure verifies the notice can be dismissed and the next navigation succeeds.
func TestReinitAndDismissAfterFailure(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{}}
	h := newHarness(t, f)
	var loaded []string
	h.swapper.ContentLoaded().Subscribe(func(url string) { loaded = append(loaded, url) })

	h.click(t, "#link-users")
	h.click(t, ".ajax-error .btn-close")
	assert.Equal(t, "", h.content())

	f.mu.Lock()
	f.pages["/users/"] = `<div>Users</div>`
	f.mu.Unlock()
	h.click(t, "#link-users")

	assert.Equal(t, `<div>Users</div>`, h.content())
	assert.Equal(t, []string{"/users/"}, loaded)
}

// gatedFetcher blocks each request until released, so tests can control
// the order in which responses arrive.
type gatedFetcher struct {
	mu      sync.Mutex
	gates   map[string]chan struct{}
	started chan string
}

func newGatedFetcher(urls ...string) *gatedFetcher {
	g := &gatedFetcher{gates: make(map[string]chan struct{}), started: make(chan string, len(urls))}
	for _, u := range urls {
		g.gates[u] = make(chan struct{})
	}
	return g
}

func (g *gatedFetcher) Fetch(ctx context.Context, url string) (string, error) {
	g.mu.Lock()
	gate := g.gates[url]
	g.mu.Unlock()
	g.started <- url
	<-gate
	return "<div>" + url + "</div>", nil
}

// TestOverlappingNavigations_LatestWins verifies a slow earlier response cannot overwrite a newer one.
func TestOverlappingNavigations_LatestWins(t *testing.T) {
	g := newGatedFetcher("/slow/", "/fast/")
	h := newHarness(t, g)

	errs := make(chan error, 2)
	go func() { errs <- h.orch.Navigate(context.Background(), Target{URL: "/slow/"}) }()
	require.Equal(t, "/slow/", <-g.started)
	go func() { errs <- h.orch.Navigate(context.Background(), Target{URL: "/fast/"}) }()
	require.Equal(t, "/fast/", <-g.started)

	close(g.gates["/fast/"])
	require.NoError(t, <-errs)
	close(g.gates["/slow/"])
	assert.ErrorIs(t, <-errs, ErrSuperseded)

	assert.Equal(t, `<div>/fast/</div>`, h.content())
	assert.Equal(t, []string{"", "/fast/"}, h.hist.URLs())
	assert.Equal(t, "/fast/", h.orch.State().URL)
	assert.Equal(t, uint64(2), h.orch.State().Seq)
}

// TestOverlappingNavigations_CancelsPrevious verifies starting a navigation cancels the earlier request's context.
func TestOverlappingNavigations_CancelsPrevious(t *testing.T) {
	cancelled := make(chan struct{})
	started := make(chan struct{})
	f := fetcherFunc(func(ctx context.Context, url string) (string, error) {
		if url == "/first/" {
			close(started)
			<-ctx.Done()
			close(cancelled)
			return "", ctx.Err()
		}
		return "<div>second</div>", nil
	})
	h := newHarness(t, f)

	errs := make(chan error, 1)
	go func() { errs <- h.orch.Navigate(context.Background(), Target{URL: "/first/"}) }()
	<-started

	require.NoError(t, h.orch.Navigate(context.Background(), Target{URL: "/second/"}))
	<-cancelled

	assert.ErrorIs(t, <-errs, ErrSuperseded)
	assert.Equal(t, `<div>second</div>`, h.content())
	assert.Nil(t, h.swapper.Region().Query(".ajax-error"))
}

type fetcherFunc func(ctx context.Context, url string) (string, error)

func (f fetcherFunc) Fetch(ctx context.Context, url string) (string, error) { return f(ctx, url) }

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "loading", Loading.String())
	assert.Equal(t, "success", Success.String())
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "phase(9)", Phase(9).String())
}

func TestClose_UnbindsHandlers(t *testing.T) {
	h := newHarness(t, defaultPages())
	h.orch.Close()

	h.click(t, "#link-users")
	h.hist.PushState(history.Entry{URL: "/users/"})
	h.hist.PushState(history.Entry{URL: "/clients/list/"})
	h.hist.Back()

	assert.Empty(t, h.fetcher.Requests())
	assert.Contains(t, h.content(), "dashboard")
}

// TestContentLoaded_SubscriberReadsState verifies subscribers may call back into the orchestrator.
func TestContentLoaded_SubscriberReadsState(t *testing.T) {
	h := newHarness(t, defaultPages())
	var seen []State
	h.swapper.ContentLoaded().Subscribe(func(string) { seen = append(seen, h.orch.State()) })

	require.NoError(t, h.orch.Navigate(context.Background(), Target{URL: "/users/"}))
	require.NoError(t, h.orch.Navigate(context.Background(), Target{URL: "/reports/sales/"}))

	require.Len(t, seen, 2)
	assert.Equal(t, "/users/", seen[0].URL)
	assert.Equal(t, Success, seen[0].Last)
	assert.Equal(t, Idle, seen[0].Phase)
	assert.Equal(t, "/reports/sales/", seen[1].URL)
}

// TestLoadContent_SupersededSkipsCallback verifies a load overtaken by a newer navigation reports nothing.
func TestLoadContent_SupersededSkipsCallback(t *testing.T) {
	g := newGatedFetcher("/slow/", "/fast/")
	h := newHarness(t, g)

	called := false
	done := make(chan struct{})
	go func() {
		h.orch.LoadContent(context.Background(), "/slow/", func(string, error) { called = true })
		close(done)
	}()
	require.Equal(t, "/slow/", <-g.started)

	errs := make(chan error, 1)
	go func() { errs <- h.orch.Navigate(context.Background(), Target{URL: "/fast/"}) }()
	require.Equal(t, "/fast/", <-g.started)
	close(g.gates["/fast/"])
	require.NoError(t, <-errs)

	close(g.gates["/slow/"])
	<-done

	assert.False(t, called)
	assert.Equal(t, `<div>/fast/</div>`, h.content())
}

// TestClose_RemovesLoadingIndicator verifies closing mid-flight leaves no spinner behind.
func TestClose_RemovesLoadingIndicator(t *testing.T) {
	g := newGatedFetcher("/slow/")
	h := newHarness(t, g)

	errs := make(chan error, 1)
	go func() { errs <- h.orch.Navigate(context.Background(), Target{URL: "/slow/"}) }()
	require.Equal(t, "/slow/", <-g.started)
	require.NotNil(t, h.swapper.Region().Query(".ajax-loading"))

	h.orch.Close()

	assert.Nil(t, h.swapper.Region().Query(".ajax-loading"))
	assert.Equal(t, Idle, h.orch.State().Phase)

	close(g.gates["/slow/"])
	assert.ErrorIs(t, <-errs, ErrSuperseded)
	assert.Nil(t, h.swapper.Region().Query(".ajax-error"))
}
