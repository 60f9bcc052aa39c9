package reportservice

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/starford/modelexplorer/internal/apperr"
	"github.com/starford/modelexplorer/internal/cachekey"
	"github.com/starford/modelexplorer/internal/fragment"
	"github.com/starford/modelexplorer/internal/navstate"
	"github.com/starford/modelexplorer/internal/rendercache"
	"github.com/starford/modelexplorer/internal/testutil"
)

type env struct {
	svc     *Service
	catalog *testutil.Catalog
	engine  *testutil.Engine
	cache   *rendercache.Cache
}

func newEnv(t *testing.T) *env {
	t.Helper()
	m, c := testutil.Fixtures()
	cache, err := rendercache.Open("", nil)
	if err != nil {
		t.Fatalf("rendercache.Open: %v", err)
	}
	t.Cleanup(func() { cache.Close() })
	e := &testutil.Engine{}
	return &env{svc: NewService(c, m, e, cache, nil), catalog: c, engine: e, cache: cache}
}

func patrol() navstate.State {
	return navstate.State{TemplateID: "oc", ElementID: testutil.PatrolID}
}

func TestContentRendersAndCaches(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	first, err := e.svc.Content(ctx, patrol(), "")
	if err != nil {
		t.Fatalf("Content: %v", err)
	}
	if first.Cached {
		t.Error("first render must not be a cache hit")
	}
	if !strings.Contains(fragment.String(first.Body), "<h1>Patrol</h1>") {
		t.Errorf("body = %s", fragment.String(first.Body))
	}
	want, _ := cachekey.Compute("oc", "env-1")
	if first.Key != want {
		t.Errorf("key = %s, want %s", first.Key, want)
	}

	second, err := e.svc.Content(ctx, patrol(), first.Key)
	if err != nil {
		t.Fatal(err)
	}
	if !second.Cached {
		t.Error("matching key must be served from the cache")
	}
	if e.engine.CallCount() != 1 {
		t.Errorf("engine calls = %d, want 1", e.engine.CallCount())
	}
	if fragment.String(second.Body) != fragment.String(first.Body) {
		t.Error("cached body differs from rendered body")
	}
}

func TestContentStaleKeyForcesFreshRender(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	first, _ := e.svc.Content(ctx, patrol(), "")

	e.catalog.SetVersion("env-2")
	res, err := e.svc.Content(ctx, patrol(), first.Key)
	if err != nil {
		t.Fatal(err)
	}
	if res.Cached {
		t.Error("stale expected key must not be served from the cache")
	}
	if res.Key == first.Key {
		t.Error("environment change must change the key")
	}
	if e.engine.CallCount() != 2 {
		t.Errorf("engine calls = %d, want 2", e.engine.CallCount())
	}
}

func TestContentCacheIsPerElement(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a, _ := e.svc.Content(ctx, patrol(), "")
	b, err := e.svc.Content(ctx, navstate.State{TemplateID: "oc", ElementID: testutil.RescueID}, a.Key)
	if err != nil {
		t.Fatal(err)
	}
	if b.Cached {
		t.Error("other element must not hit the first element's entry")
	}
	if !strings.Contains(fragment.String(b.Body), "Rescue") {
		t.Errorf("body = %s", fragment.String(b.Body))
	}
}

func TestContentDocumentTemplate(t *testing.T) {
	e := newEnv(t)
	res, err := e.svc.Content(context.Background(), navstate.State{TemplateID: "overview"}, "")
	if err != nil {
		t.Fatalf("Content: %v", err)
	}
	if res.Element != nil {
		t.Error("document template must render without an element")
	}
	if !strings.Contains(fragment.String(res.Body), "Model Overview") {
		t.Errorf("body = %s", fragment.String(res.Body))
	}
}

func TestContentErrors(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.svc.Content(ctx, navstate.State{TemplateID: "oc", ElementID: testutil.OtherID}, "")
	var ue *apperr.UnknownElementError
	if !errors.As(err, &ue) {
		t.Errorf("foreign element: err = %v", err)
	}

	_, err = e.svc.Content(ctx, navstate.State{TemplateID: "oc"}, "")
	var mn *apperr.MalformedNavigationError
	if !errors.As(err, &mn) {
		t.Errorf("missing element: err = %v", err)
	}

	_, err = e.svc.Content(ctx, navstate.State{TemplateID: "nope"}, "")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown template: err = %v", err)
	}

	if e.engine.CallCount() != 0 {
		t.Errorf("engine called for invalid requests: %d", e.engine.CallCount())
	}
}

func TestContentEnvironmentUnavailable(t *testing.T) {
	e := newEnv(t)
	e.catalog.SetVersion("")
	_, err := e.svc.Content(context.Background(), patrol(), "")
	var eu *apperr.EnvironmentUnavailableError
	if !errors.As(err, &eu) {
		t.Fatalf("err = %v", err)
	}
	if n, _ := e.cache.Len(); n != 0 {
		t.Errorf("cache entries = %d, want 0", n)
	}
}

func TestContentRenderErrorNotCached(t *testing.T) {
	e := newEnv(t)
	e.engine.Fail = true
	_, err := e.svc.Content(context.Background(), patrol(), "")
	var re *apperr.RenderError
	if !errors.As(err, &re) {
		t.Fatalf("err = %v", err)
	}
	if n, _ := e.cache.Len(); n != 0 {
		t.Errorf("cache entries = %d, want 0", n)
	}
}

func TestContentConcurrentRequestsShareRender(t *testing.T) {
	e := newEnv(t)
	e.engine.Block = make(chan struct{})

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := e.svc.Content(context.Background(), patrol(), ""); err != nil {
				t.Errorf("Content: %v", err)
			}
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(e.engine.Block)
	wg.Wait()

	if got := e.engine.CallCount(); got != 1 {
		t.Errorf("engine calls = %d, want 1", got)
	}
}

func TestEnvironmentChangedPrunes(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, _ = e.svc.Content(ctx, patrol(), "")

	e.catalog.SetVersion("env-2")
	_, _ = e.svc.Content(ctx, patrol(), "")
	e.svc.EnvironmentChanged("env-2")

	if n, _ := e.cache.Len(); n != 1 {
		t.Errorf("cache entries = %d, want 1", n)
	}
}

func TestSearchElements(t *testing.T) {
	e := newEnv(t)
	got, err := e.svc.SearchElements("oc", "es")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Name != "Escort" || got[1].Name != "Rescue" {
		t.Errorf("got %+v", got)
	}
}
