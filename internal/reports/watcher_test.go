package reports

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestWatcher_TemplateEditBumpsVersion(t *testing.T) {
	defer goleak.VerifyNone(t)

	c, dir := testCatalog(t)
	writeFile(t, dir, "oc.md", ocTemplate)
	if _, err := c.Load(); err != nil {
		t.Fatal(err)
	}
	before, _ := c.RenderEnvironmentVersion()

	ctx, cancel := context.WithCancel(context.Background())
	var mu sync.Mutex
	var versions []string
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = c.Watch(ctx, 20*time.Millisecond, func(v string) {
			mu.Lock()
			versions = append(versions, v)
			mu.Unlock()
		})
	}()

	time.Sleep(100 * time.Millisecond)
	writeFile(t, dir, "oc.md", ocTemplate+"\n## Added\n")

	eventually(t, 5*time.Second, 20*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(versions) > 0
	}, "watcher did not report a version change")

	after, _ := c.RenderEnvironmentVersion()
	if after == before {
		t.Error("version unchanged after edit")
	}

	cancel()
	<-done
}

func TestWatcher_NewDirectoryTemplate(t *testing.T) {
	defer goleak.VerifyNone(t)

	c, dir := testCatalog(t)
	if _, err := c.Load(); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = c.Watch(ctx, 20*time.Millisecond, nil)
	}()

	time.Sleep(100 * time.Millisecond)
	writeFile(t, dir, "sa/overview.md", docTemplate)

	eventually(t, 5*time.Second, 20*time.Millisecond, func() bool {
		_, err := c.Template("overview")
		return err == nil
	}, "template in new directory not loaded")

	cancel()
	<-done
}
