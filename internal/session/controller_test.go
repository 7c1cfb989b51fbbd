package session

import (
	"context"
	"errors"
	"io"
	"strconv"
	"sync"
	"testing"
	"time"

	"famjam-cli/internal/feed"
	"famjam-cli/internal/model"
	"famjam-cli/internal/projection"
	"famjam-cli/internal/remote"
	"famjam-cli/internal/store"

	log "github.com/sirupsen/logrus"
)

type fakeSub struct {
	board     string
	snapshot  func([]remote.Doc)
	fail      func(error)
	cancelled bool
}

type fakeSource struct {
	mu   sync.Mutex
	subs []*fakeSub
}

func (f *fakeSource) Subscribe(board string, onSnapshot func([]remote.Doc), onError func(error)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := &fakeSub{board: board, snapshot: onSnapshot, fail: onError}
	f.subs = append(f.subs, s)
	return func() {
		f.mu.Lock()
		s.cancelled = true
		f.mu.Unlock()
	}
}

func (f *fakeSource) live() []*fakeSub {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*fakeSub
	for _, s := range f.subs {
		if !s.cancelled {
			out = append(out, s)
		}
	}
	return out
}

func (f *fakeSource) latest() *fakeSub {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subs[len(f.subs)-1]
}

type recorder struct {
	views []View
}

func (r *recorder) Render(v View) { r.views = append(r.views, v) }

func (r *recorder) last() View { return r.views[len(r.views)-1] }

func quietLogger() log.FieldLogger {
	l := log.New()
	l.SetOutput(io.Discard)
	return l
}

func taskDoc(id, status string, createdUS int64) remote.Doc {
	return remote.Doc{ID: id, Fields: map[string]string{
		model.FieldTitle:     id,
		model.FieldStatus:    status,
		model.FieldCreatedAt: strconv.FormatInt(createdUS, 10),
	}}
}

func newController(t *testing.T, src *fakeSource, opts Options) (*Controller, *recorder) {
	t.Helper()
	rec := &recorder{}
	if opts.Logger == nil {
		opts.Logger = quietLogger()
	}
	c := New(src, rec, opts)
	t.Cleanup(c.Close)
	return c, rec
}

// pump delivers the next pending event of the live subscription.
func pump(t *testing.T, c *Controller) {
	t.Helper()
	select {
	case ev, ok := <-c.Events():
		if !ok {
			t.Fatalf("event channel closed")
		}
		c.Handle(ev)
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for event")
	}
}

func TestJoin_EmptyCodeGoesIdle(t *testing.T) {
	t.Parallel()

	src := &fakeSource{}
	c, rec := newController(t, src, Options{})
	if got := c.Join("  !!  "); got != "" {
		t.Fatalf("expected empty board; got %q", got)
	}
	if c.State().State != Idle {
		t.Fatalf("expected idle; got %v", c.State().State)
	}
	v := rec.last()
	if v.Placeholder != "Type a Board Code, then Join." || v.Footer != "Not connected" {
		t.Fatalf("unexpected view: %#v", v)
	}
	if len(src.subs) != 0 {
		t.Fatalf("expected no subscription; got %d", len(src.subs))
	}
}

func TestJoin_ConnectingThenConnected(t *testing.T) {
	t.Parallel()

	src := &fakeSource{}
	c, rec := newController(t, src, Options{})
	if got := c.Join(" smith family "); got != "SMITH-FAMILY" {
		t.Fatalf("normalized board: got %q", got)
	}
	if v := rec.last(); v.State != Connecting || v.Placeholder != "Connecting…" {
		t.Fatalf("expected connecting view; got %#v", v)
	}

	src.latest().snapshot([]remote.Doc{taskDoc("a", "open", 1), taskDoc("b", "done", 2)})
	pump(t, c)

	v := rec.last()
	if v.State != Connected || v.Total != 2 || len(v.Tasks) != 2 {
		t.Fatalf("unexpected view: %#v", v)
	}
	if v.Footer != `Connected to "SMITH-FAMILY" • 2 showing` {
		t.Fatalf("footer: got %q", v.Footer)
	}
	if v.Tasks[0].ID != "b" {
		t.Fatalf("expected newest first; got %s", v.Tasks[0].ID)
	}
}

func TestConnected_EmptyBoard(t *testing.T) {
	t.Parallel()

	src := &fakeSource{}
	c, rec := newController(t, src, Options{})
	c.Join("KITCHEN")
	src.latest().snapshot(nil)
	pump(t, c)

	v := rec.last()
	if v.Footer != `Connected to "KITCHEN" • 0 tasks` || v.Placeholder != "No tasks yet. Add one above." {
		t.Fatalf("unexpected view: %#v", v)
	}
}

func TestError_FailsSession(t *testing.T) {
	t.Parallel()

	src := &fakeSource{}
	c, rec := newController(t, src, Options{})
	c.Join("KITCHEN")
	src.latest().fail(errors.New("permission denied"))
	pump(t, c)

	if c.State().State != Failed {
		t.Fatalf("expected failed; got %v", c.State().State)
	}
	v := rec.last()
	if v.Placeholder != "Couldn't connect. Check store config." || v.Footer != "Connection error" {
		t.Fatalf("unexpected view: %#v", v)
	}
	if v.Err != "permission denied" {
		t.Fatalf("err: got %q", v.Err)
	}
	if c.Events() != nil {
		t.Fatalf("expected no live events after failure")
	}
}

func TestRepeatedJoins_SingleLiveSubscription(t *testing.T) {
	t.Parallel()

	src := &fakeSource{}
	c, _ := newController(t, src, Options{})
	for _, b := range []string{"A", "B", "A", "A", "C"} {
		c.Join(b)
		if n := len(src.live()); n != 1 {
			t.Fatalf("after join %s: expected 1 live subscription; got %d", b, n)
		}
	}
	if live := src.live(); live[0].board != "C" {
		t.Fatalf("expected live board C; got %s", live[0].board)
	}
	c.Join("")
	if n := len(src.live()); n != 0 {
		t.Fatalf("expected 0 live after leaving; got %d", n)
	}
}

func TestStaleEventsIgnored(t *testing.T) {
	t.Parallel()

	src := &fakeSource{}
	c, rec := newController(t, src, Options{})
	c.Join("OLD")
	oldID := c.State().SubID
	c.Join("NEW")
	before := len(rec.views)

	c.Handle(feed.Event{SubID: oldID, Tasks: []model.Task{{ID: "x"}}})
	if len(rec.views) != before {
		t.Fatalf("stale event rendered")
	}
	if c.State().State != Connecting || c.Board() != "NEW" {
		t.Fatalf("unexpected state: %#v", c.State())
	}
}

func TestSetView_ReprojectsWithoutResubscribing(t *testing.T) {
	t.Parallel()

	src := &fakeSource{}
	prefs := store.PrefsStore{Dir: t.TempDir()}
	c, rec := newController(t, src, Options{Prefs: prefs})
	c.Join("KITCHEN")
	src.latest().snapshot([]remote.Doc{taskDoc("a", "open", 1), taskDoc("b", "done", 2), taskDoc("c", "done", 3)})
	pump(t, c)

	c.SetView(projection.FilterDone, projection.SortCreated)
	v := rec.last()
	if len(v.Tasks) != 2 || v.Total != 3 {
		t.Fatalf("unexpected filtered view: %#v", v)
	}
	for _, tk := range v.Tasks {
		if tk.Status != model.StatusDone {
			t.Fatalf("filter leaked %#v", tk)
		}
	}
	if v.Footer != `Connected to "KITCHEN" • 2 showing` {
		t.Fatalf("footer: got %q", v.Footer)
	}
	if len(src.subs) != 1 {
		t.Fatalf("expected no resubscribe; got %d subscriptions", len(src.subs))
	}

	p, err := prefs.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Board != "KITCHEN" || p.StatusFilter != "done" || p.SortBy != "created" {
		t.Fatalf("unexpected prefs: %#v", p)
	}
}

func TestRejoin_Resubscribes(t *testing.T) {
	t.Parallel()

	src := &fakeSource{}
	c, _ := newController(t, src, Options{})
	c.Join("KITCHEN")
	first := c.State().SubID
	c.Rejoin()
	if c.State().SubID == first || c.Board() != "KITCHEN" {
		t.Fatalf("expected a fresh subscription on the same board; got %#v", c.State())
	}
	if len(src.subs) != 2 || len(src.live()) != 1 {
		t.Fatalf("expected 2 subscribes with 1 live; got %d/%d", len(src.subs), len(src.live()))
	}
}

func TestRun_JoinsAndHandlesEvents(t *testing.T) {
	t.Parallel()

	src := &fakeSource{}
	views := make(chan View, 16)
	c := New(src, RendererFunc(func(v View) { views <- v }), Options{Logger: quietLogger()})

	ctx, cancel := context.WithCancel(context.Background())
	ops := make(chan Op, 1)
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx, ops) }()

	ops <- JoinOp("garage")
	waitView := func(want State) View {
		t.Helper()
		for {
			select {
			case v := <-views:
				if v.State == want {
					return v
				}
			case <-time.After(2 * time.Second):
				t.Fatalf("timed out waiting for %v", want)
			}
		}
	}
	waitView(Connecting)
	src.latest().snapshot([]remote.Doc{taskDoc("a", "open", 1)})
	v := waitView(Connected)
	if v.Board != "GARAGE" || len(v.Tasks) != 1 {
		t.Fatalf("unexpected view: %#v", v)
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not stop")
	}
	if n := len(src.live()); n != 0 {
		t.Fatalf("expected subscription cancelled on exit; got %d live", n)
	}
}

func TestRun_RendererCanStopTheLoop(t *testing.T) {
	t.Parallel()

	src := &fakeSource{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var failed View
	c := New(src, RendererFunc(func(v View) {
		if v.State == Failed {
			failed = v
			cancel()
		}
	}), Options{Logger: quietLogger()})
	c.Join("shed")

	src.latest().fail(errors.New("denied"))
	err := c.Run(ctx, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected Run to stop on cancel; got %v", err)
	}
	if failed.Board != "SHED" || failed.Err != "denied" {
		t.Fatalf("expected the failed view to reach the renderer; got %#v", failed)
	}
}
