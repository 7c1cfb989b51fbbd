// Package session owns the lifetime of a board subscription and turns snapshots into views.
package session

import (
	"context"

	"famjam-cli/internal/boardid"
	"famjam-cli/internal/feed"
	"famjam-cli/internal/model"
	"famjam-cli/internal/projection"
	"famjam-cli/internal/store"

	log "github.com/sirupsen/logrus"
)

// PrefsUpdater persists preference changes. store.PrefsStore satisfies it.
type PrefsUpdater interface {
	Update(fn func(*store.Prefs)) error
}

type Options struct {
	Prefs  PrefsUpdater // optional
	Logger log.FieldLogger
	Filter projection.Filter
	Sort   projection.Sort
}

// Controller is not safe for concurrent use. One goroutine (the UI loop) drives it.
type Controller struct {
	src    feed.Source
	render Renderer
	prefs  PrefsUpdater
	logger log.FieldLogger

	filter projection.Filter
	sortBy projection.Sort

	state    SessionState
	sub      *feed.Subscription
	snapshot []model.Task
	last     View
}

func New(src feed.Source, r Renderer, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}
	filter := projection.ParseFilter(string(opts.Filter))
	sortBy := projection.ParseSort(string(opts.Sort))
	return &Controller{
		src:    src,
		render: r,
		prefs:  opts.Prefs,
		logger: logger,
		filter: filter,
		sortBy: sortBy,
	}
}

func (c *Controller) State() SessionState { return c.state }
func (c *Controller) Board() string { return c.state.Board }
func (c *Controller) LastView() View { return c.last }

func (c *Controller) Filter() projection.Filter { return c.filter }
func (c *Controller) Sort() projection.Sort { return c.sortBy }

// Events is the live subscription's channel, or nil when there is none.
func (c *Controller) Events() <-chan feed.Event {
	if c.sub == nil {
		return nil
	}
	return c.sub.Events()
}

// Join switches to the board named by raw. The previous subscription is always cancelled first.
// It returns the normalized code ("" means the controller went idle).
func (c *Controller) Join(raw string) string {
	board := boardid.Normalize(raw)
	c.cancel()

	if board == "" {
		c.state = SessionState{State: Idle}
		c.emit()
		return ""
	}

	c.sub = feed.Subscribe(c.src, board)
	c.state = SessionState{Board: board, State: Connecting, SubID: c.sub.ID()}
	c.logger.WithFields(log.Fields{"board": board, "sub": c.sub.ID()}).Debug("joining board")
	c.savePrefs(func(p *store.Prefs) { p.Board = board })
	c.emit()
	return board
}

// Rejoin re-runs the join flow for the current board.
func (c *Controller) Rejoin() {
	c.Join(c.state.Board)
}

// SetView changes filter and sort, re-projects the last snapshot and persists the choice.
// The subscription is left alone.
func (c *Controller) SetView(filter projection.Filter, sortBy projection.Sort) {
	c.filter = projection.ParseFilter(string(filter))
	c.sortBy = projection.ParseSort(string(sortBy))
	c.savePrefs(func(p *store.Prefs) {
		p.StatusFilter = string(c.filter)
		p.SortBy = string(c.sortBy)
	})
	c.emit()
}

// Handle applies one feed event. Events from any subscription other than the live one are dropped.
func (c *Controller) Handle(ev feed.Event) {
	if c.sub == nil || ev.SubID != c.sub.ID() {
		c.logger.WithField("sub", ev.SubID).Debug("dropping stale event")
		return
	}
	if ev.Err != nil {
		c.logger.WithError(ev.Err).WithField("board", c.state.Board).Warn("board subscription failed")
		c.sub = nil
		c.snapshot = nil
		c.state.State = Failed
		c.state.SubID = 0
		c.state.Err = ev.Err
		c.emit()
		return
	}
	c.snapshot = ev.Tasks
	c.state.State = Connected
	c.emit()
}

// Close cancels the live subscription, if any.
func (c *Controller) Close() {
	c.cancel()
}

// Op is a unit of work run against the controller on the Run goroutine.
type Op func(*Controller)

// JoinOp joins raw (see Join).
func JoinOp(raw string) Op { return func(c *Controller) { c.Join(raw) } }

// Run drives the controller until ctx is done: ops are applied in order and feed events are
// handled as they arrive. The renderer is called from this goroutine, so it may cancel ctx to
// stop the loop. The live subscription is cancelled on return.
func (c *Controller) Run(ctx context.Context, ops <-chan Op) error {
	defer c.Close()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		events := c.Events()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case op, ok := <-ops:
			if !ok {
				ops = nil
				continue
			}
			op(c)
		case ev, ok := <-events:
			if !ok {
				// Closed after a terminal error that was already handled, or by Cancel.
				if c.sub != nil && c.sub.Events() == events {
					c.sub = nil
				}
				continue
			}
			c.Handle(ev)
		}
	}
}

func (c *Controller) cancel() {
	if c.sub != nil {
		c.sub.Cancel()
		c.sub = nil
	}
	c.snapshot = nil
}

func (c *Controller) savePrefs(fn func(*store.Prefs)) {
	if c.prefs == nil {
		return
	}
	if err := c.prefs.Update(fn); err != nil {
		c.logger.WithError(err).Warn("save preferences")
	}
}

func (c *Controller) buildView() View {
	v := View{
		Board:  c.state.Board,
		State:  c.state.State,
		Filter: c.filter,
		Sort:   c.sortBy,
		Tasks:  []model.Task{},
	}
	switch c.state.State {
	case Idle:
		v.Placeholder = placeholderIdle
		v.Footer = footerIdle
	case Connecting:
		v.Placeholder = placeholderLoading
		v.Footer = placeholderLoading
	case Failed:
		v.Placeholder = placeholderFailed
		v.Footer = footerFailed
		if c.state.Err != nil {
			v.Err = c.state.Err.Error()
		}
	case Connected:
		v.Tasks = projection.Project(c.snapshot, c.filter, c.sortBy)
		v.Total = len(c.snapshot)
		v.Footer = connectedFooter(c.state.Board, len(v.Tasks), v.Total)
		if v.Total == 0 {
			v.Placeholder = placeholderEmpty
		}
	}
	return v
}

func (c *Controller) emit() {
	c.last = c.buildView()
	if c.render != nil {
		c.render.Render(c.last)
	}
}
