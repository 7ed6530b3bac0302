package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
)

// ConnState is the connectivity state of a Coordinator.
type ConnState int

const (
	Disconnected ConnState = iota
	Connecting
	ConnectedIdle
	ConnectedSyncing
)

func (s ConnState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case ConnectedIdle:
		return "connected"
	case ConnectedSyncing:
		return "syncing"
	}
	return fmt.Sprintf("ConnState(%d)", int(s))
}

// Connected reports whether the state belongs to a live session.
func (s ConnState) Connected() bool {
	return s == ConnectedIdle || s == ConnectedSyncing
}

// DefaultSyncInterval is the period of the automatic full sync.
const DefaultSyncInterval = 30 * time.Second

// CoordinatorConfig holds the dependencies of a Coordinator.
type CoordinatorConfig struct {
	Store    *Store
	Remote   Remote // nil means offline only
	Events   *Broker
	Logger   *slog.Logger
	Interval time.Duration
	Clock    func() time.Time

	// PushPending pushes every note still unsynced after a full sync.
	PushPending bool
}

// Coordinator decides when synchronization happens and drives the Store,
// Merge and the Remote together.
//
// The ConnectedSyncing state is the only sync-exclusion primitive: a full
// sync started while another is in flight is skipped. Local mutations are
// never blocked by it.
type Coordinator struct {
	store       *Store
	remote      Remote
	events      *Broker
	logger      *slog.Logger
	interval    time.Duration
	now         func() time.Time
	pushPending bool

	mu       sync.Mutex
	state    ConnState
	session  uint64
	lastSync time.Time
	stop     context.CancelFunc

	queues map[string]*pushQueue

	loops  sync.WaitGroup
	pushes sync.WaitGroup
}

// NewCoordinator creates a disconnected Coordinator.
func NewCoordinator(cfg CoordinatorConfig) *Coordinator {
	if cfg.Store == nil {
		cfg.Store = NewStore(cfg.Clock, nil)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Events == nil {
		cfg.Events = NewBroker(0, cfg.Logger)
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultSyncInterval
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Coordinator{
		store:       cfg.Store,
		remote:      cfg.Remote,
		events:      cfg.Events,
		logger:      cfg.Logger,
		interval:    cfg.Interval,
		now:         cfg.Clock,
		pushPending: cfg.PushPending,
		queues:      make(map[string]*pushQueue),
	}
}

// ConnState returns the current connectivity state.
func (c *Coordinator) ConnState() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastSyncTime returns the time of the last successful full sync.
func (c *Coordinator) LastSyncTime() (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSync, !c.lastSync.IsZero()
}

// Connect opens a session: it checks the remote (when it can be pinged),
// starts the periodic sync and runs a first full sync right away.
// Calling Connect on a live or connecting session does nothing.
func (c *Coordinator) Connect(ctx context.Context) error {
	if c.remote == nil {
		return ErrNoRemote
	}

	c.mu.Lock()
	if c.state != Disconnected {
		c.mu.Unlock()
		return nil
	}
	c.session++
	session := c.session
	c.setState(Connecting)
	c.mu.Unlock()

	if p, ok := c.remote.(Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			c.mu.Lock()
			if c.session == session {
				c.setState(Disconnected)
			}
			c.mu.Unlock()
			c.logger.Warn("connect failed", "error", err)
			return remoteErr("ping", "", err)
		}
	}

	c.mu.Lock()
	if c.session != session || c.state != Connecting {
		c.mu.Unlock()
		return ErrNotConnected
	}
	loopCtx, cancel := context.WithCancel(context.Background())
	c.stop = cancel
	c.setState(ConnectedIdle)
	c.loops.Add(1)
	c.mu.Unlock()

	lifecycle.Go(loopCtx, func(ctx context.Context) error {
		defer c.loops.Done()
		c.run(ctx, session)
		return nil
	}, lifecycle.WithErrorHandler(func(err error) {
		c.logger.Error("sync loop panic", "error", err)
	}))

	c.logger.Info("connected", "interval", c.interval)
	if err := c.Sync(ctx); err != nil {
		c.logger.Debug("initial sync did not complete", "error", err)
	}
	return nil
}

// Disconnect ends the session. The periodic timer stops at once; a remote
// call already in flight completes but its result is discarded.
func (c *Coordinator) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Disconnected {
		return
	}
	c.session++
	if c.stop != nil {
		c.stop()
		c.stop = nil
	}
	c.setState(Disconnected)
	c.logger.Info("disconnected")
}

// Close lets pending pushes land, then disconnects and waits for the
// periodic loop.
func (c *Coordinator) Close(ctx context.Context) error {
	if err := c.Flush(ctx); err != nil {
		c.Disconnect()
		return err
	}
	c.Disconnect()
	done := make(chan struct{})
	go func() {
		c.loops.Wait()
		c.pushes.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Flush waits until every push issued so far has completed.
func (c *Coordinator) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.pushes.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Sync performs one full sync: fetch all, merge, replace.
//
// It returns ErrSyncInFlight when another full sync is running,
// ErrNotConnected outside a session and a *RemoteError when the fetch fails.
// A failed fetch leaves the local collection untouched.
func (c *Coordinator) Sync(ctx context.Context) error {
	return c.sync(ctx, 0)
}

// sync runs a full sync. A non-zero want restricts it to that session.
func (c *Coordinator) sync(ctx context.Context, want uint64) error {
	c.mu.Lock()
	if want != 0 && c.session != want {
		c.mu.Unlock()
		return ErrNotConnected
	}
	switch c.state {
	case ConnectedSyncing:
		c.mu.Unlock()
		return ErrSyncInFlight
	case ConnectedIdle:
	default:
		c.mu.Unlock()
		return ErrNotConnected
	}
	session := c.session
	c.setState(ConnectedSyncing)
	c.mu.Unlock()

	remote, err := c.remote.FetchAll(ctx)
	if err != nil {
		c.finish(session)
		c.logger.Warn("sync failed", "op", "fetch", "error", err)
		c.events.Publish(Event{Type: EventSyncFailed, Detail: err.Error()})
		return remoteErr("fetch", "", err)
	}

	incoming := make([]Note, 0, len(remote))
	for _, n := range remote {
		if !valid(n) {
			c.logger.Warn("dropping malformed remote note", "id", n.ID)
			continue
		}
		incoming = append(incoming, normalize(n))
	}

	c.mu.Lock()
	if c.session != session {
		c.mu.Unlock()
		c.logger.Debug("discarding sync result of a closed session")
		return ErrNotConnected
	}
	merged := c.store.Reconcile(func(local []Note) []Note {
		kept := make([]Note, 0, len(incoming))
		for _, n := range incoming {
			if !c.deleting(n.ID) {
				kept = append(kept, n)
			}
		}
		return Merge(local, kept)
	})
	c.lastSync = c.now()
	if c.state == ConnectedSyncing {
		c.setState(ConnectedIdle)
	}
	c.mu.Unlock()

	c.logger.Debug("sync complete", "remote", len(incoming), "local", len(merged))
	c.events.Publish(Event{Type: EventSync, Detail: fmt.Sprintf("%d notes", len(merged))})

	if c.pushPending {
		for _, n := range merged {
			if !n.Synced {
				c.PushUpdate(n)
			}
		}
	}
	return nil
}

// PushCreate sends a freshly created note to the remote, if connected.
func (c *Coordinator) PushCreate(n Note) {
	c.enqueue(pushJob{op: "create", id: n.ID, basis: n.UpdatedAt, upsert: func(ctx context.Context) (Note, error) {
		return c.remote.Create(ctx, n)
	}})
}

// PushUpdate sends an edited note to the remote, if connected.
func (c *Coordinator) PushUpdate(n Note) {
	c.enqueue(pushJob{op: "update", id: n.ID, basis: n.UpdatedAt, upsert: func(ctx context.Context) (Note, error) {
		return c.remote.Update(ctx, n.ID, n)
	}})
}

// PushDelete asks the remote to delete id, if connected. Local removal has
// already happened and is never rolled back.
func (c *Coordinator) PushDelete(id string) {
	c.enqueue(pushJob{op: "delete", id: id, remove: func(ctx context.Context) error {
		return c.remote.Delete(ctx, id)
	}})
}

// pushJob is one remote call for a single note. Exactly one of upsert and
// remove is set.
type pushJob struct {
	op      string
	id      string
	session uint64
	basis   time.Time
	upsert  func(context.Context) (Note, error)
	remove  func(context.Context) error
}

// pushQueue holds the calls for one id. The head job is the one running.
type pushQueue struct {
	jobs []pushJob
	last pushJob
}

// enqueue registers job if a session is live. Calls for the same id reach the
// remote in the order they were issued; different ids run in parallel.
func (c *Coordinator) enqueue(job pushJob) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.remote == nil || !c.state.Connected() {
		return
	}
	job.session = c.session

	q := c.queues[job.id]
	if q != nil && job.upsert != nil && q.last.upsert != nil &&
		q.last.session == job.session && q.last.basis.Equal(job.basis) {
		c.logger.Debug("push already queued", "op", job.op, "id", job.id)
		return
	}

	c.pushes.Add(1)
	if q == nil {
		q = &pushQueue{}
		c.queues[job.id] = q
		lifecycle.Go(context.Background(), func(ctx context.Context) error {
			defer c.abandon(job.id, q)
			c.drain(ctx, job.id, q)
			return nil
		}, lifecycle.WithErrorHandler(c.pushPanic))
	}
	q.jobs = append(q.jobs, job)
	q.last = job
}

// drain runs the queued calls for id one at a time until the queue is empty.
func (c *Coordinator) drain(ctx context.Context, id string, q *pushQueue) {
	for {
		c.mu.Lock()
		if len(q.jobs) == 0 {
			delete(c.queues, id)
			c.mu.Unlock()
			return
		}
		job := q.jobs[0]
		current := c.session == job.session && c.state.Connected()
		c.mu.Unlock()

		if current {
			c.send(ctx, job)
		} else {
			c.logger.Debug("dropping push of a closed session", "op", job.op, "id", id)
		}

		c.mu.Lock()
		q.jobs = q.jobs[1:]
		c.mu.Unlock()
		c.pushes.Done()
	}
}

// abandon releases whatever a drain left behind after a panic.
func (c *Coordinator) abandon(id string, q *pushQueue) {
	c.mu.Lock()
	left := len(q.jobs)
	q.jobs = nil
	if c.queues[id] == q {
		delete(c.queues, id)
	}
	c.mu.Unlock()
	for i := 0; i < left; i++ {
		c.pushes.Done()
	}
}

// send performs one queued call and confirms an upsert if its session is live.
func (c *Coordinator) send(ctx context.Context, job pushJob) {
	if job.remove != nil {
		if err := job.remove(ctx); err != nil {
			c.pushFailed(job.op, job.id, err)
		}
		return
	}

	got, err := job.upsert(ctx)
	if err != nil {
		c.pushFailed(job.op, job.id, err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != job.session || !c.state.Connected() {
		c.logger.Debug("discarding push result of a closed session", "op", job.op, "id", job.id)
		return
	}
	if !c.store.Confirm(job.id, job.basis, got) {
		c.logger.Debug("push superseded by a newer local change", "op", job.op, "id", job.id)
	}
}

// deleting reports whether the last queued call for id is a delete.
// It must be called with c.mu held.
func (c *Coordinator) deleting(id string) bool {
	q := c.queues[id]
	return q != nil && q.last.remove != nil
}

func (c *Coordinator) pushFailed(op, id string, err error) {
	c.logger.Warn("push failed", "op", op, "id", id, "error", err)
	c.events.Publish(Event{Type: EventPushFailed, ID: id, Detail: remoteErr(op, id, err).Error()})
}

func (c *Coordinator) pushPanic(err error) {
	c.logger.Error("push panic", "error", err)
}

// run drives the periodic sync of one session.
func (c *Coordinator) run(ctx context.Context, session uint64) {
	t := time.NewTicker(c.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if ctx.Err() != nil {
				return
			}
			err := c.sync(context.WithoutCancel(ctx), session)
			switch {
			case err == nil:
			case errors.Is(err, ErrSyncInFlight):
				c.logger.Debug("tick skipped, sync in flight")
			case errors.Is(err, ErrNotConnected):
				return
			}
		}
	}
}

// finish returns a syncing session to idle.
func (c *Coordinator) finish(session uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == session && c.state == ConnectedSyncing {
		c.setState(ConnectedIdle)
	}
}

// setState must be called with c.mu held.
func (c *Coordinator) setState(s ConnState) {
	if c.state == s {
		return
	}
	c.state = s
	c.events.Publish(Event{Type: EventState, Detail: s.String()})
}
