package router

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"medihelp-server/internal/models"
	"medihelp-server/internal/notifier"
)

// ErrClosed is returned by calls on a router that has been closed.
var ErrClosed = errors.New("router closed")

// Pending names the asynchronous work a session is waiting on.
type Pending string

const (
	PendingNone Pending = ""
	PendingRole Pending = "role"
	PendingCall Pending = "call"
)

// Directory is the slice of the user store the router reads.
type Directory interface {
	LookupRole(ctx context.Context, userID string) (models.Role, error)
	LookupPushToken(ctx context.Context, userID string) (string, error)
}

// CallNotifier wakes the callee's device. Notify must not block.
type CallNotifier interface {
	Notify(inv notifier.Invitation) <-chan notifier.Outcome
}

// Snapshot is a copy of the session as last committed by the loop.
type Snapshot struct {
	Screen       Screen  `json:"screen"`
	UserID       string  `json:"userId,omitempty"`
	SelectedID   string  `json:"selectedId,omitempty"`
	SelectedName string  `json:"selectedName,omitempty"`
	Pending      Pending `json:"pending,omitempty"`
}

type state struct {
	session Session
	// gen advances on every screen change; async results carrying an older
	// gen are dropped.
	gen     uint64
	pending Pending
	cancel  context.CancelFunc
}

func (st *state) snapshot() Snapshot {
	return Snapshot{
		Screen:       st.session.Screen,
		UserID:       st.session.UserID,
		SelectedID:   st.session.SelectedID,
		SelectedName: st.session.SelectedName,
		Pending:      st.pending,
	}
}

// invalidate cancels the outstanding task and retires its generation.
func (st *state) invalidate() {
	if st.cancel != nil {
		st.cancel()
		st.cancel = nil
	}
	st.pending = PendingNone
	st.gen++
}

func (st *state) begin(p Pending) (context.Context, uint64) {
	ctx, cancel := context.WithCancel(context.Background())
	st.cancel = cancel
	st.pending = p
	return ctx, st.gen
}

// Router owns one Session. All reads and writes of the session happen on the
// loop goroutine; async work reports back through the inbox.
type Router struct {
	dir     Directory
	calls   CallNotifier
	logger  *zap.Logger
	timeout time.Duration

	inbox chan func(*state)
	quit  chan struct{}
	done  chan struct{}
	tasks sync.WaitGroup
	once  sync.Once

	st state
}

// New starts a router for a session launched with launchChannel. A non-empty
// channel opens the call screen directly.
func New(launchChannel string, dir Directory, calls CallNotifier, lookupTimeout time.Duration, logger *zap.Logger) *Router {
	r := &Router{
		dir:     dir,
		calls:   calls,
		logger:  logger,
		timeout: lookupTimeout,
		inbox:   make(chan func(*state)),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	r.st.session.Screen = Initial(launchChannel)
	if launchChannel != "" {
		logger.Info("Session launched from call notification", zap.String("channel_name", launchChannel))
	}

	go r.loop()
	return r
}

func (r *Router) loop() {
	defer close(r.done)
	for {
		select {
		case fn := <-r.inbox:
			fn(&r.st)
		case <-r.quit:
			if r.st.cancel != nil {
				r.st.cancel()
			}
			return
		}
	}
}

// Close stops the loop and waits for outstanding lookups to return.
func (r *Router) Close() {
	r.once.Do(func() { close(r.quit) })
	<-r.done
	r.tasks.Wait()
}

// do runs fn on the loop goroutine and returns once fn has run.
func (r *Router) do(ctx context.Context, fn func(*state)) error {
	ran := make(chan struct{})
	wrapped := func(st *state) {
		fn(st)
		close(ran)
	}
	select {
	case r.inbox <- wrapped:
	case <-r.quit:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	<-ran
	return nil
}

// post hands a completion to the loop; it is discarded after Close.
func (r *Router) post(fn func(*state)) {
	select {
	case r.inbox <- fn:
	case <-r.quit:
	}
}

// Snapshot returns the current session.
func (r *Router) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := r.do(ctx, func(st *state) { snap = st.snapshot() })
	return snap, err
}

// Dispatch applies ev and returns the session as committed. Effects started by
// ev are still pending in the returned snapshot.
func (r *Router) Dispatch(ctx context.Context, ev Event) (Snapshot, error) {
	var (
		snap Snapshot
		terr error
	)
	err := r.do(ctx, func(st *state) {
		next, effect, err := Next(st.session, ev)
		if err != nil {
			terr = err
			snap = st.snapshot()
			return
		}
		if effect.Kind == EffectResolveRole && st.pending == PendingRole && effect.UserID == st.session.UserID {
			// Same account reported again while its role is still resolving.
			snap = st.snapshot()
			return
		}
		from := st.session.Screen
		r.commit(st, next, effect)
		snap = st.snapshot()
		r.logger.Debug("Transition",
			zap.String("event", string(ev.Type)),
			zap.Stringer("from", from),
			zap.Stringer("to", st.session.Screen),
		)
	})
	if err != nil {
		return Snapshot{}, err
	}
	return snap, terr
}

func (r *Router) commit(st *state, next Session, effect Effect) {
	if next.Screen != st.session.Screen || effect.Kind != EffectNone {
		st.invalidate()
	}
	st.session = next

	switch effect.Kind {
	case EffectResolveRole:
		r.resolveRole(st, effect.UserID)
	case EffectStartCall:
		r.startCall(st, effect)
	case EffectNone:
	}
}

// setScreen commits a screen reached by an async completion.
func (r *Router) setScreen(st *state, screen Screen) {
	st.invalidate()
	st.session.Screen = screen
}

func (r *Router) resolveRole(st *state, userID string) {
	ctx, gen := st.begin(PendingRole)
	r.tasks.Add(1)
	go func() {
		defer r.tasks.Done()

		lookupCtx, cancel := context.WithTimeout(ctx, r.timeout)
		role, err := r.dir.LookupRole(lookupCtx, userID)
		cancel()
		if ctx.Err() != nil {
			return
		}
		if err != nil || role == "" {
			r.logger.Warn("Role lookup failed, defaulting to patient",
				zap.String("user_id", userID),
				zap.Error(err),
			)
			role = models.RolePatient
		}

		r.post(func(st *state) {
			if st.gen != gen {
				r.logger.Debug("Stale role resolution dropped", zap.String("user_id", userID))
				return
			}
			r.setScreen(st, Main(role))
			r.logger.Info("Role resolved", zap.String("user_id", userID), zap.String("role", string(role)))
		})
	}()
}

func (r *Router) startCall(st *state, effect Effect) {
	ctx, gen := st.begin(PendingCall)
	r.tasks.Add(1)
	go func() {
		defer r.tasks.Done()

		var token string
		if effect.RecipientID != "" {
			lookupCtx, cancel := context.WithTimeout(ctx, r.timeout)
			t, err := r.dir.LookupPushToken(lookupCtx, effect.RecipientID)
			cancel()
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				r.logger.Warn("Recipient lookup failed, calling without push",
					zap.String("recipient_id", effect.RecipientID),
					zap.Error(err),
				)
			}
			token = t
		}

		r.post(func(st *state) {
			if st.gen != gen {
				r.logger.Debug("Stale call start dropped", zap.String("channel_name", effect.Channel))
				return
			}
			if token != "" {
				r.calls.Notify(notifier.Invitation{
					RecipientToken: token,
					ChannelName:    effect.Channel,
					CallerName:     effect.CallerName,
				})
			} else {
				r.logger.Info("Recipient has no push token, call not announced",
					zap.String("recipient_id", effect.RecipientID),
					zap.String("channel_name", effect.Channel),
				)
			}
			r.setScreen(st, VideoCall(effect.Channel))
		})
	}()
}
