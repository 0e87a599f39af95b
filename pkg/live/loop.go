package live

import (
	"time"

	"go.uber.org/zap"

	"github.com/recera/nodecloud/internal/metrics"
	"github.com/recera/nodecloud/pkg/nodecloud"
	"github.com/recera/nodecloud/pkg/scheduler"
)

// frameLoop owns a session's engine. Everything touching the engine runs on
// the scheduler goroutine: ticks, and work posted between ticks.
type frameLoop struct {
	sess     *Session
	engine   *nodecloud.Engine
	loop     *scheduler.Loop
	index    map[string]int
	viewport nodecloud.Viewport
}

func newFrameLoop(sess *Session, entities []nodecloud.Entity, cfg Config) *frameLoop {
	fl := &frameLoop{sess: sess}

	opts := cfg.Options
	opts.Logger = cfg.Options.Logger.With(zap.String("session", sess.ID))
	opts.OnSelect = fl.selected
	fl.engine = nodecloud.New(entities, opts)
	fl.reindex()

	rate := cfg.FPS
	if rate <= 0 {
		rate = scheduler.DefaultRate
	}
	fl.loop = scheduler.NewLoop(fl.tick,
		scheduler.WithRate(rate),
		scheduler.WithLogger(sess.log),
		scheduler.WithErrorHandler(func(err interface{}) bool {
			sess.log.Error("frame panicked", zap.Any("error", err))
			return true
		}),
	)
	return fl
}

func (fl *frameLoop) start() { fl.loop.Start() }

func (fl *frameLoop) stop() { fl.loop.Stop() }

// manifest must only be called before start or from the loop goroutine
func (fl *frameLoop) manifest() Graph {
	return NewGraph(fl.engine)
}

func (fl *frameLoop) reindex() {
	nodes := fl.engine.Graph().Nodes
	fl.index = make(map[string]int, len(nodes))
	for i, n := range nodes {
		fl.index[n.ID] = i
	}
}

func (fl *frameLoop) tick(dt time.Duration) {
	start := time.Now()
	f, ok := fl.engine.Advance(dt, fl.viewport)
	if !ok {
		return
	}
	msg := EncodeFrame(&f, fl.index)
	metrics.TickDuration.Observe(time.Since(start).Seconds())
	if !fl.sess.offer(msg) {
		fl.sess.log.Debug("client slow, frame dropped", zap.Uint64("seq", f.Seq))
	}
}

func (fl *frameLoop) post(evt Event) {
	fl.loop.Post(func() { fl.apply(evt) })
}

func (fl *frameLoop) apply(evt Event) {
	e := fl.engine
	x, y := float64(evt.X), float64(evt.Y)
	switch evt.Type {
	case EventPointerDown:
		e.BeginDrag(x, y)
	case EventPointerMove:
		e.ContinueDrag(x, y)
	case EventPointerUp:
		e.EndDrag()
	case EventHover:
		e.Hover(evt.NodeID)
	case EventClick:
		e.Click(evt.NodeID)
	case EventResize:
		fl.viewport = nodecloud.Viewport{Width: x, Height: y}
	}
}

func (fl *frameLoop) reload(entities []nodecloud.Entity) {
	fl.loop.Post(func() {
		fl.engine.SetEntities(entities)
		fl.reindex()
		fl.sess.enqueue(EncodeGraph(fl.manifest()))
	})
}

func (fl *frameLoop) setLabels(on bool) {
	fl.loop.Post(func() {
		if fl.engine.Options().ShowLabels == on {
			return
		}
		fl.engine.SetShowLabels(on)
		fl.sess.enqueue(EncodeGraph(fl.manifest()))
	})
}

// selected runs on the loop goroutine from inside Engine.Click
func (fl *frameLoop) selected(id string, kind nodecloud.Kind) {
	metrics.Selections.WithLabelValues(kind.String()).Inc()
	fl.sess.log.Debug("node selected", zap.String("id", id), zap.Stringer("kind", kind))
	fl.sess.enqueue(EncodeControl(Control{Name: ControlSelect, Args: []string{kind.String(), id}}))
}
