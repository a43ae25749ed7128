package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/cardiocare/internal/adapters/mq/queue"
	"github.com/okian/cardiocare/internal/adapters/mq/worker"
	"github.com/okian/cardiocare/internal/adapters/predictor"
	"github.com/okian/cardiocare/internal/domain/intake"
	"github.com/okian/cardiocare/internal/domain/model"
	"github.com/okian/cardiocare/internal/domain/monitor"
	"github.com/okian/cardiocare/internal/domain/scoring"
	"github.com/okian/cardiocare/internal/domain/tracker"
	"github.com/okian/cardiocare/pkg/logger"
	"github.com/okian/cardiocare/pkg/metrics"
)

// session is the per-user state. Each component is owned by exactly one
// session; mu serializes access to all of them.
type session struct {
	mu        sync.Mutex
	id        string
	createdAt time.Time
	closed    bool

	assessment *scoring.Engine
	intake     *intake.Session
	readings   *tracker.Log
	monitor    *monitor.Monitor
}

// Service owns sessions and dispatches intake submissions to the prediction
// worker pool. Results come back through Resolve.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]*session

	queue      *queue.InMemoryQueue
	workerPool *worker.Pool
	predictor  intake.Predictor

	runCtx  context.Context
	cancel  context.CancelFunc
	started bool

	// Configuration
	workerCount     int
	queueSize       int
	maxSessions     int
	trackerCapacity int
	monitorInterval time.Duration
	monitorWindow   int
	defaultCountry  string
	now             func() time.Time

	logger logger.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithWorkerCount sets the number of prediction workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the prediction queue capacity.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithMaxSessions bounds the number of concurrently open sessions. Zero
// removes the bound.
func WithMaxSessions(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.maxSessions = n
		}
	}
}

// WithTrackerCapacity sets how many readings each session keeps.
func WithTrackerCapacity(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.trackerCapacity = n
		}
	}
}

// WithMonitorInterval sets the heartbeat sampling interval.
func WithMonitorInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.monitorInterval = d
		}
	}
}

// WithMonitorWindow sets how many heartbeat samples each session keeps.
func WithMonitorWindow(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.monitorWindow = n
		}
	}
}

// WithDefaultCountry sets the country pre-filled on new intake forms.
func WithDefaultCountry(country string) Option {
	return func(s *Service) {
		if country != "" {
			s.defaultCountry = country
		}
	}
}

// WithPredictor sets the prediction backend. Without it the HTTP client
// with default settings is used.
func WithPredictor(p intake.Predictor) Option {
	return func(s *Service) {
		if p != nil {
			s.predictor = p
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a new Service. Call Start before submitting intake forms.
func New(opts ...Option) *Service {
	s := &Service{
		sessions:        make(map[string]*session),
		workerCount:     4,
		queueSize:       1024,
		maxSessions:     10000,
		trackerCapacity: 10,
		monitorInterval: time.Second,
		monitorWindow:   15,
		defaultCountry:  "India",
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.predictor == nil {
		s.predictor = predictor.New(predictor.WithDefaultCountry(s.defaultCountry))
	}
	return s
}

// Start creates the prediction queue and starts the worker pool. The pool
// outlives ctx cancellation; only Stop ends it.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.runCtx, s.cancel = context.WithCancel(context.WithoutCancel(ctx))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.workerPool = worker.NewPool(s.workerCount, s.queue, s.predictor, s)
	s.workerPool.Start(s.runCtx)
	s.started = true

	s.logger.Info(ctx, "service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queue_size", s.queueSize))
	return nil
}

// Stop stops every heartbeat monitor, drains the prediction queue and waits
// for the workers to exit.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	pool, cancel := s.workerPool, s.cancel
	all := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		all = append(all, sess)
	}
	s.mu.Unlock()

	for _, sess := range all {
		sess.mu.Lock()
		sess.monitor.Stop()
		sess.mu.Unlock()
	}
	metrics.UpdateActiveMonitors(0)

	err := pool.Shutdown(ctx)
	cancel()
	if err != nil {
		return fmt.Errorf("stop service: %w", err)
	}
	s.logger.Info(ctx, "service stopped")
	return nil
}

// baseCtx is the context background work for sessions runs under.
func (s *Service) baseCtx() context.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.runCtx != nil && s.started {
		return s.runCtx
	}
	return context.Background()
}

// CreateSession opens a new session with a fresh questionnaire, intake form,
// reading log and heartbeat monitor.
func (s *Service) CreateSession(ctx context.Context) (SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.maxSessions > 0 && len(s.sessions) >= s.maxSessions {
		return SessionInfo{}, ErrSessionLimit
	}

	sess := &session{
		id:         uuid.NewString(),
		createdAt:  s.now(),
		assessment: scoring.NewEngine(),
		intake:     intake.New(intake.WithDefaultCountry(s.defaultCountry), intake.WithClock(s.now)),
		readings:   tracker.NewLog(tracker.WithCapacity(s.trackerCapacity), tracker.WithClock(s.now)),
	}
	sess.monitor = monitor.New(
		monitor.WithInterval(s.monitorInterval),
		monitor.WithWindow(s.monitorWindow),
		monitor.WithOnSample(func(monitor.Sample) { metrics.RecordHeartbeatSample() }),
	)
	s.sessions[sess.id] = sess
	metrics.UpdateActiveSessions(len(s.sessions))

	s.logger.Debug(ctx, "session created", logger.String("session_id", sess.id))
	return SessionInfo{ID: sess.id, CreatedAt: sess.createdAt}, nil
}

// DiscardSession removes a session and stops its monitor. A prediction still
// in flight for it is dropped when it completes.
func (s *Service) DiscardSession(ctx context.Context, id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	n := len(s.sessions)
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	sess.mu.Lock()
	sess.closed = true
	stopped := sess.monitor.Stop()
	sess.mu.Unlock()
	if stopped {
		metrics.UpdateActiveMonitors(s.activeMonitors())
	}
	metrics.UpdateActiveSessions(n)

	s.logger.Debug(ctx, "session discarded", logger.String("session_id", id))
	return nil
}

// Session returns the identity of an open session.
func (s *Service) Session(_ context.Context, id string) (SessionInfo, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return SessionInfo{}, err
	}
	return SessionInfo{ID: sess.id, CreatedAt: sess.createdAt}, nil
}

func (s *Service) lookup(id string) (*session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Questions returns the risk questionnaire.
func (s *Service) Questions() scoring.Bank {
	return scoring.DefaultBank()
}

// Assessment returns the questionnaire state of a session.
func (s *Service) Assessment(_ context.Context, id string) (AssessmentView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return AssessmentView{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return newAssessmentView(sess.assessment.State()), nil
}

// AnswerQuestion answers the current question with the choice at index.
func (s *Service) AnswerQuestion(ctx context.Context, id string, choice int) (AssessmentView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return AssessmentView{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	st, err := sess.assessment.Answer(choice)
	if err != nil {
		return newAssessmentView(st), err
	}
	if st.Complete && st.Result != nil {
		metrics.RecordAssessmentCompleted(string(st.Result.Tier))
		s.logger.Debug(ctx, "assessment completed",
			logger.String("session_id", id),
			logger.Int("score", st.Result.Score))
	}
	return newAssessmentView(st), nil
}

// ResetAssessment restarts the questionnaire.
func (s *Service) ResetAssessment(_ context.Context, id string) (AssessmentView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return AssessmentView{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return newAssessmentView(sess.assessment.Reset()), nil
}

// Intake returns the intake form state of a session.
func (s *Service) Intake(_ context.Context, id string) (IntakeView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return IntakeView{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return newIntakeView(sess.intake), nil
}

// SetIntakeFields applies a batch of raw field values. Every value is
// validated before any is stored, so a rejected batch changes nothing.
func (s *Service) SetIntakeFields(_ context.Context, id string, values map[intake.Field]string) (IntakeView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return IntakeView{}, err
	}

	fields := make([]intake.Field, 0, len(values))
	for f := range values {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })

	sess.mu.Lock()
	defer sess.mu.Unlock()

	var scratch intake.Metrics
	for _, f := range fields {
		if err := scratch.Set(f, values[f]); err != nil {
			return newIntakeView(sess.intake), err
		}
	}
	for _, f := range fields {
		if _, err := sess.intake.Set(f, values[f]); err != nil {
			return newIntakeView(sess.intake), err
		}
	}
	return newIntakeView(sess.intake), nil
}

// NextStep advances the intake form.
func (s *Service) NextStep(_ context.Context, id string) (IntakeView, error) {
	return s.withIntake(id, func(in *intake.Session) error {
		_, err := in.Next()
		return err
	})
}

// PrevStep moves the intake form back one step.
func (s *Service) PrevStep(_ context.Context, id string) (IntakeView, error) {
	return s.withIntake(id, func(in *intake.Session) error {
		_, err := in.Prev()
		return err
	})
}

// ResetIntake returns the intake form to a fresh step 1. A prediction in
// flight is abandoned.
func (s *Service) ResetIntake(_ context.Context, id string) (IntakeView, error) {
	return s.withIntake(id, func(in *intake.Session) error {
		in.Reset()
		return nil
	})
}

func (s *Service) withIntake(id string, fn func(*intake.Session) error) (IntakeView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return IntakeView{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	err = fn(sess.intake)
	return newIntakeView(sess.intake), err
}

// SubmitIntake validates the form and queues it for prediction. The returned
// view shows the submitting state; the outcome arrives asynchronously. When
// the queue cannot take the job the attempt fails at once as a transport
// failure.
func (s *Service) SubmitIntake(ctx context.Context, id string) (IntakeView, error) {
	s.mu.RLock()
	q, started := s.queue, s.started
	s.mu.RUnlock()
	if !started {
		return IntakeView{}, ErrNotStarted
	}

	sess, err := s.lookup(id)
	if err != nil {
		return IntakeView{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sub, err := sess.intake.Submit()
	if err != nil {
		return newIntakeView(sess.intake), err
	}

	job := model.PredictionJob{
		SessionID:  id,
		Attempt:    sub.Attempt,
		Payload:    sub.Payload,
		EnqueuedAt: s.now(),
	}
	if err := q.Enqueue(ctx, job); err != nil {
		reason := intake.GenericFailure
		if errors.Is(err, queue.ErrQueueFull) {
			reason = queueFullReason
		}
		sess.intake.Resolve(sub.Attempt, intake.Prediction{}, &intake.PredictionError{
			Kind:   intake.KindTransport,
			Reason: reason,
			Err:    err,
		})
		metrics.RecordError("service", "enqueue")
		s.logger.Warn(ctx, "prediction not queued",
			logger.String("session_id", id),
			logger.Uint64("attempt", sub.Attempt),
			logger.Error(err))
	}
	return newIntakeView(sess.intake), nil
}

// Resolve applies a worker outcome to its session. Outcomes for discarded
// sessions or superseded attempts are dropped.
func (s *Service) Resolve(ctx context.Context, out model.PredictionOutcome) { //nolint:gocritic // hugeParam: outcome is passed by value from the worker
	sess, err := s.lookup(out.SessionID)
	if err != nil {
		metrics.RecordStaleResult()
		s.logger.Debug(ctx, "dropping result for closed session",
			logger.String("session_id", out.SessionID),
			logger.Uint64("attempt", out.Attempt))
		return
	}

	sess.mu.Lock()
	applied := sess.intake.Resolve(out.Attempt, out.Prediction, out.Err)
	sess.mu.Unlock()

	if !applied {
		metrics.RecordStaleResult()
		s.logger.Debug(ctx, "dropping stale result",
			logger.String("session_id", out.SessionID),
			logger.Uint64("attempt", out.Attempt))
	}
}

// AddReading appends a health reading to the session log.
func (s *Service) AddReading(_ context.Context, id string, e tracker.Entry) (tracker.Reading, error) { //nolint:gocritic // hugeParam: entries are small value types
	sess, err := s.lookup(id)
	if err != nil {
		return tracker.Reading{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	r, err := sess.readings.Add(e)
	if err != nil {
		return tracker.Reading{}, err
	}
	metrics.RecordReading(string(r.Kind))
	return r, nil
}

// Readings lists the session's readings of kind, most recent first.
func (s *Service) Readings(_ context.Context, id string, kind tracker.Kind) ([]tracker.Reading, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.readings.List(kind)
}

// ClearReadings empties the session log.
func (s *Service) ClearReadings(_ context.Context, id string) error {
	sess, err := s.lookup(id)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.readings.Clear()
	return nil
}

// Monitor returns the heartbeat monitor state of a session.
func (s *Service) Monitor(_ context.Context, id string) (MonitorView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return MonitorView{}, err
	}
	return newMonitorView(sess.monitor), nil
}

// StartMonitor starts heartbeat sampling. Starting a running monitor is a
// no-op.
func (s *Service) StartMonitor(ctx context.Context, id string) (MonitorView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return MonitorView{}, err
	}
	return s.startMonitor(ctx, sess)
}

// startMonitor starts sess's monitor unless the session has been discarded
// since it was looked up.
func (s *Service) startMonitor(ctx context.Context, sess *session) (MonitorView, error) {
	sess.mu.Lock()
	if sess.closed {
		sess.mu.Unlock()
		return MonitorView{}, ErrSessionNotFound
	}
	started := sess.monitor.Start(s.baseCtx())
	sess.mu.Unlock()

	if started {
		metrics.UpdateActiveMonitors(s.activeMonitors())
		s.logger.Debug(ctx, "monitor started", logger.String("session_id", sess.id))
	}
	return newMonitorView(sess.monitor), nil
}

// StopMonitor stops heartbeat sampling. No sample is produced after it
// returns.
func (s *Service) StopMonitor(ctx context.Context, id string) (MonitorView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return MonitorView{}, err
	}
	sess.mu.Lock()
	if sess.closed {
		sess.mu.Unlock()
		return MonitorView{}, ErrSessionNotFound
	}
	stopped := sess.monitor.Stop()
	sess.mu.Unlock()

	if stopped {
		metrics.UpdateActiveMonitors(s.activeMonitors())
		s.logger.Debug(ctx, "monitor stopped", logger.String("session_id", id))
	}
	return newMonitorView(sess.monitor), nil
}

func (s *Service) activeMonitors() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, sess := range s.sessions {
		if sess.monitor.Measuring() {
			n++
		}
	}
	return n
}

// SessionCount returns the number of open sessions.
func (s *Service) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// GetStats returns service statistics.
func (s *Service) GetStats(ctx context.Context) map[string]any {
	s.mu.RLock()
	stats := map[string]any{
		"started":      s.started,
		"worker_count": s.workerCount,
		"queue_size":   s.queueSize,
		"max_sessions": s.maxSessions,
		"sessions":     len(s.sessions),
	}
	if s.queue != nil {
		stats["queue_length"] = s.queue.Len(ctx)
	}
	if s.workerPool != nil {
		stats["workers"] = s.workerPool.Size()
	}
	s.mu.RUnlock()

	stats["active_monitors"] = s.activeMonitors()
	return stats
}
