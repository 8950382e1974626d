package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/floodjoin/internal/models"
	"github.com/desertthunder/floodjoin/internal/services"
	"github.com/desertthunder/floodjoin/internal/shared"
)

// Joiner defines the channel workflow operations.
type Joiner interface {
	// SearchChannel looks for an exact, case-insensitive username match in the directory. Never fails loudly.
	SearchChannel(ctx context.Context, name string) models.Resolution

	// JoinChannel resolves and joins name, reporting only success or failure.
	JoinChannel(ctx context.Context, name string) bool

	// Join is JoinChannel with the full outcome and progress reporting.
	Join(ctx context.Context, name string, progress chan<- ProgressUpdate) models.JoinOutcome

	// JoinAll joins each name in order, paced by the engine's limiter.
	JoinAll(ctx context.Context, names []string, progress chan<- ProgressUpdate) []models.JoinOutcome
}

// AttemptRecorder persists join outcomes. Implemented by repositories.AttemptRecorder.
type AttemptRecorder interface {
	RecordAttempt(outcome models.JoinOutcome) error
}

// Waiter blocks until the next join in a batch may start. [rate.Limiter] satisfies it.
type Waiter interface {
	Wait(ctx context.Context) error
}

// EngineOpts contains optional settings for [NewJoinEngine].
type EngineOpts struct {
	Logger      *log.Logger
	SearchLimit int             // Candidates requested per search; defaults to [shared.DefaultSearchLimit]
	Interval    time.Duration   // Minimum spacing between joins of a batch; zero means no pacing
	Burst       int             // Joins allowed back to back before Interval applies
	Limiter     Waiter          // Overrides the limiter built from Interval and Burst
	Recorder    AttemptRecorder // Optional history sink
}

// JoinEngine implements [Joiner] on top of a connected [services.Channels].
type JoinEngine struct {
	channels services.Channels
	logger   *log.Logger
	limit    int
	limiter  Waiter
	recorder AttemptRecorder
}

var _ Joiner = (*JoinEngine)(nil)

// NewJoinEngine creates a new JoinEngine for the given client.
func NewJoinEngine(channels services.Channels, opts EngineOpts) *JoinEngine {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.SearchLimit < 1 {
		opts.SearchLimit = shared.DefaultSearchLimit
	}
	if opts.Limiter == nil {
		opts.Limiter = NewLimiter(opts.Interval, opts.Burst)
	}

	return &JoinEngine{
		channels: channels,
		logger:   opts.Logger,
		limit:    opts.SearchLimit,
		limiter:  opts.Limiter,
		recorder: opts.Recorder,
	}
}

// NewLimiter builds a [rate.Limiter] allowing one join per interval with the given burst.
// A non-positive interval disables pacing.
func NewLimiter(interval time.Duration, burst int) *rate.Limiter {
	if burst < 1 {
		burst = 1
	}
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, burst)
	}
	return rate.NewLimiter(rate.Every(interval), burst)
}

// sendProgress sends a progress update through the channel without blocking.
func (e *JoinEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// SearchChannel strips one leading "@" and searches the directory with the remaining text, case preserved.
//
// The first candidate whose username equals the name case-insensitively wins.
// Search errors are logged and reported as not found.
func (e *JoinEngine) SearchChannel(ctx context.Context, name string) models.Resolution {
	query := shared.TrimAt(name)
	e.logger.Info("searching for channel with exact name", "channel", query)

	candidates, err := e.channels.Search(ctx, query, e.limit)
	if err != nil {
		e.logger.Error("error searching for channel", "channel", query, "error", err)
		return models.NotFound(err)
	}

	for _, c := range candidates {
		if shared.UsernameMatches(name, c.Username) {
			e.logger.Info("found channel", "channel", query, "ref", c.Ref)
			return models.Resolved(c, models.SourceSearch)
		}
	}

	e.logger.Info("no exact match found", "channel", query, "candidates", len(candidates))
	return models.NotFound(nil)
}

// Resolve tries direct lookup, then falls back to [JoinEngine.SearchChannel].
//
// A direct lookup error is never final. A search that finds nothing is: the returned Resolution carries [shared.ErrChannelNotFound].
func (e *JoinEngine) Resolve(ctx context.Context, name string, progress chan<- ProgressUpdate) models.Resolution {
	return e.resolve(ctx, name, position{1, 1}, progress)
}

func (e *JoinEngine) resolve(ctx context.Context, name string, pos position, progress chan<- ProgressUpdate) models.Resolution {
	e.logger.Info("getting entity for channel", "channel", name)
	e.sendProgress(progress, resolveDirectUpdate(pos, name))

	candidate, err := e.channels.Resolve(ctx, name)
	if err == nil && candidate != nil {
		return models.Resolved(*candidate, models.SourceDirect)
	}
	if err == nil {
		err = fmt.Errorf("%w: empty response for %q", shared.ErrLookupFailed, name)
	}

	if d, ok := services.FloodWait(err); ok {
		e.logger.Warn("direct lookup rate limited, trying to search channel", "channel", name, "flood_wait", d)
	} else {
		e.logger.Warn("direct lookup failed, trying to search channel", "channel", name, "error", err)
	}
	e.sendProgress(progress, searchFallbackUpdate(pos, name, err))

	found := e.SearchChannel(ctx, name)
	if found.Found() {
		return found
	}

	return models.NotFound(fmt.Errorf("%w for %q", shared.ErrChannelNotFound, name))
}

// JoinChannel resolves name and joins it. Every failure is logged and reported as false.
func (e *JoinEngine) JoinChannel(ctx context.Context, name string) bool {
	return e.Join(ctx, name, nil).Joined
}

// Join resolves name and issues the join request, returning the full outcome.
func (e *JoinEngine) Join(ctx context.Context, name string, progress chan<- ProgressUpdate) models.JoinOutcome {
	return e.join(ctx, name, position{1, 1}, progress)
}

func (e *JoinEngine) join(ctx context.Context, name string, pos position, progress chan<- ProgressUpdate) models.JoinOutcome {
	outcome := models.JoinOutcome{Name: name, Source: models.SourceNone}
	defer func() {
		e.sendProgress(progress, joinCompleteUpdate(pos, outcome))
		e.record(outcome)
	}()

	resolution := e.resolve(ctx, name, pos, progress)
	if !resolution.Found() {
		outcome.Err = resolution.Err
		e.logger.Error("error joining channel", "channel", name, "error", outcome.Err)
		return outcome
	}

	outcome.Source = resolution.Source
	outcome.Resolved = resolution.Candidate

	e.logger.Info("joining channel", "channel", name, "source", resolution.Source)
	e.sendProgress(progress, joinRequestUpdate(pos, name, resolution.Candidate))

	if err := e.channels.Join(ctx, resolution.Candidate.Ref); err != nil {
		outcome.Err = err
		e.logger.Error("error joining channel", "channel", name, "error", err)
		return outcome
	}

	outcome.Joined = true
	e.logger.Info("channel joined successfully", "channel", name)
	return outcome
}

// JoinAll joins names one after another. Before each join it waits on the limiter;
// if that wait fails (context done) the remaining names are reported as failed with the wait error.
func (e *JoinEngine) JoinAll(ctx context.Context, names []string, progress chan<- ProgressUpdate) []models.JoinOutcome {
	outcomes := make([]models.JoinOutcome, 0, len(names))

	for i, name := range names {
		pos := position{step: i + 1, total: len(names)}

		if err := e.limiter.Wait(ctx); err != nil {
			e.logger.Error("batch interrupted", "remaining", len(names)-i, "error", err)
			for _, rest := range names[i:] {
				outcome := models.JoinOutcome{Name: rest, Source: models.SourceNone, Err: err}
				e.record(outcome)
				outcomes = append(outcomes, outcome)
			}
			return outcomes
		}

		outcomes = append(outcomes, e.join(ctx, name, pos, progress))
	}

	return outcomes
}

// record stores outcome when a recorder is set. Failures never change the outcome.
func (e *JoinEngine) record(outcome models.JoinOutcome) {
	if e.recorder == nil {
		return
	}
	if err := e.recorder.RecordAttempt(outcome); err != nil {
		e.logger.Warn("failed to record join attempt", "channel", outcome.Name, "error", err)
	}
}

// Summary counts joined and failed outcomes.
func Summary(outcomes []models.JoinOutcome) (joined, failed int) {
	for _, o := range outcomes {
		if o.Joined {
			joined++
		} else {
			failed++
		}
	}
	return joined, failed
}
