// Package export turns the slide registry into a single paginated document.
//
// An export runs in strict phases: the off-screen surface is mounted and
// waited on until it is safe to capture, every slide is rasterized one at a
// time in registry order, the captures are assembled into pages in that same
// order, and the document is handed to a Saver. Whatever happens, the
// surface is unmounted and the pipeline returns to idle.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lehigh-university-libraries/slideshow/internal/slides"
	"github.com/lehigh-university-libraries/slideshow/internal/surface"
)

// FailureNotice is the single message shown to the user when an export fails.
const FailureNotice = "Export failed. Please try again."

// Surface is the off-screen render surface the pipeline captures from.
type Surface interface {
	Mount(ctx context.Context, records []slides.Record) error
	FontsReady(ctx context.Context) error
	ImagesSettled(ctx context.Context) ([]surface.ImageResult, error)
	Rasterize(ctx context.Context, index int, scale float64) (image.Image, error)
	Unmount()
}

// Document receives encoded captures as pages, in order.
type Document interface {
	AddPage(data []byte, pageNumber int, stamp bool) error
	Close() error
}

// DocumentFactory starts a document written to w.
type DocumentFactory func(w io.Writer) (Document, error)

// Saver emits the finished document and returns where it went. The
// context carries the job ID (see JobIDFromContext).
type Saver interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
}

// Notifier surfaces a message to the user.
type Notifier interface {
	Notify(message string)
}

// NotifierFunc adapts a function to a Notifier.
type NotifierFunc func(message string)

func (f NotifierFunc) Notify(message string) { f(message) }

// Options tune an export.
type Options struct {
	// Scale is the device pixel ratio of each capture.
	Scale float64
	// JPEGQuality is the quality of the encoded captures, 1-100.
	JPEGQuality int
	// FileName is the fixed name of the emitted document.
	FileName string
	// StampPageNumbers adds a page number to every page except the first.
	StampPageNumbers bool
	// SettleDelay lets the mount commit before readiness is checked.
	SettleDelay time.Duration
	// StabilizeDelay lets composited effects settle after all assets are ready.
	StabilizeDelay time.Duration
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		Scale:            1,
		JPEGQuality:      92,
		FileName:         "travel-presentation.pdf",
		StampPageNumbers: true,
		SettleDelay:      100 * time.Millisecond,
		StabilizeDelay:   500 * time.Millisecond,
	}
}

// Validate checks the options for values the pipeline cannot use.
func (o Options) Validate() error {
	var errs []error
	if o.Scale <= 0 || o.Scale > 4 {
		errs = append(errs, fmt.Errorf("scale must be in (0, 4], got %v", o.Scale))
	}
	if o.JPEGQuality < 1 || o.JPEGQuality > 100 {
		errs = append(errs, fmt.Errorf("jpeg quality must be in [1, 100], got %d", o.JPEGQuality))
	}
	if o.FileName == "" {
		errs = append(errs, errors.New("file name is required"))
	}
	if o.SettleDelay < 0 || o.StabilizeDelay < 0 {
		errs = append(errs, errors.New("delays must not be negative"))
	}
	return errors.Join(errs...)
}

// CaptureInfo describes one rasterized slide.
type CaptureInfo struct {
	Index    int
	SlideID  int
	Kind     slides.Kind
	Width    int
	Height   int
	Bytes    int
	Duration time.Duration
}

// Result describes a successful export.
type Result struct {
	JobID         string
	FileName      string
	Location      string
	PageCount     int
	Size          int
	ImageFailures int
	Captures      []CaptureInfo
	Duration      time.Duration
}

// Pipeline runs exports against one surface. At most one job is active at a
// time; independent pipelines share nothing.
type Pipeline struct {
	surface     Surface
	newDocument DocumentFactory
	saver       Saver
	notifier    Notifier
	onProgress  func(Job)
	opts        Options
	sleep       func(ctx context.Context, d time.Duration) error

	mu   sync.Mutex
	job  Job
	last Job
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithOptions replaces the default export options.
func WithOptions(o Options) Option {
	return func(p *Pipeline) { p.opts = o }
}

// WithNotifier sets where the failure notice goes.
func WithNotifier(n Notifier) Option {
	return func(p *Pipeline) { p.notifier = n }
}

// WithProgress registers a callback invoked with a snapshot on every
// status or progress change.
func WithProgress(fn func(Job)) Option {
	return func(p *Pipeline) { p.onProgress = fn }
}

// New creates an idle pipeline.
func New(s Surface, newDocument DocumentFactory, saver Saver, opts ...Option) *Pipeline {
	p := &Pipeline{
		surface:     s,
		newDocument: newDocument,
		saver:       saver,
		notifier: NotifierFunc(func(message string) {
			slog.Warn(message)
		}),
		opts:  DefaultOptions(),
		sleep: sleep,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Job returns a snapshot of the current job. An idle pipeline reports
// StatusIdle.
func (p *Pipeline) Job() Job {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.job
}

// Last returns the final snapshot (done or failed) of the most recent job.
func (p *Pipeline) Last() (Job, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last, p.last.ID != ""
}

// Busy reports whether a job holds the pipeline.
func (p *Pipeline) Busy() bool {
	return p.Job().Status != StatusIdle
}

// Outcome is the end of a job started with Start.
type Outcome struct {
	Result *Result
	Err    error
}

// Export runs one job over records. It returns ErrExportInProgress without
// side effects unless the pipeline is idle. Every other failure is returned
// as a *PhaseError after the failure notice has been sent.
func (p *Pipeline) Export(ctx context.Context, records []slides.Record) (*Result, error) {
	job, err := p.claim(records)
	if err != nil {
		return nil, err
	}
	return p.execute(ctx, job, records)
}

// Start claims the pipeline like Export and runs the job in the background.
// The returned channel receives exactly one Outcome.
func (p *Pipeline) Start(ctx context.Context, records []slides.Record) (Job, <-chan Outcome, error) {
	job, err := p.claim(records)
	if err != nil {
		return Job{}, nil, err
	}
	done := make(chan Outcome, 1)
	go func() {
		res, err := p.execute(ctx, job, records)
		done <- Outcome{Result: res, Err: err}
		close(done)
	}()
	return job, done, nil
}

func (p *Pipeline) claim(records []slides.Record) (Job, error) {
	if err := p.opts.Validate(); err != nil {
		return Job{}, fmt.Errorf("invalid export options: %w", err)
	}
	if len(records) == 0 {
		return Job{}, errors.New("nothing to export")
	}

	p.mu.Lock()
	if p.job.Status != StatusIdle {
		p.mu.Unlock()
		return Job{}, ErrExportInProgress
	}
	p.job = Job{
		ID:        uuid.NewString(),
		Status:    StatusPreparing,
		PageCount: len(records),
		StartedAt: time.Now(),
	}
	job := p.job
	p.mu.Unlock()

	p.publish()
	return job, nil
}

func (p *Pipeline) execute(ctx context.Context, job Job, records []slides.Record) (*Result, error) {
	log := slog.With("job_id", job.ID)
	log.Info("Starting export", "slides", job.PageCount, "scale", p.opts.Scale)

	defer p.cleanup(log)

	result, err := p.run(ctx, log, job, records)
	if err != nil {
		p.update(func(j *Job) {
			j.Status = StatusFailed
			j.Reason = err.Error()
		})
		log.Error("Export failed", "err", err)
		p.notifier.Notify(FailureNotice)
		return nil, err
	}

	p.update(func(j *Job) {
		j.Status = StatusDone
		j.Progress = 100
	})
	log.Info("Export finished", "file", result.FileName, "location", result.Location,
		"pages", result.PageCount, "bytes", result.Size, "duration", result.Duration)
	return result, nil
}

func (p *Pipeline) run(ctx context.Context, log *slog.Logger, job Job, records []slides.Record) (*Result, error) {
	imageFailures, err := p.prepare(ctx, log, records)
	if err != nil {
		return nil, err
	}

	captures, infos, err := p.capture(ctx, log, records)
	if err != nil {
		return nil, err
	}

	p.update(func(j *Job) { j.Status = StatusAssembling })
	data, err := p.assemble(captures)
	if err != nil {
		return nil, &PhaseError{Phase: PhaseAssembling, Index: -1, Err: err}
	}

	location, err := p.saver.Save(WithJobID(ctx, job.ID), p.opts.FileName, data)
	if err != nil {
		return nil, &PhaseError{Phase: PhaseSaving, Index: -1, Err: err}
	}

	return &Result{
		JobID:         job.ID,
		FileName:      p.opts.FileName,
		Location:      location,
		PageCount:     len(captures),
		Size:          len(data),
		ImageFailures: imageFailures,
		Captures:      infos,
		Duration:      time.Since(job.StartedAt),
	}, nil
}

// prepare mounts the surface and waits until capture is safe: a settle
// delay, fonts, every image loaded or failed, then a stabilization delay.
// Image failures are counted, not fatal.
func (p *Pipeline) prepare(ctx context.Context, log *slog.Logger, records []slides.Record) (int, error) {
	fail := func(err error) (int, error) {
		return 0, &PhaseError{Phase: PhasePreparing, Index: -1, Err: err}
	}

	if err := p.surface.Mount(ctx, records); err != nil {
		return fail(err)
	}
	if err := p.sleep(ctx, p.opts.SettleDelay); err != nil {
		return fail(err)
	}
	if err := p.surface.FontsReady(ctx); err != nil {
		return fail(err)
	}
	results, err := p.surface.ImagesSettled(ctx)
	if err != nil {
		return fail(err)
	}
	failures := 0
	for _, r := range results {
		if r.Err != nil {
			failures++
			log.Warn("Slide image failed to load", "ref", r.Ref, "err", r.Err)
		}
	}
	if err := p.sleep(ctx, p.opts.StabilizeDelay); err != nil {
		return fail(err)
	}

	log.Debug("Surface ready", "images", len(results), "image_failures", failures)
	return failures, nil
}

// capture rasterizes slides strictly one after another in registry order.
func (p *Pipeline) capture(ctx context.Context, log *slog.Logger, records []slides.Record) ([][]byte, []CaptureInfo, error) {
	p.update(func(j *Job) { j.Status = StatusRendering })

	total := len(records)
	captures := make([][]byte, total)
	infos := make([]CaptureInfo, total)
	for i, rec := range records {
		start := time.Now()
		img, err := p.surface.Rasterize(ctx, i, p.opts.Scale)
		if err != nil {
			return nil, nil, &PhaseError{Phase: PhaseRendering, Index: i, Err: err}
		}

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: p.opts.JPEGQuality}); err != nil {
			return nil, nil, &PhaseError{Phase: PhaseRendering, Index: i, Err: fmt.Errorf("failed to encode capture: %w", err)}
		}
		captures[i] = buf.Bytes()
		b := img.Bounds()
		infos[i] = CaptureInfo{
			Index:    i,
			SlideID:  rec.ID,
			Kind:     rec.Kind,
			Width:    b.Dx(),
			Height:   b.Dy(),
			Bytes:    buf.Len(),
			Duration: time.Since(start),
		}

		progress := Progress(i, total)
		p.update(func(j *Job) { j.Progress = progress })
		log.Debug("Captured slide", "index", i, "slide_id", rec.ID, "progress", progress)
	}
	return captures, infos, nil
}

// assemble places one capture per page, page i+1 for capture i.
func (p *Pipeline) assemble(captures [][]byte) ([]byte, error) {
	var out bytes.Buffer
	doc, err := p.newDocument(&out)
	if err != nil {
		return nil, err
	}
	for i, data := range captures {
		stamp := p.opts.StampPageNumbers && i > 0
		if err := doc.AddPage(data, i+1, stamp); err != nil {
			return nil, err
		}
	}
	if err := doc.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// cleanup always runs once per job: the surface is released and the
// pipeline returns to idle.
func (p *Pipeline) cleanup(log *slog.Logger) {
	p.surface.Unmount()

	p.mu.Lock()
	p.last = p.job
	p.job = Job{Status: StatusIdle}
	p.mu.Unlock()

	log.Debug("Export cleanup complete")
	p.publish()
}

func (p *Pipeline) update(fn func(*Job)) {
	p.mu.Lock()
	fn(&p.job)
	p.mu.Unlock()
	p.publish()
}

func (p *Pipeline) publish() {
	if p.onProgress != nil {
		p.onProgress(p.Job())
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
