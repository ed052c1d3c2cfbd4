// SPDX-License-Identifier: MIT
package job

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"voiceforge/internal/audio"
	"voiceforge/internal/config"
	"voiceforge/internal/log"
	"voiceforge/internal/voice"
)

// ErrQueueFull is recorded on jobs rejected because the submission
// queue is saturated.
var ErrQueueFull = errors.New("job: queue full")

const queueCapacity = 128

// task carries one unit of work from submit to a worker. Raw payload
// bytes travel with the task, not the job record; the store only holds
// metadata.
type task struct {
	jobID     string
	kind      Kind
	payload   []byte // convert input
	reference []byte // clone reference
	target    []byte // clone target
	speakerID string
	blend     float64 // conversion strength or clone similarity
}

// Manager owns job lifecycle: it creates records, schedules background
// execution on a fixed worker pool, publishes state transitions to
// subscribers, and writes result WAVs to the output directory. Submit
// never blocks on processing.
type Manager struct {
	cfg       config.JobsConfig
	dspCfg    config.DSPConfig
	store     Store
	converter *voice.Converter
	cloner    *voice.Cloner

	queue   chan task
	wg      sync.WaitGroup
	timeout time.Duration
	workers int

	subsMu sync.RWMutex
	subs   []func(Event)
}

// NewManager wires the engines and worker pool. Workers defaults to one
// per CPU core when the configured count is zero.
func NewManager(cfg config.JobsConfig, dspCfg config.DSPConfig, store Store) (*Manager, error) {
	extractor, err := voice.NewExtractor(dspCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build extractor: %w", err)
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	return &Manager{
		cfg:       cfg,
		dspCfg:    dspCfg,
		store:     store,
		converter: voice.NewConverter(dspCfg),
		cloner:    voice.NewCloner(dspCfg, extractor),
		queue:     make(chan task, queueCapacity),
		timeout:   time.Duration(cfg.TimeoutSeconds) * time.Second,
		workers:   workers,
	}, nil
}

// Start launches the worker pool.
func (m *Manager) Start() {
	log.Infof("jobs: starting %d workers (timeout %s)", m.workers, m.timeout)
	for range m.workers {
		m.wg.Add(1)
		go m.worker()
	}
}

// Stop drains the queue and waits for in-flight jobs to finish.
func (m *Manager) Stop() {
	close(m.queue)
	m.wg.Wait()
}

// Subscribe registers a callback invoked on every job state or progress
// change. Must be called before Start.
func (m *Manager) Subscribe(fn func(Event)) {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	m.subs = append(m.subs, fn)
}

// SubmitConvert creates a conversion job and schedules it. Payload
// validity is checked by the worker: corrupt input produces a Failed
// job, not a submit error.
func (m *Manager) SubmitConvert(payload []byte, speakerID string, strength float64) (Job, error) {
	return m.submit(task{
		kind:      KindConvert,
		payload:   payload,
		speakerID: speakerID,
		blend:     clampUnit(strength),
	})
}

// SubmitClone creates a cloning job and schedules it.
func (m *Manager) SubmitClone(reference, target []byte, similarity float64) (Job, error) {
	return m.submit(task{
		kind:      KindClone,
		reference: reference,
		target:    target,
		blend:     clampUnit(similarity),
	})
}

// Status returns a read-only snapshot of the job, or ErrNotFound.
func (m *Manager) Status(id string) (Job, error) {
	return m.store.Get(id)
}

// ResultPath resolves a job's result reference to a file path under the
// output directory. References containing path separators are rejected.
func (m *Manager) ResultPath(ref string) (string, error) {
	if ref == "" || strings.ContainsAny(ref, `/\`) || !strings.HasSuffix(ref, ".wav") {
		return "", fmt.Errorf("invalid result reference %q", ref)
	}
	return filepath.Join(m.cfg.OutputDir, ref), nil
}

func (m *Manager) submit(t task) (Job, error) {
	now := time.Now().UTC()
	j := Job{
		ID:        uuid.NewString(),
		Kind:      t.kind,
		Status:    StatusQueued,
		Message:   "queued",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.store.Create(j); err != nil {
		return Job{}, fmt.Errorf("failed to create job: %w", err)
	}
	t.jobID = j.ID

	// Publish before enqueueing so the queued event cannot arrive after
	// a worker's first processing event.
	m.publish(Event{JobID: j.ID, Status: StatusQueued, Progress: 0})

	select {
	case m.queue <- t:
	default:
		failed, _ := m.fail(j.ID, ErrQueueFull)
		return failed, nil
	}

	log.Debugf("jobs: %s job %s queued", t.kind, j.ID)
	return j, nil
}

func (m *Manager) worker() {
	defer m.wg.Done()
	for t := range m.queue {
		m.execute(t)
	}
}

// execute runs one job to a terminal state. Engine work happens in a
// child goroutine so a wall-clock bound applies; on timeout the job is
// failed and the goroutine's eventual result is discarded, since the
// pure-CPU engines have no cancellation point.
func (m *Manager) execute(t task) {
	m.setProgress(t.jobID, StatusProcessing, 5, "decoding input")

	type outcome struct {
		buf      audio.Buffer
		analysis *voice.Profile
		err      error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("processing panic: %v", r)}
			}
		}()
		buf, analysis, err := m.process(t)
		done <- outcome{buf: buf, analysis: analysis, err: err}
	}()

	select {
	case result := <-done:
		if result.err != nil {
			m.fail(t.jobID, result.err)
			return
		}
		m.complete(t.jobID, result.buf, result.analysis)
	case <-time.After(m.timeout):
		log.Warnf("jobs: %s timed out after %s", t.jobID, m.timeout)
		m.fail(t.jobID, fmt.Errorf("processing timed out after %s", m.timeout))
	}
}

// process decodes inputs and runs the engine for the task's kind.
func (m *Manager) process(t task) (audio.Buffer, *voice.Profile, error) {
	progress := func(pct float64, msg string) {
		m.setProgress(t.jobID, StatusProcessing, pct, msg)
	}

	switch t.kind {
	case KindConvert:
		buf, err := m.ingest(t.payload)
		if err != nil {
			return audio.Buffer{}, nil, fmt.Errorf("input audio: %w", err)
		}
		progress(20, "input decoded")
		out := m.converter.Convert(buf, t.speakerID, t.blend, progress)
		return out, nil, nil

	case KindClone:
		reference, err := m.ingest(t.reference)
		if err != nil {
			return audio.Buffer{}, nil, fmt.Errorf("reference audio: %w", err)
		}
		target, err := m.ingest(t.target)
		if err != nil {
			return audio.Buffer{}, nil, fmt.Errorf("target audio: %w", err)
		}
		progress(20, "inputs decoded")
		out, profile := m.cloner.Clone(reference, target, t.blend, progress)
		return out, &profile, nil

	default:
		return audio.Buffer{}, nil, fmt.Errorf("unknown job kind %q", t.kind)
	}
}

// ingest decodes a WAV payload into the canonical working format.
func (m *Manager) ingest(payload []byte) (audio.Buffer, error) {
	buf, err := audio.DecodeWAV(payload)
	if err != nil {
		return audio.Buffer{}, err
	}
	return audio.Standardize(buf, m.dspCfg.SampleRate)
}

func (m *Manager) complete(id string, buf audio.Buffer, analysis *voice.Profile) {
	m.setProgress(id, StatusProcessing, 95, "encoding result")

	ref := uuid.NewString() + ".wav"
	path := filepath.Join(m.cfg.OutputDir, ref)
	if err := m.writeResult(path, buf); err != nil {
		m.fail(id, err)
		return
	}

	updated, err := m.store.Update(id, func(j *Job) {
		j.Status = StatusCompleted
		j.Progress = 100
		j.Message = "completed"
		j.ResultRef = ref
		j.Analysis = analysis
	})
	if err != nil {
		log.Errorf("jobs: failed to mark %s completed: %v", id, err)
		return
	}
	m.publish(Event{JobID: id, Status: updated.Status, Progress: updated.Progress})
	log.Infof("jobs: %s completed, result %s", id, ref)
}

func (m *Manager) writeResult(path string, buf audio.Buffer) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create result file: %w", err)
	}
	if err := audio.EncodeWAV(f, buf); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode result: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close result file: %w", err)
	}
	return nil
}

// fail moves a job to Failed with the error message; progress stays at
// its last recorded value. A single job's failure never propagates past
// this boundary.
func (m *Manager) fail(id string, cause error) (Job, error) {
	updated, err := m.store.Update(id, func(j *Job) {
		if j.Terminal() {
			return
		}
		j.Status = StatusFailed
		j.Message = "failed"
		j.Error = cause.Error()
	})
	if err != nil {
		log.Errorf("jobs: failed to mark %s failed: %v", id, err)
		return Job{}, err
	}
	m.publish(Event{JobID: id, Status: updated.Status, Progress: updated.Progress})
	log.Warnf("jobs: %s failed: %v", id, cause)
	return updated, nil
}

// setProgress raises progress to pct (never lowers it) and records the
// current step. Terminal jobs are left untouched.
func (m *Manager) setProgress(id string, status Status, pct float64, msg string) {
	updated, err := m.store.Update(id, func(j *Job) {
		if j.Terminal() {
			return
		}
		j.Status = status
		if pct > j.Progress {
			j.Progress = pct
		}
		j.Message = msg
	})
	if err != nil {
		log.Errorf("jobs: failed to update %s: %v", id, err)
		return
	}
	m.publish(Event{JobID: id, Status: updated.Status, Progress: updated.Progress})
}

func (m *Manager) publish(e Event) {
	m.subsMu.RLock()
	defer m.subsMu.RUnlock()
	for _, fn := range m.subs {
		fn(e)
	}
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
