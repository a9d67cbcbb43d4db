package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/docrank/internal/analysis"
)

// JobStatus represents the state of an analysis job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusParsing   JobStatus = "parsing"
	StatusScoring   JobStatus = "scoring"
	StatusRanking   JobStatus = "ranking"
	StatusRefining  JobStatus = "refining"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

// Done reports whether the status is terminal.
func (s JobStatus) Done() bool {
	return s == StatusCompleted || s == StatusFailed
}

// File is one uploaded document.
type File struct {
	Name string
	Data []byte
}

// Job tracks one analysis run over a set of uploaded documents.
type Job struct {
	mu sync.Mutex

	ID     string
	Status JobStatus
	Phase  string

	PersonaJob analysis.PersonaJob
	Filenames  []string

	Progress Progress

	CreatedAt time.Time
	UpdatedAt time.Time

	// Internal: not serialized.
	files  []File
	opts   analysis.Options
	result *analysis.Summary
	err    error
	errors []string
}

// Progress tracks processing progress.
type Progress struct {
	Documents       int      `json:"documents"`
	DocumentsParsed int      `json:"documents_parsed"`
	Duplicates      int      `json:"duplicates_skipped"`
	Sections        int      `json:"sections"`
	Ranked          int      `json:"ranked"`
	Errors          []string `json:"errors"`
}

// NewJob creates a queued job with a fresh ID.
func NewJob(pj analysis.PersonaJob, files []File, opts analysis.Options) *Job {
	now := time.Now()
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	return &Job{
		ID:         uuid.NewString(),
		Status:     StatusQueued,
		Phase:      "queued",
		PersonaJob: pj,
		Filenames:  names,
		Progress:   Progress{Documents: len(files)},
		CreatedAt:  now,
		UpdatedAt:  now,
		files:      files,
		opts:       opts,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes jobs that have not changed within the TTL.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.updatedAt()) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

func (j *Job) updatedAt() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.UpdatedAt
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// Fail records err and marks the job failed in phase.
func (j *Job) Fail(phase string, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err.Error())
	j.Progress.Errors = j.errors
	j.err = err
	j.Status = StatusFailed
	j.Phase = phase
	j.result = nil
	j.files = nil
	j.UpdatedAt = time.Now()
}

// AddError records a non-fatal problem.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// DocumentParsed counts a parsed document and its sections.
func (j *Job) DocumentParsed(sections int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.DocumentsParsed++
	j.Progress.Sections += sections
	j.UpdatedAt = time.Now()
}

// DuplicateSkipped counts an upload whose content repeated an earlier one.
func (j *Job) DuplicateSkipped() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Duplicates++
	j.UpdatedAt = time.Now()
}

// Complete stores the run's summary and marks the job completed. The uploaded
// bytes are released.
func (j *Job) Complete(s analysis.Summary) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = &s
	j.files = nil
	j.Progress.Ranked = len(s.Sections)
	j.Status = StatusCompleted
	j.Phase = "done"
	j.UpdatedAt = time.Now()
}

// Result returns the summary of a completed job.
func (j *Job) Result() (analysis.Summary, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.result == nil {
		return analysis.Summary{}, false
	}
	return *j.result, true
}

// Err returns the error that failed the job, or nil.
func (j *Job) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

// Files returns the uploaded documents.
func (j *Job) Files() []File {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.files
}

// Options returns the analysis options the job runs with.
func (j *Job) Options() analysis.Options {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.opts
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string    `json:"job_id"`
	Status    JobStatus `json:"status"`
	Phase     string    `json:"phase"`
	Persona   string    `json:"persona"`
	Job       string    `json:"job_to_be_done"`
	Filenames []string  `json:"filenames"`
	Progress  Progress  `json:"progress"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	p := j.Progress
	p.Errors = append([]string{}, j.Progress.Errors...)
	return JobSnapshot{
		ID:        j.ID,
		Status:    j.Status,
		Phase:     j.Phase,
		Persona:   j.PersonaJob.Persona,
		Job:       j.PersonaJob.Job,
		Filenames: append([]string{}, j.Filenames...),
		Progress:  p,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
