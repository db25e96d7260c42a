package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"
)

// JobStatus represents the state of a conversion job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusParsing    JobStatus = "parsing"
	StatusExtracting JobStatus = "extracting"
	StatusRendering  JobStatus = "rendering"
	StatusStoring    JobStatus = "storing"
	StatusCompleted  JobStatus = "completed"
	// StatusPartial marks a finished conversion with unresolved
	// placeholders or structural warnings; the output is downloadable.
	StatusPartial JobStatus = "partial"
	StatusFailed  JobStatus = "failed"
)

// Job tracks the state of a single MOM-to-PO conversion.
type Job struct {
	mu sync.Mutex

	ID string `json:"job_id"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	MOMFilename      string `json:"mom_filename"`
	TemplateFilename string `json:"template_filename"`

	Summary Summary `json:"summary"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	momData      []byte
	templateData []byte
	output       []byte
	errors       []string
}

// Summary captures the result of a finished conversion.
type Summary struct {
	PONo        string   `json:"po_no,omitempty"`
	FieldsTotal int      `json:"fields_total"`
	FieldsSet   int      `json:"fields_set"`
	Replaced    int      `json:"replaced"`
	Unresolved  []string `json:"unresolved,omitempty"`
	Warnings    []string `json:"warnings,omitempty"`
	Errors      []string `json:"errors,omitempty"`
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Summary.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetInputs sets the raw MOM and template bytes for processing.
func (j *Job) SetInputs(mom, tmpl []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.momData = mom
	j.templateData = tmpl
}

// SetSummary records the conversion result summary.
func (j *Job) SetSummary(s Summary) {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Summary.Errors
	j.Summary = s
	j.Summary.Errors = errs
	j.UpdatedAt = time.Now()
}

// SetOutput stores the finished PO document bytes.
func (j *Job) SetOutput(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.output = data
	j.UpdatedAt = time.Now()
}

// Updated returns the time of the last state change.
func (j *Job) Updated() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.UpdatedAt
}

// Output returns the finished PO bytes, or nil while incomplete.
func (j *Job) Output() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.output
}

// OutputName derives the download filename for the finished PO.
func (j *Job) OutputName() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.Summary.PONo != "" {
		return "PO_" + j.Summary.PONo + ".docx"
	}
	return "PO_" + j.ID + ".docx"
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID               string    `json:"job_id"`
	Status           JobStatus `json:"status"`
	Phase            string    `json:"phase"`
	MOMFilename      string    `json:"mom_filename"`
	TemplateFilename string    `json:"template_filename"`
	Summary          Summary   `json:"summary"`
	CreatedAt        time.Time `json:"created_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	s := j.Summary
	s.Unresolved = append([]string(nil), j.Summary.Unresolved...)
	s.Warnings = append([]string(nil), j.Summary.Warnings...)
	s.Errors = append([]string(nil), j.Summary.Errors...)
	return JobSnapshot{
		ID:               j.ID,
		Status:           j.Status,
		Phase:            j.Phase,
		MOMFilename:      j.MOMFilename,
		TemplateFilename: j.TemplateFilename,
		Summary:          s,
		CreatedAt:        j.CreatedAt,
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

// Cleanup removes expired jobs and their buffered output.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.Updated()) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// NewJobID derives a job ID from the input names and submission time.
func NewJobID(momName, templateName string) string {
	return ContentHashHex(fmt.Appendf(nil, "%s-%s-%d", momName, templateName, time.Now().UnixNano()))[:20]
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
