package models

import (
	"errors"

	"github.com/google/uuid"
)

// ErrBadJob is returned when a download job carries neither an id nor a
// query. Routers map it to a 4xx; a bad job is never enqueued.
var ErrBadJob = errors.New("download job requires either an id or a query")

// PlaylistUpdate describes a desired membership state for one playlist.
// Checked nil means "leave this playlist alone".
type PlaylistUpdate struct {
	PlaylistID int64 `json:"id"`
	Checked    *bool `json:"checked"`
}

// DownloadJob is a request to fetch a track and commit it to the catalog.
// Exactly one of ID or Query is set. Jobs are ephemeral: they live on the
// download queue and are never persisted.
type DownloadJob struct {
	// JobID correlates log lines and events for one submission.
	JobID string `json:"job_id,omitempty"`

	ID    string `json:"id,omitempty"`
	Query string `json:"query,omitempty"`

	// Post-commit side effects
	Metadata   *Metadata        `json:"metadata,omitempty"`
	Updates    []PlaylistUpdate `json:"updates,omitempty"`
	QueueFirst bool             `json:"queue_first,omitempty"`
	QueueLast  bool             `json:"queue_last,omitempty"`
}

// NewDownloadJob validates the id-xor-query precondition at construction.
// Having neither is ErrBadJob; having both keeps the id and drops the query,
// since the id is the stronger identity.
func NewDownloadJob(id, query string, metadata *Metadata, updates []PlaylistUpdate, queueFirst, queueLast bool) (*DownloadJob, error) {
	if id == "" && query == "" {
		return nil, ErrBadJob
	}
	if id != "" {
		query = ""
	}
	return &DownloadJob{
		JobID:      uuid.NewString(),
		ID:         id,
		Query:      query,
		Metadata:   metadata,
		Updates:    updates,
		QueueFirst: queueFirst,
		QueueLast:  queueLast,
	}, nil
}

// SentinelJob builds the empty job the worker pushes at itself to unblock a
// parked pop during shutdown. It bypasses NewDownloadJob validation on
// purpose and is dropped by the worker loop.
func SentinelJob() *DownloadJob {
	return &DownloadJob{}
}

// Identifier is the job's identity for queue containment: the id when
// present, else the query.
func (j *DownloadJob) Identifier() string {
	if j.ID != "" {
		return j.ID
	}
	return j.Query
}

// Type reports which dispatch path the worker should take.
func (j *DownloadJob) Type() string {
	switch {
	case j.ID != "":
		return "id"
	case j.Query != "":
		return "query"
	default:
		return "unknown"
	}
}
