// Package worker drains the download queue: fetch, commit to the catalog,
// apply playlist membership, then hand the track to the play queue.
package worker

import (
	"log/slog"
	"sync/atomic"

	"scuttle/internal/models"
	"scuttle/internal/queue"
)

// TrackFetcher resolves download jobs into finished audio files.
type TrackFetcher interface {
	DownloadByID(id string, meta *models.Metadata) (models.Track, error)
	DownloadByQuery(q string, meta *models.Metadata) (models.Track, error)
}

// Catalog is the persistence surface the worker commits results to.
type Catalog interface {
	RegisterTrack(track models.Track) error
	RegisterDownload(id string) (models.Track, error)
	UpdateTrackPlaylists(trackID string, updates []models.PlaylistUpdate) error
}

// Worker owns the single consumer loop over the download queue. One worker
// per process; downloads are bandwidth-bound, not CPU-bound, so there is
// nothing to gain from parallel fetches.
type Worker struct {
	playQueue     *queue.PlayQueue
	downloadQueue *queue.DownloadQueue
	fetcher       TrackFetcher
	catalog       Catalog

	stopped atomic.Bool
}

func New(playQueue *queue.PlayQueue, downloadQueue *queue.DownloadQueue, fetcher TrackFetcher, catalog Catalog) *Worker {
	return &Worker{
		playQueue:     playQueue,
		downloadQueue: downloadQueue,
		fetcher:       fetcher,
		catalog:       catalog,
	}
}

// Run blocks on the download queue until Shutdown. A failed job is logged
// and dropped; the loop itself never dies.
func (w *Worker) Run() {
	slog.Info("Download worker started")
	for !w.stopped.Load() {
		job := w.downloadQueue.Pop()
		if job.Type() == "unknown" {
			// The shutdown sentinel, or garbage that slipped in.
			continue
		}
		if err := w.handle(job); err != nil {
			slog.Error("Download job failed", "job", job.Identifier(), "error", err)
		}
	}
	slog.Info("Download worker stopped")
}

func (w *Worker) handle(job *models.DownloadJob) error {
	slog.Info("Handling download job", "type", job.Type(), "job", job.Identifier())

	var track models.Track
	var err error
	switch job.Type() {
	case "id":
		track, err = w.fetcher.DownloadByID(job.ID, job.Metadata)
	case "query":
		track, err = w.fetcher.DownloadByQuery(job.Query, job.Metadata)
	}
	if err != nil {
		return err
	}

	if err := w.catalog.RegisterTrack(track); err != nil {
		return err
	}
	if _, err := w.catalog.RegisterDownload(track.ID); err != nil {
		return err
	}

	if len(job.Updates) > 0 {
		if err := w.catalog.UpdateTrackPlaylists(track.ID, job.Updates); err != nil {
			return err
		}
	}

	if job.QueueFirst {
		w.playQueue.InsertNext(track.ID)
	}
	if job.QueueLast {
		w.playQueue.Push(track.ID)
	}
	return nil
}

// Shutdown stops the loop. The sentinel wakes a pop that is already parked
// on an empty queue.
func (w *Worker) Shutdown() {
	w.stopped.Store(true)
	w.downloadQueue.PushSentinel()
}
