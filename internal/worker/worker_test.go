package worker

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scuttle/internal/events"
	"scuttle/internal/models"
	"scuttle/internal/queue"
)

type stubFetcher struct {
	mu       sync.Mutex
	byID     []string
	byQuery  []string
	failWith error
}

func (f *stubFetcher) DownloadByID(id string, meta *models.Metadata) (models.Track, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return models.Track{}, f.failWith
	}
	f.byID = append(f.byID, id)
	track := models.Track{ID: id, Title: "fetched", Artist: "channel"}
	meta.Apply(&track)
	return track, nil
}

func (f *stubFetcher) DownloadByQuery(q string, meta *models.Metadata) (models.Track, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return models.Track{}, f.failWith
	}
	f.byQuery = append(f.byQuery, q)
	return models.Track{ID: "YT___resolved", Title: q, Artist: "channel"}, nil
}

type stubCatalog struct {
	mu         sync.Mutex
	registered []string
	downloaded []string
	playlists  map[string][]models.PlaylistUpdate
	commits    chan string
}

func newStubCatalog() *stubCatalog {
	return &stubCatalog{
		playlists: map[string][]models.PlaylistUpdate{},
		commits:   make(chan string, 16),
	}
}

func (c *stubCatalog) RegisterTrack(track models.Track) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.registered = append(c.registered, track.ID)
	return nil
}

func (c *stubCatalog) RegisterDownload(id string) (models.Track, error) {
	c.mu.Lock()
	c.downloaded = append(c.downloaded, id)
	c.mu.Unlock()
	c.commits <- id
	return models.Track{ID: id}, nil
}

func (c *stubCatalog) UpdateTrackPlaylists(trackID string, updates []models.PlaylistUpdate) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playlists[trackID] = updates
	return nil
}

func (c *stubCatalog) waitForCommit(t *testing.T) string {
	t.Helper()
	select {
	case id := <-c.commits:
		return id
	case <-time.After(time.Second):
		t.Fatal("worker never committed the job")
		return ""
	}
}

func startWorker(t *testing.T, fetcher *stubFetcher, catalog *stubCatalog) (*Worker, *queue.PlayQueue, *queue.DownloadQueue) {
	t.Helper()
	bus := events.NewBus()
	playQueue := queue.NewPlayQueue(bus)
	downloadQueue := queue.NewDownloadQueue(bus)

	w := New(playQueue, downloadQueue, fetcher, catalog)
	done := make(chan struct{})
	go func() {
		w.Run()
		close(done)
	}()
	t.Cleanup(func() {
		w.Shutdown()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Error("worker did not stop")
		}
	})
	return w, playQueue, downloadQueue
}

func TestWorkerHandlesIDJob(t *testing.T) {
	fetcher := &stubFetcher{}
	catalog := newStubCatalog()
	_, playQueue, downloadQueue := startWorker(t, fetcher, catalog)

	job, err := models.NewDownloadJob("YT___abc", "", &models.Metadata{Title: "override"}, nil, false, true)
	require.NoError(t, err)
	downloadQueue.Push(job)

	assert.Equal(t, "YT___abc", catalog.waitForCommit(t))
	assert.Equal(t, []string{"YT___abc"}, fetcher.byID)
	assert.Eventually(t, func() bool {
		return playQueue.Contains("YT___abc")
	}, time.Second, 10*time.Millisecond, "queue_last jobs land at the back of the play queue")
}

func TestWorkerHandlesQueryJob(t *testing.T) {
	fetcher := &stubFetcher{}
	catalog := newStubCatalog()
	_, playQueue, downloadQueue := startWorker(t, fetcher, catalog)

	job, err := models.NewDownloadJob("", "never gonna", nil, nil, true, false)
	require.NoError(t, err)
	downloadQueue.Push(job)

	assert.Equal(t, "YT___resolved", catalog.waitForCommit(t))
	assert.Equal(t, []string{"never gonna"}, fetcher.byQuery)
	assert.Eventually(t, func() bool {
		return playQueue.Contains("YT___resolved")
	}, time.Second, 10*time.Millisecond)
}

func TestWorkerAppliesPlaylistUpdates(t *testing.T) {
	fetcher := &stubFetcher{}
	catalog := newStubCatalog()
	_, _, downloadQueue := startWorker(t, fetcher, catalog)

	checked := true
	updates := []models.PlaylistUpdate{{PlaylistID: 7, Checked: &checked}}
	job, err := models.NewDownloadJob("YT___abc", "", nil, updates, false, false)
	require.NoError(t, err)
	downloadQueue.Push(job)

	catalog.waitForCommit(t)
	assert.Eventually(t, func() bool {
		catalog.mu.Lock()
		defer catalog.mu.Unlock()
		return len(catalog.playlists["YT___abc"]) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestWorkerSurvivesFailedJob(t *testing.T) {
	fetcher := &stubFetcher{failWith: errors.New("extractor broke")}
	catalog := newStubCatalog()
	_, _, downloadQueue := startWorker(t, fetcher, catalog)

	bad, err := models.NewDownloadJob("YT___bad", "", nil, nil, false, false)
	require.NoError(t, err)
	downloadQueue.Push(bad)

	// Let the failing job pass through, then verify the loop still works.
	time.Sleep(50 * time.Millisecond)
	fetcher.mu.Lock()
	fetcher.failWith = nil
	fetcher.mu.Unlock()

	good, err := models.NewDownloadJob("YT___good", "", nil, nil, false, false)
	require.NoError(t, err)
	downloadQueue.Push(good)

	assert.Equal(t, "YT___good", catalog.waitForCommit(t))
}

func TestWorkerSkipsSentinelJobs(t *testing.T) {
	fetcher := &stubFetcher{}
	catalog := newStubCatalog()
	_, _, downloadQueue := startWorker(t, fetcher, catalog)

	downloadQueue.PushSentinel()
	job, err := models.NewDownloadJob("YT___after", "", nil, nil, false, false)
	require.NoError(t, err)
	downloadQueue.Push(job)

	assert.Equal(t, "YT___after", catalog.waitForCommit(t))
	catalog.mu.Lock()
	defer catalog.mu.Unlock()
	assert.Equal(t, []string{"YT___after"}, catalog.registered)
}
