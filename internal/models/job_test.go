package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDownloadJobValidation(t *testing.T) {
	_, err := NewDownloadJob("", "", nil, nil, false, false)
	assert.ErrorIs(t, err, ErrBadJob)

	job, err := NewDownloadJob("YT___abc", "", nil, nil, false, false)
	require.NoError(t, err)
	assert.Equal(t, "id", job.Type())
	assert.Equal(t, "YT___abc", job.Identifier())
	assert.NotEmpty(t, job.JobID)

	job, err = NewDownloadJob("", "some query", nil, nil, false, false)
	require.NoError(t, err)
	assert.Equal(t, "query", job.Type())
	assert.Equal(t, "some query", job.Identifier())
}

func TestNewDownloadJobIDWinsOverQuery(t *testing.T) {
	job, err := NewDownloadJob("YT___abc", "also a query", nil, nil, false, false)
	require.NoError(t, err)
	assert.Equal(t, "id", job.Type())
	assert.Empty(t, job.Query)
}

func TestSentinelJob(t *testing.T) {
	job := SentinelJob()
	assert.Equal(t, "unknown", job.Type())
	assert.Empty(t, job.Identifier())
}

func TestMetadataApply(t *testing.T) {
	track := Track{ID: "x", Title: "fetched title", Artist: "fetched artist"}

	var nilMeta *Metadata
	nilMeta.Apply(&track)
	assert.Equal(t, "fetched title", track.Title)

	(&Metadata{Title: "override"}).Apply(&track)
	assert.Equal(t, "override", track.Title)
	assert.Equal(t, "fetched artist", track.Artist)

	(&Metadata{Artist: "other"}).Apply(&track)
	assert.Equal(t, "override", track.Title)
	assert.Equal(t, "other", track.Artist)
}
