package importer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExtractor struct {
	matches bool
	entries []Entry
	err     error
	fetched []string
}

func (e *fakeExtractor) Matches(url string) bool {
	return e.matches
}

func (e *fakeExtractor) Fetch(url string) ([]Entry, error) {
	e.fetched = append(e.fetched, url)
	return e.entries, e.err
}

func TestRegistryPicksFirstMatch(t *testing.T) {
	skipped := &fakeExtractor{matches: false}
	chosen := &fakeExtractor{matches: true, entries: []Entry{{Query: "a by b"}}}
	shadowed := &fakeExtractor{matches: true}

	r := NewRegistry(skipped, chosen, shadowed)
	entries := r.Fetch("https://example.com/playlist/123")

	require.Len(t, entries, 1)
	assert.Equal(t, "a by b", entries[0].Query)
	assert.Empty(t, skipped.fetched)
	assert.Equal(t, []string{"https://example.com/playlist/123"}, chosen.fetched)
	assert.Empty(t, shadowed.fetched)
}

func TestRegistryUnrecognizedURL(t *testing.T) {
	r := NewRegistry(&fakeExtractor{matches: false})
	assert.Empty(t, r.Fetch("https://example.com/whatever"))
}

func TestRegistryExtractionFailure(t *testing.T) {
	r := NewRegistry(&fakeExtractor{matches: true, err: errors.New("page changed")})
	assert.Empty(t, r.Fetch("https://example.com/playlist/123"))
}
