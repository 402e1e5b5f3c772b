package tvsync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tvshow-catalog/internal/infrastructure/tvmaze"
)

type fakeReader struct {
	latest    int64
	latestErr error
	existing  map[ShowKey]struct{}
}

func (f *fakeReader) LatestSyncedOriginID(context.Context) (int64, error) {
	return f.latest, f.latestErr
}

func (f *fakeReader) ExistingShows(context.Context, []string) (map[ShowKey]struct{}, error) {
	if f.existing == nil {
		return map[ShowKey]struct{}{}, nil
	}
	return f.existing, nil
}

type fakeSource struct {
	shows     []tvmaze.Show
	startPage int
	calls     int
}

func (f *fakeSource) FetchShows(_ context.Context, startPage int) ([]tvmaze.Show, error) {
	f.calls++
	f.startPage = startPage
	return f.shows, nil
}

type fakeWriter struct {
	latest int64
	shows  []PreparedShow
	err    error
	calls  int
}

func (f *fakeWriter) Write(_ context.Context, latest int64, shows []PreparedShow) (WriteResult, error) {
	f.calls++
	f.latest = latest
	f.shows = shows
	if f.err != nil {
		return WriteResult{}, f.err
	}
	var links int64
	for _, s := range shows {
		links += int64(len(s.Genres))
	}
	return WriteResult{ShowsAdded: int64(len(shows)), LinksAdded: links}, nil
}

type fakePurger struct{ calls int }

func (f *fakePurger) Purge(context.Context) error {
	f.calls++
	return nil
}

var earliest = time.Date(2014, 1, 1, 0, 0, 0, 0, time.UTC)

func TestStartPage(t *testing.T) {
	assert.Equal(t, 0, StartPage(0))
	assert.Equal(t, 0, StartPage(125))
	assert.Equal(t, 2, StartPage(375))
	assert.Equal(t, 4, StartPage(1000))
	assert.Equal(t, 4, StartPage(1100))
}

func TestSync_WritesFilteredShowsOrderedByName(t *testing.T) {
	reader := &fakeReader{
		latest:   1000,
		existing: map[ShowKey]struct{}{{Name: "Known", Premiered: "2015-05-05"}: {}},
	}
	source := &fakeSource{shows: []tvmaze.Show{
		{ID: 1001, Name: "Zeta", Premiered: "2016-01-01", Genres: []string{"Drama", "Drama"}},
		{ID: 1002, Name: "Old", Premiered: "1999-01-01"},
		{ID: 1003, Name: "NoDate", Premiered: ""},
		{ID: 1004, Name: "Known", Premiered: "2015-05-05"},
		{ID: 1005, Name: "Alpha", Premiered: "2014-01-01", Genres: []string{"Comedy"}},
		{ID: 1005, Name: "Alpha", Premiered: "2014-01-01", Genres: []string{"Comedy"}},
	}}
	writer := &fakeWriter{}
	purger := &fakePurger{}

	m := NewManager(reader, source, writer, purger, Filter{EarliestPremiere: earliest})
	result, err := m.Sync(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 4, source.startPage)
	assert.Equal(t, int64(1000), writer.latest)
	require.Len(t, writer.shows, 2)
	assert.Equal(t, "Alpha", writer.shows[0].Name)
	assert.Equal(t, int64(1005), writer.shows[0].OriginID)
	assert.Equal(t, "Zeta", writer.shows[1].Name)
	assert.Equal(t, []string{"Drama"}, writer.shows[1].Genres)
	assert.Equal(t, Result{
		LatestOriginID: 1000,
		StartPage:      4,
		Fetched:        6,
		Candidates:     2,
		ShowsAdded:     2,
		LinksAdded:     2,
	}, result)
	assert.Equal(t, 1, purger.calls)
}

func TestSync_ReaderFailureAborts(t *testing.T) {
	source := &fakeSource{}
	writer := &fakeWriter{}
	m := NewManager(&fakeReader{latestErr: errors.New("db down")}, source, writer, &fakePurger{}, Filter{})

	_, err := m.Sync(context.Background())

	assert.Error(t, err)
	assert.Zero(t, source.calls)
	assert.Zero(t, writer.calls)
}

func TestSync_NothingFetched(t *testing.T) {
	writer := &fakeWriter{}
	purger := &fakePurger{}
	m := NewManager(&fakeReader{}, &fakeSource{}, writer, purger, Filter{EarliestPremiere: earliest})

	result, err := m.Sync(context.Background())

	require.NoError(t, err)
	assert.Zero(t, result.Fetched)
	assert.Zero(t, writer.calls)
	assert.Zero(t, purger.calls)
}

func TestSync_WriteFailureDoesNotPurge(t *testing.T) {
	writer := &fakeWriter{err: ErrSyncStateMismatch}
	purger := &fakePurger{}
	source := &fakeSource{shows: []tvmaze.Show{{ID: 1, Name: "A", Premiered: "2020-01-01"}}}
	m := NewManager(&fakeReader{latest: 7}, source, writer, purger, Filter{EarliestPremiere: earliest})

	_, err := m.Sync(context.Background())

	assert.ErrorIs(t, err, ErrSyncStateMismatch)
	assert.Zero(t, purger.calls)
}

func TestFilter_ByPremiere(t *testing.T) {
	f := Filter{EarliestPremiere: earliest}
	kept := f.ByPremiere([]tvmaze.Show{
		{ID: 1, Premiered: "2014-01-01"},
		{ID: 2, Premiered: "2013-12-31"},
		{ID: 3, Premiered: "garbage"},
		{ID: 4, Premiered: " "},
	})

	require.Len(t, kept, 1)
	assert.Equal(t, int64(1), kept[0].ID)
}

func TestKeyOf_NormalizesDate(t *testing.T) {
	assert.Equal(t, ShowKey{Name: "Lost", Premiered: "2004-09-22"}, KeyOf(tvmaze.Show{Name: " Lost", Premiered: "2004-09-22T00:00:00Z"}))
}
