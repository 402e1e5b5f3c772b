package model

import "time"

// Show is a TV show row. IndexPosition is not stored: it is the 1-based rank
// of the show when ordered by premiere date (most recent first, unknown dates
// last, ties by id) and is recomputed on every read.
type Show struct {
	ID              int64
	Name            string
	PremieredOn     time.Time // zero when unknown
	OriginID        *int64    // id in the upstream catalog, nil for shows created through the API
	ManuallyCreated bool
	IndexPosition   int64
	Genres          []ShowGenre
}

// GetIndexPosition makes Show usable for page invalidation.
func (s Show) GetIndexPosition() int64 {
	return s.IndexPosition
}

// HasPremiereDate reports whether the premiere date is known
func (s Show) HasPremiereDate() bool {
	return !s.PremieredOn.IsZero()
}

// GenreNames returns the names of the loaded genre links, in link order.
func (s Show) GenreNames() []string {
	names := make([]string, 0, len(s.Genres))
	for _, link := range s.Genres {
		if link.Genre != nil {
			names = append(names, link.Genre.Name)
		}
	}
	return names
}

type Genre struct {
	ID   int64
	Name string
}

// ShowGenre links a show to a genre. (ShowID, GenreID) is unique.
type ShowGenre struct {
	ShowID  int64
	GenreID int64
	Genre   *Genre
}
