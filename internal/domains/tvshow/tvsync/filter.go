package tvsync

import (
	"sort"
	"strings"
	"time"

	"tvshow-catalog/internal/domains/tvshow/model"
	"tvshow-catalog/internal/infrastructure/tvmaze"
)

// Filter decides which upstream shows are worth importing
type Filter struct {
	EarliestPremiere time.Time
}

// ByPremiere keeps shows premiered on or after EarliestPremiere.
// Shows without a parseable premiere date are dropped.
func (f Filter) ByPremiere(shows []tvmaze.Show) []tvmaze.Show {
	kept := make([]tvmaze.Show, 0, len(shows))
	for _, s := range shows {
		if strings.TrimSpace(s.Premiered) == "" {
			continue
		}
		premiered, err := model.ParsePremiereDate(s.Premiered)
		if err != nil || premiered.Before(f.EarliestPremiere) {
			continue
		}
		kept = append(kept, s)
	}
	return kept
}

// WithoutExisting drops shows whose (name, premiere date) is already stored,
// and repeated origin ids within the batch.
func (f Filter) WithoutExisting(shows []tvmaze.Show, existing map[ShowKey]struct{}) []tvmaze.Show {
	seen := make(map[int64]struct{}, len(shows))
	kept := make([]tvmaze.Show, 0, len(shows))

	for _, s := range shows {
		if _, dup := seen[s.ID]; dup {
			continue
		}
		seen[s.ID] = struct{}{}

		if _, ok := existing[KeyOf(s)]; ok {
			continue
		}
		kept = append(kept, s)
	}
	return kept
}

// KeyOf normalizes the premiere date so keys compare equal with stored rows
func KeyOf(s tvmaze.Show) ShowKey {
	key := ShowKey{Name: strings.TrimSpace(s.Name), Premiered: strings.TrimSpace(s.Premiered)}
	if t, err := model.ParsePremiereDate(s.Premiered); err == nil && !t.IsZero() {
		key.Premiered = t.Format(model.DateLayout)
	}
	return key
}

// Prepare maps filtered shows for the writer, ordered by name.
func Prepare(shows []tvmaze.Show) []PreparedShow {
	prepared := make([]PreparedShow, 0, len(shows))
	for _, s := range shows {
		premiered, err := model.ParsePremiereDate(s.Premiered)
		if err != nil {
			continue
		}
		prepared = append(prepared, PreparedShow{
			OriginID:    s.ID,
			Name:        strings.TrimSpace(s.Name),
			PremieredOn: premiered,
			Genres:      model.NormalizeGenreNames(s.Genres),
		})
	}

	sort.SliceStable(prepared, func(i, j int) bool {
		return prepared[i].Name < prepared[j].Name
	})

	return prepared
}

func names(shows []tvmaze.Show) []string {
	out := make([]string, 0, len(shows))
	for _, s := range shows {
		out = append(out, strings.TrimSpace(s.Name))
	}
	return out
}
