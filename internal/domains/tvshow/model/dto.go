package model

import (
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"tvshow-catalog/pkg/pagination"
)

// DateLayout is the wire format of premiere dates
const DateLayout = "2006-01-02"

const (
	MaxNameLength      = 255
	MaxGenreNameLength = 100
)

// ShowView is the API representation of a show.
//
// On update a nil Genres (field absent or null) leaves the links untouched,
// while an empty list removes every link.
type ShowView struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	PremieredOn string   `json:"premiered"`
	Genres      []string `json:"genres"`
}

func (v ShowView) ValidateForCreate() error {
	err := validation.ValidateStruct(&v,
		validation.Field(&v.Name, validation.Required, validation.Length(1, MaxNameLength)),
		validation.Field(&v.Genres, validation.Each(validation.Length(0, MaxGenreNameLength))),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return nil
}

func (v ShowView) ValidateForUpdate() error {
	err := validation.ValidateStruct(&v,
		validation.Field(&v.Name, validation.Length(0, MaxNameLength)),
		validation.Field(&v.Genres, validation.Each(validation.Length(0, MaxGenreNameLength))),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return nil
}

// ToView maps a show with its loaded genre links
func ToView(s Show) ShowView {
	view := ShowView{
		ID:     s.ID,
		Name:   s.Name,
		Genres: s.GenreNames(),
	}
	if s.HasPremiereDate() {
		view.PremieredOn = s.PremieredOn.Format(DateLayout)
	}
	return view
}

func ToViews(shows []Show) []ShowView {
	views := make([]ShowView, 0, len(shows))
	for _, s := range shows {
		views = append(views, ToView(s))
	}
	return views
}

// FromView builds a new show from its view. The view id is ignored,
// ids are assigned by the store.
func FromView(v ShowView) (*Show, error) {
	premiered, err := ParsePremiereDate(v.PremieredOn)
	if err != nil {
		return nil, err
	}

	return &Show{
		Name:            strings.TrimSpace(v.Name),
		PremieredOn:     premiered,
		ManuallyCreated: true,
	}, nil
}

// ApplyToEntity copies the fields present in the view onto show.
// A blank name or date keeps the stored value.
func (v ShowView) ApplyToEntity(show *Show) error {
	if name := strings.TrimSpace(v.Name); name != "" {
		show.Name = name
	}

	if strings.TrimSpace(v.PremieredOn) != "" {
		premiered, err := ParsePremiereDate(v.PremieredOn)
		if err != nil {
			return err
		}
		show.PremieredOn = premiered
	}

	return nil
}

// ParsePremiereDate accepts yyyy-MM-dd or RFC 3339. Blank input is the zero time.
func ParsePremiereDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}

	if t, err := time.Parse(DateLayout, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidPremiereDate, raw)
}

// NormalizeGenreNames trims names, drops blanks and removes duplicates
// (case-sensitive), keeping first-seen order.
func NormalizeGenreNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}

	return out
}

// ShowFilter narrows a show query. Zero values mean "no constraint".
type ShowFilter struct {
	Name          string
	ExactName     bool
	PremieredFrom time.Time
	PremieredTo   time.Time
	OriginID      *int64
	IndexRange    *pagination.IndexRange
	Limit         int
}

// A query without an explicit limit returns at most DefaultQueryLimit rows
const (
	DefaultQueryLimit = 100
	MaxQueryLimit     = 1000
)

func (f ShowFilter) Validate() error {
	if !f.PremieredFrom.IsZero() && !f.PremieredTo.IsZero() && f.PremieredFrom.After(f.PremieredTo) {
		return fmt.Errorf("%w: premiered_from must be before premiered_to", ErrInvalidArgument)
	}
	if f.Limit < 0 || f.Limit > MaxQueryLimit {
		return fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidArgument, MaxQueryLimit)
	}
	return nil
}
