package pagination

// Indexable is implemented by persisted records that carry a dense, 1-based
// index position assigned by the store at query time.
type Indexable interface {
	GetIndexPosition() int64
}

// IndexRange is an inclusive range of index positions.
type IndexRange struct {
	Start int64
	End   int64
}

// Contains reports whether position falls inside the range.
func (r IndexRange) Contains(position int64) bool {
	return position >= r.Start && position <= r.End
}

// RangeForPage returns the index positions covered by pageNumber:
// [(pageNumber-1)*pageSize + 1, pageNumber*pageSize].
//
// RangeForPage and PageNumberFor must stay inverse of each other, otherwise
// invalidation targets the wrong page.
func RangeForPage(pageNumber, pageSize int) IndexRange {
	start := int64(pageNumber-1)*int64(pageSize) + 1
	return IndexRange{
		Start: start,
		End:   start + int64(pageSize) - 1,
	}
}

// PageNumberFor returns the page containing indexPosition, i.e.
// ceil(indexPosition / pageSize). Positions below 1 have no page and yield 0.
func PageNumberFor(indexPosition int64, pageSize int) int {
	if indexPosition < 1 || pageSize < 1 {
		return 0
	}
	size := int64(pageSize)
	return int((indexPosition + size - 1) / size)
}

// Page is an immutable snapshot of the values for one page number.
// Values must not be modified after construction; cached pages are shared.
type Page[T any] struct {
	Values     []T `json:"values"`
	PageNumber int `json:"pageNumber"`
	Count      int `json:"count"`
}

// NewPage builds a page, copying values so later changes to the caller's
// slice cannot leak into the cache.
func NewPage[T any](values []T, pageNumber int) *Page[T] {
	copied := make([]T, len(values))
	copy(copied, values)

	return &Page[T]{
		Values:     copied,
		PageNumber: pageNumber,
		Count:      len(copied),
	}
}
