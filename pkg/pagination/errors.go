package pagination

import "errors"

var (
	ErrInvalidPageNumber = errors.New("page number must be greater than or equal to 1")
	ErrPageOverflow      = errors.New("page factory returned more values than the maximum page size")
	ErrNilFactory        = errors.New("page factory is required")
)
