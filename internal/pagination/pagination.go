package pagination

// Page is one window over an ordered collection. Numbers are 1-based.
// An empty collection still has exactly one (empty) page, and requests
// beyond the last page clamp to it instead of erroring.
type Page[T any] struct {
	Items       []T  `json:"items"`
	Number      int  `json:"page"`
	Size        int  `json:"page_size"`
	TotalItems  int  `json:"total_items"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

func New[T any](items []T, number, size, totalItems int) Page[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := TotalPages(totalItems, size)
	number = Clamp(number, totalPages)
	return Page[T]{
		Items:       items,
		Number:      number,
		Size:        size,
		TotalItems:  totalItems,
		TotalPages:  totalPages,
		HasNext:     number < totalPages,
		HasPrevious: number > 1,
	}
}

// Empty is the page returned for collections that do not exist.
func Empty[T any](size int) Page[T] {
	return New[T](nil, 1, size, 0)
}

func TotalPages(totalItems, size int) int {
	if size < 1 {
		return 1
	}
	n := (totalItems + size - 1) / size
	if n < 1 {
		n = 1
	}
	return n
}

// Clamp snaps an out-of-range page number to the nearest valid one.
func Clamp(number, totalPages int) int {
	if number < 1 {
		return 1
	}
	if number > totalPages {
		return totalPages
	}
	return number
}

// Offset converts a clamped page number to a SQL offset.
func Offset(number, size int) int {
	if number < 1 {
		number = 1
	}
	return (number - 1) * size
}
