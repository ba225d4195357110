package paginate

// DefaultLimit is the page size used when Options.Limit is not positive
const DefaultLimit = 10

// Options configures pagination
type Options struct {
	// Limit is the maximum number of items per page
	Limit int
}

// Page is one slice of a paginated sequence. Items share the elements of
// the source slice.
type Page[T any] struct {
	Index  int // zero-based page index
	Number int // one-based page number
	Total  int // total number of pages
	Items  []T
	First  int // first page number
	Last   int // last page number
	Prev   int // previous page number, 0 when none
	Next   int // next page number, 0 when none
}

// IsFirst reports whether the page is the first page
func (p Page[T]) IsFirst() bool { return p.Number == p.First }

// IsLast reports whether the page is the last page
func (p Page[T]) IsLast() bool { return p.Number == p.Last }

// Pages splits items into pages. An empty input yields no pages.
func Pages[T any](items []T, opts Options) []Page[T] {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(items) == 0 {
		return nil
	}

	total := (len(items) + limit - 1) / limit
	pages := make([]Page[T], 0, total)

	for i := 0; i < total; i++ {
		start := i * limit
		end := min(start+limit, len(items))

		page := Page[T]{
			Index:  i,
			Number: i + 1,
			Total:  total,
			Items:  items[start:end:end],
			First:  1,
			Last:   total,
		}
		if i > 0 {
			page.Prev = i
		}
		if i < total-1 {
			page.Next = i + 2
		}
		pages = append(pages, page)
	}
	return pages
}
