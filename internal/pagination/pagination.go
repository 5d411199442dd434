// Package pagination implements the page-accumulation state machine behind
// every "load more" list in the application. The machine itself is pure; the
// Session type in this package owns one machine instance and drives fetches.
package pagination

// State tracks one paginated list. Pages are 1-based; CurrentPage 0 means
// nothing has been loaded yet. Data accumulates in page order within one
// session and is only ever mutated through ApplyPage.
type State[T any] struct {
	Data          []T
	CurrentPage   int
	PageSize      int
	IsLoadingMore bool
	HasMorePages  bool
}

// Initial returns an empty state for the given page size.
func Initial[T any](pageSize int) State[T] {
	return State[T]{
		PageSize:     pageSize,
		HasMorePages: true,
	}
}

// RequestNextPage reports whether a fetch should be issued and for which
// page. It refuses while a load is in flight or the list is exhausted, which
// is what prevents duplicate and overrunning fetches. The caller must apply
// BeginLoad before issuing the fetch it was granted.
func (s State[T]) RequestNextPage() (shouldFetch bool, nextPage int) {
	if s.IsLoadingMore || !s.HasMorePages {
		return false, 0
	}
	return true, s.CurrentPage + 1
}

// BeginLoad marks a fetch as in flight.
func (s State[T]) BeginLoad() State[T] {
	s.IsLoadingMore = true
	return s
}

// ApplyPage folds a fetched page into the state. With reset it replaces the
// accumulated data entirely; otherwise the page is appended in order.
// HasMorePages is recomputed from the fetched page: a full page means there
// may be more, anything shorter was the last page.
func (s State[T]) ApplyPage(page int, reset bool, items []T) State[T] {
	if reset {
		s.Data = append([]T(nil), items...)
	} else {
		// Full-slice expression so appends never alias a previous snapshot.
		s.Data = append(s.Data[:len(s.Data):len(s.Data)], items...)
	}
	s.CurrentPage = page
	s.IsLoadingMore = false
	s.HasMorePages = len(items) == s.PageSize
	return s
}

// FailLoadMore degrades the state after a failed "load more": already-loaded
// data stays, the in-flight flag clears, and load-more capability is disabled
// rather than retried automatically.
func (s State[T]) FailLoadMore() State[T] {
	s.IsLoadingMore = false
	s.HasMorePages = false
	return s
}

// IsEmpty reports whether nothing has been accumulated yet.
func (s State[T]) IsEmpty() bool {
	return len(s.Data) == 0
}
