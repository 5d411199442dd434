package pagination

import (
	"context"
	"sync"
)

// Kind discriminates the list container variants. Exactly one is active.
type Kind string

const (
	KindLoading Kind = "loading"
	KindContent Kind = "content"
	KindError   Kind = "error"
)

// ListState is the view-ready container around one pagination machine.
//
// Error only ever describes a failed *first* page: a failed load-more keeps
// the Content variant with its data intact (see State.FailLoadMore). Retry
// re-issues the identical failed request.
type ListState[T any] struct {
	Kind       Kind
	Pagination State[T]
	Err        error
	Retry      func(ctx context.Context)
}

// FetchFunc loads one page of items. page is 1-based.
type FetchFunc[T any] func(ctx context.Context, page, pageSize int) ([]T, error)

// Session owns a paginated list for the duration of one screen visit. All
// mutation goes through its methods; Snapshot hands out the current state.
type Session[T any] struct {
	mu       sync.Mutex
	fetch    FetchFunc[T]
	pageSize int
	list     ListState[T]
}

// NewSession creates a session that starts in the Loading variant.
func NewSession[T any](pageSize int, fetch FetchFunc[T]) *Session[T] {
	return &Session[T]{
		fetch:    fetch,
		pageSize: pageSize,
		list: ListState[T]{
			Kind:       KindLoading,
			Pagination: Initial[T](pageSize),
		},
	}
}

// Snapshot returns the current list state.
func (s *Session[T]) Snapshot() ListState[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list
}

// Refresh discards accumulated data and reloads the first page. Filter and
// search changes call this so stale pages never mix with new criteria.
func (s *Session[T]) Refresh(ctx context.Context) ListState[T] {
	s.mu.Lock()
	s.list = ListState[T]{
		Kind:       KindLoading,
		Pagination: Initial[T](s.pageSize),
	}
	s.mu.Unlock()

	return s.loadPage(ctx, 1, true)
}

// LoadMore fetches the next page if one is due. It is a no-op while a fetch
// is in flight or after the last page.
func (s *Session[T]) LoadMore(ctx context.Context) ListState[T] {
	s.mu.Lock()
	shouldFetch, nextPage := s.list.Pagination.RequestNextPage()
	if !shouldFetch {
		current := s.list
		s.mu.Unlock()
		return current
	}
	s.list.Pagination = s.list.Pagination.BeginLoad()
	s.mu.Unlock()

	return s.loadPage(ctx, nextPage, false)
}

func (s *Session[T]) loadPage(ctx context.Context, page int, reset bool) ListState[T] {
	items, err := s.fetch(ctx, page, s.pageSize)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		if reset || s.list.Pagination.IsEmpty() {
			// First page failed: full error state with a retry that
			// re-issues the identical request.
			s.list = ListState[T]{
				Kind: KindError,
				Err:  err,
				Retry: func(ctx context.Context) {
					s.Refresh(ctx)
				},
			}
			return s.list
		}
		// Load-more failed: keep what we have, disable further loading.
		s.list.Pagination = s.list.Pagination.FailLoadMore()
		s.list.Kind = KindContent
		return s.list
	}

	s.list = ListState[T]{
		Kind:       KindContent,
		Pagination: s.list.Pagination.ApplyPage(page, reset, items),
	}
	return s.list
}
