package paging

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrExhausted is returned by LoadNext once a fetched page came back
	// empty; no further forward loads are issued until Refresh.
	ErrExhausted = errors.New("pager exhausted")

	// ErrPageFailed is returned by LoadNext while the pager sits on a failed
	// page. The caller must call Retry to re-attempt that page.
	ErrPageFailed = errors.New("page load failed, retry required")

	// ErrNotFailed is returned by Retry when there is nothing to retry.
	ErrNotFailed = errors.New("no failed page to retry")
)

// Source loads one page of elements. Page numbers are 1-based; pageSize is
// always positive. A failed load must return an error, never a partial page.
type Source[V any] interface {
	LoadPage(ctx context.Context, page, pageSize int) ([]V, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc[V any] func(ctx context.Context, page, pageSize int) ([]V, error)

func (f SourceFunc[V]) LoadPage(ctx context.Context, page, pageSize int) ([]V, error) {
	return f(ctx, page, pageSize)
}

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseReady
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type Config struct {
	// PageSize is the number of items requested per page.
	PageSize int
	// InitialLoad, when larger than PageSize, is used for the very first
	// request only. The overlap it causes with later pages is absorbed by
	// the pager's dedupe.
	InitialLoad int
	// StartPage is the resume marker the pager starts from. Zero means 1.
	StartPage int
}

// Snapshot is the externally observable pager state.
type Snapshot struct {
	Phase       Phase
	CurrentPage int
	Exhausted   bool
	Err         error
}

type loadedPage struct {
	page    int
	prevKey *int
	nextKey *int
	count   int
}

// Pager drives a Source across consecutive pages and hands the caller a
// de-duplicated stream of elements. Cursor rules follow the backend's
// pagination contract: prev marker is nil iff the page is 1, next marker is
// nil iff the fetched page was empty. An empty page is treated as permanent
// end-of-stream even when a later page could in theory hold items; tests pin
// this as a known limitation rather than a guarantee.
type Pager[V any] struct {
	mu    sync.Mutex
	src   Source[V]
	cfg   Config
	keyOf func(V) int64

	pages      []loadedPage
	seen       map[int64]struct{}
	current    int
	phase      Phase
	exhausted  bool
	failedPage int
	failedSize int
	lastErr    error
	firstLoad  bool
}

func New[V any](cfg Config, keyOf func(V) int64, src Source[V]) *Pager[V] {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 20
	}
	if cfg.InitialLoad < cfg.PageSize {
		cfg.InitialLoad = cfg.PageSize
	}
	if cfg.StartPage < 1 {
		cfg.StartPage = 1
	}
	return &Pager[V]{
		src:       src,
		cfg:       cfg,
		keyOf:     keyOf,
		seen:      make(map[int64]struct{}),
		current:   cfg.StartPage,
		phase:     PhaseIdle,
		firstLoad: true,
	}
}

// LoadNext fetches the next page and returns its items with already-seen
// elements filtered out. After a failure the same error condition persists
// until Retry is called; after exhaustion only Refresh restarts the stream.
func (p *Pager[V]) LoadNext(ctx context.Context) ([]V, error) {
	p.mu.Lock()
	if p.exhausted {
		p.mu.Unlock()
		return nil, ErrExhausted
	}
	if p.phase == PhaseFailed {
		err := p.lastErr
		p.mu.Unlock()
		return nil, fmt.Errorf("%w: %v", ErrPageFailed, err)
	}

	page := p.current
	size := p.cfg.PageSize
	if p.firstLoad && p.cfg.InitialLoad > size {
		size = p.cfg.InitialLoad
	}
	p.phase = PhaseLoading
	p.mu.Unlock()

	return p.load(ctx, page, size)
}

// Retry re-attempts the page whose load failed, with the page size of the
// original attempt.
func (p *Pager[V]) Retry(ctx context.Context) ([]V, error) {
	p.mu.Lock()
	if p.phase != PhaseFailed {
		p.mu.Unlock()
		return nil, ErrNotFailed
	}
	page := p.failedPage
	size := p.failedSize
	p.phase = PhaseLoading
	p.mu.Unlock()

	return p.load(ctx, page, size)
}

func (p *Pager[V]) load(ctx context.Context, page, size int) ([]V, error) {
	items, err := p.src.LoadPage(ctx, page, size)

	p.mu.Lock()
	defer p.mu.Unlock()

	if err != nil {
		p.phase = PhaseFailed
		p.failedPage = page
		p.failedSize = size
		p.lastErr = err
		return nil, err
	}

	lp := loadedPage{page: page, count: len(items)}
	if page != 1 {
		prev := page - 1
		lp.prevKey = &prev
	}
	if len(items) > 0 {
		next := page + 1
		lp.nextKey = &next
	}
	p.pages = append(p.pages, lp)

	fresh := make([]V, 0, len(items))
	for _, it := range items {
		key := p.keyOf(it)
		if _, dup := p.seen[key]; dup {
			continue
		}
		p.seen[key] = struct{}{}
		fresh = append(fresh, it)
	}

	p.firstLoad = false
	p.phase = PhaseReady
	p.lastErr = nil
	if lp.nextKey == nil {
		p.exhausted = true
	} else {
		p.current = *lp.nextKey
	}

	return fresh, nil
}

// Refresh restarts the stream from the page closest to the caller's scroll
// anchor: the anchor page's prev marker plus one, falling back to its next
// marker minus one, falling back to the configured start page. All loaded
// state, including the dedupe set, is discarded.
func (p *Pager[V]) Refresh(anchorPage int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := p.cfg.StartPage
	if closest := p.closestPage(anchorPage); closest != nil {
		switch {
		case closest.prevKey != nil:
			start = *closest.prevKey + 1
		case closest.nextKey != nil:
			start = *closest.nextKey - 1
		}
	}

	p.pages = nil
	p.seen = make(map[int64]struct{})
	p.current = start
	p.phase = PhaseIdle
	p.exhausted = false
	p.lastErr = nil
	p.firstLoad = true
}

func (p *Pager[V]) closestPage(anchor int) *loadedPage {
	var best *loadedPage
	bestDist := 0
	for i := range p.pages {
		dist := p.pages[i].page - anchor
		if dist < 0 {
			dist = -dist
		}
		if best == nil || dist < bestDist {
			best = &p.pages[i]
			bestDist = dist
		}
	}
	return best
}

// Exhausted reports whether the stream hit its end-of-stream marker.
func (p *Pager[V]) Exhausted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exhausted
}

func (p *Pager[V]) State() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	page := p.current
	if p.phase == PhaseFailed {
		page = p.failedPage
	}
	return Snapshot{
		Phase:       p.phase,
		CurrentPage: page,
		Exhausted:   p.exhausted,
		Err:         p.lastErr,
	}
}
