package feed

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/cases"

	"github.com/pkordes/trip-companion/backend/internal/calendar"
	"github.com/pkordes/trip-companion/backend/internal/domain"
)

// Mode selects which trips a feed shows.
type Mode int

const (
	// Browse shows every trip whose day has not passed.
	Browse Mode = iota
	// Created shows every trip the user created, expired ones included.
	Created
	// Joined shows every trip the user joined but did not create, expired ones included.
	Joined
)

func (m Mode) String() string {
	switch m {
	case Browse:
		return "browse"
	case Created:
		return "created"
	case Joined:
		return "joined"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode is the inverse of Mode.String.
func ParseMode(s string) (Mode, bool) {
	for _, m := range []Mode{Browse, Created, Joined} {
		if m.String() == s {
			return m, true
		}
	}
	return Browse, false
}

// Scope is a Mode plus, for the personal modes, the user it belongs to.
type Scope struct {
	Mode   Mode
	UserID string
}

// includes reports whether t belongs in the scope at clock's current time.
func (s Scope) includes(t domain.Trip, clock calendar.Clock) bool {
	switch s.Mode {
	case Created:
		return t.IsCreator(s.UserID)
	case Joined:
		return t.IsParticipant(s.UserID) && !t.IsCreator(s.UserID)
	default:
		return clock.Active(t.Date)
	}
}

// View is one page of a projected feed.
type View struct {
	Items      []domain.Trip `json:"items"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalPages int           `json:"total_pages"`
	TotalItems int           `json:"total_items"`
	HasPrev    bool          `json:"has_prev"`
	HasNext    bool          `json:"has_next"`
	Filter     string        `json:"filter,omitempty"`
}

// Projector derives a filtered, ordered, paginated view from full snapshots
// of the trip table. It is safe for concurrent use.
type Projector struct {
	mu       sync.Mutex
	scope    Scope
	clock    calendar.Clock
	pageSize int

	snapshot []domain.Trip
	filter   string
	matched  []domain.Trip
	page     int
	day      calendar.DayKey // day matched was projected on
}

// NewProjector creates a Projector with an empty snapshot.
// A non-positive pageSize falls back to domain.DefaultPageSize.
func NewProjector(scope Scope, clock calendar.Clock, pageSize int) *Projector {
	if pageSize < 1 {
		pageSize = domain.DefaultPageSize
	}
	return &Projector{scope: scope, clock: clock, pageSize: pageSize, page: 1}
}

// Replace swaps in a new snapshot, recomputes the view from scratch and
// returns to page 1. Use it when the feed is loaded wholesale, e.g. on
// (re)connect; Refresh keeps the reader's place for ordinary updates.
func (p *Projector) Replace(snapshot []domain.Trip) View {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshot = slices.Clone(snapshot)
	p.project()
	p.page = 1
	return p.viewLocked(p.page)
}

// Refresh swaps in a new snapshot and stays on the current page. If the feed
// shrank below it, the view moves to the last page that still exists.
func (p *Projector) Refresh(snapshot []domain.Trip) View {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshot = slices.Clone(snapshot)
	p.project()
	p.clampLocked()
	return p.viewLocked(p.page)
}

// SetFilter changes the search text and returns to page 1.
// The text is matched case-insensitively against title, city and creator name.
func (p *Projector) SetFilter(text string) View {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.filter = strings.TrimSpace(text)
	p.project()
	p.page = 1
	return p.viewLocked(p.page)
}

// GoTo moves to page n. Pages outside 1..TotalPages are ignored and GoTo
// reports false.
func (p *Projector) GoTo(n int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.goToLocked(n)
}

// Next moves one page forward if there is one.
func (p *Projector) Next() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.goToLocked(p.page + 1)
}

// Prev moves one page back if there is one.
func (p *Projector) Prev() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.goToLocked(p.page - 1)
}

func (p *Projector) goToLocked(n int) bool {
	p.expireLocked()
	if n < 1 || n > p.totalPagesLocked() {
		return false
	}
	p.page = n
	return true
}

// View returns the current page.
func (p *Projector) View() View {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.expireLocked()
	return p.viewLocked(p.page)
}

// PageAt returns page n without moving to it. Out-of-range pages come back
// with no items and navigation disabled.
func (p *Projector) PageAt(n int) View {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.expireLocked()
	return p.viewLocked(n)
}

// project rebuilds matched from snapshot, scope and filter.
func (p *Projector) project() {
	fold := cases.Fold()
	needle := fold.String(p.filter)

	p.day = p.clock.Today()
	matched := make([]domain.Trip, 0, len(p.snapshot))
	for _, t := range p.snapshot {
		if !p.scope.includes(t, p.clock) {
			continue
		}
		if needle != "" && !matchesAny(fold, needle, t.Title, t.City, t.CreatorName) {
			continue
		}
		matched = append(matched, t)
	}

	slices.SortStableFunc(matched, func(a, b domain.Trip) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return slices.Compare(a.ID[:], b.ID[:])
	})
	p.matched = matched
}

func matchesAny(fold cases.Caser, needle string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(fold.String(f), needle) {
			return true
		}
	}
	return false
}

// expireLocked re-projects a browse feed once the day it was projected on has
// passed, so trips that expired since then drop out without a new snapshot.
func (p *Projector) expireLocked() {
	if p.scope.Mode != Browse || p.clock.Today() == p.day {
		return
	}
	p.project()
	p.clampLocked()
}

// clampLocked keeps page within 1..TotalPages.
func (p *Projector) clampLocked() {
	if total := p.totalPagesLocked(); p.page > total {
		p.page = max(total, 1)
	}
}

func (p *Projector) totalPagesLocked() int {
	return domain.PageParams{Size: p.pageSize}.TotalPages(len(p.matched))
}

func (p *Projector) viewLocked(n int) View {
	params := domain.PageParams{Page: n, Size: p.pageSize}
	total := p.totalPagesLocked()
	v := View{
		Items:      []domain.Trip{},
		Page:       n,
		PageSize:   p.pageSize,
		TotalPages: total,
		TotalItems: len(p.matched),
		Filter:     p.filter,
	}
	if n < 1 || n > total {
		return v
	}

	end := min(params.Offset()+p.pageSize, len(p.matched))
	v.Items = slices.Clone(p.matched[params.Offset():end])
	v.HasPrev = n > 1
	v.HasNext = n < total
	return v
}
