package view

import (
	"math"
	"slices"
	"sync"

	"achievement-hub/core/models"
)

// MaxPages bounds the materialized window to this many pages.
const MaxPages = 3

// Source provides the games the view is projected from.
type Source interface {
	Games() []models.Game
}

// Viewport describes the scroll state reported by the presentation layer. Extent is the
// scrollable height of the materialized window, in the same unit as Offset and Height.
type Viewport struct {
	Offset float64 `json:"offset"`
	Height float64 `json:"height"`
	Extent float64 `json:"extent"`
}

// Adjustment tells the presentation layer how to compensate its scroll offset after the
// window changed, so the visible content does not jump.
type Adjustment struct {
	Changed     bool    `json:"changed"`
	OffsetDelta float64 `json:"offset_delta"`
}

// Window is the materialized slice of the full sequence.
type Window struct {
	Start int           `json:"start"`
	End   int           `json:"end"`
	Total int           `json:"total"`
	Items []models.Game `json:"items"`
}

// Projector keeps the full filtered and sorted sequence and a bounded window into it.
// Every method keeps 0 <= start <= end <= len(full) and end-start <= MaxPages*PageSize.
type Projector struct {
	source Source

	mu       sync.Mutex
	settings Settings
	full     []models.Game
	start    int
	end      int

	listenerMu sync.RWMutex
	listeners  []func(Window)
}

// NewProjector creates a projector positioned on the first page.
func NewProjector(source Source, settings Settings) *Projector {
	p := &Projector{source: source, settings: settings.normalized()}
	p.full = project(source.Games(), p.settings)
	p.start, p.end = 0, min(p.settings.PageSize, len(p.full))
	return p
}

// Settings returns the current settings.
func (p *Projector) Settings() Settings {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.settings
}

// SetSettings applies new filter and sort settings and moves back to the first page.
func (p *Projector) SetSettings(s Settings) {
	p.mu.Lock()
	p.settings = s.normalized()
	p.full = project(p.source.Games(), p.settings)
	p.start, p.end = 0, min(p.settings.PageSize, len(p.full))
	w := p.windowLocked()
	p.mu.Unlock()

	p.emit(w)
}

// Reset moves the window back to the first page without recomputing.
func (p *Projector) Reset() {
	p.mu.Lock()
	p.start, p.end = 0, min(p.settings.PageSize, len(p.full))
	w := p.windowLocked()
	p.mu.Unlock()

	p.emit(w)
}

// Refresh recomputes the full sequence from the source, keeping the window position
// where possible.
func (p *Projector) Refresh() {
	p.mu.Lock()
	p.full = project(p.source.Games(), p.settings)
	n, page := len(p.full), p.settings.PageSize

	p.end = min(p.end, n)
	p.start = min(p.start, p.end)
	if p.end-p.start < page {
		p.end = min(n, p.start+page)
		p.start = max(0, min(p.start, p.end-page))
	}
	w := p.windowLocked()
	p.mu.Unlock()

	p.emit(w)
}

// Window returns a copy of the materialized window.
func (p *Projector) Window() Window {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.windowLocked()
}

// Bounds returns the window indices into the full sequence.
func (p *Projector) Bounds() (start, end int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.start, p.end
}

// Total returns the length of the full sequence.
func (p *Projector) Total() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.full)
}

// Scroll reacts to a scroll position. Near the bottom the window grows by one page and, if
// it exceeds MaxPages, items scrolled past are trimmed from the top; near the top the
// reverse happens. Item heights are estimated as Extent divided by the window length, and
// only items estimated to lie wholly outside the viewport are ever trimmed.
func (p *Projector) Scroll(vp Viewport) Adjustment {
	p.mu.Lock()

	count := p.end - p.start
	if count == 0 || vp.Extent <= 0 {
		p.mu.Unlock()
		return Adjustment{}
	}

	itemHeight := vp.Extent / float64(count)
	threshold := vp.Height
	if threshold <= 0 {
		threshold = itemHeight
	}
	page := p.settings.PageSize
	limit := MaxPages * page
	n := len(p.full)

	var adj Adjustment
	newStart, newEnd := p.start, p.end

	switch {
	case vp.Offset+vp.Height >= vp.Extent-threshold && p.end < n:
		newEnd = min(n, p.end+page)
		if excess := newEnd - newStart - limit; excess > 0 {
			above := int(math.Floor(vp.Offset / itemHeight))
			trim := max(0, min(excess, above))
			newStart += trim
			if newEnd-newStart > limit {
				newEnd = newStart + limit
			}
			adj.OffsetDelta = -float64(trim) * itemHeight
		}

	case vp.Offset <= threshold && p.start > 0:
		newStart = max(0, p.start-page)
		if excess := newEnd - newStart - limit; excess > 0 {
			visible := int(math.Ceil((vp.Offset + vp.Height) / itemHeight))
			below := max(0, count-visible)
			trim := min(excess, below)
			newEnd -= trim
			if newEnd-newStart > limit {
				newStart = newEnd - limit
			}
		}
		adj.OffsetDelta = float64(p.start-newStart) * itemHeight
	}

	if newStart == p.start && newEnd == p.end {
		p.mu.Unlock()
		return Adjustment{}
	}

	p.start, p.end = newStart, newEnd
	adj.Changed = true
	w := p.windowLocked()
	p.mu.Unlock()

	p.emit(w)
	return adj
}

// Subscribe registers fn to receive the window after every change.
func (p *Projector) Subscribe(fn func(Window)) {
	p.listenerMu.Lock()
	defer p.listenerMu.Unlock()
	p.listeners = append(p.listeners, fn)
}

func (p *Projector) windowLocked() Window {
	return Window{
		Start: p.start,
		End:   p.end,
		Total: len(p.full),
		Items: slices.Clone(p.full[p.start:p.end]),
	}
}

func (p *Projector) emit(w Window) {
	p.listenerMu.RLock()
	listeners := slices.Clone(p.listeners)
	p.listenerMu.RUnlock()

	for _, fn := range listeners {
		fn(w)
	}
}
