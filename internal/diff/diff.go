// Package diff compares two renderings of a text using the sergi/go-diff
// library. It backs document verification, where the corrected text a
// document claims is compared with the text its corrections actually produce.
package diff

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Op is the kind of a change.
type Op int

const (
	OpEqual  Op = iota // Text present in both
	OpInsert           // Text only in the actual text
	OpDelete           // Text only in the expected text
)

func (o Op) String() string {
	switch o {
	case OpInsert:
		return "insert"
	case OpDelete:
		return "delete"
	default:
		return "equal"
	}
}

// Change is one run of equal, inserted or deleted text.
type Change struct {
	Op   Op
	Text string
}

// TextDiff is the result of comparing an expected text with an actual one.
type TextDiff struct {
	ExpectedLabel string
	ActualLabel   string
	Changes       []Change
	Inserted      int // runes only in actual
	Deleted       int // runes only in expected
}

// Identical reports whether the two texts were equal.
func (d *TextDiff) Identical() bool {
	return d.Inserted == 0 && d.Deleted == 0
}

// Inline renders the changes in a single line, deletions as [-text-] and
// insertions as {+text+}.
func (d *TextDiff) Inline() string {
	var b strings.Builder
	for _, c := range d.Changes {
		switch c.Op {
		case OpDelete:
			b.WriteString("[-")
			b.WriteString(c.Text)
			b.WriteString("-]")
		case OpInsert:
			b.WriteString("{+")
			b.WriteString(c.Text)
			b.WriteString("+}")
		default:
			b.WriteString(c.Text)
		}
	}
	return b.String()
}

// DefaultCacheSize is the number of results an engine keeps by default.
const DefaultCacheSize = 256

// Engine computes diffs and caches results for repeated input pairs. The
// cache holds at most a fixed number of results and evicts the oldest first.
type Engine struct {
	dmp *diffmatchpatch.DiffMatchPatch

	mu    sync.Mutex
	limit int
	cache map[cacheKey]*TextDiff
	order []cacheKey
}

type cacheKey struct {
	expected uint64
	actual   uint64
}

// NewEngine creates a diff engine with the timeout disabled so results are
// exact.
func NewEngine() *Engine {
	return NewEngineWithCacheSize(DefaultCacheSize)
}

// NewEngineWithCacheSize creates an engine caching at most size results.
// A size of zero or less disables caching.
func NewEngineWithCacheSize(size int) *Engine {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0
	return &Engine{dmp: dmp, limit: size, cache: make(map[cacheKey]*TextDiff)}
}

// DefaultEngine is shared by Compare.
var DefaultEngine = NewEngine()

// Compare diffs expected against actual with the default engine.
func Compare(expectedLabel, actualLabel, expected, actual string) *TextDiff {
	return DefaultEngine.Compare(expectedLabel, actualLabel, expected, actual)
}

// Compare diffs expected against actual. Results are cached by content; the
// labels of a cached result are replaced with the ones given.
func (e *Engine) Compare(expectedLabel, actualLabel, expected, actual string) *TextDiff {
	key := cacheKey{xxhash.Sum64String(expected), xxhash.Sum64String(actual)}
	e.mu.Lock()
	cached, ok := e.cache[key]
	e.mu.Unlock()
	if ok {
		result := *cached
		result.ExpectedLabel = expectedLabel
		result.ActualLabel = actualLabel
		return &result
	}

	d := &TextDiff{
		ExpectedLabel: expectedLabel,
		ActualLabel:   actualLabel,
		Changes:       e.WordChanges(expected, actual),
	}
	for _, c := range d.Changes {
		switch c.Op {
		case OpInsert:
			d.Inserted += utf8.RuneCountInString(c.Text)
		case OpDelete:
			d.Deleted += utf8.RuneCountInString(c.Text)
		}
	}

	e.store(key, d)
	return d
}

func (e *Engine) store(key cacheKey, d *TextDiff) {
	if e.limit <= 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.cache[key]; ok {
		return
	}
	for len(e.order) >= e.limit {
		delete(e.cache, e.order[0])
		e.order = e.order[1:]
	}
	e.cache[key] = d
	e.order = append(e.order, key)
}

// CacheLen returns the number of cached results.
func (e *Engine) CacheLen() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.cache)
}

// WordChanges computes a character diff between a and b and cleans it up
// semantically so changes align with whole words where possible.
func (e *Engine) WordChanges(a, b string) []Change {
	diffs := e.dmp.DiffMain(a, b, false)
	diffs = e.dmp.DiffCleanupSemantic(diffs)

	changes := make([]Change, 0, len(diffs))
	for _, d := range diffs {
		if d.Text == "" {
			continue
		}
		var op Op
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			op = OpInsert
		case diffmatchpatch.DiffDelete:
			op = OpDelete
		default:
			op = OpEqual
		}
		changes = append(changes, Change{Op: op, Text: d.Text})
	}
	return changes
}

// ClearCache drops all cached results.
func (e *Engine) ClearCache() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache = make(map[cacheKey]*TextDiff)
	e.order = nil
}
