// Package flyweight interns small, highly-repetitive strings (tickers,
// owner usernames) so that many Order records can share one backing string
// instead of holding independent copies. Grounded on the original C++
// source's flyweight string pool (original_source/include/util/flyweightstring.h,
// .cpp): a get-or-insert-by-value pool with no refcounting — entries live
// for the pool's lifetime, exactly as the original's comment-free design
// implies ("process-wide... used by Order metadata").
package flyweight

import "sync"

// Pool interns strings. The zero value is not usable; construct with New.
// Process-wide and shared across book instances is the expected usage
// (spec §5: "the string-flyweight pool are process-wide and shared across
// threads; they use a single mutex per pool"), but unlike the C++ source's
// singleton, a Pool here is explicitly constructed and passed around —
// see spec §9's guidance against hidden global state.
type Pool struct {
	mu      sync.Mutex
	strings map[string]string
}

// New constructs an empty interning pool.
func New() *Pool {
	return &Pool{strings: make(map[string]string)}
}

// Intern returns the pool's canonical copy of s, inserting s if this is
// the first time it has been seen.
func (p *Pool) Intern(s string) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if canon, ok := p.strings[s]; ok {
		return canon
	}
	p.strings[s] = s
	return s
}

// Size reports the number of distinct interned strings, for observability.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.strings)
}
