package gallery

import "sync/atomic"

// Generation hands out tokens that go stale when the owning view is torn down.
type Generation struct {
	n atomic.Uint64
}

// Token captures the current generation.
func (g *Generation) Token() Token {
	return Token{g: g, at: g.n.Load()}
}

// Invalidate makes every outstanding token stale.
func (g *Generation) Invalidate() {
	g.n.Add(1)
}

// Token is checked by async work before it applies its result.
type Token struct {
	g  *Generation
	at uint64
}

// Valid reports whether the view that issued the token is still the same one.
func (t Token) Valid() bool {
	return t.g != nil && t.g.n.Load() == t.at
}
