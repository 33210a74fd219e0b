package totp

// Cache holds the current and next code of one record for the window it was
// last refreshed in. The zero value is uncomputed.
type Cache struct {
	computed bool
	window   uint64
	current  string
	next     string
}

// Refresh brings the cache to window. Moving forward by exactly one window
// reuses the cached next code as the current one and computes only the new
// next code; any other change recomputes both.
func (c *Cache) Refresh(window uint64, code func(window uint64) string) {
	switch {
	case c.computed && window == c.window:
		return
	case c.computed && window == c.window+1:
		c.current = c.next
		c.next = code(window + 1)
	default:
		c.current = code(window)
		c.next = code(window + 1)
	}
	c.computed = true
	c.window = window
}

// Force recomputes both codes for window, used after the secret changed.
func (c *Cache) Force(window uint64, code func(window uint64) string) {
	c.computed = false
	c.Refresh(window, code)
}

// Code returns the next or current code, or Placeholder if never computed.
func (c *Cache) Code(next bool) string {
	if !c.computed {
		return Placeholder
	}
	if next {
		return c.next
	}
	return c.current
}

// Window reports the window of the cached pair.
func (c *Cache) Window() (uint64, bool) {
	return c.window, c.computed
}

// Generator adapts Code for Cache, yielding Placeholder when no code can be
// computed (unknown algorithm).
func (p Params) Generator() func(window uint64) string {
	return func(window uint64) string {
		code, err := p.Code(window)
		if err != nil {
			return Placeholder
		}
		return code
	}
}
