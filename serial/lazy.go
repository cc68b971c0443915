package serial

import (
	"iter"
)

// Cursor serializes values on demand, one per Next call. It is single-pass:
// once exhausted, failed or stopped it yields nothing further.
type Cursor struct {
	next func() (Map, error, bool)
	stop func()

	cur  Map
	err  error
	done bool
}

// SerializeLazy returns a cursor over items serialized in mode. Nothing is
// serialized until the cursor is advanced. The first failure ends the
// cursor and is reported by Err.
//
// The cursor holds the producing iterator open until it is exhausted, fails
// or is stopped. Callers that may abandon it early must call Stop, typically
// with defer cur.Stop().
func SerializeLazy[T any](r *Registry, items iter.Seq[T], mode Mode, kw Kwargs) *Cursor {
	seq := func(yield func(Map, error) bool) {
		for item := range items {
			m, err := r.One(item, mode, kw)
			if !yield(m, err) || err != nil {
				return
			}
		}
	}
	next, stop := iter.Pull2(seq)
	return &Cursor{next: next, stop: stop}
}

// Next advances to the next serialized value.
func (c *Cursor) Next() bool {
	if c.done {
		return false
	}
	m, err, ok := c.next()
	if !ok {
		c.finish()
		return false
	}
	if err != nil {
		c.err = err
		c.finish()
		return false
	}
	c.cur = m
	return true
}

// Value returns the value produced by the last successful Next.
func (c *Cursor) Value() Map { return c.cur }

// Err returns the failure that ended the cursor, if any.
func (c *Cursor) Err() error { return c.err }

// Stop releases the cursor. Later calls to Next return false.
func (c *Cursor) Stop() { c.finish() }

// All ranges over the remaining values. A failure ends the sequence with a
// final (nil, err) pair.
func (c *Cursor) All() iter.Seq2[Map, error] {
	return func(yield func(Map, error) bool) {
		for c.Next() {
			if !yield(c.cur, nil) {
				c.Stop()
				return
			}
		}
		if c.err != nil {
			yield(nil, c.err)
		}
	}
}

func (c *Cursor) finish() {
	if c.done {
		return
	}
	c.done = true
	c.cur = nil
	c.stop()
}
