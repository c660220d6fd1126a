// Package strpool stores strings in a span store, optionally transcoded with
// a golang.org/x/text encoding so that, for example, Latin-1 text is kept in
// one byte per character.
//
// The pool does not deduplicate: every Put writes a new record and returns
// its address. Keeping addresses, and mapping keys to them, is the caller's
// job.
package strpool

import (
	"fmt"

	"golang.org/x/text/encoding"

	"github.com/joshuapare/spankit/store"
)

// Pool encodes strings on Put and decodes them on Get.
//
// NOT thread-safe; it shares the single-writer contract of the Store.
type Pool struct {
	st  *store.Store
	enc encoding.Encoding
}

// New returns a pool writing to st. A nil enc stores strings as UTF-8 bytes.
func New(st *store.Store, enc encoding.Encoding) *Pool {
	if enc == nil {
		enc = encoding.Nop
	}
	return &Pool{st: st, enc: enc}
}

// Put encodes s and inserts it. Empty strings are rejected with
// store.ErrEmptyPayload since the store has no zero-length records.
func (p *Pool) Put(s string) (store.Address, error) {
	if s == "" {
		return store.Address{}, store.ErrEmptyPayload
	}
	b, err := p.enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return store.Address{}, fmt.Errorf("strpool: encode %q: %w", s, err)
	}
	v, err := p.st.Insert(b)
	if err != nil {
		return store.Address{}, err
	}
	return v.Address(), nil
}

// Get decodes the string stored at addr.
func (p *Pool) Get(addr store.Address) (string, error) {
	b, err := p.st.Bytes(addr)
	if err != nil {
		return "", err
	}
	out, err := p.enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("strpool: decode %s: %w", addr, err)
	}
	return string(out), nil
}

// Delete frees the string at addr for reuse.
func (p *Pool) Delete(addr store.Address) error {
	return p.st.Remove(addr)
}
