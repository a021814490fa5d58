package source

import (
	"errors"
	"fmt"
	"log"
)

var ErrAlreadyInitialized = errors.New("source already initialized")

// Live is the provider object a source manages once initialized.
type Live interface {
	URL() string
	SetURL(url string)
}

// Base owns the uninitialized -> initialized -> uninitialized lifecycle of a
// live provider.
type Base struct {
	live Live
}

// Init creates the live provider with create.
func (b *Base) Init(create func() (Live, error)) error {
	if b.live != nil {
		return ErrAlreadyInitialized
	}
	live, err := create()
	if err != nil {
		return fmt.Errorf("create source: %w", err)
	}
	b.live = live
	log.Printf("Source initialized: %s", live.URL())
	return nil
}

// Deinit releases the live provider. It is a no-op when not initialized.
func (b *Base) Deinit() {
	if b.live == nil {
		return
	}
	log.Printf("Source released: %s", b.live.URL())
	b.live = nil
}

// Live returns the live provider, or nil before Init.
func (b *Base) Live() Live {
	return b.live
}

func (b *Base) Initialized() bool {
	return b.live != nil
}
