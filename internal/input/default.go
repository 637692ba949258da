// Package input turns terminal key presses into editor events.
package input

import (
	"fmt"
	"log"

	"github.com/eiannone/keyboard"
)

// Open puts the terminal in raw key mode and returns the buffered key
// channel. close restores the terminal.
func Open(size int) (<-chan keyboard.KeyEvent, func(), error) {
	keys, err := keyboard.GetKeys(size)
	if nil != err {
		return nil, nil, fmt.Errorf("unable to open keyboard: %w", err)
	}
	return keys, func() {
		if err := keyboard.Close(); nil != err {
			log.Println("unable to close keyboard", err)
		}
	}, nil
}

// Drain maps every key already waiting in keys without blocking.
func Drain(keys <-chan keyboard.KeyEvent, m *Mapper, fn func(Event, error)) {
	for i, n := 0, len(keys); i < n; i++ {
		ev, err := m.Map(<-keys)
		if ev.Kind == Ignore && nil == err {
			continue
		}
		fn(ev, err)
	}
}
