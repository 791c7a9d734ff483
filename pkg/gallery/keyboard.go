package gallery

import "sync"

// Key is a keyboard key name as browsers report it.
type Key string

const (
	KeyEscape     Key = "Escape"
	KeyArrowRight Key = "ArrowRight"
	KeyArrowLeft  Key = "ArrowLeft"
)

type keyListener struct {
	id int
	fn func(Key)
}

// Keyboard fans key presses out to the currently attached listeners.
type Keyboard struct {
	mu        sync.Mutex
	listeners []keyListener
	nextID    int
}

// Attach adds a listener and returns the function that removes it.
func (k *Keyboard) Attach(fn func(Key)) (detach func()) {
	k.mu.Lock()
	id := k.nextID
	k.nextID++
	k.listeners = append(k.listeners, keyListener{id: id, fn: fn})
	k.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			k.mu.Lock()
			defer k.mu.Unlock()
			for i, l := range k.listeners {
				if l.id == id {
					k.listeners = append(k.listeners[:i:i], k.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// Dispatch delivers key to every attached listener.
func (k *Keyboard) Dispatch(key Key) {
	k.mu.Lock()
	ls := append([]keyListener{}, k.listeners...)
	k.mu.Unlock()

	for _, l := range ls {
		l.fn(key)
	}
}

// Listeners returns the number of attached listeners.
func (k *Keyboard) Listeners() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.listeners)
}
