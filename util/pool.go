package util

import "sync"

// ChunkSize is the read size used when moving bytes to or from the
// player. Commands are single bytes, so 4 KiB covers any burst.
const ChunkSize = 4 * 1024

var chunks = sync.Pool{
	New: func() any {
		b := make([]byte, ChunkSize)
		return &b
	},
}

// Borrow hands out a ChunkSize buffer and the func that gives it back.
// The buffer must not be used after release is called.
func Borrow() (buf []byte, release func()) {
	p := chunks.Get().(*[]byte)
	return (*p)[:ChunkSize], func() { chunks.Put(p) }
}
