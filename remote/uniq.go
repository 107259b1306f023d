package remote

import (
	"math"
	"math/rand/v2"
	"sync"

	"github.com/taylorza/go-lfsr"
)

// callIDs hands out the IDs a SocketUpdater tags its moves with, so replies can be matched as they arrive.
// It is shared by every SocketUpdater in the process.
var callIDs = sync.OnceValue(func() <-chan int {
	return newCallIDs(rand.Uint32() | 1)
})

// newCallIDs yields positive IDs that fit in a JSON-safe int32, without repeats until the sequence wraps.
// The seed must be non-zero.
func newCallIDs(seed uint32) <-chan int {
	seq := lfsr.NewLfsr32(seed)
	out := make(chan int)

	go func() {
		for {
			next, wrapped := seq.Next()
			if wrapped {
				panic("socket call IDs exhausted")
			}
			if next == 0 || next > math.MaxInt32 {
				continue
			}
			out <- int(next)
		}
	}()

	return out
}
