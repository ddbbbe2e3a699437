// Package dbg provides opt-in lock-contention tracing for the slot
// mutexes in src/registry. It is off by default; enabling it trades
// throughput for a line-by-line log of who is waiting on what, which is
// invaluable when chasing down a suspected deadlock in the create/drop
// defragmentation dance.
package dbg

import (
	"log"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

// LoggedMutex wraps a sync.Mutex and logs every lock/unlock along with the
// calling goroutine's call stack. Swap in for a plain sync.Mutex only
// while debugging; the logging overhead is not meant for hot paths.
type LoggedMutex struct {
	mu   sync.Mutex
	name string
}

func NewLoggedMutex(name string) *LoggedMutex {
	return &LoggedMutex{name: name}
}

func (lm *LoggedMutex) Lock() {
	log.Printf("trying to lock %s, caller=%s", lm.name, getCaller())
	lm.mu.Lock()
	log.Printf("locked %s, caller=%s", lm.name, getCaller())
}

func (lm *LoggedMutex) Unlock() {
	lm.mu.Unlock()
	log.Printf("unlocked %s, caller=%s", lm.name, getCaller())
}

func (lm *LoggedMutex) TryLock() bool {
	ok := lm.mu.TryLock()
	if ok {
		log.Printf("try-locked %s, caller=%s", lm.name, getCaller())
	}
	return ok
}

func getCaller() string {
	skip := 3

	pc := make([]uintptr, 32)
	n := runtime.Callers(skip, pc)
	if n == 0 {
		return "unknown"
	}

	var callers []string
	frames := runtime.CallersFrames(pc[:n])

	for {
		frame, more := frames.Next()
		fn := frame.Func
		if fn != nil {
			name := filepath.Base(fn.Name())
			callers = append(callers, name)
		} else {
			callers = append(callers, "unknown")
		}
		if !more {
			break
		}
	}

	return strings.Join(callers, " -> ")
}
