package wasmalloc

import (
	"os"
	"unsafe"

	"github.com/rs/zerolog"
)

// TraceEnabled gates the debug tracing every allocator operation emits, the
// same role cznic/memory's unexported trace constant plays for its
// fmt.Fprintf(os.Stderr, ...) calls in Malloc/Free/Calloc/Realloc. Off by
// default; flip it in a debug build, never in the hot path of a release one.
var TraceEnabled = false

var traceLog = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: false}).
	Level(zerolog.DebugLevel).
	With().
	Timestamp().
	Logger()

// TraceAllocate logs a successful or failed allocation. component names the
// calling allocator ("freelist", "bumpalloc", ...).
func TraceAllocate(component string, size, align uintptr, p unsafe.Pointer) {
	if !TraceEnabled {
		return
	}
	traceLog.Debug().
		Str("component", component).
		Uint64("size", uint64(size)).
		Uint64("align", uint64(align)).
		Uint64("ptr", uint64(uintptr(p))).
		Msg("allocate")
}

// TraceDeallocate logs a deallocation.
func TraceDeallocate(component string, p unsafe.Pointer, size, align uintptr) {
	if !TraceEnabled {
		return
	}
	traceLog.Debug().
		Str("component", component).
		Uint64("ptr", uint64(uintptr(p))).
		Uint64("size", uint64(size)).
		Uint64("align", uint64(align)).
		Msg("deallocate")
}

// TraceGrow logs a call into the Grower, successful or not.
func TraceGrow(component string, deltaPages, prevPages uint32) {
	if !TraceEnabled {
		return
	}
	e := traceLog.Debug().Str("component", component).Uint32("delta_pages", deltaPages)
	if prevPages == FailedGrow {
		e.Bool("failed", true).Msg("grow")
		return
	}
	e.Uint32("prev_pages", prevPages).Msg("grow")
}
