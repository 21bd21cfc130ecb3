//go:build linux && cgo

package emitter

/*
#cgo LDFLAGS: -ldl
#include <dlfcn.h>
#include <stddef.h>
#include <stdint.h>
#include <stdlib.h>

// libvoidstar is loaded at runtime so that binaries built with this SDK run
// unchanged on machines without the engine installed. The function types
// are declared inline; imposing a compile-time dependency on the engine's
// headers has proven more brittle than this.
typedef uint64_t (*fuzz_get_random_fn)(void);
typedef void (*fuzz_json_data_fn)(const char *, size_t);
typedef void (*fuzz_flush_fn)(void);

static uint64_t voidstar_get_random(void *fn) {
	return ((fuzz_get_random_fn)fn)();
}

static void voidstar_json_data(void *fn, const char *data, size_t len) {
	((fuzz_json_data_fn)fn)(data, len);
}

static void voidstar_flush(void *fn) {
	((fuzz_flush_fn)fn)();
}
*/
import "C"

import (
	"unsafe"
)

// voidstarLibPath is where the engine installs its shared object inside the
// test environment.
const voidstarLibPath = "/usr/lib/libvoidstar.so"

// VoidstarHandler forwards records and randomness requests to the native
// engine through libvoidstar. All exposed entry points in the library are
// buffered and fast; calls never block on a remote peer.
type VoidstarHandler struct {
	lib       unsafe.Pointer
	getRandom unsafe.Pointer
	jsonData  unsafe.Pointer
	flush     unsafe.Pointer
}

// probeVoidstar attempts to load libvoidstar and resolve the three entry
// points the SDK uses. Any failure means the engine is not attached and the
// probe chain moves on.
func probeVoidstar() Handler {
	name := C.CString(voidstarLibPath)
	defer C.free(unsafe.Pointer(name))

	lib := C.dlopen(name, C.RTLD_NOW)
	if lib == nil {
		return nil
	}

	h := &VoidstarHandler{
		lib:       lib,
		getRandom: resolve(lib, "fuzz_get_random"),
		jsonData:  resolve(lib, "fuzz_json_data"),
		flush:     resolve(lib, "fuzz_flush"),
	}
	if h.getRandom == nil || h.jsonData == nil || h.flush == nil {
		C.dlclose(lib)
		return nil
	}
	return h
}

func resolve(lib unsafe.Pointer, symbol string) unsafe.Pointer {
	name := C.CString(symbol)
	defer C.free(unsafe.Pointer(name))
	return C.dlsym(lib, name)
}

// Output hands one record to the engine and flushes its buffer.
func (h *VoidstarHandler) Output(payload []byte) {
	if len(payload) == 0 {
		return
	}
	data := C.CBytes(payload)
	defer C.free(data)
	C.voidstar_json_data(h.jsonData, (*C.char)(data), C.size_t(len(payload)))
	C.voidstar_flush(h.flush)
}

// Random returns one value from the engine's deterministic source.
func (h *VoidstarHandler) Random() uint64 {
	return uint64(C.voidstar_get_random(h.getRandom))
}

// HandlesOutput reports true; a resolved library always accepts output.
func (h *VoidstarHandler) HandlesOutput() bool {
	return true
}
