// Package z3 is a thin cgo binding to the Z3 C API.
//
// Every context is created with the Z3 error handler disabled, so a failing
// API call never aborts the process. Instead the error code is read back
// right after the call and returned as an *Error.
package z3

// #cgo LDFLAGS: -lz3
// #include <stdlib.h>
// #include <z3.h>
import "C"
import (
	"sync"
	"unsafe"
)

var globalParamMu sync.Mutex

// silence turns off the diagnostic output Z3 writes on its own. The settings
// are process wide and are applied again for every new context, so a
// verbosity raised in between does not leak into later checks.
func silence() {
	SetGlobalParam("verbose", "0")
	SetGlobalParam("warning", "false")
}

// SetGlobalParam sets a process wide Z3 parameter.
//
// Maps to: Z3_global_param_set
func SetGlobalParam(key, value string) {
	globalParamMu.Lock()
	defer globalParamMu.Unlock()
	k := C.CString(key)
	defer C.free(unsafe.Pointer(k))
	v := C.CString(value)
	defer C.free(unsafe.Pointer(v))
	C.Z3_global_param_set(k, v)
}

// Config is used to set configuration for Z3. This should be created with
// NewConfig and closed with Close when you're done using it.
//
// Config structures are used to set parameters for Z3 behavior. Parameters
// are only consulted when a Context is created.
type Config struct {
	raw C.Z3_config
}

// NewConfig creates a config with model generation enabled.
func NewConfig() *Config {
	cfg := &Config{raw: C.Z3_mk_config()}
	cfg.SetParamValue("model", "true")
	return cfg
}

// SetParamValue sets the parameter k to the value v.
//
// Maps to: Z3_set_param_value
func (c *Config) SetParamValue(k, v string) {
	ks := C.CString(k)
	defer C.free(unsafe.Pointer(ks))
	vs := C.CString(v)
	defer C.free(unsafe.Pointer(vs))
	C.Z3_set_param_value(c.raw, ks, vs)
}

// Close frees the memory associated with this configuration.
func (c *Config) Close() error {
	if c.raw != nil {
		C.Z3_del_config(c.raw)
		c.raw = nil
	}
	return nil
}

// Context is what handles most of the interactions with Z3.
//
// A context is not safe for concurrent use. Expressions built in one context
// must be translated before they are used in another.
type Context struct {
	raw C.Z3_context
}

// NewContext creates a new context from the given configuration. A nil
// configuration uses NewConfig defaults.
func NewContext(cfg *Config) *Context {
	silence()
	if cfg == nil {
		cfg = NewConfig()
		defer cfg.Close()
	}
	raw := C.Z3_mk_context(cfg.raw)
	C.Z3_set_error_handler(raw, nil)
	return &Context{raw: raw}
}

// Close frees the memory associated with this context.
func (c *Context) Close() error {
	if c.raw == nil {
		return nil
	}
	C.Z3_del_context(c.raw)
	c.raw = nil
	return nil
}

// err returns the error of the last API call on this context, or nil if the
// call succeeded.
func (c *Context) err(op string) error {
	code := C.Z3_get_error_code(c.raw)
	if code == C.Z3_OK {
		return nil
	}
	return &Error{
		Code:    ErrorCode(code),
		Op:      op,
		Message: C.GoString(C.Z3_get_error_msg(c.raw, code)),
	}
}

// Symbol represents a named symbol in a context.
type Symbol struct {
	rawCtx    C.Z3_context
	rawSymbol C.Z3_symbol
}

// Symbol creates a symbol for use in consts and so on.
//
// Maps to: Z3_mk_string_symbol
func (c *Context) Symbol(name string) *Symbol {
	ns := C.CString(name)
	defer C.free(unsafe.Pointer(ns))

	return &Symbol{
		rawCtx:    c.raw,
		rawSymbol: C.Z3_mk_string_symbol(c.raw, ns),
	}
}

// String returns the name of the symbol.
func (s *Symbol) String() string {
	return C.GoString(C.Z3_get_symbol_string(s.rawCtx, s.rawSymbol))
}

// newParams builds a parameter set holding one unsigned or boolean entry.
// The caller must release it with Z3_params_dec_ref.
func (c *Context) newParams(name string, value interface{}) C.Z3_params {
	params := C.Z3_mk_params(c.raw)
	C.Z3_params_inc_ref(c.raw, params)
	sym := c.Symbol(name).rawSymbol
	switch v := value.(type) {
	case uint:
		C.Z3_params_set_uint(c.raw, params, sym, C.uint(v))
	case bool:
		C.Z3_params_set_bool(c.raw, params, sym, C.bool(v))
	}
	return params
}
