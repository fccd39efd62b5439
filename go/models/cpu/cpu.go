package cpu

// Hook is an opaque handle returned by HookAdd.
type Hook interface{}

// Cpu is the minimum a CPU emulation backend has to provide for the debugger.
// Hook ranges are inclusive. A range with begin > end covers every address.
type Cpu interface {
	// memory
	MemMap(addr, size uint64, prot int) error
	MemRead(addr, size uint64) ([]byte, error)
	MemReadInto(p []byte, addr uint64) error
	MemWrite(addr uint64, p []byte) error

	// registers
	RegRead(reg int) (uint64, error)
	RegWrite(reg int, val uint64) error

	// execution
	Start(begin, until uint64) error
	Stop() error

	// hooks
	// HOOK_CODE and HOOK_BLOCK callbacks are func(Cpu, uint64, uint32)
	// HOOK_MEM_* callbacks are func(Cpu, int, uint64, int, int64)
	HookAdd(htype int, cb interface{}, begin, end uint64) (Hook, error)
	HookDel(hook Hook) error

	// save/restore entire CPU state
	ContextSave(reuse interface{}) (interface{}, error)
	ContextRestore(ctx interface{}) error

	Close() error
}
