package cpu

// hook types share Unicorn's values so a backend can pass them through untouched
// https://github.com/unicorn-engine/unicorn/blob/master/bindings/go/unicorn/unicorn_const.go
const (
	HOOK_CODE  = 4
	HOOK_BLOCK = 8

	HOOK_MEM_READ  = 1024
	HOOK_MEM_WRITE = 2048
)

// memory access types, passed to HOOK_MEM_* callbacks
const (
	MEM_WRITE = 16
	MEM_READ  = 17
	MEM_FETCH = 18

	MEM_READ_UNMAPPED  = 19
	MEM_WRITE_UNMAPPED = 20
)

const (
	PROT_NONE  = 0
	PROT_READ  = 1
	PROT_WRITE = 2
	PROT_EXEC  = 4
	PROT_ALL   = 7
)
