package arch

import (
	"fmt"
	"sort"

	uc "github.com/unicorn-engine/unicorn/bindings/go/unicorn"

	"github.com/lunixbochs/armdbg/go/arch/arm"
	"github.com/lunixbochs/armdbg/go/arch/arm64"
	"github.com/lunixbochs/armdbg/go/debug"
)

// Profile ties a debugger variant to the unicorn arch/mode that runs it.
type Profile struct {
	UC_ARCH, UC_MODE int
	New              func() debug.Variant
}

var archMap = map[string]*Profile{
	"arm":   {uc.ARCH_ARM, uc.MODE_ARM, func() debug.Variant { return arm.New() }},
	"arm64": {uc.ARCH_ARM64, uc.MODE_ARM, func() debug.Variant { return arm64.New() }},
}

func GetArch(name string) (*Profile, error) {
	p, ok := archMap[name]
	if !ok {
		return nil, fmt.Errorf("Arch '%s' not found. Supported: %v", name, Names())
	}
	return p, nil
}

func Names() []string {
	var names []string
	for name := range archMap {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
