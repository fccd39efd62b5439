package models

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io/ioutil"
	"os/exec"
	"regexp"
	"strings"
)

var demangleRe = regexp.MustCompile(`^[^(]+`)

func Demangle(name string) string {
	if strings.HasPrefix(name, "__Z") {
		name = name[1:]
	} else if !strings.HasPrefix(name, "_Z") {
		return name
	}
	cmd := exec.Command("c++filt", "-n")
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return name
	}
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return name
	}
	if err = cmd.Start(); err != nil {
		return name
	}
	stdin.Write([]byte(name + "\n"))
	stdin.Close()
	out, err := ioutil.ReadAll(stdout)
	out = bytes.Trim(out, "\t\r\n ")
	if err != nil || len(out) == 0 {
		return name
	}
	cmd.Wait()
	out = demangleRe.FindSubmatch(out)[0]
	return string(out)
}

// Disas renders instructions as "0x<addr>: <hex> <mnemonic> <operands>", right-aligning the hex column.
func Disas(dis []Ins) []string {
	width := 0
	for _, ins := range dis {
		if len(ins.Bytes()) > width {
			width = len(ins.Bytes())
		}
	}
	out := make([]string, 0, len(dis))
	for _, ins := range dis {
		pad := strings.Repeat(" ", (width-len(ins.Bytes()))*2)
		data := pad + hex.EncodeToString(ins.Bytes())
		out = append(out, strings.TrimRight(fmt.Sprintf("0x%x: %s %s %s", ins.Addr(), data, ins.Mnemonic(), ins.OpStr()), " "))
	}
	return out
}

func Repr(p []byte, strsize int) string {
	tmp := make([]string, len(p))
	for i, b := range p {
		if b >= 0x20 && b <= 0x7e {
			tmp[i] = string(b)
		} else {
			tmp[i] = fmt.Sprintf("\\x%02x", b)
		}
	}
	out := strings.Join(tmp, "")
	if strsize > 0 && len(out) > strsize {
		for i := len(tmp) - 1; len(out) > strsize-3; i-- {
			out = strings.Join(tmp[:i], "")
		}
		return "\"" + out + "\"..."
	}
	return "\"" + out + "\""
}
