package debug

import (
	"bufio"
	"fmt"
	"net"
	"os"
)

func Accept(host, port string) (net.Conn, error) {
	addr := net.JoinHostPort(host, port)
	fmt.Fprintf(os.Stderr, "Waiting for connection on %s\n", addr)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	defer ln.Close()
	return ln.Accept()
}

// Attach sends all debugger output to c and reads commands from it.
func (d *Debugger) Attach(c net.Conn) {
	fmt.Fprintf(os.Stderr, "Debug connection from %s\n", c.RemoteAddr())
	d.Config.Output, d.Config.Errors = c, c
	r := bufio.NewReader(c)
	d.NewInput = func() (Input, error) {
		return NewLineInput(r), nil
	}
}
