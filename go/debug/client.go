package debug

import (
	"fmt"
	"io"
	"net"
	"os"

	"github.com/chzyer/readline"
)

// like go io.Copy(), but returns a channel to notify you upon completion
func copyNotify(dst io.Writer, src io.Reader) chan int {
	ret := make(chan int, 1)
	go func() {
		io.Copy(dst, src)
		ret <- 1
	}()
	return ret
}

// RunClient connects to a debugger started with Accept and forwards lines typed locally.
func RunClient(addr string) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("error connecting to debug server: %v", err)
	}
	defer conn.Close()
	rl, err := readline.NewEx(&readline.Config{Prompt: "> ", InterruptPrompt: "\n"})
	if err != nil {
		return fmt.Errorf("error opening readline: %v", err)
	}
	defer rl.Close()

	remoteEOF := copyNotify(rl.Stdout(), conn)
	localEOF := make(chan int, 1)
	go func() {
		for {
			line, err := rl.Readline()
			if err == readline.ErrInterrupt {
				continue
			} else if err != nil {
				break
			}
			if _, err := fmt.Fprintln(conn, line); err != nil {
				break
			}
		}
		localEOF <- 1
	}()
	select {
	case <-remoteEOF:
		fmt.Fprintln(os.Stderr, "remote closed connection")
		return nil
	case <-localEOF:
		return nil
	}
}
