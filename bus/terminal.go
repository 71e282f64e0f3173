package bus

import (
	"bufio"
	"io"
)

// NewBufferedSink returns a TerminalSink (for SetTerminalPort) that
// writes through a *bufio.Writer, flushing after every byte. This
// mirrors the terminal-port host's own stdout().flush()-per-byte
// behavior: a line-buffered standard writer would otherwise hold a
// partial line back until a newline, or until the process exits.
func NewBufferedSink(w io.Writer) func(b byte) {
	bw := bufio.NewWriter(w)
	return func(b byte) {
		bw.WriteByte(b)
		bw.Flush()
	}
}
