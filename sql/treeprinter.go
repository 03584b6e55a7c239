package sql

import (
	"bytes"
	"fmt"
	"strings"
)

// TreePrinter renders plan trees with one node per line and box-drawing
// connectors for children.
type TreePrinter struct {
	buf bytes.Buffer
}

// NewTreePrinter creates a new tree printer.
func NewTreePrinter() *TreePrinter {
	return new(TreePrinter)
}

// WriteNode writes the header line of the node.
func (p *TreePrinter) WriteNode(format string, args ...interface{}) {
	fmt.Fprintf(&p.buf, format, args...)
	p.buf.WriteRune('\n')
}

// WriteChildren writes the rendered children under the node, indenting
// their own subtrees.
func (p *TreePrinter) WriteChildren(children ...string) {
	for i, child := range children {
		last := i == len(children)-1
		lines := strings.Split(strings.TrimRight(child, "\n"), "\n")
		for j, line := range lines {
			switch {
			case j == 0 && last:
				p.buf.WriteString(" └─ ")
			case j == 0:
				p.buf.WriteString(" ├─ ")
			case last:
				p.buf.WriteString("    ")
			default:
				p.buf.WriteString(" │  ")
			}
			p.buf.WriteString(line)
			p.buf.WriteRune('\n')
		}
	}
}

// String returns the rendered tree.
func (p *TreePrinter) String() string {
	return p.buf.String()
}
