package diag

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var errorHead = color.New(color.FgRed, color.Bold)

// Render writes every diagnostic in the bag to w, one per line, in the
// order they were reported. When colored is true the "Error" head is
// highlighted; color is stripped automatically on non-terminal writers.
func Render(w io.Writer, b *Bag, colored bool) {
	for _, d := range b.Items() {
		if colored {
			head := errorHead.Sprint("Error")
			switch {
			case d.AtEnd:
				fmt.Fprintf(w, "[line %d] %s at end: %s\n", d.Line, head, d.Message)
			case d.Lexeme != "":
				fmt.Fprintf(w, "[line %d] %s at '%s': %s\n", d.Line, head, d.Lexeme, d.Message)
			default:
				fmt.Fprintf(w, "[line %d] %s: %s\n", d.Line, head, d.Message)
			}
			continue
		}
		fmt.Fprintln(w, d.String())
	}
}
