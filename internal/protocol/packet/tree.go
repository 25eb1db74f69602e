package packet

import (
	"fmt"
	"io"
	"strings"
)

// VersionSum returns the version of p plus the version sums of all of its
// children.
func VersionSum(p Packet) uint64 {
	sum := uint64(p.PacketHeader().Version)
	if op, ok := p.(*Operator); ok {
		for _, child := range op.Children {
			sum += VersionSum(child)
		}
	}
	return sum
}

// Walk visits p and its descendants depth-first, parents before children.
func Walk(p Packet, fn func(p Packet, depth int)) {
	walk(p, 0, fn)
}

func walk(p Packet, depth int, fn func(Packet, int)) {
	fn(p, depth)
	if op, ok := p.(*Operator); ok {
		for _, child := range op.Children {
			walk(child, depth+1, fn)
		}
	}
}

// Dump writes one line per packet, indented by depth.
func Dump(w io.Writer, p Packet) error {
	var err error
	Walk(p, func(p Packet, depth int) {
		if err != nil {
			return
		}
		indent := strings.Repeat("  ", depth)
		switch pk := p.(type) {
		case *Literal:
			_, err = fmt.Fprintf(w, "%sliteral v%d = %s\n", indent, pk.Version, pk.Value)
		case *Operator:
			_, err = fmt.Fprintf(w, "%s%s v%d (%s, %d children)\n", indent, pk.Type, pk.Version, pk.Length, len(pk.Children))
		}
	})
	return err
}
