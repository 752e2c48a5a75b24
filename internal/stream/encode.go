package stream

import (
	"bytes"
	"fmt"

	"github.com/realtime-svg/realtime-svg/internal/session"
)

// Boundary is the literal multipart boundary token.
const Boundary = "frame"

// ContentType is the response content type of every stream.
const ContentType = "multipart/x-mixed-replace; boundary=" + Boundary

// boundaryOpener is written once, before the first part.
var boundaryOpener = []byte("--" + Boundary + "\r\n")

// BoundaryOpener returns the bytes that open the multipart stream.
func BoundaryOpener() []byte {
	return boundaryOpener
}

// EncodePart encodes one frame as a multipart part:
//
//	Content-Type: image/svg+xml\r\n
//	Content-Length: <N>\r\n
//	\r\n
//	<N bytes of SVG>\r\n
//	--frame\r\n
func EncodePart(frame session.Frame) []byte {
	var b bytes.Buffer
	b.Grow(len(frame.Content) + 64)
	b.WriteString("Content-Type: image/svg+xml\r\n")
	fmt.Fprintf(&b, "Content-Length: %d\r\n", len(frame.Content))
	b.WriteString("\r\n")
	b.WriteString(frame.Content)
	b.WriteString("\r\n")
	b.Write(boundaryOpener)
	return b.Bytes()
}

// EncodeEmission encodes one logical frame emission: a single part, or
// the same part twice back-to-back when the double-frame workaround is
// active.
func EncodeEmission(frame session.Frame, double bool) []byte {
	part := EncodePart(frame)
	if !double {
		return part
	}
	doubled := make([]byte, 0, 2*len(part))
	doubled = append(doubled, part...)
	return append(doubled, part...)
}
