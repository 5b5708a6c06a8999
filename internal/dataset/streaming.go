package dataset

// streaming.go wraps input readers so CSV parsing never sees a UTF-8 byte
// order mark or invalid UTF-8. Both wrappers work in constant memory.

import (
	"io"
	"unicode/utf8"
)

// bomReader drops a leading UTF-8 BOM (0xEF 0xBB 0xBF).
type bomReader struct {
	r       io.Reader
	checked bool
	head    []byte
}

func newBOMReader(r io.Reader) *bomReader {
	return &bomReader{r: r}
}

func (b *bomReader) Read(p []byte) (int, error) {
	if !b.checked {
		b.checked = true
		buf := make([]byte, 3)
		n, err := io.ReadFull(b.r, buf)
		buf = buf[:n]
		if n == 3 && buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF {
			buf = buf[:0]
		}
		b.head = buf
		if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
			return 0, err
		}
	}
	if len(b.head) > 0 {
		n := copy(p, b.head)
		b.head = b.head[n:]
		return n, nil
	}
	return b.r.Read(p)
}

// utf8Sanitizer replaces each invalid byte with '?' so the output never
// grows. Multi-byte sequences split across reads are carried over.
type utf8Sanitizer struct {
	r       io.Reader
	pending []byte
}

func newUTF8Sanitizer(r io.Reader) *utf8Sanitizer {
	return &utf8Sanitizer{r: r, pending: make([]byte, 0, utf8.UTFMax)}
}

func (s *utf8Sanitizer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	off := copy(p, s.pending)
	s.pending = s.pending[:0]

	n, err := s.r.Read(p[off:])
	n += off
	if n == 0 {
		return 0, err
	}
	return s.sanitize(p[:n], err == io.EOF), err
}

func (s *utf8Sanitizer) sanitize(data []byte, atEOF bool) int {
	w := 0
	for i := 0; i < len(data); {
		c := data[i]
		if c < utf8.RuneSelf {
			data[w] = c
			w++
			i++
			continue
		}
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			if !atEOF && !utf8.FullRune(data[i:]) {
				s.pending = append(s.pending, data[i:]...)
				return w
			}
			data[w] = '?'
			w++
			i++
			continue
		}
		copy(data[w:], data[i:i+size])
		w += size
		i += size
	}
	return w
}

// sanitizeInput applies BOM removal then UTF-8 sanitization.
func sanitizeInput(r io.Reader) io.Reader {
	return newUTF8Sanitizer(newBOMReader(r))
}
