package tabular

// streaming.go holds the reader chain every uploaded delimited file goes
// through before it reaches the CSV parser:
//
//   - bomSkipper drops the UTF-8 byte order mark spreadsheet tools prepend
//   - utf8Sanitizer replaces invalid UTF-8 bytes with '?'
//   - CountingReader counts bytes for size limits and logging

import (
	"io"
	"unicode/utf8"
)

type utf8Sanitizer struct {
	r       io.Reader
	pending []byte // start of a multi-byte sequence cut by the previous read
}

func newUTF8Sanitizer(r io.Reader) *utf8Sanitizer {
	return &utf8Sanitizer{r: r, pending: make([]byte, 0, utf8.UTFMax)}
}

func (s *utf8Sanitizer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	offset := 0
	if len(s.pending) > 0 {
		offset = copy(p, s.pending)
		s.pending = s.pending[:0]
	}

	n, err := s.r.Read(p[offset:])
	n += offset
	if n == 0 {
		return 0, err
	}
	if isASCII(p[:n]) {
		return n, err
	}
	return s.sanitize(p[:n], err == io.EOF), err
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// sanitize rewrites data in place and returns the number of bytes to hand
// out. Outside EOF an incomplete trailing sequence is held back.
func (s *utf8Sanitizer) sanitize(data []byte, atEOF bool) int {
	if utf8.Valid(data) {
		if !atEOF {
			if k := trailingPartial(data); k > 0 {
				s.pending = append(s.pending, data[len(data)-k:]...)
				return len(data) - k
			}
		}
		return len(data)
	}

	w := 0
	for r := 0; r < len(data); {
		if !atEOF && seqLen(data[r]) > len(data)-r {
			s.pending = append(s.pending, data[r:]...)
			return w
		}
		c, size := utf8.DecodeRune(data[r:])
		if c == utf8.RuneError && size == 1 {
			data[w] = '?'
			w++
			r++
			continue
		}
		copy(data[w:], data[r:r+size])
		w += size
		r += size
	}
	return w
}

func trailingPartial(data []byte) int {
	for i := 1; i <= 3 && i <= len(data); i++ {
		b := data[len(data)-i]
		if b >= 0xC0 {
			if i < seqLen(b) {
				return i
			}
			return 0
		}
		if b&0xC0 != 0x80 {
			return 0
		}
	}
	return 0
}

func seqLen(b byte) int {
	switch {
	case b < 0x80:
		return 1
	case b < 0xC0:
		return 1
	case b < 0xE0:
		return 2
	case b < 0xF0:
		return 3
	default:
		return 4
	}
}

type bomSkipper struct {
	r       io.Reader
	checked bool
	head    []byte
}

func (b *bomSkipper) Read(p []byte) (int, error) {
	if !b.checked {
		b.checked = true
		var buf [3]byte
		n, err := io.ReadFull(b.r, buf[:])
		if n == 3 && buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF {
			n = 0
		}
		b.head = append([]byte(nil), buf[:n]...)
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

// CountingReader counts the bytes read through it.
type CountingReader struct {
	r     io.Reader
	Count int64
}

func (c *CountingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.Count += int64(n)
	return n, err
}

// cleanReader chains BOM removal, UTF-8 sanitizing and counting, in that order.
func cleanReader(r io.Reader) *CountingReader {
	return &CountingReader{r: newUTF8Sanitizer(&bomSkipper{r: r})}
}
