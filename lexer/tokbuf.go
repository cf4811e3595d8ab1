package lexer

// tokbuf accumulates the text of the token being scanned.
type tokbuf struct {
	b []byte
}

func (t *tokbuf) reset() {
	t.b = t.b[:0]
}

func (t *tokbuf) add(c int) {
	t.b = append(t.b, byte(c))
}

func (t *tokbuf) addString(s string) {
	t.b = append(t.b, s...)
}

func (t *tokbuf) len() int {
	return len(t.b)
}

func (t *tokbuf) last() int {
	if len(t.b) == 0 {
		return -1
	}
	return int(t.b[len(t.b)-1])
}

func (t *tokbuf) bytes() []byte {
	return t.b
}

func (t *tokbuf) String() string {
	return string(t.b)
}
