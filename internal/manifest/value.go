package manifest

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// Kind tags a parsed JSON value. Package manifests are parsed by this
// hand-rolled decoder rather than a general-purpose JSON library (including
// the fast one used elsewhere in this module, internal/optimizer's
// snapshot store) because object key order is semantically load-bearing
// here: the browser-field suffix-tie-break rule in spec §8 and the
// "exports" expansion-key sort in §4.4/§4.5 both require it, and
// map[string]any-shaped decoders erase it.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
	KindInvalid
)

// Pair is one key/value entry of an object, in source order.
type Pair struct {
	Key   string
	Value Value
}

// Value is a parsed JSON value. Exactly one of the typed fields is
// meaningful, selected by Kind.
type Value struct {
	Kind Kind
	Str  string
	Num  float64
	Bool bool
	Arr  []Value
	Obj  []Pair
}

// Get looks up a key in an object value, returning ok=false for anything
// that isn't an object or doesn't have the key.
func (v Value) Get(key string) (Value, bool) {
	for _, p := range v.Obj {
		if p.Key == key {
			return p.Value, true
		}
	}
	return Value{}, false
}

func (v Value) IsObject() bool { return v.Kind == KindObject }
func (v Value) IsString() bool { return v.Kind == KindString }
func (v Value) IsNull() bool   { return v.Kind == KindNull }

// KeysStartWithDot reports whether the first key of an object starts with
// ".", the discriminator the exports algorithm uses to distinguish a
// subpath map from a bare conditions map (package_json §4.4/§4.5).
func (v Value) KeysStartWithDot() bool {
	return len(v.Obj) > 0 && strings.HasPrefix(v.Obj[0].Key, ".")
}

// Parse decodes a JSON document into an order-preserving Value tree.
func Parse(data string) (Value, error) {
	p := &parser{src: data}
	p.skipWhitespace()
	v, err := p.parseValue()
	if err != nil {
		return Value{}, err
	}
	p.skipWhitespace()
	if p.pos != len(p.src) {
		return Value{}, fmt.Errorf("unexpected trailing data at offset %d", p.pos)
	}
	return v, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) skipWhitespace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) errf(format string, args ...interface{}) error {
	return fmt.Errorf("package.json:%d: %s", p.pos, fmt.Sprintf(format, args...))
}

func (p *parser) parseValue() (Value, error) {
	if p.pos >= len(p.src) {
		return Value{}, p.errf("unexpected end of input")
	}
	switch c := p.src[p.pos]; {
	case c == '{':
		return p.parseObject()
	case c == '[':
		return p.parseArray()
	case c == '"':
		s, err := p.parseString()
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindString, Str: s}, nil
	case c == 't':
		return p.parseLiteral("true", Value{Kind: KindBool, Bool: true})
	case c == 'f':
		return p.parseLiteral("false", Value{Kind: KindBool, Bool: false})
	case c == 'n':
		return p.parseLiteral("null", Value{Kind: KindNull})
	case c == '-' || (c >= '0' && c <= '9'):
		return p.parseNumber()
	default:
		return Value{}, p.errf("unexpected character %q", c)
	}
}

func (p *parser) parseLiteral(lit string, v Value) (Value, error) {
	if p.pos+len(lit) > len(p.src) || p.src[p.pos:p.pos+len(lit)] != lit {
		return Value{}, p.errf("invalid literal, expected %q", lit)
	}
	p.pos += len(lit)
	return v, nil
}

func (p *parser) parseNumber() (Value, error) {
	start := p.pos
	if p.pos < len(p.src) && p.src[p.pos] == '-' {
		p.pos++
	}
	for p.pos < len(p.src) && isDigitOrNumberChar(p.src[p.pos]) {
		p.pos++
	}
	text := p.src[start:p.pos]
	num, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Value{}, p.errf("invalid number %q", text)
	}
	return Value{Kind: KindNumber, Num: num}, nil
}

func isDigitOrNumberChar(c byte) bool {
	return (c >= '0' && c <= '9') || c == '.' || c == 'e' || c == 'E' || c == '+' || c == '-'
}

func (p *parser) parseString() (string, error) {
	if p.src[p.pos] != '"' {
		return "", p.errf("expected string")
	}
	p.pos++
	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '"' {
			p.pos++
			return b.String(), nil
		}
		if c == '\\' {
			p.pos++
			if p.pos >= len(p.src) {
				break
			}
			switch esc := p.src[p.pos]; esc {
			case '"', '\\', '/':
				b.WriteByte(esc)
				p.pos++
			case 'b':
				b.WriteByte('\b')
				p.pos++
			case 'f':
				b.WriteByte('\f')
				p.pos++
			case 'n':
				b.WriteByte('\n')
				p.pos++
			case 'r':
				b.WriteByte('\r')
				p.pos++
			case 't':
				b.WriteByte('\t')
				p.pos++
			case 'u':
				r, err := p.parseUnicodeEscape()
				if err != nil {
					return "", err
				}
				b.WriteRune(r)
			default:
				return "", p.errf("invalid escape \\%c", esc)
			}
			continue
		}
		b.WriteByte(c)
		p.pos++
	}
	return "", p.errf("unterminated string")
}

func (p *parser) parseUnicodeEscape() (rune, error) {
	p.pos++ // 'u'
	if p.pos+4 > len(p.src) {
		return 0, p.errf("invalid unicode escape")
	}
	hi, err := strconv.ParseUint(p.src[p.pos:p.pos+4], 16, 32)
	if err != nil {
		return 0, p.errf("invalid unicode escape")
	}
	p.pos += 4
	r := rune(hi)
	if utf16.IsSurrogate(r) && p.pos+6 <= len(p.src) && p.src[p.pos] == '\\' && p.src[p.pos+1] == 'u' {
		lo, err := strconv.ParseUint(p.src[p.pos+2:p.pos+6], 16, 32)
		if err == nil {
			if combined := utf16.DecodeRune(r, rune(lo)); combined != utf8.RuneError {
				p.pos += 6
				return combined, nil
			}
		}
	}
	return r, nil
}

func (p *parser) parseArray() (Value, error) {
	p.pos++ // '['
	var arr []Value
	p.skipWhitespace()
	if p.pos < len(p.src) && p.src[p.pos] == ']' {
		p.pos++
		return Value{Kind: KindArray, Arr: arr}, nil
	}
	for {
		p.skipWhitespace()
		v, err := p.parseValue()
		if err != nil {
			return Value{}, err
		}
		arr = append(arr, v)
		p.skipWhitespace()
		if p.pos >= len(p.src) {
			return Value{}, p.errf("unterminated array")
		}
		if p.src[p.pos] == ',' {
			p.pos++
			continue
		}
		if p.src[p.pos] == ']' {
			p.pos++
			return Value{Kind: KindArray, Arr: arr}, nil
		}
		return Value{}, p.errf("expected ',' or ']'")
	}
}

func (p *parser) parseObject() (Value, error) {
	p.pos++ // '{'
	var obj []Pair
	p.skipWhitespace()
	if p.pos < len(p.src) && p.src[p.pos] == '}' {
		p.pos++
		return Value{Kind: KindObject, Obj: obj}, nil
	}
	for {
		p.skipWhitespace()
		if p.pos >= len(p.src) || p.src[p.pos] != '"' {
			return Value{}, p.errf("expected object key")
		}
		key, err := p.parseString()
		if err != nil {
			return Value{}, err
		}
		p.skipWhitespace()
		if p.pos >= len(p.src) || p.src[p.pos] != ':' {
			return Value{}, p.errf("expected ':'")
		}
		p.pos++
		p.skipWhitespace()
		val, err := p.parseValue()
		if err != nil {
			return Value{}, err
		}
		obj = append(obj, Pair{Key: key, Value: val})
		p.skipWhitespace()
		if p.pos >= len(p.src) {
			return Value{}, p.errf("unterminated object")
		}
		if p.src[p.pos] == ',' {
			p.pos++
			continue
		}
		if p.src[p.pos] == '}' {
			p.pos++
			return Value{Kind: KindObject, Obj: obj}, nil
		}
		return Value{}, p.errf("expected ',' or '}'")
	}
}
