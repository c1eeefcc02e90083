package neurarrow

import (
	"fmt"
	"strings"
)

// Kind enumerates the closed set of column types a format can declare.
type Kind uint8

const (
	KindOther Kind = iota // Observed type outside the closed set; see TypeTag.Name.
	KindBool
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindUtf8
	KindLargeUtf8
	KindBinary
	KindDictionary
	KindList
	KindMap
)

var kindNames = map[Kind]string{
	KindBool:      "bool",
	KindInt8:      "int8",
	KindInt16:     "int16",
	KindInt32:     "int32",
	KindInt64:     "int64",
	KindUint8:     "uint8",
	KindUint16:    "uint16",
	KindUint32:    "uint32",
	KindUint64:    "uint64",
	KindFloat32:   "float32",
	KindFloat64:   "float64",
	KindUtf8:      "utf8",
	KindLargeUtf8: "large_utf8",
	KindBinary:    "binary",
}

// TypeTag is a structural column type. Parameterized kinds carry their nested
// types: List uses Elem, Map uses Key and Elem (item), Dictionary uses Key
// (index type) and Elem (value type).
type TypeTag struct {
	Kind    Kind
	Key     *TypeTag
	Elem    *TypeTag
	Ordered bool   // Dictionary only.
	Name    string // KindOther only: the foreign type name.
}

func primitive(k Kind) TypeTag { return TypeTag{Kind: k} }

// Primitive type constructors.
func Bool() TypeTag      { return primitive(KindBool) }
func Int8() TypeTag      { return primitive(KindInt8) }
func Int16() TypeTag     { return primitive(KindInt16) }
func Int32() TypeTag     { return primitive(KindInt32) }
func Int64() TypeTag     { return primitive(KindInt64) }
func Uint8() TypeTag     { return primitive(KindUint8) }
func Uint16() TypeTag    { return primitive(KindUint16) }
func Uint32() TypeTag    { return primitive(KindUint32) }
func Uint64() TypeTag    { return primitive(KindUint64) }
func Float32() TypeTag   { return primitive(KindFloat32) }
func Float64() TypeTag   { return primitive(KindFloat64) }
func Utf8() TypeTag      { return primitive(KindUtf8) }
func LargeUtf8() TypeTag { return primitive(KindLargeUtf8) }
func Binary() TypeTag    { return primitive(KindBinary) }

// ListOf returns list<elem>.
func ListOf(elem TypeTag) TypeTag { return TypeTag{Kind: KindList, Elem: &elem} }

// MapOf returns map<key, item>.
func MapOf(key, item TypeTag) TypeTag { return TypeTag{Kind: KindMap, Key: &key, Elem: &item} }

// DictionaryOf returns an unordered dictionary<index, value>.
func DictionaryOf(index, value TypeTag) TypeTag {
	return TypeTag{Kind: KindDictionary, Key: &index, Elem: &value}
}

// OrderedDictionaryOf returns dictionary<index, value, ordered>.
func OrderedDictionaryOf(index, value TypeTag) TypeTag {
	t := DictionaryOf(index, value)
	t.Ordered = true
	return t
}

// Other wraps a type name the closed set cannot express.
func Other(name string) TypeTag { return TypeTag{Kind: KindOther, Name: name} }

// Equal reports structural equality, including nested parameters.
func (t TypeTag) Equal(o TypeTag) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case KindOther:
		return t.Name == o.Name
	case KindList:
		return ptrEqual(t.Elem, o.Elem)
	case KindMap:
		return ptrEqual(t.Key, o.Key) && ptrEqual(t.Elem, o.Elem)
	case KindDictionary:
		return t.Ordered == o.Ordered && ptrEqual(t.Key, o.Key) && ptrEqual(t.Elem, o.Elem)
	default:
		return true
	}
}

func ptrEqual(a, b *TypeTag) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// String renders the canonical text form accepted by ParseTypeTag. A missing
// child renders as "?".
func (t TypeTag) String() string {
	switch t.Kind {
	case KindOther:
		return "other<" + t.Name + ">"
	case KindList:
		return "list<" + childString(t.Elem) + ">"
	case KindMap:
		return "map<" + childString(t.Key) + ", " + childString(t.Elem) + ">"
	case KindDictionary:
		if t.Ordered {
			return "dictionary<" + childString(t.Key) + ", " + childString(t.Elem) + ", ordered>"
		}
		return "dictionary<" + childString(t.Key) + ", " + childString(t.Elem) + ">"
	}
	if n, ok := kindNames[t.Kind]; ok {
		return n
	}
	return fmt.Sprintf("kind(%d)", t.Kind)
}

func childString(t *TypeTag) string {
	if t == nil {
		return "?"
	}
	return t.String()
}

// ParseTypeTag parses the text form produced by TypeTag.String. "string" is
// accepted as an alias of "utf8". other<...> is rejected: it only describes
// observed types.
func ParseTypeTag(s string) (TypeTag, error) {
	p := &typeParser{src: s}
	t, err := p.parse()
	if err != nil {
		return TypeTag{}, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return TypeTag{}, fmt.Errorf("neurarrow: trailing input in type %q at %d", s, p.pos)
	}
	return t, nil
}

type typeParser struct {
	src string
	pos int
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *typeParser) ident() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			p.pos++
			continue
		}
		break
	}
	return strings.ToLower(p.src[start:p.pos])
}

func (p *typeParser) expect(c byte) error {
	p.skipSpace()
	if p.pos >= len(p.src) || p.src[p.pos] != c {
		return fmt.Errorf("neurarrow: expected %q in type %q at %d", c, p.src, p.pos)
	}
	p.pos++
	return nil
}

func (p *typeParser) peek(c byte) bool {
	p.skipSpace()
	return p.pos < len(p.src) && p.src[p.pos] == c
}

func (p *typeParser) parse() (TypeTag, error) {
	name := p.ident()
	switch name {
	case "":
		return TypeTag{}, fmt.Errorf("neurarrow: empty type in %q at %d", p.src, p.pos)
	case "string":
		return Utf8(), nil
	case "list":
		if err := p.expect('<'); err != nil {
			return TypeTag{}, err
		}
		elem, err := p.parse()
		if err != nil {
			return TypeTag{}, err
		}
		return ListOf(elem), p.expect('>')
	case "map", "dictionary":
		if err := p.expect('<'); err != nil {
			return TypeTag{}, err
		}
		k, err := p.parse()
		if err != nil {
			return TypeTag{}, err
		}
		if err := p.expect(','); err != nil {
			return TypeTag{}, err
		}
		v, err := p.parse()
		if err != nil {
			return TypeTag{}, err
		}
		if name == "map" {
			return MapOf(k, v), p.expect('>')
		}
		t := DictionaryOf(k, v)
		if p.peek(',') {
			p.pos++
			if flag := p.ident(); flag != "ordered" {
				return TypeTag{}, fmt.Errorf("neurarrow: unknown dictionary flag %q in %q", flag, p.src)
			}
			t.Ordered = true
		}
		return t, p.expect('>')
	}
	for k, n := range kindNames {
		if n == name {
			return primitive(k), nil
		}
	}
	return TypeTag{}, fmt.Errorf("neurarrow: unknown type %q", name)
}

// Column describes one table column.
type Column struct {
	Name     string
	Type     TypeTag
	Nullable bool
}

// Col is shorthand for a non-nullable Column.
func Col(name string, t TypeTag) Column { return Column{Name: name, Type: t} }

// NullableCol is shorthand for a nullable Column.
func NullableCol(name string, t TypeTag) Column { return Column{Name: name, Type: t, Nullable: true} }

// Equal reports whether name, type and nullability all match.
func (c Column) Equal(o Column) bool {
	return c.Name == o.Name && c.Nullable == o.Nullable && c.Type.Equal(o.Type)
}

// String renders "name: type" with a "?" suffix on nullable columns.
func (c Column) String() string {
	if c.Nullable {
		return c.Name + ": " + c.Type.String() + "?"
	}
	return c.Name + ": " + c.Type.String()
}
