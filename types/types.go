// ==============================================================================================
// FILE: types/types.go
// ==============================================================================================
// PACKAGE: types
// PURPOSE: The Type value used throughout the checker and both code
//          generators: a base name paired with a pointer level, plus the
//          struct layout table that gives a base name its field offsets and
//          size. Kept separate from ast so that the checker can build and
//          compare types without importing parse-tree shapes.
// ==============================================================================================

package types

import "fmt"

// Base names the scalar or struct kind a Type is built on top of.
type Base string

const (
	Int  Base = "int"
	Char Base = "char"
	Void Base = "void"
)

// Type is a (base, pointer_level) pair. Equality is structural: two Types
// are equal exactly when their Base and PointerLevel match. There is no
// hierarchy or implicit conversion between them.
type Type struct {
	Base         Base
	PointerLevel int
}

// Scalar builds a non-pointer Type for one of the three built-in bases or a
// struct name.
func Scalar(base Base) Type { return Type{Base: base} }

// Struct builds a non-pointer Type naming a user-defined struct.
func Struct(name string) Type { return Type{Base: Base(name)} }

// Pointer returns the Type one pointer level above t ("addr x").
func (t Type) Pointer() Type { return Type{Base: t.Base, PointerLevel: t.PointerLevel + 1} }

// Pointee returns the Type one pointer level below t ("deref p"). Calling
// Pointee on a non-pointer Type is a programmer error in the caller; callers
// must check IsPointer first.
func (t Type) Pointee() Type { return Type{Base: t.Base, PointerLevel: t.PointerLevel - 1} }

// IsPointer reports whether t has at least one level of indirection.
func (t Type) IsPointer() bool { return t.PointerLevel > 0 }

// IsInt reports whether t is exactly the scalar int type.
func (t Type) IsInt() bool { return t.Base == Int && t.PointerLevel == 0 }

// IsChar reports whether t is exactly the scalar char type.
func (t Type) IsChar() bool { return t.Base == Char && t.PointerLevel == 0 }

// IsIntLike reports whether t behaves as an integer for arithmetic and
// logical/bitwise operator purposes: non-pointer int or char. Pointers are
// not int-like; callers that allow pointer operands check IsPointer
// separately.
func (t Type) IsIntLike() bool {
	return t.PointerLevel == 0 && (t.Base == Int || t.Base == Char)
}

// IsStruct reports whether t names a user-defined struct (i.e. its base is
// none of the three built-ins), at any pointer level.
func (t Type) IsStruct() bool {
	return t.Base != Int && t.Base != Char && t.Base != Void
}

// Equal reports structural equality, the only equality relation Ignis
// types have.
func (t Type) Equal(other Type) bool {
	return t.Base == other.Base && t.PointerLevel == other.PointerLevel
}

// String renders t as Ignis source syntax, e.g. "ptr ptr int" or "Point".
func (t Type) String() string {
	s := string(t.Base)
	for i := 0; i < t.PointerLevel; i++ {
		s = "ptr " + s
	}
	return s
}

// Field is one member of a struct layout: its name, its Type, and its byte
// offset from the start of the struct.
type Field struct {
	Name   string
	Type   Type
	Offset int
}

// Layout is the offset/size table for one struct, built by the checker.
// Both code generators receive the checker's table (Checker.Structs); they
// do not rebuild it themselves.
type Layout struct {
	Name   string
	Fields []Field
	Size   int
}

// FieldOffset returns the byte offset of the named field and true, or
// (0, false) if no such field exists.
func (l Layout) FieldOffset(name string) (int, bool) {
	for _, f := range l.Fields {
		if f.Name == name {
			return f.Offset, true
		}
	}
	return 0, false
}

// FieldType returns the Type of the named field and true, or the zero Type
// and false if no such field exists.
func (l Layout) FieldType(name string) (Type, bool) {
	for _, f := range l.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return Type{}, false
}

// Sizes of the built-in scalar types and of any pointer, in bytes. Struct
// sizes come from a Layout instead.
const (
	PointerSize = 8
	IntSize     = 8
	CharSize    = 1
)

// SizeOf computes the in-memory size of t given a lookup for user-defined
// struct layouts. Any pointer type, at any level, is PointerSize regardless
// of its pointee.
func SizeOf(t Type, layouts func(name string) (Layout, bool)) int {
	if t.IsPointer() {
		return PointerSize
	}
	switch t.Base {
	case Int:
		return IntSize
	case Char:
		return CharSize
	case Void:
		return 0
	default:
		if l, ok := layouts(string(t.Base)); ok {
			return l.Size
		}
		return 0
	}
}

// BuildLayout computes field offsets in declaration order with no padding:
// offset(k) = sum of sizes of fields 0..k-1, size = sum over all fields.
// fieldTypes must be in declared order. layouts resolves nested struct
// field types that are themselves structs.
func BuildLayout(name string, fieldNames []string, fieldTypes []Type, layouts func(name string) (Layout, bool)) Layout {
	l := Layout{Name: name}
	offset := 0
	for i, ft := range fieldTypes {
		size := SizeOf(ft, layouts)
		l.Fields = append(l.Fields, Field{Name: fieldNames[i], Type: ft, Offset: offset})
		offset += size
	}
	l.Size = offset
	return l
}

func (t Type) GoString() string {
	return fmt.Sprintf("Type{%s, %d}", t.Base, t.PointerLevel)
}
