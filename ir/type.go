package ir

import "fmt"

// Type is the kind of value a node holds. Types are declared in their
// sorting order for Compare.
type Type int

const (
	NullType Type = iota
	BoolType
	NumberType
	StringType
	TimestampType
	AliasType
	ArrayType
	ObjectType
)

var typeNames = [...]string{
	NullType:      "Null",
	BoolType:      "Bool",
	NumberType:    "Number",
	StringType:    "String",
	TimestampType: "Timestamp",
	AliasType:     "Alias",
	ArrayType:     "Array",
	ObjectType:    "Object",
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return typeNames[t]
}

func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Type) UnmarshalText(d []byte) error {
	for i, name := range typeNames {
		if name == string(d) {
			*t = Type(i)
			return nil
		}
	}
	return fmt.Errorf("unrecognized type %q", d)
}

// Types returns every type in sorting order.
func Types() []Type {
	res := make([]Type, len(typeNames))
	for i := range res {
		res[i] = Type(i)
	}
	return res
}

// IsLeaf reports whether nodes of type t have no children. Aliases are
// leaves.
func (t Type) IsLeaf() bool {
	return t != ObjectType && t != ArrayType
}
