package ir

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
)

// ErrUnhashableKey is returned for a collection or alias used as a
// mapping key.
var ErrUnhashableKey = errors.New("found unhashable key")

// KeyHash returns the digest used to refer to a mapping key from a
// sibling annotation entry: base64 of the SHA-224 of the key text.
func KeyHash(key string) string {
	sum := sha256.Sum224([]byte(key))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// KeyText returns the text a scalar key takes as a JSON object key.
func KeyText(key *Node) (string, error) {
	switch key.Type {
	case StringType, TimestampType:
		return key.String, nil
	case NullType:
		return "null", nil
	case BoolType:
		return strconv.FormatBool(key.Bool), nil
	case NumberType:
		return NumberText(key), nil
	default:
		return "", fmt.Errorf("%w: %s key at %s", ErrUnhashableKey, key.Type, key.Path())
	}
}

// keyID identifies a scalar key: equal keys have equal ids. Collection
// and alias keys have none.
func keyID(key *Node) (string, bool) {
	text, err := KeyText(key)
	if err != nil {
		return "", false
	}
	prefix := strconv.Itoa(int(key.Type))
	if key.Type == NumberType {
		prefix += "." + strconv.Itoa(numberRepr(key))
		if key.Float64 != nil && *key.Float64 == 0 {
			text = "0"
		}
	}
	return prefix + ":" + text, true
}

// NumberText returns the canonical text of a number node.
func NumberText(n *Node) string {
	switch {
	case n.Int64 != nil:
		return strconv.FormatInt(*n.Int64, 10)
	case n.Float64 != nil:
		return FormatFloat(*n.Float64)
	default:
		return n.Number
	}
}
