package domain

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type IdentifierKind string

const (
	KindInternal IdentifierKind = "internal" // Mongo ObjectID hex
	KindExternal IdentifierKind = "external" // provider subject, e.g. Google sub
)

// Identifier is a tagged account identifier. The tag replaces guessing
// the identifier space from the string length.
type Identifier struct {
	Kind  IdentifierKind
	Value string
}

// ParseIdentifier builds an Identifier from a request. An empty kind is
// tolerated for old clients: a valid ObjectID hex is treated as internal,
// anything else as external.
func ParseIdentifier(kind, value string) (Identifier, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Identifier{}, fmt.Errorf("empty identifier")
	}
	switch IdentifierKind(kind) {
	case KindInternal:
		if !primitive.IsValidObjectID(value) {
			return Identifier{}, fmt.Errorf("invalid internal id %q", value)
		}
		return Identifier{Kind: KindInternal, Value: value}, nil
	case KindExternal:
		return Identifier{Kind: KindExternal, Value: value}, nil
	case "":
		if primitive.IsValidObjectID(value) {
			return Identifier{Kind: KindInternal, Value: value}, nil
		}
		return Identifier{Kind: KindExternal, Value: value}, nil
	default:
		return Identifier{}, fmt.Errorf("unknown identifier kind %q", kind)
	}
}

// ObjectID returns the internal id. Callers must check Kind first.
func (i Identifier) ObjectID() (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(i.Value)
}
