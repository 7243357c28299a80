package main

import (
	"strings"

	"github.com/gofrs/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var _ BookIDProvider = (*ObjectIDProvider)(nil) // ensure ObjectIDProvider implements BookIDProvider.

// BookIDProvider is an interface for generating and parsing book identifiers.
// Parse is format-only: a valid id says nothing about the document existence.
type BookIDProvider interface {
	Generate() primitive.ObjectID
	Parse(id string) (primitive.ObjectID, error)
}

// ObjectIDProvider implements the BookIDProvider interface on
// top of mongo object ids serialized as 24 chars hex strings.
type ObjectIDProvider struct{}

// NewObjectIDProvider returns a ready to use ObjectIDProvider.
func NewObjectIDProvider() *ObjectIDProvider {
	return &ObjectIDProvider{}
}

// Generate provides a new unique book identifier.
func (p *ObjectIDProvider) Generate() primitive.ObjectID {
	return primitive.NewObjectID()
}

// Parse converts the hex representation of a book identifier. It returns
// ErrInvalidBookID when the input does not conform to the expected format.
func (p *ObjectIDProvider) Parse(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidBookID
	}
	return oid, nil
}

// GenerateRequestID provides a random unique request identifier.
func GenerateRequestID(prefix string) string {
	id, _ := uuid.NewV4()
	return prefix + ":" + id.String()
}

// IsValidRequestID checks if a given string is a valid uuid after removal of custom prefix.
func IsValidRequestID(id, prefix string) bool {
	if u := uuid.FromStringOrNil(strings.TrimPrefix(id, prefix+":")); u != uuid.Nil {
		return true
	}
	return false
}
