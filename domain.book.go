package main

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Predefined errors returned by the catalog operations. Handlers map
// them to http status codes at the boundary.
var (
	ErrBookNotFound     = errors.New("book not found")
	ErrInvalidBookID    = errors.New("invalid book id")
	ErrEmptySearchQuery = errors.New("empty search query")
)

// Book represents a book document stored into the catalog collection.
// Timestamps are kept as ISO-8601 UTC strings exactly as written.
type Book struct {
	ID              primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Title           string             `json:"title" bson:"title"`
	Author          string             `json:"author" bson:"author"`
	ISBN            string             `json:"isbn" bson:"isbn"`
	PublicationDate string             `json:"publication_date" bson:"publication_date"`
	Genre           string             `json:"genre" bson:"genre"`
	Description     string             `json:"description" bson:"description"`
	Available       bool               `json:"available" bson:"available"`
	Copies          int                `json:"copies" bson:"copies"`
	CreatedAt       string             `json:"created_at" bson:"created_at"`
	UpdatedAt       string             `json:"updated_at" bson:"updated_at"`
}

// CreateBookRequest is the expected payload to create a book. The five
// required fields must be present and non-empty. Optional fields use
// pointers so absence and zero value can be told apart when defaulting.
type CreateBookRequest struct {
	Title           string  `json:"title"`
	Author          string  `json:"author"`
	ISBN            string  `json:"isbn"`
	PublicationDate string  `json:"publication_date"`
	Genre           string  `json:"genre"`
	Description     *string `json:"description"`
	Available       *bool   `json:"available"`
	Copies          *int    `json:"copies"`
}

// UpdateBookRequest is the expected payload to patch a book. Every field
// is a pointer: only fields present in the request body are applied.
type UpdateBookRequest struct {
	Title           *string `json:"title"`
	Author          *string `json:"author"`
	ISBN            *string `json:"isbn"`
	PublicationDate *string `json:"publication_date"`
	Genre           *string `json:"genre"`
	Description     *string `json:"description"`
	Available       *bool   `json:"available"`
	Copies          *int    `json:"copies"`
}

// Fields flattens the patch into a map of the fields present in the
// request body, keyed by their document field names.
func (r *UpdateBookRequest) Fields() map[string]interface{} {
	fields := make(map[string]interface{})
	if r.Title != nil {
		fields["title"] = *r.Title
	}
	if r.Author != nil {
		fields["author"] = *r.Author
	}
	if r.ISBN != nil {
		fields["isbn"] = *r.ISBN
	}
	if r.PublicationDate != nil {
		fields["publication_date"] = *r.PublicationDate
	}
	if r.Genre != nil {
		fields["genre"] = *r.Genre
	}
	if r.Description != nil {
		fields["description"] = *r.Description
	}
	if r.Available != nil {
		fields["available"] = *r.Available
	}
	if r.Copies != nil {
		fields["copies"] = *r.Copies
	}
	return fields
}

// BookStorage defines possible operations on the books collection.
type BookStorage interface {
	Add(ctx context.Context, book Book) error
	GetOne(ctx context.Context, id primitive.ObjectID) (Book, error)
	GetAll(ctx context.Context) ([]Book, error)
	Update(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) (Book, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Search(ctx context.Context, query string) ([]Book, error)
	Ping(ctx context.Context) error
}
