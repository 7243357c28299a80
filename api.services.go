package main

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type BookServiceProvider interface {
	Create(ctx context.Context, req CreateBookRequest) (Book, error)
	GetOne(ctx context.Context, id primitive.ObjectID) (Book, error)
	GetAll(ctx context.Context) ([]Book, error)
	Update(ctx context.Context, id primitive.ObjectID, req UpdateBookRequest) (Book, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Search(ctx context.Context, query string) ([]Book, error)
	Health(ctx context.Context) error
}

type BookService struct {
	logger  *zap.Logger
	config  *Config
	clock   Clocker
	ids     BookIDProvider
	storage BookStorage
}

func NewBookService(logger *zap.Logger, config *Config, clock Clocker, ids BookIDProvider, storage BookStorage) BookServiceProvider {
	return &BookService{
		logger:  logger,
		config:  config,
		clock:   clock,
		ids:     ids,
		storage: storage,
	}
}

// Create assigns the identifier, the optional fields defaults and both
// timestamps, then stores the document with a single insert.
func (bs *BookService) Create(ctx context.Context, req CreateBookRequest) (Book, error) {
	now := TimestampISO(bs.clock.Now())
	book := Book{
		ID:              bs.ids.Generate(),
		Title:           req.Title,
		Author:          req.Author,
		ISBN:            req.ISBN,
		PublicationDate: req.PublicationDate,
		Genre:           req.Genre,
		Description:     "",
		Available:       true,
		Copies:          1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if req.Description != nil {
		book.Description = *req.Description
	}
	if req.Available != nil {
		book.Available = *req.Available
	}
	if req.Copies != nil {
		book.Copies = *req.Copies
	}

	if err := bs.storage.Add(ctx, book); err != nil {
		return Book{}, err
	}
	return book, nil
}

func (bs *BookService) GetOne(ctx context.Context, id primitive.ObjectID) (Book, error) {
	book, err := bs.storage.GetOne(ctx, id)
	return book, err
}

func (bs *BookService) GetAll(ctx context.Context) ([]Book, error) {
	books, err := bs.storage.GetAll(ctx)
	return books, err
}

// Update applies only the fields present in the patch and refreshes the
// `updated_at` timestamp. The patch and the timestamp go through one
// single storage call so no partially-applied update can be observed.
func (bs *BookService) Update(ctx context.Context, id primitive.ObjectID, req UpdateBookRequest) (Book, error) {
	fields := req.Fields()
	fields["updated_at"] = TimestampISO(bs.clock.Now())
	return bs.storage.Update(ctx, id, fields)
}

func (bs *BookService) Delete(ctx context.Context, id primitive.ObjectID) error {
	return bs.storage.Delete(ctx, id)
}

// Search returns every book matching the query as a case-insensitive
// substring of its title or author.
func (bs *BookService) Search(ctx context.Context, query string) ([]Book, error) {
	if len(query) == 0 {
		return nil, ErrEmptySearchQuery
	}
	return bs.storage.Search(ctx, query)
}

// Health reports the document store reachability.
func (bs *BookService) Health(ctx context.Context) error {
	return bs.storage.Ping(ctx)
}
