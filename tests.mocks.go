package main

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// This file contains mocks definitions needed to perform unit tests.

type MockBookStorage struct {
	AddFunc    func(ctx context.Context, book Book) error
	GetOneFunc func(ctx context.Context, id primitive.ObjectID) (Book, error)
	GetAllFunc func(ctx context.Context) ([]Book, error)
	UpdateFunc func(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) (Book, error)
	DeleteFunc func(ctx context.Context, id primitive.ObjectID) error
	SearchFunc func(ctx context.Context, query string) ([]Book, error)
	PingFunc   func(ctx context.Context) error
}

// Add mocks the behavior of book creation by the repository.
func (m *MockBookStorage) Add(ctx context.Context, book Book) error {
	return m.AddFunc(ctx, book)
}

// GetOne mocks the behavior of retrieving a book by the repository.
func (m *MockBookStorage) GetOne(ctx context.Context, id primitive.ObjectID) (Book, error) {
	return m.GetOneFunc(ctx, id)
}

// GetAll mocks the behavior of retrieving all books by the repository.
func (m *MockBookStorage) GetAll(ctx context.Context) ([]Book, error) {
	return m.GetAllFunc(ctx)
}

// Update mocks the behavior of patching a book by the repository.
func (m *MockBookStorage) Update(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) (Book, error) {
	return m.UpdateFunc(ctx, id, fields)
}

// Delete mocks the behavior of deleting a book by the repository.
func (m *MockBookStorage) Delete(ctx context.Context, id primitive.ObjectID) error {
	return m.DeleteFunc(ctx, id)
}

// Search mocks the behavior of searching books by the repository.
func (m *MockBookStorage) Search(ctx context.Context, query string) ([]Book, error) {
	return m.SearchFunc(ctx, query)
}

// Ping mocks the behavior of checking the store reachability.
func (m *MockBookStorage) Ping(ctx context.Context) error {
	return m.PingFunc(ctx)
}

// MockClocker implements a fake Clocker.
type MockClocker struct {
	MockNow time.Time
}

// NewMockClocker returns a mocked instance with fixed time.
func NewMockClocker() *MockClocker {
	return &MockClocker{time.Date(2023, 0o7, 0o2, 0o0, 0o0, 0o0, 0o00000000, time.UTC)}
}

// Now returns an already defined time to be used as mock. This
// equals to `Sun, 02 Jul 2023 00:00:00 UTC` in time.RFC1123 format.
func (mck *MockClocker) Now() time.Time {
	return mck.MockNow
}

// MockBookIDProvider implements a fake BookIDProvider.
type MockBookIDProvider struct {
	MockedID primitive.ObjectID
	Valid    bool
}

// NewMockBookIDProvider returns a mocked instance with predictable id.
func NewMockBookIDProvider(id primitive.ObjectID, valid bool) *MockBookIDProvider {
	return &MockBookIDProvider{MockedID: id, Valid: valid}
}

// Generate provides the configured id to be used as mock.
func (m *MockBookIDProvider) Generate() primitive.ObjectID {
	return m.MockedID
}

// Parse mocks identifier validation by providing the configured status.
func (m *MockBookIDProvider) Parse(_ string) (primitive.ObjectID, error) {
	if !m.Valid {
		return primitive.NilObjectID, ErrInvalidBookID
	}
	return m.MockedID, nil
}
