package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// newTestAPIHandler wires an api handler over the given storage mock with
// a fixed clock and the real object id provider.
func newTestAPIHandler(storage BookStorage) *APIHandler {
	clock := NewMockClocker()
	ids := NewObjectIDProvider()
	bs := NewBookService(zap.NewNop(), nil, clock, ids, storage)
	return NewAPIHandler(zap.NewNop(), nil, &Statistics{started: time.Now()}, clock, ids, bs)
}

// TestCreateBookHandler ensures api handler can create a book.
//
//nolint:funlen
func TestCreateBookHandler(t *testing.T) {
	t.Run("should pass: valid payload with defaults", func(t *testing.T) {
		var stored Book
		mockRepo := &MockBookStorage{
			AddFunc: func(ctx context.Context, book Book) error {
				stored = book
				return nil
			},
		}
		mockedID, err := primitive.ObjectIDFromHex("507f1f77bcf86cd799439011")
		assert.NoError(t, err)
		clock := NewMockClocker()
		ids := NewMockBookIDProvider(mockedID, true)
		bs := NewBookService(zap.NewNop(), nil, clock, ids, mockRepo)
		api := NewAPIHandler(zap.NewNop(), nil, &Statistics{started: time.Now()}, clock, ids, bs)

		payload := []byte(`{"title":"Dune", "author":"Frank Herbert", "isbn":"X", "publication_date":"1965-01-01", "genre":"Sci-Fi"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/books", bytes.NewBuffer(payload))
		w := httptest.NewRecorder()
		api.CreateBook(w, req, httprouter.Params{})
		res := w.Result()
		defer res.Body.Close()
		data, err := io.ReadAll(res.Body)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusCreated, res.StatusCode)
		assert.Equal(t, "application/json; charset=UTF-8", res.Header.Get("Content-Type"))

		resultMap := make(map[string]interface{})
		err = json.Unmarshal(data, &resultMap)
		assert.NoError(t, err)

		v, ok := resultMap["message"]
		assert.True(t, ok)
		assert.Equal(t, "Book created successfully", v)

		v, ok = resultMap["book"]
		assert.True(t, ok)
		bookMap, ok := v.(map[string]interface{})
		assert.True(t, ok)
		assert.Equal(t, "Dune", bookMap["title"])
		assert.Equal(t, "Frank Herbert", bookMap["author"])
		assert.Equal(t, "X", bookMap["isbn"])
		assert.Equal(t, "1965-01-01", bookMap["publication_date"])
		assert.Equal(t, "Sci-Fi", bookMap["genre"])
		assert.Equal(t, "", bookMap["description"])
		assert.Equal(t, true, bookMap["available"])
		assert.Equal(t, float64(1), bookMap["copies"])
		assert.Equal(t, "2023-07-02T00:00:00Z", bookMap["created_at"])
		assert.Equal(t, "2023-07-02T00:00:00Z", bookMap["updated_at"])
		assert.Equal(t, "507f1f77bcf86cd799439011", bookMap["_id"])

		// the stored document matches the returned one.
		assert.Equal(t, mockedID, stored.ID)
		assert.Equal(t, 1, stored.Copies)
		assert.True(t, stored.Available)
	})

	t.Run("should pass: optional fields provided", func(t *testing.T) {
		mockRepo := &MockBookStorage{
			AddFunc: func(ctx context.Context, book Book) error {
				return nil
			},
		}
		api := newTestAPIHandler(mockRepo)

		payload := []byte(`{"title":"Dune", "author":"Frank Herbert", "isbn":"X", "publication_date":"1965-01-01",
		"genre":"Sci-Fi", "description":"sand", "available":false, "copies":5}`)
		req := httptest.NewRequest(http.MethodPost, "/api/books", bytes.NewBuffer(payload))
		w := httptest.NewRecorder()
		api.CreateBook(w, req, httprouter.Params{})
		res := w.Result()
		defer res.Body.Close()
		data, err := io.ReadAll(res.Body)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusCreated, res.StatusCode)

		var resp BookResponse
		assert.NoError(t, json.Unmarshal(data, &resp))
		assert.Equal(t, "sand", resp.Book.Description)
		assert.Equal(t, false, resp.Book.Available)
		assert.Equal(t, 5, resp.Book.Copies)
	})

	t.Run("should fail: storage insertion failure", func(t *testing.T) {
		mockRepo := &MockBookStorage{
			AddFunc: func(ctx context.Context, book Book) error {
				return errors.New("storage failure")
			},
		}
		api := newTestAPIHandler(mockRepo)

		payload := []byte(`{"title":"Dune", "author":"Frank Herbert", "isbn":"X", "publication_date":"1965-01-01", "genre":"Sci-Fi"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/books", bytes.NewBuffer(payload))
		w := httptest.NewRecorder()
		api.CreateBook(w, req, httprouter.Params{})
		res := w.Result()
		defer res.Body.Close()
		data, err := io.ReadAll(res.Body)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
		assert.JSONEq(t, `{"error":"storage failure"}`, string(data))
	})

	t.Run("should fail: invalid payload", func(t *testing.T) {
		var called bool
		mockRepo := &MockBookStorage{
			AddFunc: func(ctx context.Context, book Book) error {
				called = true
				return nil
			},
		}
		api := newTestAPIHandler(mockRepo)

		payload := []byte(`{"title":1, "author":"Frank Herbert"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/books", bytes.NewBuffer(payload))
		w := httptest.NewRecorder()
		api.CreateBook(w, req, httprouter.Params{})
		res := w.Result()
		defer res.Body.Close()
		data, err := io.ReadAll(res.Body)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		assert.JSONEq(t, `{"error":"invalid request body"}`, string(data))
		assert.False(t, called)
	})

	t.Run("should fail: required field in payload", func(t *testing.T) {
		testCases := []struct {
			name     string
			payload  []byte
			expected string
		}{
			{
				name:     "empty title",
				payload:  []byte(`{"title":"", "author":"a", "isbn":"i", "publication_date":"p", "genre":"g"}`),
				expected: `{"error":"title is required"}`,
			},
			{
				name:     "missing title",
				payload:  []byte(`{"author":"a", "isbn":"i", "publication_date":"p", "genre":"g"}`),
				expected: `{"error":"title is required"}`,
			},
			{
				name:     "missing author",
				payload:  []byte(`{"title":"t", "isbn":"i", "publication_date":"p", "genre":"g"}`),
				expected: `{"error":"author is required"}`,
			},
			{
				name:     "missing isbn",
				payload:  []byte(`{"title":"t", "author":"a", "publication_date":"p", "genre":"g"}`),
				expected: `{"error":"isbn is required"}`,
			},
			{
				name:     "missing publication date",
				payload:  []byte(`{"title":"t", "author":"a", "isbn":"i", "genre":"g"}`),
				expected: `{"error":"publication_date is required"}`,
			},
			{
				name:     "missing genre",
				payload:  []byte(`{"title":"t", "author":"a", "isbn":"i", "publication_date":"p"}`),
				expected: `{"error":"genre is required"}`,
			},
		}

		var called bool
		mockRepo := &MockBookStorage{
			AddFunc: func(ctx context.Context, book Book) error {
				called = true
				return nil
			},
		}
		api := newTestAPIHandler(mockRepo)

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				req := httptest.NewRequest(http.MethodPost, "/api/books", bytes.NewBuffer(tc.payload))
				w := httptest.NewRecorder()
				api.CreateBook(w, req, httprouter.Params{})
				res := w.Result()
				defer res.Body.Close()
				assert.Equal(t, http.StatusBadRequest, res.StatusCode)
				data, err := io.ReadAll(res.Body)
				assert.NoError(t, err)
				assert.JSONEq(t, tc.expected, string(data))
				assert.False(t, called)
			})
		}
	})
}

// TestGetOneBookHandler ensures fetching one book applies the identifier
// validation and the not-found rules.
func TestGetOneBookHandler(t *testing.T) {
	existingID := "507f1f77bcf86cd799439011"

	t.Run("should fail: malformed id", func(t *testing.T) {
		var called bool
		mockRepo := &MockBookStorage{
			GetOneFunc: func(ctx context.Context, id primitive.ObjectID) (Book, error) {
				called = true
				return Book{}, nil
			},
		}
		api := newTestAPIHandler(mockRepo)
		req := httptest.NewRequest(http.MethodGet, "/api/books/invalid_id", nil)
		w := httptest.NewRecorder()
		api.GetOneBook(w, req, httprouter.Params{{Key: "id", Value: "invalid_id"}})
		res := w.Result()
		defer res.Body.Close()
		data, err := io.ReadAll(res.Body)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		assert.JSONEq(t, `{"error":"Invalid book ID"}`, string(data))
		assert.False(t, called)
	})

	t.Run("should fail: well-formed but absent id", func(t *testing.T) {
		mockRepo := &MockBookStorage{
			GetOneFunc: func(ctx context.Context, id primitive.ObjectID) (Book, error) {
				return Book{}, ErrBookNotFound
			},
		}
		api := newTestAPIHandler(mockRepo)
		req := httptest.NewRequest(http.MethodGet, "/api/books/"+existingID, nil)
		w := httptest.NewRecorder()
		api.GetOneBook(w, req, httprouter.Params{{Key: "id", Value: existingID}})
		res := w.Result()
		defer res.Body.Close()
		data, err := io.ReadAll(res.Body)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
		assert.JSONEq(t, `{"error":"Book not found"}`, string(data))
	})

	t.Run("should pass: existing book", func(t *testing.T) {
		oid, err := primitive.ObjectIDFromHex(existingID)
		assert.NoError(t, err)
		mockRepo := &MockBookStorage{
			GetOneFunc: func(ctx context.Context, id primitive.ObjectID) (Book, error) {
				assert.Equal(t, oid, id)
				return Book{ID: oid, Title: "Dune", Author: "Frank Herbert"}, nil
			},
		}
		api := newTestAPIHandler(mockRepo)
		req := httptest.NewRequest(http.MethodGet, "/api/books/"+existingID, nil)
		w := httptest.NewRecorder()
		api.GetOneBook(w, req, httprouter.Params{{Key: "id", Value: existingID}})
		res := w.Result()
		defer res.Body.Close()
		data, err := io.ReadAll(res.Body)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, res.StatusCode)

		var resp BookResponse
		assert.NoError(t, json.Unmarshal(data, &resp))
		assert.Equal(t, "Book retrieved successfully", resp.Message)
		assert.Equal(t, existingID, resp.Book.ID.Hex())
		assert.Equal(t, "Dune", resp.Book.Title)
	})
}

// TestUpdateBookHandler ensures partial update semantics: only fields
// present into the payload reach the storage, plus the refreshed timestamp.
func TestUpdateBookHandler(t *testing.T) {
	existingID := "507f1f77bcf86cd799439011"

	t.Run("should fail: malformed id", func(t *testing.T) {
		api := newTestAPIHandler(&MockBookStorage{})
		req := httptest.NewRequest(http.MethodPut, "/api/books/invalid_id", bytes.NewBufferString(`{"copies":3}`))
		w := httptest.NewRecorder()
		api.UpdateBook(w, req, httprouter.Params{{Key: "id", Value: "invalid_id"}})
		res := w.Result()
		defer res.Body.Close()
		data, err := io.ReadAll(res.Body)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		assert.JSONEq(t, `{"error":"Invalid book ID"}`, string(data))
	})

	t.Run("should pass: single field patch", func(t *testing.T) {
		oid, err := primitive.ObjectIDFromHex(existingID)
		assert.NoError(t, err)
		var applied map[string]interface{}
		mockRepo := &MockBookStorage{
			UpdateFunc: func(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) (Book, error) {
				applied = fields
				return Book{ID: oid, Title: "Dune", Copies: 3, UpdatedAt: fields["updated_at"].(string)}, nil
			},
		}
		api := newTestAPIHandler(mockRepo)
		req := httptest.NewRequest(http.MethodPut, "/api/books/"+existingID, bytes.NewBufferString(`{"copies":3}`))
		w := httptest.NewRecorder()
		api.UpdateBook(w, req, httprouter.Params{{Key: "id", Value: existingID}})
		res := w.Result()
		defer res.Body.Close()
		data, err := io.ReadAll(res.Body)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, res.StatusCode)

		// only the patched field and the refreshed timestamp are applied.
		assert.Equal(t, 2, len(applied))
		assert.Equal(t, 3, applied["copies"])
		assert.Equal(t, "2023-07-02T00:00:00Z", applied["updated_at"])

		var resp BookResponse
		assert.NoError(t, json.Unmarshal(data, &resp))
		assert.Equal(t, "Book updated successfully", resp.Message)
		assert.Equal(t, "Dune", resp.Book.Title)
		assert.Equal(t, 3, resp.Book.Copies)
	})

	t.Run("should pass: empty patch still refreshes timestamp", func(t *testing.T) {
		var applied map[string]interface{}
		mockRepo := &MockBookStorage{
			UpdateFunc: func(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) (Book, error) {
				applied = fields
				return Book{}, nil
			},
		}
		api := newTestAPIHandler(mockRepo)
		req := httptest.NewRequest(http.MethodPut, "/api/books/"+existingID, bytes.NewBufferString(`{}`))
		w := httptest.NewRecorder()
		api.UpdateBook(w, req, httprouter.Params{{Key: "id", Value: existingID}})
		res := w.Result()
		defer res.Body.Close()
		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal(t, 1, len(applied))
		assert.Equal(t, "2023-07-02T00:00:00Z", applied["updated_at"])
	})

	t.Run("should fail: book does not exist", func(t *testing.T) {
		mockRepo := &MockBookStorage{
			UpdateFunc: func(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) (Book, error) {
				return Book{}, ErrBookNotFound
			},
		}
		api := newTestAPIHandler(mockRepo)
		req := httptest.NewRequest(http.MethodPut, "/api/books/"+existingID, bytes.NewBufferString(`{"copies":3}`))
		w := httptest.NewRecorder()
		api.UpdateBook(w, req, httprouter.Params{{Key: "id", Value: existingID}})
		res := w.Result()
		defer res.Body.Close()
		data, err := io.ReadAll(res.Body)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
		assert.JSONEq(t, `{"error":"Book not found"}`, string(data))
	})
}

// TestDeleteOneBookHandler ensures deletion returns the removed identifier
// and that a second deletion of the same id yields a not found.
func TestDeleteOneBookHandler(t *testing.T) {
	existingID := "507f1f77bcf86cd799439011"

	t.Run("should fail: malformed id", func(t *testing.T) {
		api := newTestAPIHandler(&MockBookStorage{})
		req := httptest.NewRequest(http.MethodDelete, "/api/books/invalid_id", nil)
		w := httptest.NewRecorder()
		api.DeleteOneBook(w, req, httprouter.Params{{Key: "id", Value: "invalid_id"}})
		res := w.Result()
		defer res.Body.Close()
		data, err := io.ReadAll(res.Body)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		assert.JSONEq(t, `{"error":"Invalid book ID"}`, string(data))
	})

	t.Run("should pass: existing book", func(t *testing.T) {
		mockRepo := &MockBookStorage{
			DeleteFunc: func(ctx context.Context, id primitive.ObjectID) error {
				return nil
			},
		}
		api := newTestAPIHandler(mockRepo)
		req := httptest.NewRequest(http.MethodDelete, "/api/books/"+existingID, nil)
		w := httptest.NewRecorder()
		api.DeleteOneBook(w, req, httprouter.Params{{Key: "id", Value: existingID}})
		res := w.Result()
		defer res.Body.Close()
		data, err := io.ReadAll(res.Body)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.JSONEq(t, `{"message":"Book deleted successfully", "book_id":"507f1f77bcf86cd799439011"}`, string(data))
	})

	t.Run("should fail: already deleted book", func(t *testing.T) {
		mockRepo := &MockBookStorage{
			DeleteFunc: func(ctx context.Context, id primitive.ObjectID) error {
				return ErrBookNotFound
			},
		}
		api := newTestAPIHandler(mockRepo)
		req := httptest.NewRequest(http.MethodDelete, "/api/books/"+existingID, nil)
		w := httptest.NewRecorder()
		api.DeleteOneBook(w, req, httprouter.Params{{Key: "id", Value: existingID}})
		res := w.Result()
		defer res.Body.Close()
		data, err := io.ReadAll(res.Body)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
		assert.JSONEq(t, `{"error":"Book not found"}`, string(data))
	})
}

// TestGetAllBooksHandler ensures listing returns every stored book with its count.
func TestGetAllBooksHandler(t *testing.T) {
	mockRepo := &MockBookStorage{
		GetAllFunc: func(ctx context.Context) ([]Book, error) {
			return []Book{
				{ID: primitive.NewObjectID(), Title: "Dune"},
				{ID: primitive.NewObjectID(), Title: "Hyperion"},
			}, nil
		},
	}
	api := newTestAPIHandler(mockRepo)
	req := httptest.NewRequest(http.MethodGet, "/api/books", nil)
	w := httptest.NewRecorder()
	api.GetAllBooks(w, req, httprouter.Params{})
	res := w.Result()
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var resp BooksResponse
	assert.NoError(t, json.Unmarshal(data, &resp))
	assert.Equal(t, "Books retrieved successfully", resp.Message)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, 2, len(resp.Books))
}

// TestSearchBooksHandler ensures the search endpoint validates the query and
// reports matches with their count.
func TestSearchBooksHandler(t *testing.T) {
	t.Run("should fail: missing query", func(t *testing.T) {
		api := newTestAPIHandler(&MockBookStorage{})
		req := httptest.NewRequest(http.MethodGet, "/api/books/search", nil)
		w := httptest.NewRecorder()
		api.SearchBooks(w, req, httprouter.Params{})
		res := w.Result()
		defer res.Body.Close()
		data, err := io.ReadAll(res.Body)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		assert.JSONEq(t, `{"error":"Search query is required"}`, string(data))
	})

	t.Run("should pass: matching books", func(t *testing.T) {
		mockRepo := &MockBookStorage{
			SearchFunc: func(ctx context.Context, query string) ([]Book, error) {
				assert.Equal(t, "dune", query)
				return []Book{{ID: primitive.NewObjectID(), Title: "Dune"}}, nil
			},
		}
		api := newTestAPIHandler(mockRepo)
		req := httptest.NewRequest(http.MethodGet, "/api/books/search?q=dune", nil)
		w := httptest.NewRecorder()
		api.SearchBooks(w, req, httprouter.Params{})
		res := w.Result()
		defer res.Body.Close()
		data, err := io.ReadAll(res.Body)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, res.StatusCode)

		var resp BooksResponse
		assert.NoError(t, json.Unmarshal(data, &resp))
		assert.Equal(t, "Search completed", resp.Message)
		assert.Equal(t, 1, resp.Count)
	})

	t.Run("should pass: no match is not an error", func(t *testing.T) {
		mockRepo := &MockBookStorage{
			SearchFunc: func(ctx context.Context, query string) ([]Book, error) {
				return []Book{}, nil
			},
		}
		api := newTestAPIHandler(mockRepo)
		req := httptest.NewRequest(http.MethodGet, "/api/books/search?q=nowhere", nil)
		w := httptest.NewRecorder()
		api.SearchBooks(w, req, httprouter.Params{})
		res := w.Result()
		defer res.Body.Close()
		data, err := io.ReadAll(res.Body)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.JSONEq(t, `{"message":"Search completed", "count":0, "books":[]}`, string(data))
	})

	t.Run("should pass: search dispatched from the id wildcard", func(t *testing.T) {
		mockRepo := &MockBookStorage{
			SearchFunc: func(ctx context.Context, query string) ([]Book, error) {
				return []Book{}, nil
			},
		}
		api := newTestAPIHandler(mockRepo)
		req := httptest.NewRequest(http.MethodGet, "/api/books/search?q=dune", nil)
		w := httptest.NewRecorder()
		api.GetOneBook(w, req, httprouter.Params{{Key: "id", Value: "search"}})
		res := w.Result()
		defer res.Body.Close()
		assert.Equal(t, http.StatusOK, res.StatusCode)
	})
}
