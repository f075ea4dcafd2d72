package book_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/codeup/novabook/internal/book"
	bookPostgres "github.com/codeup/novabook/internal/book/postgres"
	bookDatamodel "github.com/codeup/novabook/internal/core/datamodel/book"
	loanDatamodel "github.com/codeup/novabook/internal/core/datamodel/loan"
	partnerDatamodel "github.com/codeup/novabook/internal/core/datamodel/partner"
	"github.com/codeup/novabook/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var _ = Describe("Book Handler Integration", func() {
	var (
		db      *gorm.DB
		repo    book.RepositoryAPI
		handler *book.Handler
		router  chi.Router
	)

	BeforeEach(func() {
		var err error
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Silent),
			TranslateError: true,
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)

		err = db.AutoMigrate(&bookDatamodel.Book{}, &partnerDatamodel.Partner{}, &loanDatamodel.Loan{})
		Expect(err).NotTo(HaveOccurred())

		repo = bookPostgres.NewBookRepository(db)
		service := book.NewService(repo, 1000, slogger)
		handler = book.NewHandler(&transport.BaseHandler{Logger: slogger}, service)

		router = chi.NewRouter()
		router.Get("/books", handler.ListBooks)
		router.Post("/books", handler.CreateBook)
		router.Get("/books/{id}", handler.GetBook)
		router.Put("/books/{id}", handler.UpdateBook)
		router.Delete("/books/{id}", handler.DeleteBook)

		for _, b := range []*bookDatamodel.Book{
			{Title: "Dune", Author: "Frank Herbert", ISBN: "9780441013593", PublicationYear: 1965, Available: true},
			{Title: "Emma", Author: "Jane Austen", ISBN: "9780141439587", PublicationYear: 1815, Available: false},
		} {
			Expect(repo.Create(context.Background(), b)).To(Succeed())
		}
	})

	send := func(method, path string, body interface{}) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &buf)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	It("should handle GET /books request successfully", func() {
		w := send(http.MethodGet, "/books", nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(ContainSubstring("application/json"))

		var response book.BooksResponse
		Expect(json.NewDecoder(w.Body).Decode(&response)).To(Succeed())
		Expect(response.Total).To(Equal(2))
	})

	It("should filter available books", func() {
		w := send(http.MethodGet, "/books?available=true", nil)

		var response book.BooksResponse
		Expect(json.NewDecoder(w.Body).Decode(&response)).To(Succeed())
		Expect(response.Books).To(HaveLen(1))
		Expect(response.Books[0].Title).To(Equal("Dune"))
	})

	It("should create a book and reject its duplicate", func() {
		body := map[string]interface{}{
			"title": "Kindred", "author": "Octavia E. Butler", "isbn": "978-0-8070-8369-7", "publication_year": 1979,
		}
		w := send(http.MethodPost, "/books", body)
		Expect(w.Code).To(Equal(http.StatusCreated))

		var created book.Book
		Expect(json.NewDecoder(w.Body).Decode(&created)).To(Succeed())
		Expect(created.ISBN).To(Equal("9780807083697"))
		Expect(created.Available).To(BeTrue())

		Expect(send(http.MethodPost, "/books", body).Code).To(Equal(http.StatusConflict))
	})

	It("should answer 400 for invalid payloads", func() {
		w := send(http.MethodPost, "/books", map[string]interface{}{"title": "", "author": "", "isbn": "1", "publication_year": 3000})
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("should answer 404 for an unknown book", func() {
		Expect(send(http.MethodGet, "/books/99", nil).Code).To(Equal(http.StatusNotFound))
		Expect(send(http.MethodDelete, "/books/99", nil).Code).To(Equal(http.StatusNotFound))
	})

	It("should update and delete a book", func() {
		w := send(http.MethodPut, "/books/1", map[string]interface{}{
			"title": "Dune", "author": "Frank Herbert", "isbn": "9780441013593", "publication_year": 1966,
		})
		Expect(w.Code).To(Equal(http.StatusOK))

		Expect(send(http.MethodDelete, "/books/1", nil).Code).To(Equal(http.StatusNoContent))
		Expect(send(http.MethodGet, "/books/1", nil).Code).To(Equal(http.StatusNotFound))
	})
})
