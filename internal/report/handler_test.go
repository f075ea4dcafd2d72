package report_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"time"

	"github.com/codeup/novabook/internal/loan"
	"github.com/codeup/novabook/internal/report"
	"github.com/codeup/novabook/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Report Handler", func() {
	var (
		catalog *fakeCatalog
		router  chi.Router
	)

	BeforeEach(func() {
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		reader := &mockReader{
			books: []report.BookRow{{ID: 1, Title: "Dune", Author: "Frank Herbert", ISBN: "9780441013593", PublicationYear: 1965, Available: true}},
		}
		catalog = &fakeCatalog{isbns: map[string]bool{}}
		service := report.NewService(reader, catalog, loan.Policy{LoanPeriodDays: 14}, slogger).
			WithClock(func() time.Time { return date(2024, time.March, 20) })
		handler := report.NewHandler(&transport.BaseHandler{Logger: slogger}, service)

		router = chi.NewRouter()
		router.Get("/reports/{kind}", handler.ExportReport)
		router.Post("/books/import", handler.ImportBooks)
	})

	Describe("GET /reports/{kind}", func() {
		It("should return the CSV as an attachment", func() {
			req := httptest.NewRequest(http.MethodGet, "/reports/books", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Header().Get("Content-Type")).To(HavePrefix("text/csv"))
			Expect(w.Header().Get("Content-Disposition")).To(Equal(`attachment; filename="books.csv"`))
			Expect(w.Body.String()).To(HavePrefix("ID,Title,Author"))
			Expect(w.Body.String()).To(ContainSubstring("Dune"))
		})

		It("should return 400 for an unknown report", func() {
			req := httptest.NewRequest(http.MethodGet, "/reports/fines", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("POST /books/import", func() {
		const input = "Title,Author,ISBN,Publication Year\nDune,Frank Herbert,9780441013593,1965\n"

		decode := func(w *httptest.ResponseRecorder) report.ImportResult {
			var result report.ImportResult
			Expect(json.Unmarshal(w.Body.Bytes(), &result)).To(Succeed())
			return result
		}

		It("should import a raw CSV body", func() {
			req := httptest.NewRequest(http.MethodPost, "/books/import", strings.NewReader(input))
			req.Header.Set("Content-Type", "text/csv")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(decode(w).Imported).To(Equal(1))
			Expect(catalog.isbns).To(HaveKey("9780441013593"))
		})

		It("should import a multipart upload", func() {
			var body bytes.Buffer
			mw := multipart.NewWriter(&body)
			part, err := mw.CreateFormFile("file", "books.csv")
			Expect(err).NotTo(HaveOccurred())
			_, err = part.Write([]byte(input))
			Expect(err).NotTo(HaveOccurred())
			Expect(mw.Close()).To(Succeed())

			req := httptest.NewRequest(http.MethodPost, "/books/import", &body)
			req.Header.Set("Content-Type", mw.FormDataContentType())
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(decode(w).Imported).To(Equal(1))
		})

		It("should require the file field in a multipart form", func() {
			var body bytes.Buffer
			mw := multipart.NewWriter(&body)
			Expect(mw.WriteField("other", "x")).To(Succeed())
			Expect(mw.Close()).To(Succeed())

			req := httptest.NewRequest(http.MethodPost, "/books/import", &body)
			req.Header.Set("Content-Type", mw.FormDataContentType())
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req.WithContext(context.Background()))

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})
})
