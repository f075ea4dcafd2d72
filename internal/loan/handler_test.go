package loan_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	"github.com/codeup/novabook/internal"
	"github.com/codeup/novabook/internal/loan"
	"github.com/codeup/novabook/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Loan Handler", func() {
	var (
		mockRepo *MockRepository
		router   chi.Router
		now      time.Time
	)

	do := func(method, path string, body interface{}) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	BeforeEach(func() {
		mockRepo = NewMockRepository()
		mockRepo.AddBook(1)
		mockRepo.AddPartner(10, true)
		now = time.Date(2024, time.March, 20, 9, 0, 0, 0, time.UTC)

		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service := loan.NewService(mockRepo, internal.DefaultConfig().Library, &RecordingBus{}, logger).
			WithClock(func() time.Time { return now })
		handler := loan.NewHandler(&transport.BaseHandler{Logger: logger}, service)

		router = chi.NewRouter()
		router.Get("/loans", handler.ListLoans)
		router.Post("/loans", handler.CreateLoan)
		router.Get("/loans/{id}", handler.GetLoan)
		router.Post("/loans/{id}/return", handler.ReturnLoan)
		router.Delete("/loans/{id}", handler.DeleteLoan)
		router.Get("/partners/{id}/loans", handler.ListPartnerLoans)
		router.Get("/books/{id}/loan-status", handler.BookLoanStatus)
	})

	It("creates a loan and reports its assessment", func() {
		w := do(http.MethodPost, "/loans", map[string]interface{}{"book_id": 1, "partner_id": 10, "loan_date": "2024-03-05"})
		Expect(w.Code).To(Equal(http.StatusCreated))

		var resp loan.LoanResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Loan).NotTo(BeNil())
		Expect(resp.BookID).To(Equal(int64(1)))
		Expect(resp.Returned).To(BeFalse())
		Expect(resp.Assessment.DaysElapsed).To(Equal(15))
		Expect(resp.Assessment.Overdue).To(BeTrue())
		Expect(resp.Assessment.Fine).To(Equal(1.0))
	})

	It("rejects unknown fields in the body", func() {
		w := do(http.MethodPost, "/loans", map[string]interface{}{"book_id": 1, "partner_id": 10, "returned": true})
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("answers 409 for a book that is already on loan", func() {
		Expect(do(http.MethodPost, "/loans", map[string]interface{}{"book_id": 1, "partner_id": 10}).Code).To(Equal(http.StatusCreated))

		w := do(http.MethodPost, "/loans", map[string]interface{}{"book_id": 1, "partner_id": 10})
		Expect(w.Code).To(Equal(http.StatusConflict))

		var resp struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Error.Code).To(Equal(string(internal.ErrCodeBookUnavailable)))
	})

	It("returns a loan without a body and rejects the second return", func() {
		Expect(do(http.MethodPost, "/loans", map[string]interface{}{"book_id": 1, "partner_id": 10}).Code).To(Equal(http.StatusCreated))

		w := do(http.MethodPost, "/loans/1/return", nil)
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp loan.LoanResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Returned).To(BeTrue())
		Expect(resp.ReturnDate).NotTo(BeNil())

		Expect(do(http.MethodPost, "/loans/1/return", nil).Code).To(Equal(http.StatusConflict))
	})

	It("filters loans by status", func() {
		Expect(do(http.MethodPost, "/loans", map[string]interface{}{"book_id": 1, "partner_id": 10}).Code).To(Equal(http.StatusCreated))

		w := do(http.MethodGet, "/loans?status=overdue", nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		var resp loan.LoansResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Total).To(Equal(0))

		w = do(http.MethodGet, "/loans?status=open", nil)
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Total).To(Equal(1))

		Expect(do(http.MethodGet, "/loans?status=late", nil).Code).To(Equal(http.StatusBadRequest))
	})

	It("lists a partner's loans and a book's loan status", func() {
		Expect(do(http.MethodPost, "/loans", map[string]interface{}{"book_id": 1, "partner_id": 10}).Code).To(Equal(http.StatusCreated))

		w := do(http.MethodGet, "/partners/10/loans", nil)
		var loans loan.LoansResponse
		Expect(json.NewDecoder(w.Body).Decode(&loans)).To(Succeed())
		Expect(loans.Total).To(Equal(1))

		w = do(http.MethodGet, "/books/1/loan-status", nil)
		var status loan.BookLoanStatus
		Expect(json.NewDecoder(w.Body).Decode(&status)).To(Succeed())
		Expect(status.OnLoan).To(BeTrue())
	})

	It("deletes a loan", func() {
		Expect(do(http.MethodPost, "/loans", map[string]interface{}{"book_id": 1, "partner_id": 10}).Code).To(Equal(http.StatusCreated))
		Expect(do(http.MethodDelete, "/loans/1", nil).Code).To(Equal(http.StatusNoContent))
		Expect(do(http.MethodGet, "/loans/1", nil).Code).To(Equal(http.StatusNotFound))
		Expect(mockRepo.BookAvailable(1)).To(BeTrue())
	})

	It("rejects a non numeric id", func() {
		Expect(do(http.MethodGet, "/loans/abc", nil).Code).To(Equal(http.StatusBadRequest))
	})
})
