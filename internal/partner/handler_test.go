package partner_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	bookDatamodel "github.com/codeup/novabook/internal/core/datamodel/book"
	loanDatamodel "github.com/codeup/novabook/internal/core/datamodel/loan"
	partnerDatamodel "github.com/codeup/novabook/internal/core/datamodel/partner"
	"github.com/codeup/novabook/internal/partner"
	partnerPostgres "github.com/codeup/novabook/internal/partner/postgres"
	"github.com/codeup/novabook/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var _ = Describe("Partner Handler Integration", func() {
	var (
		db     *gorm.DB
		repo   partner.RepositoryAPI
		router chi.Router
		ana    *partnerDatamodel.Partner
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

		Expect(db.AutoMigrate(&bookDatamodel.Book{}, &partnerDatamodel.Partner{}, &loanDatamodel.Loan{})).To(Succeed())

		repo = partnerPostgres.NewPartnerRepository(db)
		handler := partner.NewHandler(&transport.BaseHandler{Logger: slogger}, partner.NewService(repo, slogger))

		router = chi.NewRouter()
		router.Get("/partners", handler.ListPartners)
		router.Post("/partners", handler.CreatePartner)
		router.Get("/partners/{id}", handler.GetPartner)
		router.Put("/partners/{id}", handler.UpdatePartner)
		router.Patch("/partners/{id}/activate", handler.ActivatePartner)
		router.Patch("/partners/{id}/deactivate", handler.DeactivatePartner)
		router.Delete("/partners/{id}", handler.DeletePartner)

		ana = &partnerDatamodel.Partner{Name: "Ana Lopez", Email: "ana@example.com", Active: true}
		Expect(repo.Create(context.Background(), ana)).To(Succeed())
		Expect(repo.Create(context.Background(), &partnerDatamodel.Partner{Name: "Bruno Diaz", Email: "bruno@example.com", Active: false})).To(Succeed())
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

	decodeList := func(w *httptest.ResponseRecorder) partner.PartnersResponse {
		var response partner.PartnersResponse
		Expect(json.NewDecoder(w.Body).Decode(&response)).To(Succeed())
		return response
	}

	It("should list all partners and only active ones on request", func() {
		w := send(http.MethodGet, "/partners", nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(decodeList(w).Total).To(Equal(2))

		active := decodeList(send(http.MethodGet, "/partners?active=true", nil))
		Expect(active.Partners).To(HaveLen(1))
		Expect(active.Partners[0].Name).To(Equal("Ana Lopez"))
	})

	It("should look a partner up by email", func() {
		w := send(http.MethodGet, "/partners?email=BRUNO@example.com", nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(decodeList(w).Partners[0].Name).To(Equal("Bruno Diaz"))

		Expect(send(http.MethodGet, "/partners?email=nobody@example.com", nil).Code).To(Equal(http.StatusNotFound))
	})

	It("should create an active partner by default", func() {
		w := send(http.MethodPost, "/partners", map[string]interface{}{"name": "  Carla Ruiz ", "email": "Carla@Example.com"})
		Expect(w.Code).To(Equal(http.StatusCreated))

		var created partner.Partner
		Expect(json.NewDecoder(w.Body).Decode(&created)).To(Succeed())
		Expect(created.Name).To(Equal("Carla Ruiz"))
		Expect(created.Email).To(Equal("carla@example.com"))
		Expect(created.Active).To(BeTrue())
	})

	It("should answer 400 for a missing name or a malformed email", func() {
		Expect(send(http.MethodPost, "/partners", map[string]interface{}{"name": ""}).Code).To(Equal(http.StatusBadRequest))
		Expect(send(http.MethodPost, "/partners", map[string]interface{}{"name": "Dora", "email": "not-an-email"}).Code).To(Equal(http.StatusBadRequest))
	})

	It("should toggle the active flag", func() {
		w := send(http.MethodPatch, "/partners/2/activate", nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		var p partner.Partner
		Expect(json.NewDecoder(w.Body).Decode(&p)).To(Succeed())
		Expect(p.Active).To(BeTrue())

		w = send(http.MethodPatch, "/partners/2/deactivate", nil)
		Expect(json.NewDecoder(w.Body).Decode(&p)).To(Succeed())
		Expect(p.Active).To(BeFalse())

		Expect(send(http.MethodPatch, "/partners/99/activate", nil).Code).To(Equal(http.StatusNotFound))
	})

	It("should update contact details", func() {
		w := send(http.MethodPut, "/partners/1", map[string]interface{}{"name": "Ana L. Lopez", "phone": "555-0199", "email": "ana@example.com"})
		Expect(w.Code).To(Equal(http.StatusOK))

		var p partner.Partner
		Expect(json.NewDecoder(w.Body).Decode(&p)).To(Succeed())
		Expect(p.Name).To(Equal("Ana L. Lopez"))
		Expect(p.Phone).To(Equal("555-0199"))
	})

	It("should refuse to delete a partner with loan history", func() {
		b := &bookDatamodel.Book{Title: "Dune", Author: "Frank Herbert", ISBN: "9780441013593", PublicationYear: 1965}
		Expect(db.Create(b).Error).To(Succeed())
		returnDate := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
		Expect(db.Create(&loanDatamodel.Loan{
			BookID:     b.ID,
			PartnerID:  ana.ID,
			LoanDate:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			ReturnDate: &returnDate,
			Returned:   true,
		}).Error).To(Succeed())

		Expect(send(http.MethodDelete, "/partners/1", nil).Code).To(Equal(http.StatusConflict))
		Expect(send(http.MethodDelete, "/partners/2", nil).Code).To(Equal(http.StatusNoContent))
		Expect(send(http.MethodGet, "/partners/2", nil).Code).To(Equal(http.StatusNotFound))
	})

	It("should answer 400 for a non-numeric id", func() {
		Expect(send(http.MethodGet, "/partners/abc", nil).Code).To(Equal(http.StatusBadRequest))
	})
})
