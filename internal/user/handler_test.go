package user_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"

	"github.com/codeup/novabook/internal"
	"github.com/codeup/novabook/internal/transport"
	"github.com/codeup/novabook/internal/user"
	"github.com/go-chi/chi"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("User Handler", func() {
	var (
		router  chi.Router
		service *user.Service
		admin   *user.User
	)

	do := func(method, path string, body interface{}) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			gomega.Expect(json.NewEncoder(&buf).Encode(body)).To(gomega.Succeed())
		}
		req := httptest.NewRequest(method, path, &buf)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	ginkgo.BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = user.NewService(newMockRepository(), testSecurityConfig(), logger)

		var err error
		admin, err = service.CreateUser(context.Background(), user.CreateUserDTO{
			Name: "Admin", Email: "admin@example.com", Password: "secret123", Roles: []string{user.RoleAdministrator},
		})
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		handler := user.NewHandler(&transport.BaseHandler{Logger: logger}, service)
		session := &internal.Session{UserID: admin.ID, Email: admin.Email, Roles: admin.Roles}

		router = chi.NewRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(internal.ContextWithSession(r.Context(), session)))
			})
		})
		router.Get("/me", handler.GetCurrentUser)
		router.Put("/me/password", handler.ChangeOwnPassword)
		router.Get("/users", handler.ListUsers)
		router.Post("/users", handler.CreateUser)
		router.Get("/users/{id}", handler.GetUser)
		router.Put("/users/{id}", handler.UpdateUser)
		router.Delete("/users/{id}", handler.DeleteUser)
		router.Post("/users/{id}/roles", handler.AssignRole)
		router.Delete("/users/{id}/roles/{role}", handler.RemoveRole)
		router.Get("/roles", handler.ListRoles)
	})

	ginkgo.It("returns the session user without the password hash", func() {
		w := do(http.MethodGet, "/me", nil)
		gomega.Expect(w.Code).To(gomega.Equal(http.StatusOK))
		gomega.Expect(w.Body.String()).NotTo(gomega.ContainSubstring("password"))

		var u user.User
		gomega.Expect(json.NewDecoder(w.Body).Decode(&u)).To(gomega.Succeed())
		gomega.Expect(u.Email).To(gomega.Equal("admin@example.com"))
	})

	ginkgo.It("creates a user and assigns a role", func() {
		w := do(http.MethodPost, "/users", map[string]interface{}{
			"name": "Ana", "email": "ana@example.com", "password": "secret123",
		})
		gomega.Expect(w.Code).To(gomega.Equal(http.StatusCreated))

		var created user.User
		gomega.Expect(json.NewDecoder(w.Body).Decode(&created)).To(gomega.Succeed())

		w = do(http.MethodPost, "/users/"+itoa(created.ID)+"/roles", map[string]string{"role": user.RoleAdministrator})
		gomega.Expect(w.Code).To(gomega.Equal(http.StatusOK))

		w = do(http.MethodDelete, "/users/"+itoa(created.ID)+"/roles/"+user.RoleLibrarian, nil)
		gomega.Expect(w.Code).To(gomega.Equal(http.StatusOK))

		var updated user.User
		gomega.Expect(json.NewDecoder(w.Body).Decode(&updated)).To(gomega.Succeed())
		gomega.Expect(updated.Roles).To(gomega.ConsistOf(user.RoleAdministrator))
	})

	ginkgo.It("answers 409 when the session user deletes themself", func() {
		w := do(http.MethodDelete, "/users/"+itoa(admin.ID), nil)
		gomega.Expect(w.Code).To(gomega.Equal(http.StatusConflict))
	})

	ginkgo.It("answers 401 for a wrong current password", func() {
		w := do(http.MethodPut, "/me/password", map[string]string{"current_password": "nope", "new_password": "another456"})
		gomega.Expect(w.Code).To(gomega.Equal(http.StatusUnauthorized))
	})

	ginkgo.It("answers 404 for an unknown user", func() {
		w := do(http.MethodGet, "/users/999", nil)
		gomega.Expect(w.Code).To(gomega.Equal(http.StatusNotFound))
	})
})

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
