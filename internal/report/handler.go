package report

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/codeup/novabook/internal"
	"github.com/codeup/novabook/internal/transport"
	"github.com/go-chi/chi"
)

const maxImportSize = 10 << 20

type ServiceAPI interface {
	Export(ctx context.Context, kind Kind, w io.Writer) error
	ImportBooks(ctx context.Context, r io.Reader) (*ImportResult, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// ExportReport handles GET /reports/{kind} and streams the CSV as an attachment.
func (h *Handler) ExportReport(w http.ResponseWriter, r *http.Request) {
	kind, appErr := ParseKind(chi.URLParam(r, "kind"))
	if appErr != nil {
		h.HandleServiceError(w, appErr)
		return
	}

	var buf strings.Builder
	if err := h.Service.Export(r.Context(), kind, &buf); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+string(kind)+`.csv"`)
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, buf.String()); err != nil {
		h.Logger.Error("failed to write report response", "error", err)
	}
}

// ImportBooks handles POST /books/import. The CSV comes either as the "file"
// field of a multipart form or as the raw request body.
func (h *Handler) ImportBooks(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)

	var src io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			h.HandleServiceError(w, internal.NewValidationFieldError("file", "a CSV file is required", internal.ErrCodeValidationFailed))
			return
		}
		defer file.Close()
		src = file
	}

	result, err := h.Service.ImportBooks(r.Context(), src)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}
