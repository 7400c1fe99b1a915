package httpadapter

import (
	"errors"
	"net/http"
	"strings"

	"github.com/docuchat/docuchat/internal/core/domain"
)

// 64 MiB covers the multipart metadata kept in memory; file parts above the
// threshold spill to temp files.
const maxUploadMemory = 64 << 20

func (rt *Router) documents(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		rt.uploadDocuments(w, r)
	case http.MethodGet:
		rt.listDocuments(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (rt *Router) uploadDocuments(w http.ResponseWriter, r *http.Request) {
	tenant := tenantFromContext(r.Context())

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, domain.WrapError(domain.ErrInvalidInput, "parse upload", err))
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		// single-file clients may still use the singular field
		files = r.MultipartForm.File["file"]
	}
	if len(files) == 0 {
		writeError(w, domain.WrapError(domain.ErrInvalidInput, "parse upload",
			errors.New("multipart field 'files' is required")))
		return
	}

	docs := make([]*domain.Document, 0, len(files))
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			writeError(w, domain.WrapError(domain.ErrInvalidInput, "open upload part", err))
			return
		}

		doc, err := rt.ingest.Upload(
			r.Context(),
			tenant,
			header.Filename,
			header.Header.Get("Content-Type"),
			header.Size,
			file,
		)
		file.Close()
		if err != nil {
			writeError(w, err)
			return
		}
		docs = append(docs, doc)
	}

	writeJSON(w, http.StatusAccepted, map[string]any{"documents": docs})
}

func (rt *Router) listDocuments(w http.ResponseWriter, r *http.Request) {
	tenant := tenantFromContext(r.Context())

	docs, err := rt.docs.List(r.Context(), tenant.ID, rt.cfg.ListLimit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (rt *Router) documentByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/documents/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, domain.WrapError(domain.ErrInvalidInput, "parse path",
			errors.New("document id is required")))
		return
	}

	tenant := tenantFromContext(r.Context())

	switch r.Method {
	case http.MethodGet:
		doc, err := rt.docs.GetByID(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		if doc.TenantID != tenant.ID {
			writeError(w, domain.WrapError(domain.ErrNotFound, "get document",
				errors.New("id="+id)))
			return
		}
		writeJSON(w, http.StatusOK, doc)
	case http.MethodDelete:
		if err := rt.docs.Delete(r.Context(), tenant.ID, id); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
	default:
		methodNotAllowed(w)
	}
}
