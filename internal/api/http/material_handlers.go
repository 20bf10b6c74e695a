package http

import (
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ilmhub/quizhub/internal/auth"
	"github.com/ilmhub/quizhub/internal/materials"
)

const maxUploadBytes = 20 << 20 // 20 MiB per PDF

// UploadReferenceHandler stores a standalone PDF and returns its URL and key,
// for attaching to a question under composition.
func UploadReferenceHandler(svc *materials.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		f, hdr, err := r.FormFile("file")
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "No file provided")
			return
		}
		defer f.Close()
		res, err := svc.UploadReference(r.Context(), hdr.Filename, hdr.Header.Get("Content-Type"), f)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// AddMaterialHandler attaches a material to a module, from an uploaded PDF or
// an external PDF URL. Multipart either way; the url field wins only when no
// file is present.
func AddMaterialHandler(svc *materials.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		req := materials.AddRequest{
			ModuleID:    chi.URLParam(r, "moduleID"),
			Title:       r.FormValue("title"),
			Description: r.FormValue("description"),
			URL:         r.FormValue("url"),
			UploadedBy:  auth.SubjectFromContext(r.Context()),
		}
		if f, hdr, err := r.FormFile("file"); err == nil {
			defer f.Close()
			req.File = f
			req.Filename = hdr.Filename
			req.ContentType = hdr.Header.Get("Content-Type")
		}
		m, err := svc.Add(r.Context(), req)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, m)
	}
}

func ListModuleMaterialsHandler(svc *materials.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mats, err := svc.ListByModule(r.Context(), chi.URLParam(r, "moduleID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, mats)
	}
}

func ListLatestMaterialsHandler(svc *materials.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mats, err := svc.ListLatest(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, mats)
	}
}

// DownloadMaterialHandler re-streams PDFs held in our own object store with
// attachment headers; external links get a redirect.
func DownloadMaterialHandler(svc *materials.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := svc.Get(r.Context(), chi.URLParam(r, "materialID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		if m.ObjectKey == "" {
			http.Redirect(w, r, m.URL, http.StatusFound)
			return
		}
		rc, err := svc.Open(r.Context(), m)
		if err != nil {
			log.Printf("materials: open %s: %v", m.ObjectKey, err)
			writeMessage(w, http.StatusInternalServerError, "Failed to download file from storage")
			return
		}
		defer rc.Close()
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="`+materials.DownloadFilename(m)+`"`)
		if _, err := io.Copy(w, rc); err != nil {
			log.Printf("materials: stream %s: %v", m.ObjectKey, err)
		}
	}
}

func DeleteMaterialHandler(svc *materials.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "materialID")); err != nil {
			writeErr(w, err)
			return
		}
		writeMessage(w, http.StatusOK, "Material deleted successfully")
	}
}
