package app

import (
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Spok95/siakad/internal/access"
	"github.com/Spok95/siakad/internal/apperr"
	"github.com/Spok95/siakad/internal/ctxutil"
	"github.com/Spok95/siakad/internal/db"
	"github.com/Spok95/siakad/internal/export"
)

func (s *Server) khsRoutes(r chi.Router) {
	res := access.ResKHS
	r.Get("/khs", s.guard(res, access.ActRead, func(w http.ResponseWriter, r *http.Request) {
		out, err := db.ListKHS(r.Context(), s.DB, ctxutil.Role(r.Context()), r.URL.Query().Get("nim"))
		s.reply(w, r, http.StatusOK, out, err)
	}))
	r.Post("/khs", s.guard(res, access.ActCreate, func(w http.ResponseWriter, r *http.Request) {
		role := ctxutil.Role(r.Context())
		var req khsReq
		if err := decode(r, &req); err != nil {
			s.fail(w, r, err)
			return
		}
		if err := (khsYearsReq{StartYear: req.StartYear, EndYear: req.EndYear}).check(); err != nil {
			s.fail(w, r, err)
			return
		}
		st, err := db.StudentByNIM(r.Context(), s.DB, role, req.NIM)
		if err != nil {
			s.fail(w, r, asField(err, "nim", req.NIM))
			return
		}
		out, err := db.CreateKHS(r.Context(), s.DB, role, st.ID, req.StartYear, req.EndYear)
		s.reply(w, r, http.StatusCreated, out, err)
	}))
	r.Get("/khs/{id}", s.guard(res, access.ActRead, func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			s.fail(w, r, err)
			return
		}
		out, err := db.GetKHS(r.Context(), s.DB, ctxutil.Role(r.Context()), id)
		s.reply(w, r, http.StatusOK, out, err)
	}))
	update := s.guard(res, access.ActUpdate, func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			s.fail(w, r, err)
			return
		}
		var req khsYearsReq
		if err := decode(r, &req); err != nil {
			s.fail(w, r, err)
			return
		}
		if err := req.check(); err != nil {
			s.fail(w, r, err)
			return
		}
		out, err := db.UpdateKHSYears(r.Context(), s.DB, ctxutil.Role(r.Context()), id, req.StartYear, req.EndYear)
		s.reply(w, r, http.StatusOK, out, err)
	})
	r.Put("/khs/{id}", update)
	r.Patch("/khs/{id}", update)
	r.Delete("/khs/{id}", s.guard(res, access.ActDelete, func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.reply(w, r, http.StatusNoContent, nil, db.DeleteKHS(r.Context(), s.DB, ctxutil.Role(r.Context()), id))
	}))

	s.gradeRoutes(r)
}

func (s *Server) gradeRoutes(r chi.Router) {
	res := access.ResGrade
	const base = "/khs/{khs_id}/nilai"

	r.Get(base, s.guard(res, access.ActRead, func(w http.ResponseWriter, r *http.Request) {
		role := ctxutil.Role(r.Context())
		khsID, err := idParam(r, "khs_id")
		if err == nil {
			err = s.khsVisible(r, role, khsID)
		}
		if err != nil {
			s.fail(w, r, err)
			return
		}
		out, err := db.ListGrades(r.Context(), s.DB, role, khsID)
		s.reply(w, r, http.StatusOK, out, err)
	}))
	r.Post(base, s.guard(res, access.ActCreate, func(w http.ResponseWriter, r *http.Request) {
		role := ctxutil.Role(r.Context())
		khsID, err := idParam(r, "khs_id")
		if err == nil {
			err = s.khsVisible(r, role, khsID)
		}
		if err != nil {
			s.fail(w, r, err)
			return
		}
		req, err := s.gradeBody(r, role)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		out, err := db.CreateGrade(r.Context(), s.DB, role, khsID, req.CourseID, *req.Score)
		s.reply(w, r, http.StatusCreated, out, err)
	}))
	r.Get(base+"/{id}", s.guard(res, access.ActRead, func(w http.ResponseWriter, r *http.Request) {
		khsID, id, err := nestedIDs(r, "khs_id")
		if err != nil {
			s.fail(w, r, err)
			return
		}
		out, err := db.GetGrade(r.Context(), s.DB, ctxutil.Role(r.Context()), khsID, id)
		s.reply(w, r, http.StatusOK, out, err)
	}))
	update := s.guard(res, access.ActUpdate, func(w http.ResponseWriter, r *http.Request) {
		role := ctxutil.Role(r.Context())
		khsID, id, err := nestedIDs(r, "khs_id")
		if err != nil {
			s.fail(w, r, err)
			return
		}
		req, err := s.gradeBody(r, role)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		out, err := db.UpdateGrade(r.Context(), s.DB, role, khsID, id, req.CourseID, *req.Score)
		s.reply(w, r, http.StatusOK, out, err)
	})
	r.Put(base+"/{id}", update)
	r.Patch(base+"/{id}", update)
	r.Delete(base+"/{id}", s.guard(res, access.ActDelete, func(w http.ResponseWriter, r *http.Request) {
		khsID, id, err := nestedIDs(r, "khs_id")
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.reply(w, r, http.StatusNoContent, nil, db.DeleteGrade(r.Context(), s.DB, ctxutil.Role(r.Context()), khsID, id))
	}))
}

func (s *Server) khsVisible(r *http.Request, role access.Role, id int64) error {
	ok, err := db.KHSVisible(r.Context(), s.DB, role, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("khs")
	}
	return nil
}

// gradeBody decodes a nilai body. Lecturers may only grade courses they teach.
func (s *Server) gradeBody(r *http.Request, role access.Role) (*gradeReq, error) {
	var req gradeReq
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	if _, ok := role.(access.Lecturer); ok {
		taught, err := db.CourseVisible(r.Context(), s.DB, role, req.CourseID)
		if err != nil {
			return nil, err
		}
		if !taught {
			return nil, apperr.Permission("you do not teach this course")
		}
	}
	return &req, nil
}

const xlsxType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// generateDocument renders a printable document. Only model=khs exists.
func (s *Server) generateDocument(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if model := q.Get("model"); model != "khs" {
		s.fail(w, r, apperr.FieldValidation("model", "\""+model+"\" is not a valid choice."))
		return
	}
	raw := q.Get("khs_id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		s.fail(w, r, apperr.FieldValidation("khs_id", "A valid integer is required."))
		return
	}

	t, err := db.GetTranscript(r.Context(), s.DB, ctxutil.Role(r.Context()), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	data, err := export.WriteKHS(*t, s.Institution, s.today())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	name := export.BuildKHSFilename(t.KHS.NIM, t.KHS.StudentName, t.KHS.AcademicYear(), t.KHS.Semester)
	w.Header().Set("Content-Type", xlsxType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.Log.Warn("transcript write failed", zap.Int64("khs_id", id), zap.Error(err))
	}
}
