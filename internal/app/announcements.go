package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Spok95/siakad/internal/access"
	"github.com/Spok95/siakad/internal/ctxutil"
	"github.com/Spok95/siakad/internal/db"
	"github.com/Spok95/siakad/internal/models"
)

func (s *Server) todayDate() models.Date {
	t := s.today()
	return models.NewDate(t.Year(), t.Month(), t.Day())
}

func (s *Server) announcementRoutes(r chi.Router) {
	res := access.ResAnnouncement
	r.Get("/pemberitahuan", s.guard(res, access.ActRead, func(w http.ResponseWriter, r *http.Request) {
		out, err := db.ListAnnouncements(r.Context(), s.DB, ctxutil.Role(r.Context()), s.todayDate())
		s.reply(w, r, http.StatusOK, out, err)
	}))
	r.Post("/pemberitahuan", s.guard(res, access.ActCreate, func(w http.ResponseWriter, r *http.Request) {
		f, err := bodyFields[announcementReq](r)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		out, err := db.CreateAnnouncement(r.Context(), s.DB, ctxutil.Role(r.Context()), f)
		s.reply(w, r, http.StatusCreated, out, err)
	}))
	r.Get("/pemberitahuan/{id}", s.guard(res, access.ActRead, func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			s.fail(w, r, err)
			return
		}
		out, err := db.GetAnnouncement(r.Context(), s.DB, ctxutil.Role(r.Context()), id)
		s.reply(w, r, http.StatusOK, out, err)
	}))
	r.Put("/pemberitahuan/{id}", s.guard(res, access.ActUpdate, s.patchAnnouncement(bodyFields[announcementReq])))
	r.Patch("/pemberitahuan/{id}", s.guard(res, access.ActUpdate, s.patchAnnouncement(bodyFields[announcementPatch])))
	r.Delete("/pemberitahuan/{id}", s.guard(res, access.ActDelete, func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.reply(w, r, http.StatusNoContent, nil, db.DeleteAnnouncement(r.Context(), s.DB, ctxutil.Role(r.Context()), id))
	}))

	s.programFilterRoutes(r)
	s.departmentFilterRoutes(r)
}

func (s *Server) patchAnnouncement(body func(*http.Request) (db.Fields, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			s.fail(w, r, err)
			return
		}
		f, err := body(r)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		out, err := db.PatchAnnouncement(r.Context(), s.DB, ctxutil.Role(r.Context()), id, f)
		s.reply(w, r, http.StatusOK, out, err)
	}
}

// parentAnnouncement resolves {pemberitahuan_id} within the caller's sight.
func (s *Server) parentAnnouncement(r *http.Request) (int64, error) {
	id, err := idParam(r, "pemberitahuan_id")
	if err != nil {
		return 0, err
	}
	if _, err := db.GetAnnouncement(r.Context(), s.DB, ctxutil.Role(r.Context()), id); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Server) programFilterRoutes(r chi.Router) {
	res := access.ResAnnProgram
	const base = "/pemberitahuan/{pemberitahuan_id}/prodi"

	r.Get(base, s.guard(res, access.ActRead, func(w http.ResponseWriter, r *http.Request) {
		annID, err := s.parentAnnouncement(r)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		out, err := db.ListProgramFilters(r.Context(), s.DB, annID)
		s.reply(w, r, http.StatusOK, out, err)
	}))
	r.Post(base, s.guard(res, access.ActCreate, func(w http.ResponseWriter, r *http.Request) {
		role := ctxutil.Role(r.Context())
		annID, err := s.parentAnnouncement(r)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		var req programFilterReq
		if err := decode(r, &req); err != nil {
			s.fail(w, r, err)
			return
		}
		if err := ownProgram(role, req.ProgramID, "pemberitahuan"); err != nil {
			s.fail(w, r, err)
			return
		}
		out, err := db.AddProgramFilter(r.Context(), s.DB, annID, req.ProgramID)
		s.reply(w, r, http.StatusCreated, out, err)
	}))
	r.Get(base+"/{id}", s.guard(res, access.ActRead, func(w http.ResponseWriter, r *http.Request) {
		annID, id, err := nestedIDs(r, "pemberitahuan_id")
		if err != nil {
			s.fail(w, r, err)
			return
		}
		out, err := db.GetProgramFilter(r.Context(), s.DB, annID, id)
		s.reply(w, r, http.StatusOK, out, err)
	}))
	r.Delete(base+"/{id}", s.guard(res, access.ActDelete, func(w http.ResponseWriter, r *http.Request) {
		annID, id, err := nestedIDs(r, "pemberitahuan_id")
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.reply(w, r, http.StatusNoContent, nil, db.DeleteProgramFilter(r.Context(), s.DB, annID, id))
	}))
}

func (s *Server) departmentFilterRoutes(r chi.Router) {
	res := access.ResAnnDepartment
	const base = "/pemberitahuan/{pemberitahuan_id}/jurusan"

	r.Get(base, s.guard(res, access.ActRead, func(w http.ResponseWriter, r *http.Request) {
		annID, err := s.parentAnnouncement(r)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		out, err := db.ListDepartmentFilters(r.Context(), s.DB, annID)
		s.reply(w, r, http.StatusOK, out, err)
	}))
	r.Post(base, s.guard(res, access.ActCreate, func(w http.ResponseWriter, r *http.Request) {
		annID, err := s.parentAnnouncement(r)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		var req departmentFilterReq
		if err := decode(r, &req); err != nil {
			s.fail(w, r, err)
			return
		}
		out, err := db.AddDepartmentFilter(r.Context(), s.DB, annID, req.DepartmentID)
		s.reply(w, r, http.StatusCreated, out, err)
	}))
	r.Get(base+"/{id}", s.guard(res, access.ActRead, func(w http.ResponseWriter, r *http.Request) {
		annID, id, err := nestedIDs(r, "pemberitahuan_id")
		if err != nil {
			s.fail(w, r, err)
			return
		}
		out, err := db.GetDepartmentFilter(r.Context(), s.DB, annID, id)
		s.reply(w, r, http.StatusOK, out, err)
	}))
	r.Delete(base+"/{id}", s.guard(res, access.ActDelete, func(w http.ResponseWriter, r *http.Request) {
		annID, id, err := nestedIDs(r, "pemberitahuan_id")
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.reply(w, r, http.StatusNoContent, nil, db.DeleteDepartmentFilter(r.Context(), s.DB, annID, id))
	}))
}

func (s *Server) scientificWorkRoutes(r chi.Router) {
	res := access.ResScientificWork
	r.Get("/karya_ilmiah", s.guard(res, access.ActRead, func(w http.ResponseWriter, r *http.Request) {
		out, err := db.ListScientificWorks(r.Context(), s.DB, ctxutil.Role(r.Context()))
		s.reply(w, r, http.StatusOK, out, err)
	}))
	r.Post("/karya_ilmiah", s.guard(res, access.ActCreate, func(w http.ResponseWriter, r *http.Request) {
		role := ctxutil.Role(r.Context())
		f, err := s.workFields(r, role, true)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		out, err := db.CreateScientificWork(r.Context(), s.DB, role, f)
		s.reply(w, r, http.StatusCreated, out, err)
	}))
	r.Get("/karya_ilmiah/{id}", s.guard(res, access.ActRead, func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			s.fail(w, r, err)
			return
		}
		out, err := db.GetScientificWork(r.Context(), s.DB, ctxutil.Role(r.Context()), id)
		s.reply(w, r, http.StatusOK, out, err)
	}))
	update := s.guard(res, access.ActUpdate, func(w http.ResponseWriter, r *http.Request) {
		role := ctxutil.Role(r.Context())
		id, err := idParam(r, "id")
		if err != nil {
			s.fail(w, r, err)
			return
		}
		f, err := s.workFields(r, role, false)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		out, err := db.UpdateScientificWork(r.Context(), s.DB, role, id, f)
		s.reply(w, r, http.StatusOK, out, err)
	})
	r.Put("/karya_ilmiah/{id}", update)
	r.Patch("/karya_ilmiah/{id}", update)
	r.Delete("/karya_ilmiah/{id}", s.guard(res, access.ActDelete, func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.reply(w, r, http.StatusNoContent, nil, db.DeleteScientificWork(r.Context(), s.DB, ctxutil.Role(r.Context()), id))
	}))
}

// workFields decodes a karya_ilmiah body and decides its author and program.
// A student always writes as themselves. Staff may name the author by NIM;
// without one the work is attached to the caller's program.
func (s *Server) workFields(r *http.Request, role access.Role, creating bool) (db.Fields, error) {
	var req scientificWorkReq
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	f := req.fields()

	if _, ok := role.(access.Student); ok {
		if !creating {
			return f, nil
		}
		me, err := db.EnsureStudentProfile(r.Context(), s.DB, role.UserID())
		if err != nil {
			return nil, err
		}
		f["mahasiswa_id"] = me.ID
		f["prodi_id"] = me.ProgramID
		return f, nil
	}

	if req.NIM != nil && *req.NIM != "" {
		st, err := db.StudentByNIM(r.Context(), s.DB, role, *req.NIM)
		if err != nil {
			return nil, asField(err, "nim", *req.NIM)
		}
		f["mahasiswa_id"] = st.ID
		f["prodi_id"] = st.ProgramID
		return f, nil
	}
	if creating {
		if p, ok := access.ProgramOf(role); ok {
			f["prodi_id"] = p
		}
	}
	return f, nil
}
