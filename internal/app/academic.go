package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Spok95/siakad/internal/access"
	"github.com/Spok95/siakad/internal/apperr"
	"github.com/Spok95/siakad/internal/ctxutil"
	"github.com/Spok95/siakad/internal/db"
)

func (s *Server) classRoutes(r chi.Router) {
	res := access.ResClass
	r.Get("/kelas", s.guard(res, access.ActRead, func(w http.ResponseWriter, r *http.Request) {
		out, err := db.ListClasses(r.Context(), s.DB, ctxutil.Role(r.Context()))
		s.reply(w, r, http.StatusOK, out, err)
	}))
	r.Post("/kelas", s.guard(res, access.ActCreate, func(w http.ResponseWriter, r *http.Request) {
		role := ctxutil.Role(r.Context())
		var req classReq
		if err := decode(r, &req); err != nil {
			s.fail(w, r, err)
			return
		}
		if err := ownProgram(role, req.ProgramID, "kelas"); err != nil {
			s.fail(w, r, err)
			return
		}
		out, err := db.CreateClass(r.Context(), s.DB, role, req.fields())
		s.reply(w, r, http.StatusCreated, out, err)
	}))
	r.Get("/kelas/{id}", s.guard(res, access.ActRead, func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			s.fail(w, r, err)
			return
		}
		out, err := db.GetClass(r.Context(), s.DB, ctxutil.Role(r.Context()), id)
		s.reply(w, r, http.StatusOK, out, err)
	}))
	update := s.guard(res, access.ActUpdate, func(w http.ResponseWriter, r *http.Request) {
		role := ctxutil.Role(r.Context())
		id, err := idParam(r, "id")
		if err != nil {
			s.fail(w, r, err)
			return
		}
		var req classReq
		if err := decode(r, &req); err != nil {
			s.fail(w, r, err)
			return
		}
		if err := ownProgram(role, req.ProgramID, "kelas"); err != nil {
			s.fail(w, r, err)
			return
		}
		out, err := db.UpdateClass(r.Context(), s.DB, role, id, req.fields())
		s.reply(w, r, http.StatusOK, out, err)
	})
	r.Put("/kelas/{id}", update)
	r.Patch("/kelas/{id}", update)
	r.Delete("/kelas/{id}", s.guard(res, access.ActDelete, func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.reply(w, r, http.StatusNoContent, nil, db.DeleteClass(r.Context(), s.DB, ctxutil.Role(r.Context()), id))
	}))
}

func (s *Server) scheduleRoutes(r chi.Router) {
	res := access.ResSchedule
	r.Get("/jadwal", s.guard(res, access.ActRead, func(w http.ResponseWriter, r *http.Request) {
		classID, err := queryID(r, "kelas_id")
		if err != nil {
			s.fail(w, r, err)
			return
		}
		f := db.ScheduleFilter{ClassID: classID, SemesterType: r.URL.Query().Get("semesterType")}
		out, err := db.ListSchedules(r.Context(), s.DB, ctxutil.Role(r.Context()), f)
		s.reply(w, r, http.StatusOK, out, err)
	}))
	r.Post("/jadwal", s.guard(res, access.ActCreate, func(w http.ResponseWriter, r *http.Request) {
		role := ctxutil.Role(r.Context())
		var req scheduleReq
		if err := decode(r, &req); err != nil {
			s.fail(w, r, err)
			return
		}
		if err := s.ownClass(r, role, req.ClassID); err != nil {
			s.fail(w, r, err)
			return
		}
		out, err := db.CreateSchedule(r.Context(), s.DB, role, req.ClassID)
		s.reply(w, r, http.StatusCreated, out, err)
	}))
	r.Get("/jadwal/{id}", s.guard(res, access.ActRead, func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			s.fail(w, r, err)
			return
		}
		out, err := db.GetSchedule(r.Context(), s.DB, ctxutil.Role(r.Context()), id)
		s.reply(w, r, http.StatusOK, out, err)
	}))
	update := s.guard(res, access.ActUpdate, func(w http.ResponseWriter, r *http.Request) {
		role := ctxutil.Role(r.Context())
		id, err := idParam(r, "id")
		if err != nil {
			s.fail(w, r, err)
			return
		}
		var req scheduleReq
		if err := decode(r, &req); err != nil {
			s.fail(w, r, err)
			return
		}
		if err := s.ownClass(r, role, req.ClassID); err != nil {
			s.fail(w, r, err)
			return
		}
		out, err := db.UpdateSchedule(r.Context(), s.DB, role, id, req.ClassID)
		s.reply(w, r, http.StatusOK, out, err)
	})
	r.Put("/jadwal/{id}", update)
	r.Patch("/jadwal/{id}", update)
	r.Delete("/jadwal/{id}", s.guard(res, access.ActDelete, func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.reply(w, r, http.StatusNoContent, nil, db.DeleteSchedule(r.Context(), s.DB, ctxutil.Role(r.Context()), id))
	}))

	s.scheduleEntryRoutes(r)
}

// ownClass checks that the class a schedule points at is visible to the
// caller, which for staff means a class of their own program.
func (s *Server) ownClass(r *http.Request, role access.Role, classID int64) error {
	_, err := db.GetClass(r.Context(), s.DB, role, classID)
	return asField(err, "kelas", classID)
}

func (s *Server) scheduleEntryRoutes(r chi.Router) {
	res := access.ResSchedule
	const base = "/jadwal/{jadwal_id}/makul"

	r.Get(base, s.guard(res, access.ActRead, func(w http.ResponseWriter, r *http.Request) {
		sid, err := idParam(r, "jadwal_id")
		if err != nil {
			s.fail(w, r, err)
			return
		}
		role := ctxutil.Role(r.Context())
		if _, err := db.GetSchedule(r.Context(), s.DB, role, sid); err != nil {
			s.fail(w, r, err)
			return
		}
		out, err := db.ListScheduleEntries(r.Context(), s.DB, role, sid)
		s.reply(w, r, http.StatusOK, out, err)
	}))
	r.Post(base, s.guard(res, access.ActCreate, func(w http.ResponseWriter, r *http.Request) {
		role := ctxutil.Role(r.Context())
		sid, err := idParam(r, "jadwal_id")
		if err != nil {
			s.fail(w, r, err)
			return
		}
		f, err := s.entryFields(r, role, sid)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		out, err := db.CreateScheduleEntry(r.Context(), s.DB, role, sid, f)
		s.reply(w, r, http.StatusCreated, out, err)
	}))
	r.Get(base+"/{id}", s.guard(res, access.ActRead, func(w http.ResponseWriter, r *http.Request) {
		sid, id, err := nestedIDs(r, "jadwal_id")
		if err != nil {
			s.fail(w, r, err)
			return
		}
		out, err := db.GetScheduleEntry(r.Context(), s.DB, ctxutil.Role(r.Context()), sid, id)
		s.reply(w, r, http.StatusOK, out, err)
	}))
	update := s.guard(res, access.ActUpdate, func(w http.ResponseWriter, r *http.Request) {
		role := ctxutil.Role(r.Context())
		sid, id, err := nestedIDs(r, "jadwal_id")
		if err != nil {
			s.fail(w, r, err)
			return
		}
		f, err := s.entryFields(r, role, sid)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		out, err := db.UpdateScheduleEntry(r.Context(), s.DB, role, sid, id, f)
		s.reply(w, r, http.StatusOK, out, err)
	})
	r.Put(base+"/{id}", update)
	r.Patch(base+"/{id}", update)
	r.Delete(base+"/{id}", s.guard(res, access.ActDelete, func(w http.ResponseWriter, r *http.Request) {
		sid, id, err := nestedIDs(r, "jadwal_id")
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.reply(w, r, http.StatusNoContent, nil, db.DeleteScheduleEntry(r.Context(), s.DB, ctxutil.Role(r.Context()), sid, id))
	}))
}

// entryFields validates a jadwal_makul body against its parent schedule.
func (s *Server) entryFields(r *http.Request, role access.Role, scheduleID int64) (db.Fields, error) {
	if _, err := db.GetSchedule(r.Context(), s.DB, role, scheduleID); err != nil {
		return nil, err
	}
	var req scheduleEntryReq
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	if err := req.check(); err != nil {
		return nil, err
	}
	ok, err := db.CourseVisible(r.Context(), s.DB, role, req.CourseID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, asField(apperr.NotFound("mata_kuliah"), "mata_kuliah", req.CourseID)
	}
	return req.fields(), nil
}

// nestedIDs reads the parent id and {id} of a nested route.
func nestedIDs(r *http.Request, parent string) (int64, int64, error) {
	pid, err := idParam(r, parent)
	if err != nil {
		return 0, 0, err
	}
	id, err := idParam(r, "id")
	if err != nil {
		return 0, 0, err
	}
	return pid, id, nil
}

func (s *Server) courseRoutes(r chi.Router) {
	res := access.ResCourse
	r.Get("/makul", s.guard(res, access.ActRead, func(w http.ResponseWriter, r *http.Request) {
		out, err := db.ListCourses(r.Context(), s.DB, ctxutil.Role(r.Context()))
		s.reply(w, r, http.StatusOK, out, err)
	}))
	r.Post("/makul", s.guard(res, access.ActCreate, func(w http.ResponseWriter, r *http.Request) {
		role := ctxutil.Role(r.Context())
		var req courseReq
		if err := decode(r, &req); err != nil {
			s.fail(w, r, err)
			return
		}
		if err := ownProgram(role, req.ProgramID, "mata_kuliah"); err != nil {
			s.fail(w, r, err)
			return
		}
		out, err := db.CreateCourse(r.Context(), s.DB, role, req.fields())
		s.reply(w, r, http.StatusCreated, out, err)
	}))
	r.Get("/makul/{kode}", s.guard(res, access.ActRead, func(w http.ResponseWriter, r *http.Request) {
		out, err := db.GetCourse(r.Context(), s.DB, ctxutil.Role(r.Context()), chi.URLParam(r, "kode"))
		s.reply(w, r, http.StatusOK, out, err)
	}))
	update := s.guard(res, access.ActUpdate, func(w http.ResponseWriter, r *http.Request) {
		role := ctxutil.Role(r.Context())
		var req courseReq
		if err := decode(r, &req); err != nil {
			s.fail(w, r, err)
			return
		}
		if err := ownProgram(role, req.ProgramID, "mata_kuliah"); err != nil {
			s.fail(w, r, err)
			return
		}
		out, err := db.UpdateCourse(r.Context(), s.DB, role, chi.URLParam(r, "kode"), req.fields())
		s.reply(w, r, http.StatusOK, out, err)
	})
	r.Put("/makul/{kode}", update)
	r.Patch("/makul/{kode}", update)
	r.Delete("/makul/{kode}", s.guard(res, access.ActDelete, func(w http.ResponseWriter, r *http.Request) {
		s.reply(w, r, http.StatusNoContent, nil, db.DeleteCourse(r.Context(), s.DB, ctxutil.Role(r.Context()), chi.URLParam(r, "kode")))
	}))
}

func (s *Server) materialRoutes(r chi.Router) {
	res := access.ResMaterial
	r.Get("/materi", s.guard(res, access.ActRead, func(w http.ResponseWriter, r *http.Request) {
		entryID, err := queryID(r, "jadwal_makul_id")
		if err != nil {
			s.fail(w, r, err)
			return
		}
		out, err := db.ListMaterials(r.Context(), s.DB, ctxutil.Role(r.Context()), entryID)
		s.reply(w, r, http.StatusOK, out, err)
	}))
	r.Post("/materi", s.guard(res, access.ActCreate, func(w http.ResponseWriter, r *http.Request) {
		role := ctxutil.Role(r.Context())
		f, err := s.materialFields(r, role)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		out, err := db.CreateMaterial(r.Context(), s.DB, role, f)
		s.reply(w, r, http.StatusCreated, out, err)
	}))
	r.Get("/materi/{id}", s.guard(res, access.ActRead, func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			s.fail(w, r, err)
			return
		}
		out, err := db.GetMaterial(r.Context(), s.DB, ctxutil.Role(r.Context()), id)
		s.reply(w, r, http.StatusOK, out, err)
	}))
	update := s.guard(res, access.ActUpdate, func(w http.ResponseWriter, r *http.Request) {
		role := ctxutil.Role(r.Context())
		id, err := idParam(r, "id")
		if err != nil {
			s.fail(w, r, err)
			return
		}
		f, err := s.materialFields(r, role)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		out, err := db.UpdateMaterial(r.Context(), s.DB, role, id, f)
		s.reply(w, r, http.StatusOK, out, err)
	})
	r.Put("/materi/{id}", update)
	r.Patch("/materi/{id}", update)
	r.Delete("/materi/{id}", s.guard(res, access.ActDelete, func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.reply(w, r, http.StatusNoContent, nil, db.DeleteMaterial(r.Context(), s.DB, ctxutil.Role(r.Context()), id))
	}))
}

// materialFields decodes a materi body; the target entry must be one the
// caller teaches (lecturer) or administers (staff).
func (s *Server) materialFields(r *http.Request, role access.Role) (db.Fields, error) {
	var req materialReq
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	ok, err := db.ScheduleEntryVisible(r.Context(), s.DB, role, req.EntryID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Permission("jadwal_makul is outside your teaching")
	}
	return req.fields(), nil
}
