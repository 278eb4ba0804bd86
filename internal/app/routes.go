package app

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Spok95/siakad/internal/access"
	"github.com/Spok95/siakad/internal/apperr"
	"github.com/Spok95/siakad/internal/db"
)

func (s *Server) academic(r chi.Router) {
	mountRef(s, r, "/jurusan", db.Departments, intKey, bodyFields[departmentReq])
	mountRef(s, r, "/semester", db.Semesters, intKey, bodyFields[semesterReq])
	mountRef(s, r, "/program_pendidikan", db.EducationLevels, strKey, bodyFields[educationLevelReq])
	mountRef(s, r, "/gedung", db.Buildings, intKey, bodyFields[buildingReq])
	mountRef(s, r, "/kurikulum", db.Curricula, intKey, bodyFields[curriculumReq])
	mountRef(s, r, "/ketua_jurusan", db.DepartmentHeads, intKey, bodyFields[departmentHeadReq])
	mountRef(s, r, "/koordinator_prodi", db.Coordinators, intKey, bodyFields[coordinatorReq])

	s.programRoutes(r)
	s.staffRoutes(r)
	s.lecturerRoutes(r)
	s.classRoutes(r)
	s.studentRoutes(r)
	s.roomRoutes(r)
	s.announcementRoutes(r)
	s.scientificWorkRoutes(r)
	s.scheduleRoutes(r)
	s.courseRoutes(r)
	s.khsRoutes(r)
	s.materialRoutes(r)

	r.Get("/generate_pdf", s.guard(access.ResTranscript, access.ActRead, s.generateDocument))
}

// reply writes v with status, or the error if there is one.
func (s *Server) reply(w http.ResponseWriter, r *http.Request, status int, v any, err error) {
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}
	writeJSON(w, status, v)
}

func nonEmpty(f db.Fields) error {
	if len(f) == 0 {
		return apperr.Validation("no fields to update")
	}
	return nil
}

type keyFunc func(raw string) (any, error)

func intKey(raw string) (any, error) {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return nil, apperr.NotFound("id")
	}
	return v, nil
}

func strKey(raw string) (any, error) { return raw, nil }

// mountRef exposes a lookup table as a plain CRUD resource.
func mountRef[T any](s *Server, r chi.Router, path string, t db.RefTable[T], key keyFunc, body func(*http.Request) (db.Fields, error)) {
	res := access.ResReference

	r.Get(path, s.guard(res, access.ActRead, func(w http.ResponseWriter, r *http.Request) {
		out, err := t.List(r.Context(), s.DB)
		s.reply(w, r, http.StatusOK, out, err)
	}))
	r.Post(path, s.guard(res, access.ActCreate, func(w http.ResponseWriter, r *http.Request) {
		f, err := body(r)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		out, err := t.Create(r.Context(), s.DB, f)
		s.reply(w, r, http.StatusCreated, out, err)
	}))
	r.Get(path+"/{key}", s.guard(res, access.ActRead, func(w http.ResponseWriter, r *http.Request) {
		k, err := key(chi.URLParam(r, "key"))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		out, err := t.Get(r.Context(), s.DB, k)
		s.reply(w, r, http.StatusOK, out, err)
	}))
	update := s.guard(res, access.ActUpdate, func(w http.ResponseWriter, r *http.Request) {
		k, err := key(chi.URLParam(r, "key"))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		f, err := body(r)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		out, err := t.Update(r.Context(), s.DB, k, f)
		s.reply(w, r, http.StatusOK, out, err)
	})
	r.Put(path+"/{key}", update)
	r.Patch(path+"/{key}", update)
	r.Delete(path+"/{key}", s.guard(res, access.ActDelete, func(w http.ResponseWriter, r *http.Request) {
		k, err := key(chi.URLParam(r, "key"))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.reply(w, r, http.StatusNoContent, nil, t.Delete(r.Context(), s.DB, k))
	}))
}
