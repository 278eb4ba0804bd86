package app

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Spok95/siakad/internal/access"
	"github.com/Spok95/siakad/internal/apperr"
	"github.com/Spok95/siakad/internal/ctxutil"
	"github.com/Spok95/siakad/internal/db"
)

// asField turns a lookup miss into a validation error on field.
func asField(err error, field string, id any) error {
	if errors.Is(err, apperr.ErrNotFound) {
		return apperr.FieldValidation(field, fmt.Sprintf("Invalid pk \"%v\" - object does not exist.", id))
	}
	return err
}

// ownProgram keeps staff writes inside their program. Other roles pass.
func ownProgram(role access.Role, programID int64, what string) error {
	st, ok := role.(access.DepartmentStaff)
	if !ok || st.ProgramID == programID {
		return nil
	}
	return apperr.Permission("you can only manage " + what + " of your own program")
}

func (s *Server) programRoutes(r chi.Router) {
	res := access.ResProgram
	r.Get("/prodi", s.guard(res, access.ActRead, func(w http.ResponseWriter, r *http.Request) {
		out, err := db.ListPrograms(r.Context(), s.DB)
		s.reply(w, r, http.StatusOK, out, err)
	}))
	r.Post("/prodi", s.guard(res, access.ActCreate, func(w http.ResponseWriter, r *http.Request) {
		f, err := bodyFields[programReq](r)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		out, err := db.CreateProgram(r.Context(), s.DB, f)
		s.reply(w, r, http.StatusCreated, out, err)
	}))
	r.Get("/prodi/{kode}", s.guard(res, access.ActRead, func(w http.ResponseWriter, r *http.Request) {
		out, err := db.GetProgram(r.Context(), s.DB, chi.URLParam(r, "kode"))
		s.reply(w, r, http.StatusOK, out, err)
	}))
	update := s.guard(res, access.ActUpdate, func(w http.ResponseWriter, r *http.Request) {
		role := ctxutil.Role(r.Context())
		f, err := bodyFields[programReq](r)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		if _, ok := role.(access.DepartmentStaff); ok {
			// перенос в другой jurusan остаётся за UPT
			delete(f, "jurusan_id")
		}
		out, err := db.UpdateProgram(r.Context(), s.DB, role, chi.URLParam(r, "kode"), f)
		s.reply(w, r, http.StatusOK, out, err)
	})
	r.Put("/prodi/{kode}", update)
	r.Patch("/prodi/{kode}", update)
	r.Delete("/prodi/{kode}", s.guard(res, access.ActDelete, func(w http.ResponseWriter, r *http.Request) {
		s.reply(w, r, http.StatusNoContent, nil, db.DeleteProgram(r.Context(), s.DB, chi.URLParam(r, "kode")))
	}))
}

func (s *Server) staffRoutes(r chi.Router) {
	res := access.ResStaff
	r.Get("/staff_prodi", s.guard(res, access.ActRead, func(w http.ResponseWriter, r *http.Request) {
		role := ctxutil.Role(r.Context())
		if _, ok := role.(access.SystemAdmin); !ok {
			s.fail(w, r, deny(role, res, access.ActRead))
			return
		}
		out, err := db.ListStaff(r.Context(), s.DB, role)
		s.reply(w, r, http.StatusOK, out, err)
	}))
	r.Post("/staff_prodi", s.guard(res, access.ActCreate, func(w http.ResponseWriter, r *http.Request) {
		f, err := bodyFields[staffReq](r)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		out, err := db.CreateStaff(r.Context(), s.DB, f)
		s.reply(w, r, http.StatusCreated, out, err)
	}))
	r.Get("/staff_prodi/{no_induk}", s.guard(res, access.ActRead, func(w http.ResponseWriter, r *http.Request) {
		out, err := db.GetStaff(r.Context(), s.DB, ctxutil.Role(r.Context()), chi.URLParam(r, "no_induk"))
		s.reply(w, r, http.StatusOK, out, err)
	}))
	update := s.guard(res, access.ActUpdate, func(w http.ResponseWriter, r *http.Request) {
		role := ctxutil.Role(r.Context())
		f, err := bodyFields[staffReq](r)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		if _, ok := role.(access.DepartmentStaff); ok {
			delete(f, "prodi_id")
			delete(f, "user_id")
		}
		out, err := db.UpdateStaff(r.Context(), s.DB, role, chi.URLParam(r, "no_induk"), f)
		s.reply(w, r, http.StatusOK, out, err)
	})
	r.Put("/staff_prodi/{no_induk}", update)
	r.Patch("/staff_prodi/{no_induk}", update)
	r.Delete("/staff_prodi/{no_induk}", s.guard(res, access.ActDelete, func(w http.ResponseWriter, r *http.Request) {
		s.reply(w, r, http.StatusNoContent, nil, db.DeleteStaff(r.Context(), s.DB, chi.URLParam(r, "no_induk")))
	}))
}

func (s *Server) lecturerRoutes(r chi.Router) {
	res := access.ResLecturer
	r.Get("/dosen", s.guard(res, access.ActRead, func(w http.ResponseWriter, r *http.Request) {
		out, err := db.ListLecturers(r.Context(), s.DB, ctxutil.Role(r.Context()))
		s.reply(w, r, http.StatusOK, out, err)
	}))
	r.Post("/dosen", s.guard(res, access.ActCreate, func(w http.ResponseWriter, r *http.Request) {
		role := ctxutil.Role(r.Context())
		var req lecturerReq
		if err := decode(r, &req); err != nil {
			s.fail(w, r, err)
			return
		}
		if err := ownProgram(role, req.ProgramID, "dosen"); err != nil {
			s.fail(w, r, err)
			return
		}
		out, err := db.CreateLecturer(r.Context(), s.DB, role, req.fields())
		s.reply(w, r, http.StatusCreated, out, err)
	}))
	r.Get("/dosen/{nip}", s.guard(res, access.ActRead, func(w http.ResponseWriter, r *http.Request) {
		out, err := db.GetLecturer(r.Context(), s.DB, ctxutil.Role(r.Context()), chi.URLParam(r, "nip"))
		s.reply(w, r, http.StatusOK, out, err)
	}))
	update := s.guard(res, access.ActUpdate, func(w http.ResponseWriter, r *http.Request) {
		role := ctxutil.Role(r.Context())
		var req lecturerReq
		if err := decode(r, &req); err != nil {
			s.fail(w, r, err)
			return
		}
		if err := ownProgram(role, req.ProgramID, "dosen"); err != nil {
			s.fail(w, r, err)
			return
		}
		out, err := db.UpdateLecturer(r.Context(), s.DB, role, chi.URLParam(r, "nip"), req.fields())
		s.reply(w, r, http.StatusOK, out, err)
	})
	r.Put("/dosen/{nip}", update)
	r.Patch("/dosen/{nip}", update)
	r.Delete("/dosen/{nip}", s.guard(res, access.ActDelete, func(w http.ResponseWriter, r *http.Request) {
		s.reply(w, r, http.StatusNoContent, nil, db.DeleteLecturer(r.Context(), s.DB, ctxutil.Role(r.Context()), chi.URLParam(r, "nip")))
	}))
}

func (s *Server) studentRoutes(r chi.Router) {
	res := access.ResStudent
	r.Get("/mahasiswa", s.guard(res, access.ActRead, func(w http.ResponseWriter, r *http.Request) {
		out, err := db.ListStudents(r.Context(), s.DB, ctxutil.Role(r.Context()))
		s.reply(w, r, http.StatusOK, out, err)
	}))
	r.Post("/mahasiswa", s.guard(res, access.ActCreate, func(w http.ResponseWriter, r *http.Request) {
		role := ctxutil.Role(r.Context())
		var req studentCreateReq
		if err := decode(r, &req); err != nil {
			s.fail(w, r, err)
			return
		}
		if err := s.checkPlacement(r, role, req.ClassID, true); err != nil {
			s.fail(w, r, err)
			return
		}
		out, err := db.CreateStudent(r.Context(), s.DB, req.fields())
		s.reply(w, r, http.StatusCreated, out, err)
	}))

	r.Get("/mahasiswa/me", s.guard(access.ResStudentSelf, access.ActRead, func(w http.ResponseWriter, r *http.Request) {
		uid, _ := ctxutil.UserID(r.Context())
		out, err := db.EnsureStudentProfile(r.Context(), s.DB, uid)
		s.reply(w, r, http.StatusOK, out, err)
	}))
	me := s.guard(access.ResStudentSelf, access.ActUpdate, func(w http.ResponseWriter, r *http.Request) {
		uid, _ := ctxutil.UserID(r.Context())
		f, err := bodyFields[profileReq](r)
		if err == nil {
			err = nonEmpty(f)
		}
		if err != nil {
			s.fail(w, r, err)
			return
		}
		out, err := db.UpdateOwnProfile(r.Context(), s.DB, uid, f)
		s.reply(w, r, http.StatusOK, out, err)
	})
	r.Put("/mahasiswa/me", me)
	r.Patch("/mahasiswa/me", me)

	r.Get("/mahasiswa/{nim}", s.guard(res, access.ActRead, func(w http.ResponseWriter, r *http.Request) {
		out, err := db.GetStudent(r.Context(), s.DB, ctxutil.Role(r.Context()), chi.URLParam(r, "nim"))
		s.reply(w, r, http.StatusOK, out, err)
	}))
	update := s.guard(res, access.ActUpdate, func(w http.ResponseWriter, r *http.Request) {
		role := ctxutil.Role(r.Context())
		var f db.Fields
		if _, self := role.(access.Student); self {
			var err error
			if f, err = bodyFields[profileReq](r); err != nil {
				s.fail(w, r, err)
				return
			}
		} else {
			var req studentReq
			if err := decode(r, &req); err != nil {
				s.fail(w, r, err)
				return
			}
			if err := s.checkPlacement(r, role, req.ClassID, false); err != nil {
				s.fail(w, r, err)
				return
			}
			f = req.fields()
		}
		if err := nonEmpty(f); err != nil {
			s.fail(w, r, err)
			return
		}
		out, err := db.UpdateStudent(r.Context(), s.DB, role, chi.URLParam(r, "nim"), f)
		s.reply(w, r, http.StatusOK, out, err)
	})
	r.Put("/mahasiswa/{nim}", update)
	r.Patch("/mahasiswa/{nim}", update)
	r.Delete("/mahasiswa/{nim}", s.guard(res, access.ActDelete, func(w http.ResponseWriter, r *http.Request) {
		s.reply(w, r, http.StatusNoContent, nil, db.DeleteStudent(r.Context(), s.DB, ctxutil.Role(r.Context()), chi.URLParam(r, "nim")))
	}))
}

// checkPlacement makes sure staff only put students into classes of their
// own program. A staff-created student must get a class right away, otherwise
// it would fall out of the creator's sight.
func (s *Server) checkPlacement(r *http.Request, role access.Role, classID *int64, creating bool) error {
	if _, ok := role.(access.DepartmentStaff); !ok {
		return nil
	}
	if classID == nil {
		if creating {
			return apperr.FieldValidation("kelas", "This field is required.")
		}
		return nil
	}
	_, err := db.GetClass(r.Context(), s.DB, role, *classID)
	return asField(err, "kelas", *classID)
}
