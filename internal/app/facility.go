package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Spok95/siakad/internal/access"
	"github.com/Spok95/siakad/internal/ctxutil"
	"github.com/Spok95/siakad/internal/db"
	"github.com/Spok95/siakad/internal/models"
)

const notifyTimeout = 15 * time.Second

func (s *Server) roomRoutes(r chi.Router) {
	res := access.ResReference
	r.Get("/ruangan", s.guard(res, access.ActRead, func(w http.ResponseWriter, r *http.Request) {
		buildingID, err := queryID(r, "gedung_id")
		if err != nil {
			s.fail(w, r, err)
			return
		}
		out, err := db.ListRooms(r.Context(), s.DB, buildingID)
		s.reply(w, r, http.StatusOK, out, err)
	}))
	r.Post("/ruangan", s.guard(res, access.ActCreate, func(w http.ResponseWriter, r *http.Request) {
		f, err := bodyFields[roomReq](r)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		out, err := db.CreateRoom(r.Context(), s.DB, f)
		s.reply(w, r, http.StatusCreated, out, err)
	}))
	r.Get("/ruangan/{id}", s.guard(res, access.ActRead, func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			s.fail(w, r, err)
			return
		}
		out, err := db.GetRoom(r.Context(), s.DB, id)
		s.reply(w, r, http.StatusOK, out, err)
	}))
	update := s.guard(res, access.ActUpdate, func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			s.fail(w, r, err)
			return
		}
		f, err := bodyFields[roomReq](r)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		out, err := db.UpdateRoom(r.Context(), s.DB, id, f)
		s.reply(w, r, http.StatusOK, out, err)
	})
	r.Put("/ruangan/{id}", update)
	r.Patch("/ruangan/{id}", update)
	r.Delete("/ruangan/{id}", s.guard(res, access.ActDelete, func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.reply(w, r, http.StatusNoContent, nil, db.DeleteRoom(r.Context(), s.DB, id))
	}))

	s.complaintRoutes(r)
}

func (s *Server) complaintRoutes(r chi.Router) {
	res := access.ResComplaint
	const base = "/ruangan/{ruangan_id}/aduan"

	r.Get(base, s.guard(res, access.ActRead, func(w http.ResponseWriter, r *http.Request) {
		roomID, err := idParam(r, "ruangan_id")
		if err != nil {
			s.fail(w, r, err)
			return
		}
		out, err := db.ListComplaints(r.Context(), s.DB, ctxutil.Role(r.Context()), roomID)
		s.reply(w, r, http.StatusOK, out, err)
	}))
	r.Post(base, s.guard(res, access.ActCreate, s.fileComplaint))
	r.Get(base+"/{id}", s.guard(res, access.ActRead, func(w http.ResponseWriter, r *http.Request) {
		roomID, id, err := nestedIDs(r, "ruangan_id")
		if err != nil {
			s.fail(w, r, err)
			return
		}
		out, err := db.GetComplaint(r.Context(), s.DB, ctxutil.Role(r.Context()), roomID, id)
		s.reply(w, r, http.StatusOK, out, err)
	}))
	respond := s.guard(res, access.ActUpdate, func(w http.ResponseWriter, r *http.Request) {
		roomID, id, err := nestedIDs(r, "ruangan_id")
		if err != nil {
			s.fail(w, r, err)
			return
		}
		var req complaintResponseReq
		if err := decode(r, &req); err != nil {
			s.fail(w, r, err)
			return
		}
		out, err := db.RespondComplaint(r.Context(), s.DB, ctxutil.Role(r.Context()), roomID, id, req.Status, req.Response)
		s.reply(w, r, http.StatusOK, out, err)
	})
	r.Put(base+"/{id}", respond)
	r.Patch(base+"/{id}", respond)
	r.Delete(base+"/{id}", s.guard(res, access.ActDelete, func(w http.ResponseWriter, r *http.Request) {
		roomID, id, err := nestedIDs(r, "ruangan_id")
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.reply(w, r, http.StatusNoContent, nil, db.DeleteComplaint(r.Context(), s.DB, ctxutil.Role(r.Context()), roomID, id))
	}))
}

// fileComplaint records a student's complaint about a room and pings the
// notification chats in the background.
func (s *Server) fileComplaint(w http.ResponseWriter, r *http.Request) {
	role := ctxutil.Role(r.Context())
	roomID, err := idParam(r, "ruangan_id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	room, err := db.GetRoom(r.Context(), s.DB, roomID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req complaintReq
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	me, err := db.EnsureStudentProfile(r.Context(), s.DB, role.UserID())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if st, ok := role.(access.Student); ok {
		// профиль мог появиться только что
		st.StudentID = me.ID
		role = st
	}

	out, err := db.CreateComplaint(r.Context(), s.DB, role, models.Complaint{
		Detail:    req.Detail,
		Photo:     req.Photo,
		RoomID:    roomID,
		StudentID: &me.ID,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if s.Notifier != nil {
		nim := ""
		if me.NIM != nil {
			nim = *me.NIM
		}
		c, rm := *out, *room
		ctx := context.WithoutCancel(r.Context())
		go func() {
			ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
			defer cancel()
			s.Notifier.ComplaintFiled(ctx, c, rm, nim)
		}()
	}
	writeJSON(w, http.StatusCreated, out)
}
