package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/RiccardoZanardi/Calvenzano/internal/core"
)

type addMemberRequest struct {
	Name     string `json:"name" validate:"required"`
	Surname  string `json:"surname" validate:"required"`
	Nickname string `json:"nickname"`
	Role     string `json:"role" validate:"omitempty,oneof=Player Staff"`
}

func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	var req addMemberRequest
	if err := s.decode(r, &req); err != nil {
		s.badRequest(w, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.store.AddMember(req.Name, req.Surname, req.Nickname, core.Role(req.Role))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.saveAndRespond(w, r, http.StatusCreated, m)
}

func (s *Server) handleDeactivateMember(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := chi.URLParam(r, "id")
	if err := s.store.DeactivateMember(id); err != nil {
		s.respondError(w, err)
		return
	}
	s.saveAndRespond(w, r, http.StatusOK, s.store.Ledger().FindMember(id))
}

func (s *Server) handleReactivateMember(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := chi.URLParam(r, "id")
	if err := s.store.ReactivateMember(id); err != nil {
		s.respondError(w, err)
		return
	}
	s.saveAndRespond(w, r, http.StatusOK, s.store.Ledger().FindMember(id))
}

type assignFineRequest struct {
	Category    string `json:"category" validate:"required"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

func (s *Server) handleAssignFine(w http.ResponseWriter, r *http.Request) {
	var req assignFineRequest
	if err := s.decode(r, &req); err != nil {
		s.badRequest(w, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.store.AssignFine(chi.URLParam(r, "id"), req.Category, req.Date, req.Description)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.saveAndRespond(w, r, http.StatusCreated, f)
}

type assignFinesRequest struct {
	Category    string   `json:"category" validate:"required"`
	MemberIDs   []string `json:"memberIds" validate:"required,min=1"`
	Date        string   `json:"date"`
	Description string   `json:"description"`
}

// handleAssignFines assigns the same fine to several members at once.
func (s *Server) handleAssignFines(w http.ResponseWriter, r *http.Request) {
	var req assignFinesRequest
	if err := s.decode(r, &req); err != nil {
		s.badRequest(w, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fines, err := s.store.AssignFines(req.Category, req.MemberIDs, req.Date, req.Description)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.saveAndRespond(w, r, http.StatusCreated, fines)
}

type assignICSRequest struct {
	Date      string   `json:"date"`
	MemberIDs []string `json:"memberIds" validate:"required,min=1"`
}

func (s *Server) handleAssignICS(w http.ResponseWriter, r *http.Request) {
	var req assignICSRequest
	if err := s.decode(r, &req); err != nil {
		s.badRequest(w, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	event, err := s.store.AssignICS(req.Date, req.MemberIDs)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.saveAndRespond(w, r, http.StatusCreated, event)
}

func (s *Server) handleToggleFinePayment(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		s.badRequest(w, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.store.ToggleFinePayment(chi.URLParam(r, "id"), index)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.saveAndRespond(w, r, http.StatusOK, f)
}

type addDonationRequest struct {
	MemberID  string `json:"memberId"`
	DonorName string `json:"donorName"`
	Amount    string `json:"amount" validate:"required"`
	Date      string `json:"date"`
	Note      string `json:"note"`
}

func (s *Server) handleAddDonation(w http.ResponseWriter, r *http.Request) {
	var req addDonationRequest
	if err := s.decode(r, &req); err != nil {
		s.badRequest(w, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.store.AddGlobalDonation(req.MemberID, req.DonorName, req.Amount, req.Date, req.Note)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.saveAndRespond(w, r, http.StatusCreated, d)
}

type addCategoryRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Type        string `json:"type" validate:"required,oneof=macro micro"`
	Parent      string `json:"parentCategory"`
	Amount      string `json:"amount"`
}

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	var req addCategoryRequest
	if err := s.decode(r, &req); err != nil {
		s.badRequest(w, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key, err := s.store.AddCategory(req.Name, req.Description, req.Parent, req.Amount, core.CategoryType(req.Type))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.saveAndRespond(w, r, http.StatusCreated, map[string]any{
		"key":      key,
		"category": s.store.Ledger().Categories[key],
	})
}

type updateCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req updateCategoryRequest
	if err := s.decode(r, &req); err != nil {
		s.badRequest(w, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := chi.URLParam(r, "key")
	if err := s.store.UpdateCategory(key, req.Name, req.Description, req.Amount); err != nil {
		s.respondError(w, err)
		return
	}
	s.saveAndRespond(w, r, http.StatusOK, s.store.Ledger().Categories[key])
}

func (s *Server) handleDeactivateCategory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := chi.URLParam(r, "key")
	if err := s.store.DeactivateCategory(key); err != nil {
		s.respondError(w, err)
		return
	}
	s.saveAndRespond(w, r, http.StatusOK, s.store.Ledger().Categories[key])
}

func (s *Server) handleReactivateCategory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := chi.URLParam(r, "key")
	if err := s.store.ReactivateCategory(key); err != nil {
		s.respondError(w, err)
		return
	}
	s.saveAndRespond(w, r, http.StatusOK, s.store.Ledger().Categories[key])
}

func (s *Server) handleImportData(w http.ResponseWriter, r *http.Request) {
	var l core.Ledger
	if err := s.decode(r, &l); err != nil {
		s.badRequest(w, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.SetLedger(&l)
	s.saveAndRespond(w, r, http.StatusOK, map[string]any{
		"members":    len(l.Members),
		"categories": len(l.Categories),
	})
}

func (s *Server) handleClearTreasury(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.ClearTreasury()
	_, expiry := s.store.RestoreAvailable()
	s.saveAndRespond(w, r, http.StatusOK, map[string]any{
		"recoverableUntil": expiry,
	})
}

func (s *Server) handleRestoreTreasury(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.RestoreTreasury(); err != nil {
		s.respondError(w, err)
		return
	}
	s.saveAndRespond(w, r, http.StatusOK, map[string]any{
		"restored": true,
	})
}

func (s *Server) handleBackupStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	available, expiry := s.store.RestoreAvailable()
	resp := map[string]any{"available": available}
	if available {
		resp["expiresAt"] = expiry
	}
	s.respondJSON(w, http.StatusOK, resp)
}
