package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"homestay/internal/app"
	"homestay/internal/domain"
)

type Handlers struct {
	Q *app.QueryService
	C *app.CommandService

	SourceLang  string
	TargetLangs []string
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Get("/v1/listings", h.listListings)
	s.mux.Get("/v1/listings/{id}", h.getListing)
	s.mux.Post("/v1/listings", h.createListing)
	s.mux.Put("/v1/listings/{id}", h.updateListing)
	s.mux.Delete("/v1/listings/{id}", h.deleteListing)

	s.mux.Get("/v1/categories", h.listCategories)
	s.mux.Get("/v1/categories/{id}", h.getCategory)

	s.mux.Get("/v1/users/{id}", h.getUser)
	s.mux.Put("/v1/users/{id}", h.updateUser)
	s.mux.Get("/v1/users/{id}/bookings", h.listUserBookings)
	s.mux.Get("/v1/users/{id}/reviews", h.listUserReviews)

	s.mux.Get("/v1/bookings/{id}", h.getBooking)
	s.mux.Post("/v1/bookings", h.createBooking)
	s.mux.Patch("/v1/bookings/{id}/status", h.updateBookingStatus)
	s.mux.Delete("/v1/bookings/{id}", h.deleteBooking)

	s.mux.Get("/v1/reviews/{id}", h.getReview)
	s.mux.Post("/v1/reviews", h.createReview)
	s.mux.Patch("/v1/reviews/{id}/status", h.moderateReview)
}

// selectLang resolves the response language: explicit ?lang= first, then the
// Accept-Language prefix, then the source language.
func (h *Handlers) selectLang(r *http.Request) string {
	if lang := r.URL.Query().Get("lang"); lang != "" {
		for _, t := range h.TargetLangs {
			if lang == t {
				return t
			}
		}
		return h.SourceLang
	}
	al := strings.ToLower(r.Header.Get("Accept-Language"))
	for _, t := range h.TargetLangs {
		if strings.HasPrefix(al, t) {
			return t
		}
	}
	return h.SourceLang
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeErr(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
		return
	}
	writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeView sends a cacheable localized JSON payload with ETag revalidation.
func writeView(w http.ResponseWriter, r *http.Request, v any, lang string) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Language", lang)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			log.Error().Err(err).Msg("failed to write JSON body")
		}
	}
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// ---- reads ----

func (h *Handlers) getListing(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return
	}
	lang := h.selectLang(r)
	v, err := h.Q.GetListing(r.Context(), id, lang)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeView(w, r, v, v.Language)
}

func (h *Handlers) listListings(w http.ResponseWriter, r *http.Request) {
	q, err := parseListingsQuery(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Filter", err.Error())
		return
	}
	lang := h.selectLang(r)
	page, err := h.Q.ListListings(r.Context(), q, lang)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeView(w, r, page, lang)
}

func (h *Handlers) listCategories(w http.ResponseWriter, r *http.Request) {
	lang := h.selectLang(r)
	out, err := h.Q.ListCategories(r.Context(), lang)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeView(w, r, out, lang)
}

func (h *Handlers) getCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return
	}
	lang := h.selectLang(r)
	v, err := h.Q.GetCategory(r.Context(), id, lang)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeView(w, r, v, v.Language)
}

func (h *Handlers) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return
	}
	lang := h.selectLang(r)
	v, err := h.Q.GetUser(r.Context(), id, lang)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeView(w, r, v, v.Language)
}

func (h *Handlers) listUserBookings(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return
	}
	lang := h.selectLang(r)
	page, err := h.Q.ListUserBookings(r.Context(), id, lang)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeView(w, r, page, lang)
}

func (h *Handlers) listUserReviews(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return
	}
	lang := h.selectLang(r)
	page, err := h.Q.ListUserReviews(r.Context(), id, lang)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeView(w, r, page, lang)
}

func (h *Handlers) getBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return
	}
	lang := h.selectLang(r)
	v, err := h.Q.GetBooking(r.Context(), id, lang)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeView(w, r, v, v.Language)
}

func (h *Handlers) getReview(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return
	}
	lang := h.selectLang(r)
	v, err := h.Q.GetReview(r.Context(), id, lang)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeView(w, r, v, v.Language)
}

// ---- writes ----

func (h *Handlers) createListing(w http.ResponseWriter, r *http.Request) {
	var l domain.Listing
	if err := json.NewDecoder(r.Body).Decode(&l); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if l.Name == "" || l.HostID == 0 {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "name and host_id are required")
		return
	}
	if err := h.C.CreateListing(r.Context(), &l); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": l.ID})
}

func (h *Handlers) updateListing(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return
	}
	var l domain.Listing
	if err := json.NewDecoder(r.Body).Decode(&l); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	l.ID = id
	if err := h.C.UpdateListing(r.Context(), l); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *Handlers) deleteListing(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return
	}
	if err := h.C.DeleteListing(r.Context(), id); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *Handlers) updateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return
	}
	var u domain.User
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	u.ID = id
	if err := h.C.UpdateUserProfile(r.Context(), u); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *Handlers) createBooking(w http.ResponseWriter, r *http.Request) {
	var b domain.Booking
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if b.ListingID == 0 || b.UserID == 0 {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "listing_id and user_id are required")
		return
	}
	if b.Status == "" {
		b.Status = domain.BookingConfirmed
	}
	if err := h.C.CreateBooking(r.Context(), &b); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": b.ID})
}

func (h *Handlers) updateBookingStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	status := strings.ToUpper(strings.TrimSpace(body.Status))
	switch status {
	case domain.BookingPending, domain.BookingConfirmed, domain.BookingCancelled:
	default:
		writeProblem(w, http.StatusBadRequest, "Invalid Status", "status must be PENDING, CONFIRMED or CANCELLED")
		return
	}
	if err := h.C.UpdateBookingStatus(r.Context(), id, status); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *Handlers) deleteBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return
	}
	if err := h.C.DeleteBooking(r.Context(), id); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *Handlers) createReview(w http.ResponseWriter, r *http.Request) {
	var rev domain.Review
	if err := json.NewDecoder(r.Body).Decode(&rev); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if rev.ListingID == 0 || rev.UserID == 0 {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "listing_id and user_id are required")
		return
	}
	if rev.Rating < 1 || rev.Rating > 5 {
		writeProblem(w, http.StatusBadRequest, "Invalid Rating", "rating must be between 1 and 5")
		return
	}
	if err := h.C.CreateReview(r.Context(), &rev); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": rev.ID})
}

func (h *Handlers) moderateReview(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	status := strings.ToUpper(strings.TrimSpace(body.Status))
	switch status {
	case domain.ReviewAccepted, domain.ReviewRejected, domain.ReviewPending:
	default:
		writeProblem(w, http.StatusBadRequest, "Invalid Status", "status must be PENDING, ACCEPTED or REJECTED")
		return
	}
	if err := h.C.ModerateReview(r.Context(), id, status); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func parseListingsQuery(r *http.Request) (domain.ListingsQuery, error) {
	var q domain.ListingsQuery
	qs := r.URL.Query()
	if v := qs.Get("status"); v != "" {
		q.Status = &v
	}
	if v := qs.Get("city"); v != "" {
		q.City = &v
	}
	if v := qs.Get("category"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return q, errors.New("category must be a positive number")
		}
		q.CategoryID = &id
	}
	if v := qs.Get("min_cents"); v != "" {
		c, err := strconv.ParseInt(v, 10, 64)
		if err != nil || c < 0 {
			return q, errors.New("min_cents must be a non-negative number")
		}
		q.MinCents = &c
	}
	if v := qs.Get("max_cents"); v != "" {
		c, err := strconv.ParseInt(v, 10, 64)
		if err != nil || c < 0 {
			return q, errors.New("max_cents must be a non-negative number")
		}
		q.MaxCents = &c
	}
	if v := qs.Get("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p < 1 {
			return q, errors.New("page must be a positive integer")
		}
		q.Page = p
	}
	if v := qs.Get("page_size"); v != "" {
		ps, err := strconv.Atoi(v)
		if err != nil || ps < 1 || ps > 100 {
			return q, errors.New("page_size must be an integer between 1 and 100")
		}
		q.PageSize = ps
	}
	return q, nil
}
