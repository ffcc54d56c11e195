package app

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"homestay/internal/adapters/observability"
	"homestay/internal/domain"
)

// Materializer builds a localized view from a canonical record by translating
// the declared fields of each entity type. It is a pure transformation:
// caching is the caller's job. With no translator configured every view is
// the canonical content unchanged, which is the designed degradation.
type Materializer struct {
	tr     domain.Translator
	source string
}

func NewMaterializer(tr domain.Translator, sourceLang string) *Materializer {
	return &Materializer{tr: tr, source: sourceLang}
}

// One descriptor per translatable field. Opaque fields (ids, money, dates,
// personal names) simply have no descriptor.
type fieldSpec[T any] struct {
	name string
	str  func(*T) *string   // scalar slot; nil pointer means absent
	arr  func(*T) *[]string // array slot, translated element-wise
}

var listingFields = []fieldSpec[domain.ListingView]{
	{name: "name", str: func(v *domain.ListingView) *string { return &v.Name }},
	{name: "description", str: func(v *domain.ListingView) *string { return v.Description }},
	{name: "status", str: func(v *domain.ListingView) *string { return &v.Status }},
	{name: "city", str: func(v *domain.ListingView) *string { return v.City }},
	{name: "country", str: func(v *domain.ListingView) *string { return v.Country }},
	{name: "address", str: func(v *domain.ListingView) *string { return v.Address }},
	{name: "facilities", arr: func(v *domain.ListingView) *[]string { return &v.Facilities }},
	{name: "location", arr: func(v *domain.ListingView) *[]string { return &v.Location }},
	{name: "operating_hours", arr: func(v *domain.ListingView) *[]string { return &v.OperatingHours }},
	{name: "age_groups", arr: func(v *domain.ListingView) *[]string { return &v.AgeGroups }},
}

var userFields = []fieldSpec[domain.UserView]{
	{name: "bio", str: func(v *domain.UserView) *string { return v.Bio }},
	{name: "city", str: func(v *domain.UserView) *string { return v.City }},
	{name: "country", str: func(v *domain.UserView) *string { return v.Country }},
}

var categoryFields = []fieldSpec[domain.CategoryView]{
	{name: "name", str: func(v *domain.CategoryView) *string { return &v.Name }},
	{name: "description", str: func(v *domain.CategoryView) *string { return v.Description }},
}

var bookingFields = []fieldSpec[domain.BookingView]{
	{name: "listing_name", str: func(v *domain.BookingView) *string { return &v.ListingName }},
	{name: "status", str: func(v *domain.BookingView) *string { return &v.Status }},
	{name: "note", str: func(v *domain.BookingView) *string { return v.Note }},
}

var reviewFields = []fieldSpec[domain.ReviewView]{
	{name: "title", str: func(v *domain.ReviewView) *string { return v.Title }},
	{name: "comment", str: func(v *domain.ReviewView) *string { return v.Comment }},
}

// Nested relation sub-fields. Reviewer and guest names are deliberately not
// listed: personal names echo through untranslated on every path.
var categoryRefFields = []fieldSpec[domain.CategoryRef]{
	{name: "name", str: func(v *domain.CategoryRef) *string { return &v.Name }},
}

var reviewSummaryFields = []fieldSpec[domain.ReviewSummary]{
	{name: "title", str: func(v *domain.ReviewSummary) *string { return v.Title }},
	{name: "comment", str: func(v *domain.ReviewSummary) *string { return v.Comment }},
}

var bookingSummaryFields = []fieldSpec[domain.BookingSummary]{
	{name: "status", str: func(v *domain.BookingSummary) *string { return &v.Status }},
}

// translateFields walks a descriptor table and localizes each present field.
// A failed provider call degrades that one field to its source value; it never
// fails the materialization.
func translateFields[T any](ctx context.Context, tr domain.Translator, specs []fieldSpec[T], v *T, target, source string) {
	for _, spec := range specs {
		switch {
		case spec.str != nil:
			s := spec.str(v)
			if s == nil || strings.TrimSpace(*s) == "" {
				continue
			}
			out, err := tr.Translate(ctx, []string{*s}, target, source)
			if err != nil || len(out) != 1 {
				observability.ObserveTranslation("degraded")
				log.Warn().Err(err).Str("field", spec.name).Str("lang", target).Msg("field translation degraded")
				continue
			}
			*s = out[0]
			observability.ObserveTranslation("ok")
		case spec.arr != nil:
			a := spec.arr(v)
			if a == nil || len(*a) == 0 {
				continue
			}
			out, err := tr.Translate(ctx, *a, target, source)
			if err != nil || len(out) != len(*a) {
				observability.ObserveTranslation("degraded")
				log.Warn().Err(err).Str("field", spec.name).Str("lang", target).Msg("array translation degraded")
				continue
			}
			copy(*a, out)
			observability.ObserveTranslation("ok")
		}
	}
}

func (m *Materializer) translatable(lang string) bool {
	return m.tr != nil && lang != m.source
}

// Listing localizes one listing together with its nested category, review and
// booking summaries. Aggregate stats are attached by the caller.
func (m *Materializer) Listing(ctx context.Context, l domain.Listing, lang string) domain.ListingView {
	v := listingViewOf(l, lang)
	if !m.translatable(lang) {
		return v
	}
	translateFields(ctx, m.tr, listingFields, &v, lang, m.source)
	if v.Category != nil {
		translateFields(ctx, m.tr, categoryRefFields, v.Category, lang, m.source)
	}
	for i := range v.Reviews {
		translateFields(ctx, m.tr, reviewSummaryFields, &v.Reviews[i], lang, m.source)
	}
	for i := range v.Bookings {
		translateFields(ctx, m.tr, bookingSummaryFields, &v.Bookings[i], lang, m.source)
	}
	return v
}

func (m *Materializer) User(ctx context.Context, u domain.User, lang string) domain.UserView {
	v := domain.UserView{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: joinName(u.FirstName, u.LastName),
		Bio:         copyStr(u.Bio),
		City:        copyStr(u.City),
		Country:     copyStr(u.Country),
		Language:    lang,
	}
	if m.translatable(lang) {
		translateFields(ctx, m.tr, userFields, &v, lang, m.source)
	}
	return v
}

func (m *Materializer) Category(ctx context.Context, c domain.Category, lang string) domain.CategoryView {
	v := domain.CategoryView{ID: c.ID, Name: c.Name, Description: copyStr(c.Description), Language: lang}
	if m.translatable(lang) {
		translateFields(ctx, m.tr, categoryFields, &v, lang, m.source)
	}
	return v
}

func (m *Materializer) Booking(ctx context.Context, b domain.Booking, lang string) domain.BookingView {
	v := domain.BookingView{
		ID:          b.ID,
		ListingID:   b.ListingID,
		ListingName: b.ListingName,
		UserID:      b.UserID,
		Status:      b.Status,
		StartDate:   b.StartDate,
		EndDate:     b.EndDate,
		Guests:      b.Guests,
		TotalCents:  b.TotalCents,
		Note:        copyStr(b.Note),
		Language:    lang,
	}
	if m.translatable(lang) {
		translateFields(ctx, m.tr, bookingFields, &v, lang, m.source)
	}
	return v
}

func (m *Materializer) Review(ctx context.Context, r domain.Review, lang string) domain.ReviewView {
	v := domain.ReviewView{
		ID:           r.ID,
		ListingID:    r.ListingID,
		Rating:       r.Rating,
		Title:        copyStr(r.Title),
		Comment:      copyStr(r.Comment),
		Status:       r.Status,
		ReviewerName: joinName(r.ReviewerFirstName, r.ReviewerLastName),
		CreatedAt:    r.CreatedAt,
		Language:     lang,
	}
	if m.translatable(lang) {
		translateFields(ctx, m.tr, reviewFields, &v, lang, m.source)
	}
	return v
}

// listingViewOf deep-copies the canonical record into view form so cached
// values never alias repository-owned slices.
func listingViewOf(l domain.Listing, lang string) domain.ListingView {
	v := domain.ListingView{
		ID:             l.ID,
		HostID:         l.HostID,
		Name:           l.Name,
		Description:    copyStr(l.Description),
		Status:         l.Status,
		PriceCents:     l.PriceCents,
		Currency:       l.Currency,
		City:           copyStr(l.City),
		Country:        copyStr(l.Country),
		Address:        copyStr(l.Address),
		Facilities:     copySlice(l.Facilities),
		Location:       copySlice(l.Location),
		OperatingHours: copySlice(l.OperatingHours),
		AgeGroups:      copySlice(l.AgeGroups),
		CreatedAt:      l.CreatedAt,
		UpdatedAt:      l.UpdatedAt,
		Language:       lang,
	}
	if l.Category != nil {
		v.Category = &domain.CategoryRef{ID: l.Category.ID, Name: l.Category.Name}
	}
	for _, r := range l.Reviews {
		v.Reviews = append(v.Reviews, domain.ReviewSummary{
			ID:           r.ID,
			Rating:       r.Rating,
			Title:        copyStr(r.Title),
			Comment:      copyStr(r.Comment),
			ReviewerName: joinName(r.ReviewerFirstName, r.ReviewerLastName),
			CreatedAt:    r.CreatedAt,
		})
	}
	for _, b := range l.Bookings {
		v.Bookings = append(v.Bookings, domain.BookingSummary{
			ID:        b.ID,
			Status:    b.Status,
			StartDate: b.StartDate,
			EndDate:   b.EndDate,
			GuestName: joinName(b.GuestFirstName, b.GuestLastName),
		})
	}
	return v
}

// joinName rebuilds a display name from the raw parts. Personal names are
// never handed to the translator.
func joinName(first, last string) string {
	parts := make([]string, 0, 2)
	if t := strings.TrimSpace(first); t != "" {
		parts = append(parts, t)
	}
	if t := strings.TrimSpace(last); t != "" {
		parts = append(parts, t)
	}
	return strings.Join(parts, " ")
}

func copyStr(p *string) *string {
	if p == nil {
		return nil
	}
	s := *p
	return &s
}

func copySlice(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
