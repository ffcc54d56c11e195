package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"strings"

	"homestay/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valInt64(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}
func jsonArr(ss []string) string {
	if ss == nil {
		ss = []string{}
	}
	b, _ := json.Marshal(ss)
	return string(b)
}
func nullStr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) GetUser(ctx context.Context, id int64) (domain.User, error) {
	row := r.db.QueryRowContext(ctx, getUserSQL, id)

	var u domain.User
	var bio, city, country sql.NullString
	if err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &bio, &city, &country, &u.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, err
	}
	u.Bio = nullStr(bio)
	u.City = nullStr(city)
	u.Country = nullStr(country)
	return u, nil
}

func (r *Repo) GetCategory(ctx context.Context, id int64) (domain.Category, error) {
	row := r.db.QueryRowContext(ctx, getCategorySQL, id)

	var c domain.Category
	var desc sql.NullString
	if err := row.Scan(&c.ID, &c.Name, &desc); err != nil {
		if err == sql.ErrNoRows {
			return domain.Category{}, domain.ErrNotFound
		}
		return domain.Category{}, err
	}
	c.Description = nullStr(desc)
	return c, nil
}

func (r *Repo) GetListing(ctx context.Context, id int64) (domain.Listing, error) {
	l, err := r.getListingBase(ctx, id)
	if err != nil {
		return domain.Listing{}, err
	}
	if l.Reviews, err = r.listingReviews(ctx, id); err != nil {
		return domain.Listing{}, err
	}
	if l.Bookings, err = r.listingBookings(ctx, id); err != nil {
		return domain.Listing{}, err
	}
	return l, nil
}

func (r *Repo) getListingBase(ctx context.Context, id int64) (domain.Listing, error) {
	row := r.db.QueryRowContext(ctx, getListingSQL, id)
	return scanListing(row.Scan)
}

func scanListing(scan func(...any) error) (domain.Listing, error) {
	var l domain.Listing
	var categoryID sql.NullInt64
	var desc, city, country, address sql.NullString
	var facilities, location, hours, ageGroups []byte
	var catName, catDesc sql.NullString

	if err := scan(
		&l.ID,
		&l.HostID,
		&categoryID,
		&l.Name,
		&desc,
		&l.Status,
		&l.PriceCents,
		&l.Currency,
		&city, &country, &address,
		&facilities, &location, &hours, &ageGroups,
		&l.CreatedAt, &l.UpdatedAt,
		&catName, &catDesc,
	); err != nil {
		if err == sql.ErrNoRows {
			return domain.Listing{}, domain.ErrNotFound
		}
		return domain.Listing{}, err
	}

	if categoryID.Valid {
		cid := categoryID.Int64
		l.CategoryID = &cid
		if catName.Valid {
			l.Category = &domain.Category{ID: cid, Name: catName.String, Description: nullStr(catDesc)}
		}
	}
	l.Description = nullStr(desc)
	l.City = nullStr(city)
	l.Country = nullStr(country)
	l.Address = nullStr(address)
	_ = json.Unmarshal(facilities, &l.Facilities)
	_ = json.Unmarshal(location, &l.Location)
	_ = json.Unmarshal(hours, &l.OperatingHours)
	_ = json.Unmarshal(ageGroups, &l.AgeGroups)
	return l, nil
}

func (r *Repo) listingReviews(ctx context.Context, listingID int64) ([]domain.Review, error) {
	rows, err := r.db.QueryContext(ctx, listingReviewsSQL, listingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReviews(rows)
}

func collectReviews(rows *sql.Rows) ([]domain.Review, error) {
	var out []domain.Review
	for rows.Next() {
		var rv domain.Review
		var title, comment sql.NullString
		if err := rows.Scan(
			&rv.ID, &rv.ListingID, &rv.UserID, &rv.Rating,
			&title, &comment, &rv.Status, &rv.CreatedAt,
			&rv.ReviewerFirstName, &rv.ReviewerLastName,
		); err != nil {
			return nil, err
		}
		rv.Title = nullStr(title)
		rv.Comment = nullStr(comment)
		out = append(out, rv)
	}
	return out, rows.Err()
}

func (r *Repo) listingBookings(ctx context.Context, listingID int64) ([]domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx, listingBookingsSQL, listingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Booking
	for rows.Next() {
		var b domain.Booking
		var note sql.NullString
		if err := rows.Scan(
			&b.ID, &b.ListingID, &b.UserID, &b.Status,
			&b.StartDate, &b.EndDate, &b.Guests, &b.TotalCents, &note, &b.CreatedAt,
			&b.GuestFirstName, &b.GuestLastName,
		); err != nil {
			return nil, err
		}
		b.Note = nullStr(note)
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *Repo) GetBooking(ctx context.Context, id int64) (domain.Booking, error) {
	row := r.db.QueryRowContext(ctx, getBookingSQL, id)

	var b domain.Booking
	var note sql.NullString
	if err := row.Scan(
		&b.ID, &b.ListingID, &b.UserID, &b.Status,
		&b.StartDate, &b.EndDate, &b.Guests, &b.TotalCents, &note, &b.CreatedAt,
		&b.ListingName, &b.GuestFirstName, &b.GuestLastName,
	); err != nil {
		if err == sql.ErrNoRows {
			return domain.Booking{}, domain.ErrNotFound
		}
		return domain.Booking{}, err
	}
	b.Note = nullStr(note)
	return b, nil
}

func (r *Repo) GetReview(ctx context.Context, id int64) (domain.Review, error) {
	row := r.db.QueryRowContext(ctx, getReviewSQL, id)

	var rv domain.Review
	var title, comment sql.NullString
	if err := row.Scan(
		&rv.ID, &rv.ListingID, &rv.UserID, &rv.Rating,
		&title, &comment, &rv.Status, &rv.CreatedAt,
		&rv.ReviewerFirstName, &rv.ReviewerLastName,
	); err != nil {
		if err == sql.ErrNoRows {
			return domain.Review{}, domain.ErrNotFound
		}
		return domain.Review{}, err
	}
	rv.Title = nullStr(title)
	rv.Comment = nullStr(comment)
	return rv, nil
}

// ListListings builds the WHERE clause from the normalized filter set. Rows
// come back base-only; list views don't carry relations.
func (r *Repo) ListListings(ctx context.Context, q domain.ListingsQuery) ([]domain.Listing, int, error) {
	var where []string
	var args []any
	if q.Status != nil && *q.Status != "" {
		where = append(where, "l.status = ?")
		args = append(args, *q.Status)
	}
	if q.CategoryID != nil {
		where = append(where, "l.category_id = ?")
		args = append(args, *q.CategoryID)
	}
	if q.City != nil && *q.City != "" {
		where = append(where, "LOWER(l.city) = ?")
		args = append(args, *q.City)
	}
	if q.MinCents != nil {
		where = append(where, "l.price_cents >= ?")
		args = append(args, *q.MinCents)
	}
	if q.MaxCents != nil {
		where = append(where, "l.price_cents <= ?")
		args = append(args, *q.MaxCents)
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM listings l"+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	pageSize := q.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	offset := 0
	if q.Page > 1 {
		offset = (q.Page - 1) * pageSize
	}
	sqlStr := `
SELECT
  l.id, l.host_id, l.category_id, l.name, l.description, l.status,
  l.price_cents, l.currency, l.city, l.country, l.address,
  l.facilities, l.location, l.operating_hours, l.age_groups,
  l.created_at, l.updated_at,
  c.name, c.description
FROM listings l
LEFT JOIN categories c ON c.id = l.category_id` + cond +
		" ORDER BY l.id LIMIT " + strconv.Itoa(pageSize) + " OFFSET " + strconv.Itoa(offset)

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.Listing
	for rows.Next() {
		l, err := scanListing(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, l)
	}
	return out, total, rows.Err()
}

func (r *Repo) ListListingIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, listingIDsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *Repo) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, listCategoriesSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Category
	for rows.Next() {
		var c domain.Category
		var desc sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &desc); err != nil {
			return nil, err
		}
		c.Description = nullStr(desc)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) ListUserBookings(ctx context.Context, userID int64) ([]domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx, userBookingsSQL, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Booking
	for rows.Next() {
		var b domain.Booking
		var note sql.NullString
		if err := rows.Scan(
			&b.ID, &b.ListingID, &b.UserID, &b.Status,
			&b.StartDate, &b.EndDate, &b.Guests, &b.TotalCents, &note, &b.CreatedAt,
			&b.ListingName, &b.GuestFirstName, &b.GuestLastName,
		); err != nil {
			return nil, err
		}
		b.Note = nullStr(note)
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *Repo) ListUserReviews(ctx context.Context, userID int64) ([]domain.Review, error) {
	rows, err := r.db.QueryContext(ctx, userReviewsSQL, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReviews(rows)
}

func (r *Repo) CreateListing(ctx context.Context, l *domain.Listing) error {
	res, err := r.db.ExecContext(ctx, insertListingSQL,
		l.HostID,
		valInt64(l.CategoryID),
		l.Name,
		valStr(l.Description),
		l.Status,
		l.PriceCents,
		l.Currency,
		valStr(l.City),
		valStr(l.Country),
		valStr(l.Address),
		jsonArr(l.Facilities),
		jsonArr(l.Location),
		jsonArr(l.OperatingHours),
		jsonArr(l.AgeGroups),
	)
	if err != nil {
		return err
	}
	l.ID, err = res.LastInsertId()
	return err
}

func (r *Repo) UpdateListing(ctx context.Context, l domain.Listing) error {
	res, err := r.db.ExecContext(ctx, updateListingSQL,
		valInt64(l.CategoryID),
		l.Name,
		valStr(l.Description),
		l.Status,
		l.PriceCents,
		l.Currency,
		valStr(l.City),
		valStr(l.Country),
		valStr(l.Address),
		jsonArr(l.Facilities),
		jsonArr(l.Location),
		jsonArr(l.OperatingHours),
		jsonArr(l.AgeGroups),
		l.ID,
	)
	if err != nil {
		return err
	}
	return affected(res)
}

func (r *Repo) DeleteListing(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, deleteListingSQL, id)
	if err != nil {
		return err
	}
	return affected(res)
}

func (r *Repo) CreateBooking(ctx context.Context, b *domain.Booking) error {
	res, err := r.db.ExecContext(ctx, insertBookingSQL,
		b.ListingID, b.UserID, b.Status,
		b.StartDate, b.EndDate, b.Guests, b.TotalCents,
		valStr(b.Note),
	)
	if err != nil {
		return err
	}
	b.ID, err = res.LastInsertId()
	return err
}

func (r *Repo) UpdateBookingStatus(ctx context.Context, id int64, status string) error {
	res, err := r.db.ExecContext(ctx, updateBookingStatusSQL, status, id)
	if err != nil {
		return err
	}
	return affected(res)
}

func (r *Repo) DeleteBooking(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, deleteBookingSQL, id)
	if err != nil {
		return err
	}
	return affected(res)
}

func (r *Repo) CreateReview(ctx context.Context, rv *domain.Review) error {
	res, err := r.db.ExecContext(ctx, insertReviewSQL,
		rv.ListingID, rv.UserID, rv.Rating,
		valStr(rv.Title), valStr(rv.Comment), rv.Status,
	)
	if err != nil {
		return err
	}
	rv.ID, err = res.LastInsertId()
	return err
}

func (r *Repo) SetReviewStatus(ctx context.Context, id int64, status string) error {
	res, err := r.db.ExecContext(ctx, setReviewStatusSQL, status, id)
	if err != nil {
		return err
	}
	return affected(res)
}

func (r *Repo) UpdateUserProfile(ctx context.Context, u domain.User) error {
	res, err := r.db.ExecContext(ctx, updateUserSQL,
		u.Email, u.FirstName, u.LastName,
		valStr(u.Bio), valStr(u.City), valStr(u.Country),
		u.ID,
	)
	if err != nil {
		return err
	}
	return affected(res)
}

func (r *Repo) AppendRewardEntry(ctx context.Context, e domain.RewardEntry) error {
	_, err := r.db.ExecContext(ctx, insertRewardSQL, e.UserID, e.Points, e.Reason, string(e.Tier))
	return err
}

func (r *Repo) SumRewardPoints(ctx context.Context, userID int64) (int64, error) {
	var sum int64
	err := r.db.QueryRowContext(ctx, sumRewardSQL, userID).Scan(&sum)
	return sum, err
}

func (r *Repo) LatestRewardTier(ctx context.Context, userID int64) (domain.Tier, error) {
	var tier string
	if err := r.db.QueryRowContext(ctx, latestTierSQL, userID).Scan(&tier); err != nil {
		if err == sql.ErrNoRows {
			return "", domain.ErrNotFound
		}
		return "", err
	}
	return domain.Tier(tier), nil
}

func affected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
