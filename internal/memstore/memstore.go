// Package memstore keeps listings, images, leads, users and photos in
// process memory. It backs `serve --in-memory` and the handler and service
// tests, and follows the same not-found and duplicate semantics as the
// Postgres and GridFS repositories.
package memstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Ryz3nPlayZ/austin-luxury-living/internal/model"
	"github.com/Ryz3nPlayZ/austin-luxury-living/internal/repository"
)

type DB struct {
	mu       sync.RWMutex
	seq      int
	listings []listingRow
	images   []model.Image
	leads    []leadRow
	users    []model.User
	sessions map[string]sessionRow
	otps     map[string]otpRow
	photos   map[string]photo

	now func() time.Time
}

type listingRow struct {
	model.Listing
	seq int
}

type leadRow struct {
	model.Lead
	seq int
}

type sessionRow struct {
	model.Session
	revoked bool
}

type otpRow struct {
	hash      string
	expiresAt time.Time
}

type photo struct {
	data        []byte
	contentType string
}

func New() *DB {
	return &DB{
		sessions: map[string]sessionRow{},
		otps:     map[string]otpRow{},
		photos:   map[string]photo{},
		now:      time.Now,
	}
}

// SetClock replaces the time source used for lead timestamps and expiry
// checks.
func (db *DB) SetClock(now func() time.Time) { db.now = now }

func (db *DB) Listings() *Listings { return &Listings{db} }
func (db *DB) Images() *Images     { return &Images{db} }
func (db *DB) Leads() *Leads       { return &Leads{db} }
func (db *DB) Users() *Users       { return &Users{db} }

// Photos returns an in-memory photo store whose URLs start with baseURL.
func (db *DB) Photos(baseURL string) *Photos {
	return &Photos{db: db, BaseURL: strings.TrimRight(baseURL, "/")}
}

func (db *DB) next() int {
	db.seq++
	return db.seq
}

func notFound(op, id string) error {
	return fmt.Errorf("%s %s: %w", op, id, repository.ErrNotFound)
}

// Listings implements the listing store.
type Listings struct{ db *DB }

func (s *Listings) Create(_ context.Context, l *model.Listing) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, row := range s.db.listings {
		if row.ID == l.ID {
			return fmt.Errorf("memstore.Listings.Create %s: %w", l.ID, repository.ErrDuplicate)
		}
	}
	row := listingRow{Listing: *l, seq: s.db.next()}
	row.Images = nil
	s.db.listings = append(s.db.listings, row)
	return nil
}

func (s *Listings) Update(_ context.Context, l *model.Listing) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for i, row := range s.db.listings {
		if row.ID == l.ID {
			updated := *l
			updated.CreatedAt = row.CreatedAt
			updated.Images = nil
			s.db.listings[i].Listing = updated
			return nil
		}
	}
	return notFound("memstore.Listings.Update", l.ID)
}

// Delete removes a listing with its images and leads.
func (s *Listings) Delete(_ context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	idx := -1
	for i, row := range s.db.listings {
		if row.ID == id {
			idx = i
		}
	}
	if idx < 0 {
		return notFound("memstore.Listings.Delete", id)
	}
	s.db.listings = append(s.db.listings[:idx], s.db.listings[idx+1:]...)

	images := s.db.images[:0]
	for _, img := range s.db.images {
		if img.PropertyID != id {
			images = append(images, img)
		}
	}
	s.db.images = images

	leads := s.db.leads[:0]
	for _, l := range s.db.leads {
		if model.Deref(l.PropertyID) != id {
			leads = append(leads, l)
		}
	}
	s.db.leads = leads
	return nil
}

func (s *Listings) GetByID(_ context.Context, id string) (*model.Listing, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	for _, row := range s.db.listings {
		if row.ID == id {
			l := s.db.withImages(row.Listing)
			return &l, nil
		}
	}
	return nil, notFound("memstore.Listings.GetByID", id)
}

func (s *Listings) ListActive(context.Context) ([]model.Listing, error) {
	return s.list(func(l model.Listing) bool { return l.Status == model.StatusActive }), nil
}

func (s *Listings) ListAll(context.Context) ([]model.Listing, error) {
	return s.list(func(model.Listing) bool { return true }), nil
}

func (s *Listings) list(keep func(model.Listing) bool) []model.Listing {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	rows := make([]listingRow, 0, len(s.db.listings))
	for _, row := range s.db.listings {
		if keep(row.Listing) {
			rows = append(rows, row)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})
	out := make([]model.Listing, 0, len(rows))
	for _, row := range rows {
		out = append(out, s.db.withImages(row.Listing))
	}
	return out
}

func (s *Listings) Count(context.Context) (int, error) {
	return len(s.list(func(model.Listing) bool { return true })), nil
}

func (s *Listings) CountByStatus(_ context.Context, status model.Status) (int, error) {
	return len(s.list(func(l model.Listing) bool { return l.Status == status })), nil
}

func (s *Listings) CountPocket(context.Context) (int, error) {
	return len(s.list(func(l model.Listing) bool { return l.IsPocket })), nil
}

// withImages must be called with the lock held.
func (db *DB) withImages(l model.Listing) model.Listing {
	l.Images = nil
	for _, img := range db.images {
		if img.PropertyID == l.ID {
			l.Images = append(l.Images, img)
		}
	}
	model.SortImages(l.Images)
	return l
}

// Images implements the image record store.
type Images struct{ db *DB }

// Add enforces the per-listing unique display order.
func (s *Images) Add(_ context.Context, img *model.Image) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	found := false
	for _, row := range s.db.listings {
		if row.ID == img.PropertyID {
			found = true
		}
	}
	if !found {
		return notFound("memstore.Images.Add listing", img.PropertyID)
	}
	for _, existing := range s.db.images {
		if existing.PropertyID == img.PropertyID && existing.DisplayOrder == img.DisplayOrder {
			return fmt.Errorf("memstore.Images.Add order %d: %w", img.DisplayOrder, repository.ErrDuplicate)
		}
	}
	s.db.images = append(s.db.images, *img)
	return nil
}

func (s *Images) Delete(_ context.Context, propertyID, imageID string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for i, img := range s.db.images {
		if img.ID == imageID && img.PropertyID == propertyID {
			s.db.images = append(s.db.images[:i], s.db.images[i+1:]...)
			return nil
		}
	}
	return notFound("memstore.Images.Delete", imageID)
}

func (s *Images) ListByProperty(_ context.Context, propertyID string) ([]model.Image, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	var out []model.Image
	for _, img := range s.db.images {
		if img.PropertyID == propertyID {
			out = append(out, img)
		}
	}
	model.SortImages(out)
	return out, nil
}

// Leads implements the lead store.
type Leads struct{ db *DB }

func (s *Leads) Insert(_ context.Context, lead *model.Lead) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if pid := model.Deref(lead.PropertyID); pid != "" {
		found := false
		for _, row := range s.db.listings {
			if row.ID == pid {
				found = true
			}
		}
		if !found {
			return notFound("memstore.Leads.Insert listing", pid)
		}
	}
	lead.CreatedAt = s.db.now()
	s.db.leads = append(s.db.leads, leadRow{Lead: *lead, seq: s.db.next()})
	return nil
}

// newest must be called with the lock held.
func (s *Leads) newest(keep func(model.Lead) bool) []model.Lead {
	rows := make([]leadRow, 0, len(s.db.leads))
	for _, row := range s.db.leads {
		if keep(row.Lead) {
			rows = append(rows, row)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})
	out := make([]model.Lead, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Lead)
	}
	return out
}

func (s *Leads) joined(keep func(model.Lead) bool) []model.LeadWithProperty {
	leads := s.newest(keep)
	out := make([]model.LeadWithProperty, 0, len(leads))
	for _, l := range leads {
		row := model.LeadWithProperty{Lead: l}
		for _, p := range s.db.listings {
			if p.ID == model.Deref(l.PropertyID) {
				title, address := p.Title, p.Address
				row.PropertyTitle, row.PropertyAddress = &title, &address
			}
		}
		out = append(out, row)
	}
	return out
}

func (s *Leads) List(context.Context) ([]model.LeadWithProperty, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	return s.joined(func(model.Lead) bool { return true }), nil
}

func (s *Leads) ListByProperty(_ context.Context, propertyID string) ([]model.LeadWithProperty, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	return s.joined(func(l model.Lead) bool { return model.Deref(l.PropertyID) == propertyID }), nil
}

func (s *Leads) ListSince(_ context.Context, t time.Time) ([]model.Lead, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	return s.newest(func(l model.Lead) bool { return !l.CreatedAt.Before(t) }), nil
}

func (s *Leads) Recent(_ context.Context, n int) ([]model.Lead, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	all := s.newest(func(model.Lead) bool { return true })
	if len(all) > n {
		all = all[:n]
	}
	return all, nil
}

func (s *Leads) Count(ctx context.Context, since time.Time) (int, error) {
	leads, err := s.ListSince(ctx, since)
	return len(leads), err
}

func (s *Leads) Delete(_ context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for i, l := range s.db.leads {
		if l.ID == id {
			s.db.leads = append(s.db.leads[:i], s.db.leads[i+1:]...)
			return nil
		}
	}
	return notFound("memstore.Leads.Delete", id)
}

// Users implements the auth store.
type Users struct{ db *DB }

func (s *Users) Create(_ context.Context, u *model.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, existing := range s.db.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return fmt.Errorf("memstore.Users.Create %s: %w", u.Email, repository.ErrDuplicate)
		}
	}
	s.db.users = append(s.db.users, *u)
	return nil
}

func (s *Users) find(match func(model.User) bool) (int, bool) {
	for i, u := range s.db.users {
		if match(u) {
			return i, true
		}
	}
	return -1, false
}

func (s *Users) GetByEmail(_ context.Context, email string) (*model.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	i, ok := s.find(func(u model.User) bool { return strings.EqualFold(u.Email, email) })
	if !ok {
		return nil, notFound("memstore.Users.GetByEmail", email)
	}
	u := s.db.users[i]
	return &u, nil
}

func (s *Users) GetByID(_ context.Context, id string) (*model.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	i, ok := s.find(func(u model.User) bool { return u.ID == id })
	if !ok {
		return nil, notFound("memstore.Users.GetByID", id)
	}
	u := s.db.users[i]
	return &u, nil
}

func (s *Users) SetRole(_ context.Context, id string, role model.Role) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	i, ok := s.find(func(u model.User) bool { return u.ID == id })
	if !ok {
		return notFound("memstore.Users.SetRole", id)
	}
	s.db.users[i].Role = role
	return nil
}

func (s *Users) SetPassword(_ context.Context, id, hash string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	i, ok := s.find(func(u model.User) bool { return u.ID == id })
	if !ok {
		return notFound("memstore.Users.SetPassword", id)
	}
	s.db.users[i].PasswordHash = &hash
	return nil
}

func (s *Users) CreateSession(_ context.Context, sess *model.Session) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	i, ok := s.find(func(u model.User) bool { return u.ID == sess.UserID })
	if !ok {
		return notFound("memstore.Users.CreateSession user", sess.UserID)
	}
	now := s.db.now()
	s.db.users[i].LastSignInAt = &now
	s.db.sessions[sess.ID] = sessionRow{Session: *sess}
	return nil
}

func (s *Users) SessionActive(_ context.Context, id string) (bool, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	row, ok := s.db.sessions[id]
	return ok && !row.revoked && row.ExpiresAt.After(s.db.now()), nil
}

func (s *Users) RevokeSession(_ context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if row, ok := s.db.sessions[id]; ok {
		row.revoked = true
		s.db.sessions[id] = row
	}
	return nil
}

func (s *Users) SaveOTP(_ context.Context, email, codeHash string, expiresAt time.Time) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.otps[strings.ToLower(email)] = otpRow{hash: codeHash, expiresAt: expiresAt}
	return nil
}

func (s *Users) TakeOTP(_ context.Context, email string) (string, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	key := strings.ToLower(email)
	row, ok := s.db.otps[key]
	if !ok || !row.expiresAt.After(s.db.now()) {
		return "", notFound("memstore.Users.TakeOTP", email)
	}
	delete(s.db.otps, key)
	return row.hash, nil
}

// Photos implements photo storage. Fail, when set, is consulted before each
// upload; a non-nil result fails that upload.
type Photos struct {
	db      *DB
	BaseURL string
	Fail    func(originalName string) error
}

func (p *Photos) Upload(_ context.Context, originalName, contentType string, file io.Reader) (string, string, error) {
	if p.Fail != nil {
		if err := p.Fail(originalName); err != nil {
			return "", "", fmt.Errorf("memstore.Photos.Upload: %w", err)
		}
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return "", "", fmt.Errorf("memstore.Photos.Upload: %w", err)
	}
	p.db.mu.Lock()
	defer p.db.mu.Unlock()
	name := repository.PhotoFilename(originalName, p.db.now())
	for _, taken := p.db.photos[name]; taken; _, taken = p.db.photos[name] {
		name = repository.PhotoFilename(originalName, p.db.now())
	}
	p.db.photos[name] = photo{data: bytes.Clone(data), contentType: contentType}
	return name, p.BaseURL + "/images/" + name, nil
}

func (p *Photos) Download(_ context.Context, filename string) ([]byte, string, error) {
	p.db.mu.RLock()
	defer p.db.mu.RUnlock()
	ph, ok := p.db.photos[filename]
	if !ok {
		return nil, "", notFound("memstore.Photos.Download", filename)
	}
	return bytes.Clone(ph.data), ph.contentType, nil
}
