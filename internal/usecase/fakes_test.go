package usecase

import (
	"context"
	"errors"
	"slices"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"phone-repair/internal/data/entity"
	"phone-repair/internal/data/repository"
	"phone-repair/pkg/mailer"
	"phone-repair/pkg/payment"
	"phone-repair/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var errStore = errors.New("store unavailable")

// fixedNow is 2030-03-10 08:00 UTC.
var fixedNow = time.Date(2030, 3, 10, 8, 0, 0, 0, time.UTC)

func day(s string) time.Time {
	d, err := utils.ParseDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ==================== DAYS & SLOTS ====================

type fakeDays struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*entity.AvailableDay
	err  error
}

func newFakeDays(days ...*entity.AvailableDay) *fakeDays {
	f := &fakeDays{rows: map[uuid.UUID]*entity.AvailableDay{}}
	for _, d := range days {
		if d.ID == uuid.Nil {
			d.ID = uuid.New()
		}
		f.rows[d.ID] = d
	}
	return f
}

func openDay(date string) *entity.AvailableDay {
	return &entity.AvailableDay{
		BaseNoDelete: entity.BaseNoDelete{ID: uuid.New()},
		Date:         day(date),
		IsFullDay:    true,
		IsActive:     true,
	}
}

func (f *fakeDays) sorted(keep func(*entity.AvailableDay) bool) []*entity.AvailableDay {
	out := []*entity.AvailableDay{}
	for _, d := range f.rows {
		if keep(d) {
			cp := *d
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func (f *fakeDays) Upsert(ctx context.Context, d *entity.AvailableDay) (*entity.AvailableDay, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, existing := range f.rows {
		if existing.Date.Equal(d.Date) {
			existing.IsFullDay, existing.Note, existing.IsActive = d.IsFullDay, d.Note, d.IsActive
			cp := *existing
			return &cp, nil
		}
	}
	cp := *d
	f.rows[d.ID] = &cp
	return d, nil
}

func (f *fakeDays) FindByID(ctx context.Context, id uuid.UUID) (*entity.AvailableDay, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	d, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDays) FindActiveFrom(ctx context.Context, from time.Time) ([]*entity.AvailableDay, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.sorted(func(d *entity.AvailableDay) bool { return d.IsActive && !d.Date.Before(from) }), nil
}

func (f *fakeDays) FindAll(ctx context.Context) ([]*entity.AvailableDay, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.sorted(func(*entity.AvailableDay) bool { return true }), nil
}

func (f *fakeDays) IsBookable(ctx context.Context, date time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	for _, d := range f.rows {
		if d.IsActive && d.Date.Equal(date) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeDays) Update(ctx context.Context, d *entity.AvailableDay) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[d.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *d
	f.rows[d.ID] = &cp
	return nil
}

func (f *fakeDays) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

type fakeSlots struct {
	hours []string
	err   error
}

func (f *fakeSlots) Get(ctx context.Context) (*entity.SlotCatalog, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.hours == nil {
		return nil, nil
	}
	return &entity.SlotCatalog{Hours: slices.Clone(f.hours)}, nil
}

func (f *fakeSlots) Replace(ctx context.Context, hours []string, at time.Time) error {
	if f.err != nil {
		return f.err
	}
	f.hours = slices.Clone(hours)
	return nil
}

// ==================== BOOKINGS ====================

type fakeBookings struct {
	mu        sync.Mutex
	rows      map[uuid.UUID]*entity.Booking
	createErr error
	payErr    error
	stock     *fakePhones
}

func newFakeBookings() *fakeBookings {
	return &fakeBookings{rows: map[uuid.UUID]*entity.Booking{}}
}

func (f *fakeBookings) all() []*entity.Booking {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*entity.Booking, 0, len(f.rows))
	for _, b := range f.rows {
		cp := *b
		out = append(out, &cp)
	}
	return out
}

func (f *fakeBookings) Create(ctx context.Context, b *entity.Booking, sellPhones ...uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if len(sellPhones) > 0 {
		if f.stock == nil {
			return repository.ErrUnavailable
		}
		if err := f.stock.sell(sellPhones); err != nil {
			return err
		}
	}
	cp := *b
	f.rows[b.ID] = &cp
	return nil
}

func (f *fakeBookings) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBookings) match(filter repository.BookingFilter) []*entity.Booking {
	out := []*entity.Booking{}
	for _, b := range f.rows {
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		if filter.Type != "" && b.Type != filter.Type {
			continue
		}
		if filter.UserID != nil && (b.UserID == nil || *b.UserID != *filter.UserID) {
			continue
		}
		if filter.Date != nil && !b.Date.Equal(*filter.Date) {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (f *fakeBookings) FindAll(ctx context.Context, filter repository.BookingFilter, limit, offset int) ([]*entity.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rows := f.match(filter)
	if offset >= len(rows) {
		return []*entity.Booking{}, nil
	}
	return rows[offset:min(offset+limit, len(rows))], nil
}

func (f *fakeBookings) Count(ctx context.Context, filter repository.BookingFilter) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.match(filter))), nil
}

func (f *fakeBookings) CountActiveAtSlot(ctx context.Context, date time.Time, timeSlot string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, b := range f.rows {
		if b.Date.Equal(date) && b.TimeSlot == timeSlot && b.Status != entity.BookingStatusCancelled {
			n++
		}
	}
	return n, nil
}

func (f *fakeBookings) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.BookingStatus, notes *string) (*entity.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	b.Status = status
	if notes != nil {
		b.Notes = notes
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBookings) find(paymentRef string, bookingID *uuid.UUID) *entity.Booking {
	for _, b := range f.rows {
		if (b.PaymentRef != nil && *b.PaymentRef == paymentRef) || (bookingID != nil && b.ID == *bookingID) {
			return b
		}
	}
	return nil
}

func (f *fakeBookings) MarkPaid(ctx context.Context, paymentRef string, bookingID *uuid.UUID) (*entity.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.payErr != nil {
		return nil, f.payErr
	}
	b := f.find(paymentRef, bookingID)
	if b == nil || (b.PaymentStatus != nil && *b.PaymentStatus == entity.PaymentStatusCompleted) {
		return nil, nil
	}
	completed := entity.PaymentStatusCompleted
	b.PaymentStatus = &completed
	b.Status = entity.BookingStatusConfirmed
	cp := *b
	return &cp, nil
}

func (f *fakeBookings) MarkPaymentFailed(ctx context.Context, paymentRef string, bookingID *uuid.UUID) (*entity.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.payErr != nil {
		return nil, f.payErr
	}
	b := f.find(paymentRef, bookingID)
	if b == nil || b.PaymentStatus == nil || *b.PaymentStatus != entity.PaymentStatusPending {
		return nil, nil
	}
	failed := entity.PaymentStatusFailed
	b.PaymentStatus = &failed
	cp := *b
	return &cp, nil
}

// ==================== PHONES & LISTINGS ====================

type fakePhones struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*entity.PhoneForSale
}

func newFakePhones(phones ...*entity.PhoneForSale) *fakePhones {
	f := &fakePhones{rows: map[uuid.UUID]*entity.PhoneForSale{}}
	for _, p := range phones {
		f.rows[p.ID] = p
	}
	return f
}

func (f *fakePhones) Create(ctx context.Context, p *entity.PhoneForSale) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	f.rows[p.ID] = &cp
	return nil
}

func (f *fakePhones) FindByID(ctx context.Context, id uuid.UUID) (*entity.PhoneForSale, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakePhones) match(filter repository.PhoneFilter) []*entity.PhoneForSale {
	out := []*entity.PhoneForSale{}
	for _, p := range f.rows {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.Brand != "" && !strings.EqualFold(p.Brand, filter.Brand) {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	return out
}

func (f *fakePhones) FindAll(ctx context.Context, filter repository.PhoneFilter, limit, offset int) ([]*entity.PhoneForSale, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.match(filter), nil
}

func (f *fakePhones) Count(ctx context.Context, filter repository.PhoneFilter) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.match(filter))), nil
}

func (f *fakePhones) Update(ctx context.Context, p *entity.PhoneForSale) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[p.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *p
	f.rows[p.ID] = &cp
	return nil
}

func (f *fakePhones) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.PhoneStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Status = status
	return nil
}

// sell marks every phone SOLD or none of them.
func (f *fakePhones) sell(ids []uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		p, ok := f.rows[id]
		if !ok || p.Status != entity.PhoneStatusAvailable {
			return repository.ErrUnavailable
		}
	}
	for _, id := range ids {
		f.rows[id].Status = entity.PhoneStatusSold
	}
	return nil
}

func (f *fakePhones) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

type fakeListings struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*entity.PhoneListing
}

func newFakeListings() *fakeListings {
	return &fakeListings{rows: map[uuid.UUID]*entity.PhoneListing{}}
}

func (f *fakeListings) Create(ctx context.Context, l *entity.PhoneListing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *l
	f.rows[l.ID] = &cp
	return nil
}

func (f *fakeListings) FindByID(ctx context.Context, id uuid.UUID) (*entity.PhoneListing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (f *fakeListings) match(filter repository.ListingFilter) []*entity.PhoneListing {
	out := []*entity.PhoneListing{}
	for _, l := range f.rows {
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, l.Status) {
			continue
		}
		if filter.UserID != nil && (l.UserID == nil || *l.UserID != *filter.UserID) {
			continue
		}
		if filter.Brand != "" && !strings.EqualFold(l.Brand, filter.Brand) {
			continue
		}
		cp := *l
		out = append(out, &cp)
	}
	return out
}

func (f *fakeListings) FindAll(ctx context.Context, filter repository.ListingFilter, limit, offset int) ([]*entity.PhoneListing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.match(filter), nil
}

func (f *fakeListings) Count(ctx context.Context, filter repository.ListingFilter) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.match(filter))), nil
}

func (f *fakeListings) Moderate(ctx context.Context, id uuid.UUID, status entity.ListingStatus, adminNote *string) (*entity.PhoneListing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	l.Status = status
	if adminNote != nil {
		l.AdminNote = adminNote
	}
	cp := *l
	return &cp, nil
}

func (f *fakeListings) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

// ==================== ACCOUNTS ====================

type fakeUsers struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*entity.User
}

func newFakeUsers(users ...*entity.User) *fakeUsers {
	f := &fakeUsers{rows: map[uuid.UUID]*entity.User{}}
	for _, u := range users {
		f.rows[u.ID] = u
	}
	return f
}

func (f *fakeUsers) Create(ctx context.Context, u *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.rows {
		if existing.Email == u.Email || existing.Username == u.Username {
			return repository.ErrDuplicate
		}
	}
	cp := *u
	f.rows[u.ID] = &cp
	return nil
}

func (f *fakeUsers) findBy(match func(*entity.User) bool) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.rows {
		if u.DeletedAt == nil && match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return f.findBy(func(u *entity.User) bool { return u.ID == id })
}

func (f *fakeUsers) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return f.findBy(func(u *entity.User) bool { return u.Email == email })
}

func (f *fakeUsers) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return f.findBy(func(u *entity.User) bool { return u.Username == username })
}

func (f *fakeUsers) FindAll(ctx context.Context, limit, offset int) ([]*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*entity.User{}
	for _, u := range f.rows {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeUsers) CountAll(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.rows)), nil
}

func (f *fakeUsers) MarkEmailVerified(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.EmailVerified = true
	return nil
}

func (f *fakeUsers) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.rows[id]
	if !ok || u.DeletedAt != nil {
		return repository.ErrNotFound
	}
	now := time.Now()
	u.DeletedAt = &now
	u.IsActive = false
	return nil
}

type fakeSessions struct {
	mu   sync.Mutex
	rows map[string]*entity.Session
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{rows: map[string]*entity.Session{}}
}

func (f *fakeSessions) Create(ctx context.Context, s *entity.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *s
	f.rows[s.Token.String()] = &cp
	return nil
}

func (f *fakeSessions) FindValidSession(ctx context.Context, token string) (*entity.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.rows[token]
	if !ok || s.RevokedAt != nil {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSessions) Revoke(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.rows[token]
	if !ok || s.RevokedAt != nil {
		return repository.ErrNotFound
	}
	now := time.Now()
	s.RevokedAt = &now
	return nil
}

func (f *fakeSessions) RevokeAllUserSessions(ctx context.Context, userID uuid.UUID) error {
	return nil
}

type fakeOTPs struct {
	mu   sync.Mutex
	rows []*entity.OTP
}

func (f *fakeOTPs) Create(ctx context.Context, otp *entity.OTP) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *otp
	f.rows = append(f.rows, &cp)
	return nil
}

func (f *fakeOTPs) FindValidOTP(ctx context.Context, email, code string, otpType entity.OTPType) (*entity.OTP, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.rows {
		if o.Email == email && o.OTPCode == code && o.OTPType == otpType && !o.IsUsed {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeOTPs) MarkAsUsed(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.rows {
		if o.ID == id {
			o.IsUsed = true
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeOTPs) InvalidateAll(ctx context.Context, email string, otpType entity.OTPType) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.rows {
		if o.Email == email && o.OTPType == otpType {
			o.IsUsed = true
		}
	}
	return nil
}

// ==================== INFRASTRUCTURE ====================

// recordingMailer collects sent messages on a channel.
type recordingMailer struct {
	sent chan mailer.Message
}

func newRecordingMailer() *recordingMailer {
	return &recordingMailer{sent: make(chan mailer.Message, 16)}
}

func (m *recordingMailer) Send(ctx context.Context, msg mailer.Message) error {
	m.sent <- msg
	return nil
}

func (m *recordingMailer) next(t *testing.T) mailer.Message {
	t.Helper()
	select {
	case msg := <-m.sent:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no email sent")
		return mailer.Message{}
	}
}

type fakeGateway struct {
	mu       sync.Mutex
	requests []payment.CheckoutRequest
	err      error
	events   map[string]*payment.Event
}

func (g *fakeGateway) CreateCheckout(ctx context.Context, req payment.CheckoutRequest) (*payment.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	g.requests = append(g.requests, req)
	return &payment.Session{ID: "cs_test_" + req.Reference, URL: "https://checkout.example/" + req.Reference}, nil
}

// ParseWebhook treats the payload as an event key and "bad" as a forged signature.
func (g *fakeGateway) ParseWebhook(payload []byte, signature string) (*payment.Event, error) {
	if signature == "bad" {
		return nil, payment.ErrInvalidSignature
	}
	evt, ok := g.events[string(payload)]
	if !ok {
		return nil, errors.New("unknown payload")
	}
	cp := *evt
	return &cp, nil
}

type fixture struct {
	repo     *repository.Repository
	days     *fakeDays
	slots    *fakeSlots
	bookings *fakeBookings
	phones   *fakePhones
	listings *fakeListings
	users    *fakeUsers
	sessions *fakeSessions
	otps     *fakeOTPs
	mail     *recordingMailer
	gateway  *fakeGateway
	deps     Deps
	config   *utils.Config
	log      *zap.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		days:     newFakeDays(),
		slots:    &fakeSlots{},
		bookings: newFakeBookings(),
		phones:   newFakePhones(),
		listings: newFakeListings(),
		users:    newFakeUsers(),
		sessions: newFakeSessions(),
		otps:     &fakeOTPs{},
		mail:     newRecordingMailer(),
		gateway:  &fakeGateway{events: map[string]*payment.Event{}},
		config: &utils.Config{
			App:  utils.AppConfig{Timezone: "UTC"},
			Auth: utils.AuthConfig{SessionExpiryHours: 24},
			JWT:  utils.JWTConfig{Secret: "test-secret", ExpiryHours: 1},
			OTP:  utils.OTPConfig{ExpiryMinutes: 10, Length: 6},
		},
		log: zap.NewNop(),
	}
	f.repo = &repository.Repository{
		User:         f.users,
		Session:      f.sessions,
		OTP:          f.otps,
		AvailableDay: f.days,
		SlotCatalog:  f.slots,
		Booking:      f.bookings,
		Listing:      f.listings,
		Phone:        f.phones,
	}
	f.deps = Deps{
		Gateway: f.gateway,
		Mailer:  f.mail,
		Now:     func() time.Time { return fixedNow },
	}
	return f
}

func (f *fixture) service() *Service {
	if bookings, ok := f.repo.Booking.(*fakeBookings); ok {
		if phones, ok := f.repo.Phone.(*fakePhones); ok {
			bookings.stock = phones
		}
	}
	return NewService(f.repo, f.deps, f.config, f.log)
}
