package usecase

import (
	"context"
	"io"
	"sort"
	"strings"
	"time"

	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/infrastructure/messaging"
	"clinic-booking/internal/service"
	"clinic-booking/pkg/jwt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func fixedClock(now time.Time) Clock {
	return Clock{Location: time.UTC, Now: func() time.Time { return now }}
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: constraint}
}

// fakeTx runs the callback directly; repositories below ignore the handle.
type fakeTx struct{}

func (fakeTx) WithinTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func (fakeTx) Conn(ctx context.Context) *gorm.DB { return nil }

// memStore backs every mock repository.
type memStore struct {
	seq          int64
	users        map[uuid.UUID]*entity.User
	profiles     map[uuid.UUID]*entity.UserProfile
	patients     map[uuid.UUID]*entity.Patient
	accounts     map[int64]*entity.Account
	appointments map[int64]*entity.Appointment
	tickets      map[int64]*entity.QueueTicket
	hours        map[int64]*entity.ClinicHours
	closures     map[int64]*entity.ClosureDay
	services     map[int64]*entity.Service
	audits       []entity.AuditLog

	// beforeAppointmentCreate runs before the slot uniqueness check.
	beforeAppointmentCreate func()
	// afterPendingLock runs after FindPending locked the rows.
	afterPendingLock func()
}

func newMemStore() *memStore {
	return &memStore{
		users:        map[uuid.UUID]*entity.User{},
		profiles:     map[uuid.UUID]*entity.UserProfile{},
		patients:     map[uuid.UUID]*entity.Patient{},
		accounts:     map[int64]*entity.Account{},
		appointments: map[int64]*entity.Appointment{},
		tickets:      map[int64]*entity.QueueTicket{},
		hours:        map[int64]*entity.ClinicHours{},
		closures:     map[int64]*entity.ClosureDay{},
		services:     map[int64]*entity.Service{},
	}
}

func (s *memStore) nextID() int64 {
	s.seq++
	return s.seq
}

func (s *memStore) auditActions() []string {
	actions := make([]string, len(s.audits))
	for i, a := range s.audits {
		actions[i] = a.Action
	}
	return actions
}

// addUser stores a user with a profile of role; user role also gets a patient.
func (s *memStore) addUser(email string, role entity.Role) *entity.User {
	u := &entity.User{ID: uuid.New(), Email: email, FirstName: strings.Split(email, "@")[0], IsActive: true}
	s.users[u.ID] = u
	s.profiles[u.ID] = &entity.UserProfile{ID: s.nextID(), UserID: u.ID, Role: role, DisplayName: u.FullName()}
	if role == entity.RoleUser {
		s.patients[u.ID] = &entity.Patient{ID: s.nextID(), UserID: u.ID, Name: u.FullName()}
	}
	return u
}

func (s *memStore) addAppointment(user *entity.User, at time.Time, priority entity.Priority, created time.Time) *entity.Appointment {
	a := &entity.Appointment{
		ID:          s.nextID(),
		Title:       "Consultation",
		ScheduledAt: at,
		UserID:      user.ID,
		Status:      entity.AppointmentStatusPending,
		Priority:    priority,
		CreatedAt:   created,
	}
	s.appointments[a.ID] = a
	return a
}

func (s *memStore) userWithRelations(id uuid.UUID) *entity.User {
	u, ok := s.users[id]
	if !ok {
		return nil
	}
	c := *u
	if p, ok := s.profiles[id]; ok {
		pc := *p
		c.Profile = &pc
	}
	if p, ok := s.patients[id]; ok {
		pc := *p
		c.Patient = &pc
	}
	return &c
}

func (s *memStore) appointmentCopy(a *entity.Appointment) entity.Appointment {
	c := *a
	c.User = s.userWithRelations(a.UserID)
	for _, t := range s.tickets {
		if t.AppointmentID != nil && *t.AppointmentID == a.ID {
			tc := *t
			c.Ticket = &tc
		}
	}
	if a.ServiceID != nil {
		if svc, ok := s.services[*a.ServiceID]; ok {
			sc := *svc
			c.Service = &sc
		}
	}
	return c
}

// Users

type mockUserRepo struct{ s *memStore }

func (r mockUserRepo) Create(ctx context.Context, db *gorm.DB, user *entity.User) error {
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return uniqueViolation("ux_users_email")
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	c := *user
	c.Profile, c.Patient = nil, nil
	r.s.users[user.ID] = &c
	return nil
}

func (r mockUserRepo) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*entity.User, error) {
	for id, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return r.s.userWithRelations(id), nil
		}
	}
	return nil, nil
}

func (r mockUserRepo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.User, error) {
	return r.s.userWithRelations(id), nil
}

func (r mockUserRepo) Update(ctx context.Context, db *gorm.DB, user *entity.User) error {
	c := *user
	c.Profile, c.Patient = nil, nil
	r.s.users[user.ID] = &c
	return nil
}

// Profiles, patients and accounts

type mockProfileRepo struct{ s *memStore }

func (r mockProfileRepo) Create(ctx context.Context, db *gorm.DB, profile *entity.UserProfile) error {
	if _, ok := r.s.profiles[profile.UserID]; ok {
		return uniqueViolation("ux_user_profiles_user_id")
	}
	profile.ID = r.s.nextID()
	c := *profile
	r.s.profiles[profile.UserID] = &c
	return nil
}

func (r mockProfileRepo) FindByUserID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*entity.UserProfile, error) {
	p, ok := r.s.profiles[userID]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

func (r mockProfileRepo) Update(ctx context.Context, db *gorm.DB, profile *entity.UserProfile) error {
	c := *profile
	c.User = nil
	r.s.profiles[profile.UserID] = &c
	return nil
}

type mockPatientRepo struct{ s *memStore }

func (r mockPatientRepo) Create(ctx context.Context, db *gorm.DB, patient *entity.Patient) error {
	if _, ok := r.s.patients[patient.UserID]; ok {
		return uniqueViolation("ux_patients_user_id")
	}
	patient.ID = r.s.nextID()
	c := *patient
	c.Account = nil
	r.s.patients[patient.UserID] = &c
	return nil
}

func (r mockPatientRepo) FindByUserID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*entity.Patient, error) {
	p, ok := r.s.patients[userID]
	if !ok {
		return nil, nil
	}
	c := *p
	if a, ok := r.s.accounts[p.ID]; ok {
		ac := *a
		c.Account = &ac
	}
	return &c, nil
}

type mockAccountRepo struct{ s *memStore }

func (r mockAccountRepo) Create(ctx context.Context, db *gorm.DB, account *entity.Account) error {
	if _, ok := r.s.accounts[account.PatientID]; ok {
		return uniqueViolation("ux_accounts_patient_id")
	}
	account.ID = r.s.nextID()
	c := *account
	r.s.accounts[account.PatientID] = &c
	return nil
}

func (r mockAccountRepo) FindByPatientID(ctx context.Context, db *gorm.DB, patientID int64) (*entity.Account, error) {
	a, ok := r.s.accounts[patientID]
	if !ok {
		return nil, nil
	}
	c := *a
	return &c, nil
}

// Audit log

type mockAuditRepo struct{ s *memStore }

func (r mockAuditRepo) Create(ctx context.Context, db *gorm.DB, log *entity.AuditLog) error {
	log.ID = r.s.nextID()
	r.s.audits = append(r.s.audits, *log)
	return nil
}

func (r mockAuditRepo) FindAll(ctx context.Context, db *gorm.DB, limit, offset int) ([]entity.AuditLog, int64, error) {
	total := int64(len(r.s.audits))
	if offset >= len(r.s.audits) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(r.s.audits) {
		end = len(r.s.audits)
	}
	return append([]entity.AuditLog(nil), r.s.audits[offset:end]...), total, nil
}

func (r mockAuditRepo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*entity.AuditLog, error) {
	for _, a := range r.s.audits {
		if a.ID == id {
			c := a
			return &c, nil
		}
	}
	return nil, nil
}

// Clinic configuration

type mockHoursRepo struct{ s *memStore }

func (r mockHoursRepo) Create(ctx context.Context, db *gorm.DB, hours *entity.ClinicHours) error {
	hours.ID = r.s.nextID()
	c := *hours
	r.s.hours[hours.ID] = &c
	return nil
}

func (r mockHoursRepo) FindAll(ctx context.Context, db *gorm.DB) ([]entity.ClinicHours, error) {
	var out []entity.ClinicHours
	for _, h := range r.s.hours {
		out = append(out, *h)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weekday != out[j].Weekday {
			return out[i].Weekday < out[j].Weekday
		}
		return out[i].OpensAt < out[j].OpensAt
	})
	return out, nil
}

func (r mockHoursRepo) FindActive(ctx context.Context, db *gorm.DB) ([]entity.ClinicHours, error) {
	all, _ := r.FindAll(ctx, db)
	var out []entity.ClinicHours
	for _, h := range all {
		if h.Active {
			out = append(out, h)
		}
	}
	return out, nil
}

func (r mockHoursRepo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*entity.ClinicHours, error) {
	h, ok := r.s.hours[id]
	if !ok {
		return nil, nil
	}
	c := *h
	return &c, nil
}

func (r mockHoursRepo) Update(ctx context.Context, db *gorm.DB, hours *entity.ClinicHours) error {
	c := *hours
	r.s.hours[hours.ID] = &c
	return nil
}

func (r mockHoursRepo) Delete(ctx context.Context, db *gorm.DB, id int64) (int64, error) {
	if _, ok := r.s.hours[id]; !ok {
		return 0, nil
	}
	delete(r.s.hours, id)
	return 1, nil
}

type mockClosureRepo struct{ s *memStore }

func (r mockClosureRepo) Create(ctx context.Context, db *gorm.DB, day *entity.ClosureDay) error {
	for _, d := range r.s.closures {
		if d.Day() == day.Day() {
			return uniqueViolation("ux_closure_days_date")
		}
	}
	day.ID = r.s.nextID()
	c := *day
	r.s.closures[day.ID] = &c
	return nil
}

func (r mockClosureRepo) FindAll(ctx context.Context, db *gorm.DB) ([]entity.ClosureDay, error) {
	var out []entity.ClosureDay
	for _, d := range r.s.closures {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day() < out[j].Day() })
	return out, nil
}

func (r mockClosureRepo) FindBetween(ctx context.Context, db *gorm.DB, from, to time.Time) ([]entity.ClosureDay, error) {
	lo, hi := from.Format(entity.DateLayout), to.Format(entity.DateLayout)
	all, _ := r.FindAll(ctx, db)
	var out []entity.ClosureDay
	for _, d := range all {
		if d.Day() >= lo && d.Day() < hi {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r mockClosureRepo) Delete(ctx context.Context, db *gorm.DB, id int64) (int64, error) {
	if _, ok := r.s.closures[id]; !ok {
		return 0, nil
	}
	delete(r.s.closures, id)
	return 1, nil
}

type mockServiceRepo struct{ s *memStore }

func (r mockServiceRepo) Create(ctx context.Context, db *gorm.DB, service *entity.Service) error {
	service.ID = r.s.nextID()
	c := *service
	r.s.services[service.ID] = &c
	return nil
}

func (r mockServiceRepo) FindAll(ctx context.Context, db *gorm.DB, limit, offset int) ([]entity.Service, int64, error) {
	var all []entity.Service
	for _, svc := range r.s.services {
		all = append(all, *svc)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Name != all[j].Name {
			return all[i].Name < all[j].Name
		}
		return all[i].ID < all[j].ID
	})
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r mockServiceRepo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*entity.Service, error) {
	svc, ok := r.s.services[id]
	if !ok {
		return nil, nil
	}
	c := *svc
	return &c, nil
}

func (r mockServiceRepo) Update(ctx context.Context, db *gorm.DB, service *entity.Service) error {
	c := *service
	r.s.services[service.ID] = &c
	return nil
}

func (r mockServiceRepo) Delete(ctx context.Context, db *gorm.DB, id int64) (int64, error) {
	if _, ok := r.s.services[id]; !ok {
		return 0, nil
	}
	delete(r.s.services, id)
	for _, a := range r.s.appointments {
		if a.ServiceID != nil && *a.ServiceID == id {
			a.ServiceID = nil
		}
	}
	return 1, nil
}

// Appointments and tickets

type mockAppointmentRepo struct{ s *memStore }

func (r mockAppointmentRepo) Create(ctx context.Context, db *gorm.DB, appointment *entity.Appointment) error {
	if r.s.beforeAppointmentCreate != nil {
		r.s.beforeAppointmentCreate()
	}
	for _, a := range r.s.appointments {
		if a.Status != entity.AppointmentStatusCancelled && a.ScheduledAt.Equal(appointment.ScheduledAt) {
			return uniqueViolation("ux_appointments_active_slot")
		}
	}
	appointment.ID = r.s.nextID()
	c := *appointment
	c.User, c.Service, c.Ticket = nil, nil, nil
	r.s.appointments[appointment.ID] = &c
	return nil
}

func (r mockAppointmentRepo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*entity.Appointment, error) {
	a, ok := r.s.appointments[id]
	if !ok {
		return nil, nil
	}
	c := r.s.appointmentCopy(a)
	c.User = nil
	return &c, nil
}

func (r mockAppointmentRepo) FindByFilter(ctx context.Context, db *gorm.DB, filter entity.AppointmentFilter) ([]entity.Appointment, error) {
	var out []entity.Appointment
	for _, a := range r.s.appointments {
		if filter.UserID != nil && a.UserID != *filter.UserID {
			continue
		}
		if filter.From != nil && a.ScheduledAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && a.ScheduledAt.After(*filter.To) {
			continue
		}
		if len(filter.Statuses) > 0 && !hasStatus(filter.Statuses, a.Status) {
			continue
		}
		if hasStatus(filter.Exclude, a.Status) {
			continue
		}
		out = append(out, r.s.appointmentCopy(a))
	}
	earlier := func(a, b entity.Appointment) bool {
		if !a.ScheduledAt.Equal(b.ScheduledAt) {
			return a.ScheduledAt.Before(b.ScheduledAt)
		}
		return a.ID < b.ID
	}
	sort.Slice(out, func(i, j int) bool {
		if filter.Newest {
			return earlier(out[j], out[i])
		}
		return earlier(out[i], out[j])
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func hasStatus(list []entity.AppointmentStatus, status entity.AppointmentStatus) bool {
	for _, s := range list {
		if s == status {
			return true
		}
	}
	return false
}

func (r mockAppointmentRepo) FindPending(ctx context.Context, db *gorm.DB, forUpdate bool) ([]entity.Appointment, error) {
	var out []entity.Appointment
	for _, a := range r.s.appointments {
		if a.IsPending() {
			c := r.s.appointmentCopy(a)
			if forUpdate {
				c.User, c.Ticket = nil, nil
			}
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if forUpdate && r.s.afterPendingLock != nil {
		r.s.afterPendingLock()
	}
	return out, nil
}

func (r mockAppointmentRepo) TakenTimes(ctx context.Context, db *gorm.DB, from, to time.Time) ([]time.Time, error) {
	var out []time.Time
	for _, a := range r.s.appointments {
		if a.Status == entity.AppointmentStatusCancelled {
			continue
		}
		if !a.ScheduledAt.Before(from) && a.ScheduledAt.Before(to) {
			out = append(out, a.ScheduledAt)
		}
	}
	return out, nil
}

func (r mockAppointmentRepo) UpdateStatus(ctx context.Context, db *gorm.DB, id int64, status entity.AppointmentStatus, from ...entity.AppointmentStatus) (int64, error) {
	a, ok := r.s.appointments[id]
	if !ok {
		return 0, nil
	}
	if len(from) > 0 && !hasStatus(from, a.Status) {
		return 0, nil
	}
	a.Status = status
	return 1, nil
}

func (r mockAppointmentRepo) UpdatePriority(ctx context.Context, db *gorm.DB, id int64, priority entity.Priority) (int64, error) {
	a, ok := r.s.appointments[id]
	if !ok || !a.IsPending() {
		return 0, nil
	}
	a.Priority = priority
	return 1, nil
}

func (r mockAppointmentRepo) CountGrouped(ctx context.Context, db *gorm.DB, from, to *time.Time) ([]entity.AppointmentCount, error) {
	type key struct {
		status   entity.AppointmentStatus
		priority entity.Priority
	}
	counts := map[key]int64{}
	for _, a := range r.s.appointments {
		if from != nil && a.ScheduledAt.Before(*from) {
			continue
		}
		if to != nil && a.ScheduledAt.After(*to) {
			continue
		}
		counts[key{a.Status, a.Priority}]++
	}
	var out []entity.AppointmentCount
	for k, n := range counts {
		out = append(out, entity.AppointmentCount{Status: k.status, Priority: k.priority, Count: n})
	}
	return out, nil
}

type mockTicketRepo struct{ s *memStore }

func (r mockTicketRepo) Create(ctx context.Context, db *gorm.DB, ticket *entity.QueueTicket) error {
	day := time.Time(ticket.TicketDay).Format(entity.DateLayout)
	for _, t := range r.s.tickets {
		if time.Time(t.TicketDay).Format(entity.DateLayout) == day && t.TicketNumber == ticket.TicketNumber {
			return uniqueViolation("ux_queue_tickets_day_number")
		}
	}
	ticket.ID = r.s.nextID()
	c := *ticket
	r.s.tickets[ticket.ID] = &c
	return nil
}

func (r mockTicketRepo) FindByAppointmentIDs(ctx context.Context, db *gorm.DB, ids []int64) ([]entity.QueueTicket, error) {
	var out []entity.QueueTicket
	for _, t := range r.s.tickets {
		for _, id := range ids {
			if t.AppointmentID != nil && *t.AppointmentID == id {
				out = append(out, *t)
			}
		}
	}
	return out, nil
}

func (r mockTicketRepo) UpdatePriority(ctx context.Context, db *gorm.DB, appointmentID int64, priority entity.Priority) error {
	for _, t := range r.s.tickets {
		if t.AppointmentID != nil && *t.AppointmentID == appointmentID {
			t.Priority = priority
		}
	}
	return nil
}

func (r mockTicketRepo) MaxNumber(ctx context.Context, db *gorm.DB, day time.Time) (int, error) {
	max := 0
	for _, t := range r.s.tickets {
		if time.Time(t.TicketDay).Format(entity.DateLayout) == day.Format(entity.DateLayout) && t.TicketNumber > max {
			max = t.TicketNumber
		}
	}
	return max, nil
}

// Services

type fakeTicketCounter struct {
	counters map[string]int
	resynced []string
	// stale makes Next hand out numbers starting from 1 again.
	stale bool
}

func newFakeTicketCounter() *fakeTicketCounter {
	return &fakeTicketCounter{counters: map[string]int{}}
}

func (c *fakeTicketCounter) Next(ctx context.Context, db *gorm.DB, day time.Time) (int, error) {
	key := service.TicketKey(day)
	if c.stale {
		return 1, nil
	}
	c.counters[key]++
	return c.counters[key], nil
}

func (c *fakeTicketCounter) Resync(ctx context.Context, db *gorm.DB, days ...time.Time) error {
	for _, d := range days {
		c.resynced = append(c.resynced, service.TicketKey(d))
	}
	c.stale = false
	return nil
}

type fakeSessions struct {
	tokens     map[string]bool
	revokedAll []uuid.UUID
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{tokens: map[string]bool{}}
}

func (f *fakeSessions) Store(ctx context.Context, userID uuid.UUID, tokenID string, tokenType jwt.TokenType, ttl time.Duration) error {
	f.tokens[service.TokenKey(userID, tokenID, tokenType)] = true
	return nil
}

func (f *fakeSessions) IsValid(ctx context.Context, userID uuid.UUID, tokenID string, tokenType jwt.TokenType) (bool, error) {
	return f.tokens[service.TokenKey(userID, tokenID, tokenType)], nil
}

func (f *fakeSessions) Revoke(ctx context.Context, userID uuid.UUID, tokenID string, tokenType jwt.TokenType) error {
	delete(f.tokens, service.TokenKey(userID, tokenID, tokenType))
	return nil
}

func (f *fakeSessions) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	f.revokedAll = append(f.revokedAll, userID)
	for k := range f.tokens {
		if strings.Contains(k, userID.String()) {
			delete(f.tokens, k)
		}
	}
	return nil
}

type fakePublisher struct {
	events []messaging.AppointmentEvent
}

func (p *fakePublisher) Publish(ctx context.Context, event messaging.AppointmentEvent) error {
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) types() []string {
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

func newProvisioning(s *memStore) ProvisioningUsecase {
	return NewProvisioningUsecase(quietLogger(), mockProfileRepo{s}, mockPatientRepo{s}, mockAccountRepo{s})
}

func newAudit(s *memStore) service.AuditService {
	return service.NewAuditService(quietLogger(), mockAuditRepo{s})
}

func actorOf(u *entity.User, role entity.Role) entity.Actor {
	return entity.Actor{UserID: u.ID, Email: u.Email, Role: role}
}
