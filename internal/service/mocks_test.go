package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/dmehra2102/prod-golang-projects/carecompanion/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/carecompanion/internal/domain/caregiver"
	"github.com/dmehra2102/prod-golang-projects/carecompanion/internal/domain/carerecord"
	"github.com/dmehra2102/prod-golang-projects/carecompanion/internal/domain/note"
	"github.com/dmehra2102/prod-golang-projects/carecompanion/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/carecompanion/pkg/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var errStoreDown = errors.New("connection refused")

// store is a shared in-memory backing for every fake repository, so that
// cascades and joins behave like the real database.
type store struct {
	mu         sync.Mutex
	clock      time.Time
	principals map[uuid.UUID]*domain.Principal
	patients   map[uuid.UUID]*patient.Patient
	links      []*caregiver.Link
	notes      []*note.Note
	audit      []*domain.AuditLog

	tasks        []*carerecord.Task
	medications  []*carerecord.Medication
	doseLogs     []*carerecord.MedicationLog
	moods        []*carerecord.MoodEntry
	memories     []*carerecord.Memory
	careTeam     []*carerecord.CareTeamMember
	appointments []*carerecord.Appointment

	// failures maps an operation name to the error it should return.
	failures map[string]error
}

func newStore() *store {
	return &store{
		clock:      time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC),
		principals: map[uuid.UUID]*domain.Principal{},
		patients:   map[uuid.UUID]*patient.Patient{},
		failures:   map[string]error{},
	}
}

func (s *store) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *store) fail(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failures[op]
}

func (s *store) addPrincipal(role domain.Role, first, last, email string) *domain.Principal {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &domain.Principal{ID: uuid.New(), CreatedAt: s.tick(), Role: role, FirstName: first, LastName: last, Email: email}
	s.principals[p.ID] = p
	return p
}

func (s *store) addPatient(first string) *domain.Principal {
	p := s.addPrincipal(domain.RolePatient, first, "Doe", "")
	s.mu.Lock()
	defer s.mu.Unlock()
	name := first
	s.patients[p.ID] = &patient.Patient{ID: p.ID, CreatedAt: s.tick(), FirstName: &name}
	return p
}

func (s *store) addLink(caregiverID, patientID uuid.UUID, label string) *caregiver.Link {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := &caregiver.Link{ID: uuid.New(), CreatedAt: s.tick(), CaregiverID: caregiverID, PatientID: patientID, IsPrimary: true}
	if label != "" {
		l.Relationship = &label
	}
	s.links = append(s.links, l)
	return l
}

func (s *store) linksFor(patientID uuid.UUID) []*caregiver.Link {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*caregiver.Link
	for _, l := range s.links {
		if l.PatientID == patientID {
			out = append(out, l)
		}
	}
	return out
}

func (s *store) auditEntries() []*domain.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*domain.AuditLog(nil), s.audit...)
}

// --- principals ---

type fakePrincipalRepo struct{ s *store }

func (r fakePrincipalRepo) Create(_ context.Context, p *domain.Principal) error {
	if err := r.s.fail("principals.Create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.principals {
		if p.Email != "" && existing.Email == p.Email {
			return domain.ErrEmailTaken
		}
	}
	p.ID = uuid.New()
	p.CreatedAt = r.s.tick()
	cp := *p
	r.s.principals[p.ID] = &cp
	return nil
}

func (r fakePrincipalRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Principal, error) {
	if err := r.s.fail("principals.GetByID"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.principals[id]
	if !ok {
		return nil, domain.ErrPrincipalNotFound
	}
	cp := *p
	return &cp, nil
}

func (r fakePrincipalRepo) GetByEmail(_ context.Context, email string) (*domain.Principal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.principals {
		if p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrPrincipalNotFound
}

func (r fakePrincipalRepo) ListExcludingRole(_ context.Context, role domain.Role) ([]*domain.Principal, error) {
	if err := r.s.fail("principals.ListExcludingRole"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.Principal
	for _, p := range r.s.principals {
		if p.Role != role {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (r fakePrincipalRepo) UpdateRole(_ context.Context, id uuid.UUID, role domain.Role) error {
	if err := r.s.fail("principals.UpdateRole"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.principals[id]
	if !ok {
		return domain.ErrPrincipalNotFound
	}
	p.Role = role
	return nil
}

func (r fakePrincipalRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.principals[id]; !ok {
		return domain.ErrPrincipalNotFound
	}
	delete(r.s.principals, id)
	delete(r.s.patients, id)

	kept := r.s.links[:0]
	for _, l := range r.s.links {
		if l.PatientID != id && l.CaregiverID != id {
			kept = append(kept, l)
		}
	}
	r.s.links = kept

	keptNotes := r.s.notes[:0]
	for _, n := range r.s.notes {
		if n.PatientID == id {
			continue
		}
		if n.CaregiverID != nil && *n.CaregiverID == id {
			n.CaregiverID = nil
		}
		keptNotes = append(keptNotes, n)
	}
	r.s.notes = keptNotes
	return nil
}

// --- patients ---

type fakePatientRepo struct{ s *store }

func (r fakePatientRepo) Create(_ context.Context, p *patient.Patient) error {
	if err := r.s.fail("patients.Create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.CreatedAt = r.s.tick()
	r.s.patients[p.ID] = p
	return nil
}

func (r fakePatientRepo) GetByID(_ context.Context, id uuid.UUID) (*patient.Patient, error) {
	if err := r.s.fail("patients.GetByID"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.patients[id]
	if !ok {
		return nil, patient.ErrPatientNotFound
	}
	cp := *p
	return &cp, nil
}

func (r fakePatientRepo) Update(_ context.Context, p *patient.Patient) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.patients[p.ID]; !ok {
		return patient.ErrPatientNotFound
	}
	p.UpdatedAt = r.s.tick()
	r.s.patients[p.ID] = p
	return nil
}

func (r fakePatientRepo) ListWithAssignment(ctx context.Context) ([]*patient.Assignment, error) {
	r.s.mu.Lock()
	rows := make([]*patient.Patient, 0, len(r.s.patients))
	for _, p := range r.s.patients {
		rows = append(rows, p)
	}
	r.s.mu.Unlock()
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })

	links := fakeLinkRepo{r.s}
	out := make([]*patient.Assignment, 0, len(rows))
	for _, row := range rows {
		a := &patient.Assignment{Patient: patient.Normalize(row)}
		r.s.mu.Lock()
		if pr, ok := r.s.principals[row.ID]; ok {
			a.Email = pr.Email
		}
		r.s.mu.Unlock()
		if l, err := links.FindAuthoritative(ctx, row.ID); err == nil {
			r.s.mu.Lock()
			if cg, ok := r.s.principals[l.CaregiverID]; ok {
				a.Caregiver = &patient.CaregiverSummary{ID: cg.ID, Name: cg.FullName(), Email: cg.Email}
			}
			r.s.mu.Unlock()
		}
		out = append(out, a)
	}
	return out, nil
}

// --- links ---

type fakeLinkRepo struct{ s *store }

func (r fakeLinkRepo) Create(_ context.Context, l *caregiver.Link) error {
	if err := r.s.fail("links.Create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l.ID = uuid.New()
	l.CreatedAt = r.s.tick()
	cp := *l
	r.s.links = append(r.s.links, &cp)
	return nil
}

func (r fakeLinkRepo) ListByCaregiver(_ context.Context, caregiverID uuid.UUID) ([]*caregiver.Link, error) {
	if err := r.s.fail("links.ListByCaregiver"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*caregiver.Link
	for _, l := range r.s.links {
		if l.CaregiverID == caregiverID {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r fakeLinkRepo) FindAuthoritative(_ context.Context, patientID uuid.UUID) (*caregiver.Link, error) {
	if err := r.s.fail("links.FindAuthoritative"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var best *caregiver.Link
	for _, l := range r.s.links {
		if l.PatientID != patientID {
			continue
		}
		if best == nil ||
			(l.IsPrimary && !best.IsPrimary) ||
			(l.IsPrimary == best.IsPrimary && l.CreatedAt.After(best.CreatedAt)) {
			best = l
		}
	}
	if best == nil {
		return nil, caregiver.ErrLinkNotFound
	}
	cp := *best
	return &cp, nil
}

func (r fakeLinkRepo) Exists(_ context.Context, caregiverID, patientID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, l := range r.s.links {
		if l.CaregiverID == caregiverID && l.PatientID == patientID {
			return true, nil
		}
	}
	return false, nil
}

func (r fakeLinkRepo) UpdateCaregiver(_ context.Context, linkID, caregiverID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, l := range r.s.links {
		if l.ID == linkID {
			l.CaregiverID = caregiverID
			return nil
		}
	}
	return caregiver.ErrLinkNotFound
}

func (r fakeLinkRepo) Delete(_ context.Context, linkID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, l := range r.s.links {
		if l.ID == linkID {
			r.s.links = append(r.s.links[:i], r.s.links[i+1:]...)
			return nil
		}
	}
	return caregiver.ErrLinkNotFound
}

func (r fakeLinkRepo) ListCaregiverSummaries(_ context.Context) ([]*caregiver.Summary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*caregiver.Summary
	for _, p := range r.s.principals {
		if p.Role != domain.RoleCaregiver {
			continue
		}
		sum := &caregiver.Summary{ID: p.ID, Email: p.Email, FirstName: p.FirstName, LastName: p.LastName, CreatedAt: p.CreatedAt}
		for _, l := range r.s.links {
			if l.CaregiverID == p.ID {
				sum.PatientCount++
			}
		}
		out = append(out, sum)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// --- notes ---

type fakeNoteRepo struct{ s *store }

func (r fakeNoteRepo) withAuthor(n *note.Note) *note.Note {
	cp := *n
	if n.CaregiverID != nil {
		if p, ok := r.s.principals[*n.CaregiverID]; ok {
			pc := *p
			cp.Caregiver = &pc
		}
	}
	return &cp
}

func (r fakeNoteRepo) Create(_ context.Context, n *note.Note) error {
	if err := r.s.fail("notes.Create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n.ID = uuid.New()
	n.CreatedAt = r.s.tick()
	stored := *n
	r.s.notes = append(r.s.notes, &stored)
	*n = *r.withAuthor(n)
	return nil
}

func (r fakeNoteRepo) GetByID(_ context.Context, id uuid.UUID) (*note.Note, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, n := range r.s.notes {
		if n.ID == id {
			return r.withAuthor(n), nil
		}
	}
	return nil, note.ErrNoteNotFound
}

func (r fakeNoteRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit int) ([]*note.Note, error) {
	if err := r.s.fail("notes.ListByPatient"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*note.Note
	for _, n := range r.s.notes {
		if n.PatientID == patientID {
			out = append(out, r.withAuthor(n))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r fakeNoteRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, n := range r.s.notes {
		if n.ID == id {
			r.s.notes = append(r.s.notes[:i], r.s.notes[i+1:]...)
			return nil
		}
	}
	return note.ErrNoteNotFound
}

// --- care record collections ---

type fakeRecordRepo struct{ s *store }

func filterRows[T any](s *store, op string, rows []T, keep func(T) bool) ([]T, error) {
	if err := s.fail(op); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []T{}
	for _, r := range rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (r fakeRecordRepo) ListActiveTasks(_ context.Context, id uuid.UUID) ([]*carerecord.Task, error) {
	return filterRows(r.s, "tasks", r.s.tasks, func(t *carerecord.Task) bool { return t.PatientID == id && t.IsActive })
}

func (r fakeRecordRepo) ListActiveMedications(_ context.Context, id uuid.UUID) ([]*carerecord.Medication, error) {
	return filterRows(r.s, "medications", r.s.medications, func(m *carerecord.Medication) bool { return m.PatientID == id && m.IsActive })
}

func (r fakeRecordRepo) ListAppointments(_ context.Context, id uuid.UUID) ([]*carerecord.Appointment, error) {
	return filterRows(r.s, "appointments", r.s.appointments, func(a *carerecord.Appointment) bool { return a.PatientID == id })
}

func (r fakeRecordRepo) ListMemories(_ context.Context, id uuid.UUID, limit int) ([]*carerecord.Memory, error) {
	out, err := filterRows(r.s, "memories", r.s.memories, func(m *carerecord.Memory) bool { return m.PatientID == id })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

func (r fakeRecordRepo) ListRecentMoodEntries(_ context.Context, id uuid.UUID, limit int) ([]*carerecord.MoodEntry, error) {
	out, err := filterRows(r.s, "mood_entries", r.s.moods, func(m *carerecord.MoodEntry) bool { return m.PatientID == id })
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

func (r fakeRecordRepo) ListCareTeam(_ context.Context, id uuid.UUID) ([]*carerecord.CareTeamMember, error) {
	return filterRows(r.s, "care_team", r.s.careTeam, func(m *carerecord.CareTeamMember) bool { return m.PatientID == id })
}

func (r fakeRecordRepo) ListMedicationLogsForDate(_ context.Context, id uuid.UUID, date string) ([]*carerecord.MedicationLog, error) {
	return filterRows(r.s, "medication_logs", r.s.doseLogs, func(l *carerecord.MedicationLog) bool { return l.PatientID == id && l.Date == date })
}

// --- audit ---

type fakeAuditRepo struct{ s *store }

func (r fakeAuditRepo) Create(_ context.Context, e *domain.AuditLog) error {
	if err := r.s.fail("audit.Create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e.ID = uuid.New()
	e.CreatedAt = r.s.tick()
	r.s.audit = append(r.s.audit, e)
	return nil
}

func (r fakeAuditRepo) ListRecent(_ context.Context, limit int) ([]*domain.AuditLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*domain.AuditLog, 0, len(r.s.audit))
	for i := len(r.s.audit) - 1; i >= 0 && len(out) < limit; i-- {
		e := *r.s.audit[i]
		if e.ActorID != nil {
			if p, ok := r.s.principals[*e.ActorID]; ok {
				pc := *p
				e.Actor = &pc
			}
		}
		out = append(out, &e)
	}
	return out, nil
}

// --- harness ---

type harness struct {
	store         *store
	resolver      *RoleResolver
	audit         *AuditService
	relationships *RelationshipService
	records       *CareRecordService
	notes         *NoteService
	patients      *PatientService
}

const allowListedAdmin = "Director@CareHome.example"

func newHarness(t *testing.T) *harness {
	t.Helper()
	s := newStore()
	log := zap.NewNop()

	principals := fakePrincipalRepo{s}
	patients := fakePatientRepo{s}
	links := fakeLinkRepo{s}
	notes := fakeNoteRepo{s}

	resolver := NewRoleResolver(principals, []string{" " + allowListedAdmin + " "}, log)
	audit := NewAuditService(fakeAuditRepo{s}, resolver, nil, log, AuditOptions{BufferSize: 64})
	t.Cleanup(audit.Shutdown)

	records := NewCareRecordService(patients, fakeRecordRepo{s}, notes, links, resolver, nil, log)
	records.now = func() time.Time { return time.Date(2026, 5, 4, 18, 30, 0, 0, time.UTC) }

	return &harness{
		store:         s,
		resolver:      resolver,
		audit:         audit,
		relationships: NewRelationshipService(principals, patients, links, resolver, audit, nil, log),
		records:       records,
		notes:         NewNoteService(notes, patients, links, resolver, audit, nil, log),
		patients:      NewPatientService(principals, patients, links, resolver, audit, log),
	}
}

func as(p *domain.Principal) context.Context {
	return auth.WithSession(context.Background(), &auth.Session{PrincipalID: p.ID, Email: p.Email, IPAddress: "192.0.2.10"})
}

// flushAudit waits for queued audit entries to be persisted.
func (h *harness) flushAudit(t *testing.T) []*domain.AuditLog {
	t.Helper()
	h.audit.Shutdown()
	return h.store.auditEntries()
}
