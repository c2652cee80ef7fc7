package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmehra2102/prod-golang-projects/carecompanion/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/carecompanion/internal/domain/carerecord"
	"github.com/dmehra2102/prod-golang-projects/carecompanion/internal/domain/note"
	"github.com/dmehra2102/prod-golang-projects/carecompanion/internal/domain/patient"
	"github.com/google/uuid"
)

func seedRecord(s *store, patientID, authorID uuid.UUID) {
	today, yesterday := "2026-05-04", "2026-05-03"
	base := time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)

	s.tasks = []*carerecord.Task{
		{ID: uuid.New(), PatientID: patientID, Status: "completed", IsActive: true},
		{ID: uuid.New(), PatientID: patientID, Status: "pending", IsActive: true},
		{ID: uuid.New(), PatientID: patientID, Status: "pending", IsActive: true},
		{ID: uuid.New(), PatientID: patientID, Status: "pending", IsActive: true},
		{ID: uuid.New(), PatientID: patientID, Status: "completed", IsActive: false},
	}
	s.medications = []*carerecord.Medication{
		{ID: uuid.New(), PatientID: patientID, Name: "Donepezil", IsActive: true},
		{ID: uuid.New(), PatientID: patientID, Name: "Memantine", IsActive: true},
		{ID: uuid.New(), PatientID: patientID, Name: "Retired", IsActive: false},
	}
	s.doseLogs = []*carerecord.MedicationLog{
		{ID: uuid.New(), PatientID: patientID, Status: "taken", Date: today},
		{ID: uuid.New(), PatientID: patientID, Status: "missed", Date: today},
		{ID: uuid.New(), PatientID: patientID, Status: "taken", Date: yesterday},
	}
	for i := 0; i < 7; i++ {
		s.moods = append(s.moods, &carerecord.MoodEntry{
			ID: uuid.New(), PatientID: patientID, Mood: "mood-" + string(rune('a'+i)), Timestamp: base.Add(time.Duration(i) * time.Hour),
		})
	}
	for i := 0; i < 12; i++ {
		s.memories = append(s.memories, &carerecord.Memory{ID: uuid.New(), PatientID: patientID, Title: "memory"})
	}
	s.careTeam = []*carerecord.CareTeamMember{{ID: uuid.New(), PatientID: patientID, Name: "Dr. Patel"}}
	s.appointments = []*carerecord.Appointment{{ID: uuid.New(), PatientID: patientID, Title: "Neurology", Date: "2026-06-01"}}

	for i := 0; i < 7; i++ {
		author := authorID
		s.notes = append(s.notes, &note.Note{
			ID: uuid.New(), PatientID: patientID, CaregiverID: &author, Text: "note", Type: note.TypeGeneral, CreatedAt: s.tick(),
		})
	}
}

func TestLoadCareRecord_Aggregates(t *testing.T) {
	h := newHarness(t)
	cg := h.store.addPrincipal(domain.RoleCaregiver, "Ruth", "Okafor", "ruth@example.com")
	pat := h.store.addPatient("Ann")
	h.store.addLink(cg.ID, pat.ID, "")
	seedRecord(h.store, pat.ID, cg.ID)

	rec, err := h.records.LoadCareRecord(as(cg), pat.ID)
	if err != nil {
		t.Fatalf("LoadCareRecord: %v", err)
	}

	if rec.Patient.PreferredName != "Ann" || rec.Patient.Location != patient.DefaultLocation {
		t.Errorf("profile not normalized: %+v", rec.Patient)
	}
	if len(rec.Tasks) != 4 || len(rec.Medications) != 2 {
		t.Errorf("active tasks/meds = %d/%d, want 4/2", len(rec.Tasks), len(rec.Medications))
	}
	if len(rec.MedicationLogs) != 2 {
		t.Errorf("today's logs = %d, want 2", len(rec.MedicationLogs))
	}
	if len(rec.MoodEntries) != 5 || len(rec.Memories) != 10 || len(rec.RecentNotes) != 5 {
		t.Errorf("limits: moods=%d memories=%d notes=%d", len(rec.MoodEntries), len(rec.Memories), len(rec.RecentNotes))
	}
	if rec.RecentNotes[0].CaregiverName != "Ruth Okafor" {
		t.Errorf("note author = %q", rec.RecentNotes[0].CaregiverName)
	}

	s := rec.Stats
	if s.TasksCompletionRate != 25 {
		t.Errorf("TasksCompletionRate = %d, want 25", s.TasksCompletionRate)
	}
	if s.MedicationsAdherenceRate != 50 {
		t.Errorf("MedicationsAdherenceRate = %d, want 50", s.MedicationsAdherenceRate)
	}
	if s.MoodToday == nil || *s.MoodToday != "mood-g" {
		t.Errorf("MoodToday = %v, want most recent entry", s.MoodToday)
	}
	if len(rec.DegradedCategories) != 0 {
		t.Errorf("DegradedCategories = %v", rec.DegradedCategories)
	}
}

func TestLoadCareRecord_EmptyPatient(t *testing.T) {
	h := newHarness(t)
	pat := h.store.addPatient("Ann")

	rec, err := h.records.LoadCareRecord(as(pat), pat.ID)
	if err != nil {
		t.Fatalf("LoadCareRecord: %v", err)
	}
	if rec.Stats.TasksCompletionRate != 0 || rec.Stats.MedicationsAdherenceRate != 0 {
		t.Errorf("rates = %d/%d, want 0/0", rec.Stats.TasksCompletionRate, rec.Stats.MedicationsAdherenceRate)
	}
	if rec.Stats.MoodToday != nil || rec.Stats.MoodTrend != "stable" {
		t.Errorf("mood = %v/%q", rec.Stats.MoodToday, rec.Stats.MoodTrend)
	}
}

func TestLoadCareRecord_DegradesFailedCollections(t *testing.T) {
	h := newHarness(t)
	admin := h.store.addPrincipal(domain.RoleAdmin, "Ada", "Admin", "ada@example.com")
	pat := h.store.addPatient("Ann")
	seedRecord(h.store, pat.ID, admin.ID)
	h.store.failures["tasks"] = errStoreDown
	h.store.failures["notes.ListByPatient"] = errStoreDown

	rec, err := h.records.LoadCareRecord(as(admin), pat.ID)
	if err != nil {
		t.Fatalf("dependent failures must not fail the load: %v", err)
	}
	if rec.Tasks == nil || len(rec.Tasks) != 0 {
		t.Errorf("Tasks = %v, want empty non-nil", rec.Tasks)
	}
	if rec.RecentNotes == nil || len(rec.RecentNotes) != 0 {
		t.Errorf("RecentNotes = %v, want empty non-nil", rec.RecentNotes)
	}
	if rec.Stats.TasksCompletionRate != 0 {
		t.Errorf("TasksCompletionRate = %d over degraded tasks", rec.Stats.TasksCompletionRate)
	}
	if len(rec.Medications) != 2 {
		t.Errorf("unaffected collection lost: medications = %d", len(rec.Medications))
	}
	want := []string{carerecord.CollectionNotes, carerecord.CollectionTasks}
	if len(rec.DegradedCategories) != 2 || rec.DegradedCategories[0] != want[0] || rec.DegradedCategories[1] != want[1] {
		t.Errorf("DegradedCategories = %v, want %v", rec.DegradedCategories, want)
	}
}

func TestLoadCareRecord_NotFoundVersusStoreError(t *testing.T) {
	h := newHarness(t)
	admin := h.store.addPrincipal(domain.RoleAdmin, "Ada", "Admin", "ada@example.com")

	_, err := h.records.LoadCareRecord(as(admin), uuid.New())
	if !errors.Is(err, patient.ErrPatientNotFound) {
		t.Fatalf("err = %v, want ErrPatientNotFound", err)
	}
	var se *StoreError
	if errors.As(err, &se) {
		t.Fatal("not-found must not be reported as a store error")
	}

	pat := h.store.addPatient("Ann")
	h.store.failures["patients.GetByID"] = errStoreDown
	_, err = h.records.LoadCareRecord(as(admin), pat.ID)
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want StoreError", err)
	}
}

func TestLoadCareRecord_Access(t *testing.T) {
	h := newHarness(t)
	linked := h.store.addPrincipal(domain.RoleCaregiver, "Ruth", "Okafor", "ruth@example.com")
	stranger := h.store.addPrincipal(domain.RoleCaregiver, "Ben", "Cole", "ben@example.com")
	pat := h.store.addPatient("Ann")
	other := h.store.addPatient("Bob")
	h.store.addLink(linked.ID, pat.ID, "")

	if _, err := h.records.LoadCareRecord(as(stranger), pat.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("unlinked caregiver: err = %v, want ErrForbidden", err)
	}
	if _, err := h.records.LoadCareRecord(as(other), pat.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("other patient: err = %v, want ErrForbidden", err)
	}
	if _, err := h.records.LoadCareRecord(context.Background(), pat.ID); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("no session: err = %v, want ErrUnauthenticated", err)
	}

	// Revoking the role keeps the link but removes access.
	h.store.mu.Lock()
	h.store.principals[linked.ID].Role = domain.RolePatient
	h.store.mu.Unlock()
	if _, err := h.records.LoadCareRecord(as(linked), pat.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("revoked caregiver: err = %v, want ErrForbidden", err)
	}
}

func TestLoadCareRecord_IgnoresCallerCancellation(t *testing.T) {
	h := newHarness(t)
	admin := h.store.addPrincipal(domain.RoleAdmin, "Ada", "Admin", "ada@example.com")
	pat := h.store.addPatient("Ann")
	seedRecord(h.store, pat.ID, admin.ID)

	ctx, cancel := context.WithCancel(as(admin))
	cancel()

	rec, err := h.records.LoadCareRecord(ctx, pat.ID)
	if err != nil {
		t.Fatalf("LoadCareRecord: %v", err)
	}
	if len(rec.Tasks) != 4 {
		t.Errorf("Tasks = %d, want 4", len(rec.Tasks))
	}
}

func TestListPatientsForCaregiver_NoSession(t *testing.T) {
	h := newHarness(t)

	got, err := h.records.ListPatientsForCaregiver(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("err = %v, want nil", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("got %v, want empty list", got)
	}
}

func TestListPatientsForCaregiver_LinkedPatients(t *testing.T) {
	h := newHarness(t)
	cg := h.store.addPrincipal(domain.RoleCaregiver, "Ruth", "Okafor", "ruth@example.com")
	ann, bob, cat := h.store.addPatient("Ann"), h.store.addPatient("Bob"), h.store.addPatient("Cat")
	h.store.addLink(cg.ID, ann.ID, "")
	h.store.addLink(cg.ID, bob.ID, "")
	h.store.addLink(uuid.New(), cat.ID, "")
	// stale link: patient row gone
	h.store.addLink(cg.ID, uuid.New(), "")

	got, err := h.records.ListPatientsForCaregiver(as(cg), cg.ID)
	if err != nil {
		t.Fatalf("ListPatientsForCaregiver: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Patient.ID != ann.ID || got[1].Patient.ID != bob.ID {
		t.Errorf("order = %v, %v; want link order", got[0].Patient.FirstName, got[1].Patient.FirstName)
	}
}

func TestListPatientsForCaregiver_Errors(t *testing.T) {
	h := newHarness(t)
	cg := h.store.addPrincipal(domain.RoleCaregiver, "Ruth", "Okafor", "ruth@example.com")
	other := h.store.addPrincipal(domain.RoleCaregiver, "Ben", "Cole", "ben@example.com")
	pat := h.store.addPatient("Ann")
	h.store.addLink(cg.ID, pat.ID, "")

	if _, err := h.records.ListPatientsForCaregiver(as(other), cg.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("other caregiver: err = %v, want ErrForbidden", err)
	}

	h.store.failures["links.ListByCaregiver"] = errStoreDown
	var se *StoreError
	if _, err := h.records.ListPatientsForCaregiver(as(cg), cg.ID); !errors.As(err, &se) {
		t.Errorf("link query failure: err = %v, want StoreError", err)
	}
}
