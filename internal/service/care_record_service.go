package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/dmehra2102/prod-golang-projects/carecompanion/internal/domain/caregiver"
	"github.com/dmehra2102/prod-golang-projects/carecompanion/internal/domain/carerecord"
	"github.com/dmehra2102/prod-golang-projects/carecompanion/internal/domain/note"
	"github.com/dmehra2102/prod-golang-projects/carecompanion/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/carecompanion/pkg/auth"
	"github.com/dmehra2102/prod-golang-projects/carecompanion/pkg/metrics"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// CareRecordService assembles per-patient care records from the patient
// row and its independently stored collections.
type CareRecordService struct {
	patients patient.Repository
	records  carerecord.Repository
	notes    note.Repository
	links    caregiver.Repository
	resolver *RoleResolver
	access   patientAccess
	metrics  *metrics.Collector
	log      *zap.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

func NewCareRecordService(
	patients patient.Repository,
	records carerecord.Repository,
	notes note.Repository,
	links caregiver.Repository,
	resolver *RoleResolver,
	m *metrics.Collector,
	log *zap.Logger,
) *CareRecordService {
	return &CareRecordService{
		patients: patients,
		records:  records,
		notes:    notes,
		links:    links,
		resolver: resolver,
		access:   patientAccess{resolver: resolver, links: links},
		metrics:  m,
		log:      log,
		tracer:   otel.Tracer("carecompanion/service"),
		now:      time.Now,
	}
}

// LoadCareRecord returns the aggregated record of one patient, or
// patient.ErrPatientNotFound. Failures of dependent collections degrade to
// empty collections and are listed in DegradedCategories.
func (s *CareRecordService) LoadCareRecord(ctx context.Context, patientID uuid.UUID) (*carerecord.CareRecord, error) {
	if _, err := s.access.authorize(ctx, patientID); err != nil {
		return nil, err
	}

	start := time.Now()
	rec, err := s.load(ctx, patientID)
	s.metrics.CareRecordLoaded(loadResult(rec, err), time.Since(start).Seconds())
	return rec, err
}

// ListPatientsForCaregiver loads the record of every patient linked to the
// caregiver, in link order. Without a session it returns an empty list.
// Links whose patient no longer exists are skipped.
func (s *CareRecordService) ListPatientsForCaregiver(ctx context.Context, caregiverID uuid.UUID) ([]*carerecord.CareRecord, error) {
	if _, ok := auth.SessionFromContext(ctx); !ok {
		return []*carerecord.CareRecord{}, nil
	}

	id, err := s.resolver.Resolve(ctx)
	if errors.Is(err, ErrUnauthenticated) {
		return []*carerecord.CareRecord{}, nil
	}
	if err != nil {
		return nil, err
	}
	if !id.Admin && !(id.PrincipalID == caregiverID && id.IsCaregiver()) {
		return nil, ErrForbidden
	}

	links, err := s.links.ListByCaregiver(ctx, caregiverID)
	if err != nil {
		return nil, storeErr("list caregiver links", err)
	}

	results := make([]*carerecord.CareRecord, len(links))
	var g errgroup.Group
	for i, l := range links {
		g.Go(func() error {
			start := time.Now()
			rec, err := s.load(ctx, l.PatientID)
			s.metrics.CareRecordLoaded(loadResult(rec, err), time.Since(start).Seconds())
			if errors.Is(err, patient.ErrPatientNotFound) {
				s.log.Warn("skipping stale caregiver link",
					zap.String("link_id", l.ID.String()),
					zap.String("patient_id", l.PatientID.String()),
				)
				return nil
			}
			if err != nil {
				return err
			}
			results[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]*carerecord.CareRecord, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *CareRecordService) load(ctx context.Context, patientID uuid.UUID) (*carerecord.CareRecord, error) {
	ctx, span := s.tracer.Start(ctx, "CareRecordService.load",
		trace.WithAttributes(attribute.String("patient.id", patientID.String())),
	)
	defer span.End()

	row, err := s.patients.GetByID(ctx, patientID)
	if err != nil {
		if !errors.Is(err, patient.ErrPatientNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "patient fetch failed")
		}
		return nil, storeErr("get patient", err, patient.ErrPatientNotFound)
	}
	profile := patient.Normalize(row)

	// Sub-fetches run to completion even if the caller goes away.
	fetchCtx := context.WithoutCancel(ctx)
	today := s.now().UTC().Format(time.DateOnly)

	var (
		src      carerecord.Sources
		wg       sync.WaitGroup
		mu       sync.Mutex
		degraded []string
	)

	fetch := func(collection string, run func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fctx, fspan := s.tracer.Start(fetchCtx, "fetch "+collection)
			defer fspan.End()

			if err := run(fctx); err != nil {
				fspan.RecordError(err)
				fspan.SetStatus(codes.Error, "fetch failed")
				s.log.Warn("care record collection unavailable",
					zap.String("patient_id", patientID.String()),
					zap.String("collection", collection),
					zap.Error(err),
				)
				s.metrics.FetchDegraded(collection)
				mu.Lock()
				degraded = append(degraded, collection)
				mu.Unlock()
			}
		}()
	}

	fetch(carerecord.CollectionTasks, into(&src.Tasks, func(ctx context.Context) ([]*carerecord.Task, error) {
		return s.records.ListActiveTasks(ctx, patientID)
	}))
	fetch(carerecord.CollectionMedications, into(&src.Medications, func(ctx context.Context) ([]*carerecord.Medication, error) {
		return s.records.ListActiveMedications(ctx, patientID)
	}))
	fetch(carerecord.CollectionAppointments, into(&src.Appointments, func(ctx context.Context) ([]*carerecord.Appointment, error) {
		return s.records.ListAppointments(ctx, patientID)
	}))
	fetch(carerecord.CollectionNotes, into(&src.Notes, func(ctx context.Context) ([]*note.Note, error) {
		return s.notes.ListByPatient(ctx, patientID, carerecord.RecentNotesLimit)
	}))
	fetch(carerecord.CollectionMemories, into(&src.Memories, func(ctx context.Context) ([]*carerecord.Memory, error) {
		return s.records.ListMemories(ctx, patientID, carerecord.MemoriesLimit)
	}))
	fetch(carerecord.CollectionMoodEntries, into(&src.MoodEntries, func(ctx context.Context) ([]*carerecord.MoodEntry, error) {
		return s.records.ListRecentMoodEntries(ctx, patientID, carerecord.MoodEntriesLimit)
	}))
	fetch(carerecord.CollectionCareTeam, into(&src.CareTeam, func(ctx context.Context) ([]*carerecord.CareTeamMember, error) {
		return s.records.ListCareTeam(ctx, patientID)
	}))
	fetch(carerecord.CollectionMedicationLogs, into(&src.MedicationLogs, func(ctx context.Context) ([]*carerecord.MedicationLog, error) {
		return s.records.ListMedicationLogsForDate(ctx, patientID, today)
	}))

	wg.Wait()

	rec := carerecord.Assemble(profile, src)
	if len(degraded) > 0 {
		sort.Strings(degraded)
		rec.DegradedCategories = degraded
		span.SetAttributes(attribute.StringSlice("care_record.degraded", degraded))
	}
	return rec, nil
}

// into adapts a list query to a fetch that stores its result in dst only on
// success, leaving dst nil (rendered empty) on failure.
func into[T any](dst *[]T, list func(context.Context) ([]T, error)) func(context.Context) error {
	return func(ctx context.Context) error {
		v, err := list(ctx)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}
}

func loadResult(rec *carerecord.CareRecord, err error) string {
	switch {
	case errors.Is(err, patient.ErrPatientNotFound):
		return "not_found"
	case err != nil:
		return "error"
	case len(rec.DegradedCategories) > 0:
		return "degraded"
	}
	return "ok"
}
