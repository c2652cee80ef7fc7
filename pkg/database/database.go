package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmehra2102/prod-golang-projects/carecompanion/config"
	"github.com/dmehra2102/prod-golang-projects/carecompanion/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/carecompanion/internal/domain/caregiver"
	"github.com/dmehra2102/prod-golang-projects/carecompanion/internal/domain/carerecord"
	"github.com/dmehra2102/prod-golang-projects/carecompanion/internal/domain/note"
	"github.com/dmehra2102/prod-golang-projects/carecompanion/internal/domain/patient"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:      gormlogger.Default.LogMode(gormlogger.Silent),
		PrepareStmt: true,
		// Foreign keys are created explicitly in Migrate so that every
		// cascade rule is spelled out in one place.
		DisableForeignKeyConstraintWhenMigrating: true,
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: cfg.DSN(),
	}), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func Migrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")
	start := time.Now()

	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		return fmt.Errorf("enabling pgcrypto: %w", err)
	}

	models := []any{
		&domain.Principal{},
		&domain.AuditLog{},
		&patient.Patient{},
		&caregiver.Link{},
		&note.Note{},
		&carerecord.Task{},
		&carerecord.Medication{},
		&carerecord.MedicationLog{},
		&carerecord.MoodEntry{},
		&carerecord.Memory{},
		&carerecord.CareTeamMember{},
		&carerecord.Appointment{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto-migrating models: %w", err)
	}

	if err := createForeignKeys(db, log); err != nil {
		return fmt.Errorf("creating foreign keys: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("creating indexes: %w", err)
	}

	log.Info("migrations completed", zap.Duration("duration", time.Since(start)))
	return nil
}

type foreignKey struct {
	table, name, column, references, onDelete string
}

// Deleting a principal removes its patient row and everything hanging off
// it. Notes and audit entries outlive their author.
var foreignKeys = []foreignKey{
	{"patients", "fk_patients_profile", "id", "profiles(id)", "CASCADE"},
	{"caregiver_patients", "fk_links_caregiver", "caregiver_id", "profiles(id)", "CASCADE"},
	{"caregiver_patients", "fk_links_patient", "patient_id", "patients(id)", "CASCADE"},
	{"patient_notes", "fk_notes_patient", "patient_id", "patients(id)", "CASCADE"},
	{"patient_notes", "fk_notes_caregiver", "caregiver_id", "profiles(id)", "SET NULL"},
	{"audit_logs", "fk_audit_actor", "actor_id", "profiles(id)", "SET NULL"},
	{"tasks", "fk_tasks_patient", "patient_id", "patients(id)", "CASCADE"},
	{"medications", "fk_medications_patient", "patient_id", "patients(id)", "CASCADE"},
	{"medication_logs", "fk_medication_logs_patient", "patient_id", "patients(id)", "CASCADE"},
	{"medication_logs", "fk_medication_logs_medication", "medication_id", "medications(id)", "CASCADE"},
	{"mood_entries", "fk_mood_entries_patient", "patient_id", "patients(id)", "CASCADE"},
	{"memories", "fk_memories_patient", "patient_id", "patients(id)", "CASCADE"},
	{"care_team_members", "fk_care_team_patient", "patient_id", "patients(id)", "CASCADE"},
	{"appointments", "fk_appointments_patient", "patient_id", "patients(id)", "CASCADE"},
}

func createForeignKeys(db *gorm.DB, log *zap.Logger) error {
	for _, fk := range foreignKeys {
		stmt := fmt.Sprintf(
			`ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s ON DELETE %s`,
			fk.table, fk.name, fk.column, fk.references, fk.onDelete,
		)
		if err := db.Exec(stmt).Error; err != nil {
			if isDuplicateObject(err) {
				log.Debug("foreign key already present", zap.String("constraint", fk.name))
				continue
			}
			return fmt.Errorf("%s: %w", fk.name, err)
		}
	}
	return nil
}

func isDuplicateObject(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "42710"
}

func createIndexes(db *gorm.DB) error {
	stmts := []string{
		// Authoritative link lookup: primary first, newest first.
		`CREATE INDEX IF NOT EXISTS idx_links_authoritative ON caregiver_patients (patient_id, is_primary DESC, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_notes_timeline ON patient_notes (patient_id, created_at DESC, id DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_mood_entries_recent ON mood_entries (patient_id, timestamp DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_logs_recent ON audit_logs (created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_profiles_email_lower ON profiles (lower(email))`,
	}
	for _, s := range stmts {
		if err := db.Exec(s).Error; err != nil {
			return fmt.Errorf("index exec failed: %w (sql=%s)", err, s)
		}
	}
	return nil
}
