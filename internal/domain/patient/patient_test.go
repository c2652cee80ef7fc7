package patient

import (
	"testing"

	"github.com/google/uuid"
)

func ptr[T any](v T) *T { return &v }

func TestNormalize_EmptyRowGetsDefaults(t *testing.T) {
	row := &Patient{ID: uuid.New(), FirstName: ptr("Margaret")}

	got := Normalize(row)

	if got.PreferredName != "Margaret" {
		t.Errorf("PreferredName = %q, want first name", got.PreferredName)
	}
	if got.Location != DefaultLocation {
		t.Errorf("Location = %q, want %q", got.Location, DefaultLocation)
	}
	if got.Affirmation != DefaultAffirmation {
		t.Errorf("Affirmation = %q", got.Affirmation)
	}
	if got.DementiaStage != StageMiddle {
		t.Errorf("DementiaStage = %q, want middle", got.DementiaStage)
	}
	if got.EmergencyContact.Name != "Emergency Contact" || got.EmergencyContact.Relationship != "Family" {
		t.Errorf("EmergencyContact = %+v", got.EmergencyContact)
	}
	if got.EmergencyContact.Phone != "" || got.EmergencyContact.Email != nil {
		t.Errorf("EmergencyContact phone/email should be empty, got %+v", got.EmergencyContact)
	}

	want := Preferences{
		Language:             "en",
		FontSize:             "large",
		HighContrast:         false,
		AudioEnabled:         true,
		NotificationsEnabled: true,
		Tone:                 "gentle",
	}
	if got.Preferences != want {
		t.Errorf("Preferences = %+v, want %+v", got.Preferences, want)
	}
}

func TestNormalize_StoredValuesWin(t *testing.T) {
	row := &Patient{
		ID:                              uuid.New(),
		FirstName:                       ptr("Margaret"),
		LastName:                        ptr("Hale"),
		PreferredName:                   ptr("Maggie"),
		Location:                        ptr("Room 12"),
		DementiaStage:                   ptr("late"),
		EmergencyContactName:            ptr("Tom Hale"),
		EmergencyContactEmail:           ptr("tom@example.com"),
		PreferencesAudioEnabled:         ptr(false),
		PreferencesNotificationsEnabled: ptr(false),
		PreferencesHighContrast:         ptr(true),
		PreferencesTone:                 ptr("direct"),
	}

	got := Normalize(row)

	if got.PreferredName != "Maggie" || got.Location != "Room 12" || got.DementiaStage != StageLate {
		t.Errorf("stored values not preserved: %+v", got)
	}
	if got.FullName() != "Margaret Hale" {
		t.Errorf("FullName() = %q", got.FullName())
	}
	if got.EmergencyContact.Name != "Tom Hale" || got.EmergencyContact.Relationship != "Family" {
		t.Errorf("EmergencyContact = %+v", got.EmergencyContact)
	}
	if got.EmergencyContact.Email == nil || *got.EmergencyContact.Email != "tom@example.com" {
		t.Errorf("EmergencyContact.Email = %v", got.EmergencyContact.Email)
	}
	if got.Preferences.AudioEnabled || got.Preferences.NotificationsEnabled || !got.Preferences.HighContrast {
		t.Errorf("explicit false/true preferences overwritten: %+v", got.Preferences)
	}
	if got.Preferences.Tone != "direct" {
		t.Errorf("Tone = %q", got.Preferences.Tone)
	}
}

func TestNormalize_BlankAndUnknownValues(t *testing.T) {
	row := &Patient{
		ID:            uuid.New(),
		FirstName:     ptr("Ann"),
		PreferredName: ptr("  "),
		DementiaStage: ptr("advanced"),
	}

	got := Normalize(row)

	if got.PreferredName != "Ann" {
		t.Errorf("blank PreferredName should fall back, got %q", got.PreferredName)
	}
	if got.DementiaStage != StageMiddle {
		t.Errorf("unknown stage should fall back to middle, got %q", got.DementiaStage)
	}
}

func TestUpdatePatientCommand_Apply(t *testing.T) {
	row := &Patient{FirstName: ptr("Ann"), Location: ptr("Home")}
	stage := StageEarly

	cmd := &UpdatePatientCommand{
		Location:                ptr("  Oak House "),
		DementiaStage:           &stage,
		PreferencesAudioEnabled: ptr(false),
	}
	cmd.Apply(row)

	if *row.FirstName != "Ann" {
		t.Errorf("FirstName changed to %q", *row.FirstName)
	}
	if *row.Location != "Oak House" {
		t.Errorf("Location = %q, want trimmed value", *row.Location)
	}
	if row.DementiaStage == nil || *row.DementiaStage != "early" {
		t.Errorf("DementiaStage = %v", row.DementiaStage)
	}
	if row.PreferencesAudioEnabled == nil || *row.PreferencesAudioEnabled {
		t.Errorf("PreferencesAudioEnabled = %v", row.PreferencesAudioEnabled)
	}
}
