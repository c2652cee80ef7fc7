package caregiver

import "errors"

var (
	ErrLinkNotFound     = errors.New("caregiver link not found")
	ErrNotACaregiver    = errors.New("target principal does not hold the caregiver role")
	ErrNotLinkedPatient = errors.New("caregiver is not linked to this patient")
)
