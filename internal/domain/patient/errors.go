package patient

import "errors"

var (
	ErrPatientNotFound      = errors.New("patient not found")
	ErrInvalidDementiaStage = errors.New("dementia stage must be early, middle or late")
)
