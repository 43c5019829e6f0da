package app

import "errors"

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrGeneration      = errors.New("report generation failed")
	ErrStorage         = errors.New("storage failed")
	ErrRecordNotFound  = errors.New("record not found")
	ErrDeleteForbidden = errors.New("deletion not authorized")
)
