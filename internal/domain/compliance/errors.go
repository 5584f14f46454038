package compliance

import "errors"

var (
	ErrTypeNotFound    = errors.New("compliance type not found")
	ErrTypeNameExists  = errors.New("compliance type name already exists")
	ErrRecordNotFound  = errors.New("compliance record not found")
	ErrInvalidPeriod   = errors.New("period identifier does not match compliance frequency")
	ErrEntityNotFound  = errors.New("entity not found for compliance target")
	ErrTypeInactive    = errors.New("compliance type is inactive")
	ErrInvalidEvidence = errors.New("invalid evidence file")
)
