package model

import (
	"errors"
	"fmt"
)

var (
	// No allocation satisfies every constraint. No partial result is produced
	ErrInfeasible = errors.New("allocation is infeasible")
	// The solver could not reach an answer (timeout, cancellation or failure)
	ErrIndeterminate = errors.New("solver could not determine an allocation")
)

type SectionFormatError struct {
	Code   string
	Reason string
}

func (err SectionFormatError) Error() string {
	return fmt.Sprintf("invalid section identifier %q: %v", err.Code, err.Reason)
}
