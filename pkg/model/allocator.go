package model

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/limaJavier/allocation/pkg/sat"
	"go.uber.org/zap"
)

type Allocation struct {
	Assignment Assignment
	// Objective value of the model: the best candidate weight of every chosen course
	Objective int
	// False when the solver was interrupted before proving optimality
	Optimal     bool
	Variables   uint64
	Constraints int
}

type Allocator interface {
	Allocate(ctx context.Context, input Input) (Allocation, error)
	Verify(assignment Assignment, input Input) error
}

type satAllocator struct {
	optimizer sat.Optimizer
	config    Config
	logger    *zap.Logger
}

func NewSATAllocator(optimizer sat.Optimizer, config Config, logger *zap.Logger) Allocator {
	return &satAllocator{
		optimizer: optimizer,
		config:    config,
		logger:    orNop(logger),
	}
}

func (allocator *satAllocator) Allocate(ctx context.Context, input Input) (Allocation, error) {
	if err := allocator.config.Validate(); err != nil {
		return Allocation{}, fmt.Errorf("invalid configuration: %w", err)
	} else if err := input.Validate(); err != nil {
		return Allocation{}, fmt.Errorf("invalid input: %w", err)
	}

	//** Build model
	start := time.Now()
	model := BuildModel(input, allocator.config)
	allocation := Allocation{Variables: model.PB.Variables, Constraints: len(model.PB.Constraints)}
	allocator.logger.Info("model built",
		zap.Int("students", len(model.Students)),
		zap.Uint64("variables", allocation.Variables),
		zap.Int("constraints", allocation.Constraints),
		zap.Int("objectiveTerms", len(model.PB.Objective)),
		zap.Duration("elapsed", time.Since(start)),
	)

	//** Solve model
	start = time.Now()
	result, err := allocator.optimizer.Optimize(ctx, model.PB)
	if err != nil {
		return allocation, fmt.Errorf("%w: %w", ErrIndeterminate, err)
	}
	allocator.logger.Info("model solved",
		zap.Stringer("status", result.Status),
		zap.Bool("optimal", result.Optimal),
		zap.Int("objective", result.Objective),
		zap.Duration("elapsed", time.Since(start)),
	)

	//** Extract assignment
	assignment, err := ExtractAssignment(model, result, input.Held)
	if errors.Is(err, ErrInfeasible) {
		diagnosis := Diagnose(input, allocator.config)
		allocator.logger.Warn("no allocation satisfies every constraint", diagnosis.Fields()...)
		return allocation, err
	} else if err != nil {
		return allocation, err
	}

	if !result.Optimal {
		allocator.logger.Warn("solver stopped before proving optimality, the allocation may be improved")
	}
	allocation.Assignment = assignment
	allocation.Objective = result.Objective
	allocation.Optimal = result.Optimal
	return allocation, nil
}

func (allocator *satAllocator) Verify(assignment Assignment, input Input) error {
	return Verify(assignment, input, allocator.config)
}
