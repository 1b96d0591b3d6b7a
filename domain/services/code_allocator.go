package services

import (
	"fmt"
	"math/rand"

	"tablemate-backend/domain/config"
	pkgerrors "tablemate-backend/pkg/errors"
)

// CodeAllocator hands out sets of distinct two-digit arrival codes.
// Codes are spoken aloud at the restaurant door; they are not secrets,
// so math/rand is sufficient.
type CodeAllocator struct {
	cfg *config.DomainConfig
	rng *rand.Rand
}

// NewCodeAllocator creates an allocator with the given code space
func NewCodeAllocator(cfg *config.DomainConfig, seed int64) *CodeAllocator {
	return &CodeAllocator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Allocate returns count pairwise-distinct codes by rejection sampling.
// Requests beyond the code space size fail up front; the sampling loop
// can therefore never run unbounded.
func (a *CodeAllocator) Allocate(count int) ([]int, error) {
	if count < 0 {
		return nil, pkgerrors.NewValidationError("code count cannot be negative")
	}
	space := a.cfg.CodeSpaceSize()
	if count > space {
		return nil, pkgerrors.NewValidationError(
			fmt.Sprintf("cannot allocate %d distinct codes from a space of %d", count, space))
	}

	codes := make([]int, 0, count)
	used := make(map[int]bool, count)

	for len(codes) < count {
		code := a.cfg.ArrivalCodeMin + a.rng.Intn(space)
		if used[code] {
			continue
		}
		used[code] = true
		codes = append(codes, code)
	}

	return codes, nil
}
