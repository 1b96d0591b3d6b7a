package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablemate-backend/domain/config"
)

func TestCodeAllocator_Allocate_DistinctTwoDigitCodes(t *testing.T) {
	allocator := NewCodeAllocator(config.DefaultDomainConfig(), 42)

	codes, err := allocator.Allocate(8)
	require.NoError(t, err)
	require.Len(t, codes, 8)

	seen := make(map[int]bool)
	for _, code := range codes {
		assert.GreaterOrEqual(t, code, 10)
		assert.LessOrEqual(t, code, 99)
		assert.False(t, seen[code], "code %d allocated twice", code)
		seen[code] = true
	}
}

func TestCodeAllocator_Allocate_ExhaustsCodeSpace(t *testing.T) {
	// 90 is the full [10,99] space; rejection sampling must still terminate
	// and hand out every code exactly once.
	allocator := NewCodeAllocator(config.DefaultDomainConfig(), 7)

	codes, err := allocator.Allocate(90)
	require.NoError(t, err)
	require.Len(t, codes, 90)

	seen := make(map[int]bool, 90)
	for _, code := range codes {
		seen[code] = true
	}
	assert.Len(t, seen, 90)
}

func TestCodeAllocator_Allocate_BeyondCodeSpace(t *testing.T) {
	allocator := NewCodeAllocator(config.DefaultDomainConfig(), 7)

	codes, err := allocator.Allocate(91)
	assert.Error(t, err)
	assert.Nil(t, codes)
}

func TestCodeAllocator_Allocate_NegativeCount(t *testing.T) {
	allocator := NewCodeAllocator(config.DefaultDomainConfig(), 7)

	codes, err := allocator.Allocate(-1)
	assert.Error(t, err)
	assert.Nil(t, codes)
}

func TestCodeAllocator_Allocate_ZeroCount(t *testing.T) {
	allocator := NewCodeAllocator(config.DefaultDomainConfig(), 7)

	codes, err := allocator.Allocate(0)
	require.NoError(t, err)
	assert.Empty(t, codes)
}
