package services

import (
	"github.com/armature-dev/armature/internal/domain/entities"
	"github.com/armature-dev/armature/internal/domain/validation"
	"github.com/armature-dev/armature/internal/domain/values"
)

// Allocation is the aggregate slot usage of a unit.
// It does not say which component occupies which slot.
type Allocation struct {
	Capacity int
	Used     int
	Overflow int
	Missing  []values.ComponentCategory
}

// Fits reports whether the components fit in the frame.
func (a Allocation) Fits() bool {
	return a.Overflow == 0
}

// SlotAllocator checks installed components against a frame's capacity and
// essential category coverage.
type SlotAllocator struct {
	essentials []values.ComponentCategory
}

// NewSlotAllocator creates an allocator requiring one component per essential category.
func NewSlotAllocator(essentials []values.ComponentCategory) *SlotAllocator {
	return &SlotAllocator{essentials: CopyCategories(essentials)}
}

// Allocate counts components against capacity and lists uncovered essential
// categories in declaration order. A nil frame has zero capacity.
func (s *SlotAllocator) Allocate(frame *entities.Frame, comps []entities.Component) Allocation {
	alloc := Allocation{Used: len(comps)}
	if frame != nil && frame.Capacity > 0 {
		alloc.Capacity = frame.Capacity
	}
	if alloc.Used > alloc.Capacity {
		alloc.Overflow = alloc.Used - alloc.Capacity
	}

	covered := make(map[values.ComponentCategory]bool, len(comps))
	for _, c := range comps {
		covered[c.Category] = true
	}
	for _, cat := range s.essentials {
		if !covered[cat] {
			alloc.Missing = append(alloc.Missing, cat)
		}
	}
	return alloc
}

// Issues converts an allocation into findings. Overflow is reported with the
// given severity; missing essential categories are always warnings.
func (s *SlotAllocator) Issues(alloc Allocation, overflow values.Severity) []validation.Issue {
	var issues []validation.Issue
	if !alloc.Fits() {
		issues = append(issues,
			validation.NewIssue(overflow, values.CodeCapacityExceeded,
				"%d components assigned to a frame with capacity %d", alloc.Used, alloc.Capacity).
				At("components").
				Suggest("remove components or use a frame with more slots"),
		)
	}
	for _, cat := range alloc.Missing {
		issues = append(issues,
			validation.Warning(values.CodeCategoryMissing, "no %s component installed", cat).
				At("components"),
		)
	}
	return issues
}

// CapacityIssues reports only overflow, for callers that check coverage elsewhere.
func (s *SlotAllocator) CapacityIssues(frame *entities.Frame, comps []entities.Component, overflow values.Severity) []validation.Issue {
	alloc := s.Allocate(frame, comps)
	alloc.Missing = nil
	return s.Issues(alloc, overflow)
}

// CoverageIssues reports only missing essential categories.
func (s *SlotAllocator) CoverageIssues(frame *entities.Frame, comps []entities.Component) []validation.Issue {
	alloc := s.Allocate(frame, comps)
	alloc.Overflow = 0
	return s.Issues(alloc, values.SevWarning)
}
