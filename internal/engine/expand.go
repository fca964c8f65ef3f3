package engine

import "strings"

// TeachingUnit is one atomic block of instruction that must be placed
// exactly once: a single period, or a contiguous lab block.
type TeachingUnit struct {
	SubjectID string
	Length    int
	IsLab     bool
}

// IsLabSubject reports whether a subject is delivered as lab blocks,
// derived from a case-insensitive "lab" match over name and code.
func IsLabSubject(name, code string) bool {
	return strings.Contains(strings.ToLower(name+" "+code), "lab")
}

// ExpandSubject converts a subject's credit load into teaching units.
// Non-lab subjects yield one unit of length 1 per credit. Lab subjects
// yield ceil(credits / blockLength) units of length blockLength; when
// credits do not divide evenly the last block is still full length, so the
// total scheduled length may exceed the declared credits. That
// over-allocation is intentional and left uncorrected.
func ExpandSubject(s Subject, blockLength int) []TeachingUnit {
	credits := s.Credits
	if credits < 1 {
		credits = 1
	}
	if blockLength < 1 {
		blockLength = 1
	}

	if IsLabSubject(s.Name, s.Code) {
		blocks := (credits + blockLength - 1) / blockLength
		units := make([]TeachingUnit, blocks)
		for i := range units {
			units[i] = TeachingUnit{SubjectID: s.ID, Length: blockLength, IsLab: true}
		}
		return units
	}

	units := make([]TeachingUnit, credits)
	for i := range units {
		units[i] = TeachingUnit{SubjectID: s.ID, Length: 1}
	}
	return units
}

// expandAll pools the units of every subject in a division's semester and
// returns the coerced credit total used for the daily load target.
func expandAll(subjects []*Subject, blockLength int) ([]TeachingUnit, int) {
	var units []TeachingUnit
	totalCredits := 0
	for _, s := range subjects {
		credits := s.Credits
		if credits < 1 {
			credits = 1
		}
		totalCredits += credits
		units = append(units, ExpandSubject(*s, blockLength)...)
	}
	return units, totalCredits
}
