package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsLabSubject(t *testing.T) {
	assert.True(t, IsLabSubject("Physics Lab", "PHY102"))
	assert.True(t, IsLabSubject("Chemistry", "CHEM-LAB-1"))
	assert.True(t, IsLabSubject("DATABASE LABORATORY", "CS301"))
	assert.False(t, IsLabSubject("Linear Algebra", "MATH201"))
	assert.False(t, IsLabSubject("Syllables", "LNG1"))
}

func TestExpandSubjectNonLab(t *testing.T) {
	units := ExpandSubject(Subject{ID: "s1", Name: "Algebra", Code: "M1", Credits: 3}, 2)
	require.Len(t, units, 3)
	for _, u := range units {
		assert.Equal(t, "s1", u.SubjectID)
		assert.Equal(t, 1, u.Length)
		assert.False(t, u.IsLab)
	}
}

func TestExpandSubjectLabEven(t *testing.T) {
	units := ExpandSubject(Subject{ID: "s2", Name: "Physics Lab", Code: "P1", Credits: 4}, 2)
	require.Len(t, units, 2)
	for _, u := range units {
		assert.Equal(t, 2, u.Length)
		assert.True(t, u.IsLab)
	}
}

func TestExpandSubjectLabRoundsUp(t *testing.T) {
	// 5 credits with block length 2 yields 3 full blocks: scheduled length 6
	// exceeds the declared credits and stays uncorrected.
	units := ExpandSubject(Subject{ID: "s3", Name: "Circuits Lab", Code: "E1", Credits: 5}, 2)
	require.Len(t, units, 3)
	total := 0
	for _, u := range units {
		total += u.Length
	}
	assert.Equal(t, 6, total)
	assert.GreaterOrEqual(t, total, 5)
}

func TestExpandSubjectCoercesZeroCredits(t *testing.T) {
	units := ExpandSubject(Subject{ID: "s4", Name: "Seminar", Code: "SEM", Credits: 0}, 2)
	require.Len(t, units, 1)
	assert.Equal(t, 1, units[0].Length)

	labUnits := ExpandSubject(Subject{ID: "s5", Name: "Mini Lab", Code: "ML", Credits: -2}, 3)
	require.Len(t, labUnits, 1)
	assert.Equal(t, 3, labUnits[0].Length)
}

func TestExpandAllPoolsAndCoercesCredits(t *testing.T) {
	subjects := []*Subject{
		{ID: "a", Name: "Calculus", Code: "M2", Credits: 2},
		{ID: "b", Name: "Data Lab", Code: "D1", Credits: 0},
	}
	units, total := expandAll(subjects, 2)
	assert.Equal(t, 3, total)
	require.Len(t, units, 3)
}
