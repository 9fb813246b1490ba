package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b\\c`, escapeLike(`a_b\c`))
}

func TestSelectWithStudent(t *testing.T) {
	r := &ConsultationRepository{}
	sql, _, err := r.selectWithStudent().ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "LEFT JOIN students s ON s.id = c.student_id")
	assert.Contains(t, sql, "c.scheduled_date_time")
}

func TestNullableStudent(t *testing.T) {
	var empty nullableStudent
	assert.Nil(t, empty.model())

	id, name := "s1", "Kamal"
	n := nullableStudent{ID: &id, Name: &name}
	s := n.model()
	require.NotNil(t, s)
	assert.Equal(t, "s1", s.ID)
	assert.Equal(t, "Kamal", s.Name)
	assert.Empty(t, s.Email)
}
