package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2025-07-16", "2025-07-16"},
		{"2025-07-16T00:00:00.000Z", "2025-07-16"},
		{"2025-07-16T15:04:05+07:00", "2025-07-16"},
		{"", ""},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeDate(tc.in), "input=%q", tc.in)
	}
}

func TestOperatorRefValidate(t *testing.T) {
	id := int64(5)
	code := "E1"

	assert.NoError(t, OperatorRef{UserID: &id}.Validate())
	assert.NoError(t, OperatorRef{IDCode: &code}.Validate())
	assert.Error(t, OperatorRef{}.Validate())
	assert.Error(t, OperatorRef{UserID: &id, IDCode: &code}.Validate())
}
