package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRules(t *testing.T) {
	assert.True(t, IsNIC("912345678V"))
	assert.True(t, IsNIC("199123456789"))
	assert.False(t, IsNIC("91234567"))
	assert.False(t, IsNIC("ABCDEFGHIV"))

	assert.True(t, IsEmail("Lecturer@Uni.LK"))
	assert.False(t, IsEmail("lecturer@"))

	assert.True(t, IsPersonName("Dr. A. Perera-Silva"))
	assert.False(t, IsPersonName("A"))
	assert.False(t, IsPersonName("Robert'); DROP"))
	assert.False(t, IsPersonName("..."))

}

func TestIsStrongPassword(t *testing.T) {
	tests := []struct {
		password string
		strong   bool
	}{
		{"Lecturer#Colombo2024", true},
		{"correct horse battery staple", true},
		{"aaaaaaa1", false},
		{"12345678a", false},
		{"password1", false},
		{"abcdefg1", false},
		{"a1", false},
	}
	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			assert.Equal(t, tt.strong, IsStrongPassword(tt.password))
		})
	}
}

func TestRegister(t *testing.T) {
	v := validator.New()
	require.NoError(t, Register(v))

	type profile struct {
		Name string `validate:"required,personname"`
		NIC  string `validate:"required,nic"`
		Note string `validate:"notblank"`
	}
	type passwordChange struct {
		Password string `validate:"required,password"`
	}

	assert.NoError(t, v.Struct(passwordChange{Password: "Lecturer#Colombo2024"}))
	assert.Error(t, v.Struct(passwordChange{Password: "password1"}))

	assert.NoError(t, v.Struct(profile{Name: "Nimal Perera", NIC: "912345678V", Note: "x"}))

	err := v.Struct(profile{Name: "N", NIC: "123", Note: "  "})
	require.Error(t, err)
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 3)
}
