package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("wanjiku@example.co.ke"))
	assert.False(t, IsValidEmail("wanjiku@example"))
	assert.False(t, IsValidEmail("wan jiku@example.com"))
}

func TestIsValidPassword(t *testing.T) {
	assert.True(t, IsValidPassword("Harambee#2030"))
	assert.False(t, IsValidPassword("short1!"))
	assert.False(t, IsValidPassword("nodigits!!"))
	assert.False(t, IsValidPassword("nospecial123"))
}

func TestIsValidFullname(t *testing.T) {
	assert.True(t, IsValidFullname("Achieng' Otieno-Wafula"))
	assert.True(t, IsValidFullname("Zoë Mwangi"))
	assert.False(t, IsValidFullname("Kamau 2"))
	assert.False(t, IsValidFullname(""))
}

func TestIsValidUserName(t *testing.T) {
	assert.True(t, IsValidUserName("kamau_k"))
	assert.False(t, IsValidUserName("ka"))
	assert.False(t, IsValidUserName("kamau kimani"))
}
