package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormPhone(t *testing.T) {
	cases := map[string]string{
		"050 123 4567":       "+971501234567",
		"00971501234567":     "+971501234567",
		"971501234567":       "+971501234567",
		"+971 (50) 123-4567": "+971501234567",
		"+447911123456":      "+447911123456",
		"050-CALL-ME":        "",
		"050#1234567":        "",
		"":                   "",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormPhone(in), in)
	}
	assert.True(t, ValidPhone("+971501234567"))
	assert.False(t, ValidPhone("+0501"))
}

func TestNormIDNumber(t *testing.T) {
	assert.Equal(t, "784-2015-1234567-1", NormIDNumber(IDTypeEmirates, "784201512345671"))
	assert.Equal(t, "784-2015-1234567-1", NormIDNumber(IDTypeEmirates, " 784-2015-1234567-1 "))
	assert.Equal(t, "AB123456", NormIDNumber(IDTypePassport, "ab123456"))

	assert.True(t, ValidIDNumber(IDTypeEmirates, "784-2015-1234567-1"))
	assert.False(t, ValidIDNumber(IDTypeEmirates, "785-2015-1234567-1"))
	assert.True(t, ValidIDNumber(IDTypePassport, "AB123456"))
	assert.False(t, ValidIDNumber(IDTypePassport, "AB12"))
}

func TestNormEmail(t *testing.T) {
	e, ok := NormEmail(" Parent@Example.COM ")
	assert.True(t, ok)
	assert.Equal(t, "parent@example.com", e)

	_, ok = NormEmail("")
	assert.True(t, ok)

	_, ok = NormEmail("Parent <parent@example.com>")
	assert.False(t, ok)
	_, ok = NormEmail("nobody@localhost")
	assert.False(t, ok)
}

func TestValidator_TranslatesFieldErrors(t *testing.T) {
	v := NewValidator()
	err := v.Struct(ApplicantInput{FatherMobile: "12", IDType: IDTypeEmirates, IDNumber: "784"})
	var ve *ValidationError
	if !assert.ErrorAs(t, err, &ve) {
		return
	}
	msgs := map[string]string{}
	for _, f := range ve.Fields {
		msgs[f.Field] = f.Error
	}
	assert.Equal(t, "grade is required", msgs["grade"])
	assert.Equal(t, "father_mobile must be a valid mobile number", msgs["father_mobile"])
	assert.Contains(t, msgs["id_number"], "does not match the document type")
}
