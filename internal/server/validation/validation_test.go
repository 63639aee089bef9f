package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/securepass/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistration(t *testing.T) {
	assert.NoError(t, Registration("alice", "Str0ng!Pass"))
	assert.NoError(t, Registration("a.b_c-d", "Str0ng!Pass"))

	err := Registration("al", "weak")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrValidation))

	var fields Errors
	require.ErrorAs(t, err, &fields)
	assert.Contains(t, fields, "username")
	assert.Contains(t, fields, "password")

	err = Registration("bad name!", "Str0ng!Pass")
	require.ErrorAs(t, err, &fields)
	assert.Len(t, fields, 1)
}

func TestStrongPassword(t *testing.T) {
	tests := map[string]bool{
		"Str0ng!Pass": true,
		"Aa1!aaaa":    true,
		"Aa1!aaa":     false,
		"str0ng!pass": false,
		"STR0NG!PASS": false,
		"Strong!Pass": false,
		"Str0ngPass1": false,
		"Str0ng Pass": false,
	}
	for in, want := range tests {
		assert.Equal(t, want, StrongPassword(in), in)
	}
}

func TestLogin(t *testing.T) {
	assert.NoError(t, Login("alice", "x"))
	assert.ErrorIs(t, Login("", ""), common.ErrValidation)
}

func TestCredential(t *testing.T) {
	assert.NoError(t, Credential("github.com", "", "p@ss"))

	var fields Errors
	require.ErrorAs(t, Credential("", strings.Repeat("u", 256), ""), &fields)
	assert.Equal(t, "Site is required", fields["site"])
	assert.Equal(t, "Username must not exceed 255 characters", fields["username"])
	assert.Equal(t, "Password is required", fields["password"])

	require.ErrorAs(t, Credential(strings.Repeat("s", 256), "", strings.Repeat("p", 501)), &fields)
	assert.Equal(t, "Site must not exceed 255 characters", fields["site"])
	assert.Equal(t, "Password must not exceed 500 characters", fields["password"])
}

func TestErrors_Message(t *testing.T) {
	e := Errors{"b": "two", "a": "one"}
	assert.Equal(t, "validation failed: a: one; b: two;", e.Error())
	assert.Nil(t, Errors{}.Err())
}

func TestSanitize(t *testing.T) {
	tests := []struct{ in, want string }{
		{in: "  github.com  ", want: "github.com"},
		{in: "<b>bank</b>", want: "bank"},
		{in: `<script>alert(1)</script>site`, want: "site"},
		{in: `javascript:alert(1)`, want: "alert(1)"},
		{in: `x onclick= y`, want: "x  y"},
		{in: "Tom & Jerry", want: "Tom & Jerry"},
		{in: "&lt;img src=x&gt;github.com", want: "github.com"},
		{in: "&amp;lt;b&amp;gt;bank", want: "bank"},
		{in: "a < b", want: "a < b"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Sanitize(tt.in), tt.in)
	}
}

func TestSanitize_EncodedMarkupStaysInert(t *testing.T) {
	for _, in := range []string{
		"&lt;script&gt;alert(1)&lt;/script&gt;",
		"&#60;script&#62;alert(1)&#60;/script&#62;",
		"&amp;amp;amp;amp;lt;script&amp;amp;amp;amp;gt;x",
	} {
		got := Sanitize(in)
		assert.NotContains(t, got, "<script", in)
		assert.NotContains(t, got, "<", in)
	}
}
