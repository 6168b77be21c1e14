package common

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// ---------- GenerateRandByteArray ----------

func TestGenerateRandByteArray_Basic(t *testing.T) {
	const n = 24
	buf := GenerateRandByteArray(n)
	if buf == nil {
		t.Fatalf("expected non-nil slice")
	}
	if len(buf) != n {
		t.Fatalf("expected length %d, got %d", n, len(buf))
	}
}

func TestGenerateRandByteArray_Distinct(t *testing.T) {
	const n = 32
	a := GenerateRandByteArray(n)
	b := GenerateRandByteArray(n)

	if bytes.Equal(a, b) {
		t.Fatalf("two GenerateRandByteArray(%d) results are identical", n)
	}
}

// ---------- WipeByteArray ----------

func TestWipeByteArray_ZerosBuffer(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5}
	WipeByteArray(buf)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("expected buf[%d]==0, got %d", i, v)
		}
	}
}

func TestWipeByteArray_NilSafe(t *testing.T) {
	WipeByteArray(nil)
}

// ---------- BearerToken ----------

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		value  string
		want   string
		wantOK bool
	}{
		{name: "canonical", value: "Bearer abc.def.ghi", want: "abc.def.ghi", wantOK: true},
		{name: "lower-case scheme", value: "bearer abc", want: "abc", wantOK: true},
		{name: "surrounding spaces trimmed", value: "Bearer   abc  ", want: "abc", wantOK: true},
		{name: "empty", value: "", wantOK: false},
		{name: "scheme only", value: "Bearer ", wantOK: false},
		{name: "basic auth", value: "Basic dXNlcjpwdw==", wantOK: false},
		{name: "raw token", value: "abc.def.ghi", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := BearerToken(tt.value)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

// ---------- IsAuthError ----------

func TestIsAuthError(t *testing.T) {
	for _, err := range []error{ErrUnauthorized, ErrInvalidCredentials, ErrTokenMalformed, ErrInvalidSignature, ErrTokenExpired} {
		assert.True(t, IsAuthError(fmt.Errorf("wrapped: %w", err)), err.Error())
	}
	for _, err := range []error{ErrNotFound, ErrDuplicateEmail, ErrInternal, errors.New("boom"), nil} {
		assert.False(t, IsAuthError(err))
	}
}
