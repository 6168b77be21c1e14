package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/userauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestCodec(t *testing.T, secret string) (*Codec, *fakeClock) {
	t.Helper()
	clk := &fakeClock{t: t0}
	c, err := NewCodec([]byte(secret), WithClock(clk.Now))
	require.NoError(t, err)
	return c, clk
}

func TestNewCodec_EmptySecret(t *testing.T) {
	_, err := NewCodec(nil)
	require.Error(t, err)
}

func TestCodec_RoundTrip(t *testing.T) {
	c, _ := newTestCodec(t, "secret")

	in := &Claims{UserID: 42, Email: "user@x.com", Name: "User"}
	token, err := c.Encode(in, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, t0.Add(time.Hour).Unix(), in.ExpiresAt.Unix())

	out, err := c.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), out.UserID)
	assert.Equal(t, "user@x.com", out.Email)
	assert.Equal(t, "User", out.Name)
	assert.True(t, in.ExpiresAt.Equal(out.ExpiresAt.Time))
}

func TestCodec_WireFormat(t *testing.T) {
	c, _ := newTestCodec(t, "secret")

	token, err := c.Encode(&Claims{UserID: 1, Email: "a@b.c", Name: "A"}, time.Minute)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	for _, p := range parts {
		assert.NotContains(t, p, "=", "segments must be unpadded")
	}

	header, err := base64.RawURLEncoding.DecodeString(parts[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"typ":"JWT","alg":"HS256"}`, string(header))

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"email":"a@b.c","name":"A","exp":`+itoa(t0.Add(time.Minute).Unix())+`}`, string(payload))
}

func TestCodec_RejectsNonPositiveTTL(t *testing.T) {
	c, _ := newTestCodec(t, "secret")

	for _, ttl := range []time.Duration{0, -time.Minute, time.Millisecond} {
		_, err := c.Encode(&Claims{UserID: 1}, ttl)
		assert.ErrorIs(t, err, common.ErrInvalidTTL)
	}
}

func TestCodec_Expired(t *testing.T) {
	c, clk := newTestCodec(t, "secret")

	token, err := c.Encode(&Claims{UserID: 1}, time.Minute)
	require.NoError(t, err)

	clk.t = t0.Add(59 * time.Second)
	_, err = c.Decode(token)
	require.NoError(t, err)

	clk.t = t0.Add(time.Minute)
	_, err = c.Decode(token)
	assert.ErrorIs(t, err, common.ErrTokenExpired, "exp == now is expired")

	clk.t = t0.Add(time.Hour)
	_, err = c.Decode(token)
	assert.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestCodec_WrongSecret(t *testing.T) {
	issuer, _ := newTestCodec(t, "secret-a")
	verifier, _ := newTestCodec(t, "secret-b")

	token, err := issuer.Encode(&Claims{UserID: 1}, time.Minute)
	require.NoError(t, err)

	_, err = verifier.Decode(token)
	assert.ErrorIs(t, err, common.ErrInvalidSignature)
}

func TestCodec_TamperedPayload(t *testing.T) {
	c, clk := newTestCodec(t, "secret")

	token, err := c.Encode(&Claims{UserID: 1, Email: "a@b.c"}, time.Minute)
	require.NoError(t, err)
	parts := strings.Split(token, ".")

	t.Run("extended exp", func(t *testing.T) {
		forged := rewritePayload(t, parts[1], func(m map[string]any) { m["exp"] = t0.Add(24 * time.Hour).Unix() })

		clk.t = t0.Add(2 * time.Minute)
		defer func() { clk.t = t0 }()

		_, err := c.Decode(parts[0] + "." + forged + "." + parts[2])
		assert.ErrorIs(t, err, common.ErrInvalidSignature)
	})

	t.Run("changed id", func(t *testing.T) {
		forged := rewritePayload(t, parts[1], func(m map[string]any) { m["id"] = 2 })
		_, err := c.Decode(parts[0] + "." + forged + "." + parts[2])
		assert.ErrorIs(t, err, common.ErrInvalidSignature)
	})

	t.Run("added claim", func(t *testing.T) {
		forged := rewritePayload(t, parts[1], func(m map[string]any) { m["admin"] = true })
		_, err := c.Decode(parts[0] + "." + forged + "." + parts[2])
		assert.ErrorIs(t, err, common.ErrInvalidSignature)
	})
}

func TestCodec_Malformed(t *testing.T) {
	c, _ := newTestCodec(t, "secret")

	token, err := c.Encode(&Claims{UserID: 1}, time.Minute)
	require.NoError(t, err)
	parts := strings.Split(token, ".")

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "one segment", token: "abc"},
		{name: "two segments", token: parts[0] + "." + parts[1]},
		{name: "four segments", token: token + ".xyz"},
		{name: "bad base64 header", token: "!!!." + parts[1] + "." + parts[2]},
		{name: "bad base64 signature", token: parts[0] + "." + parts[1] + ".***"},
		{name: "payload not json", token: parts[0] + "." + base64.RawURLEncoding.EncodeToString([]byte("nope")) + "." + parts[2]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Decode(tt.token)
			assert.ErrorIs(t, err, common.ErrTokenMalformed)
		})
	}
}

func TestCodec_MissingExpIsRejected(t *testing.T) {
	c, _ := newTestCodec(t, "secret")

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{UserID: 1}).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = c.Decode(token)
	assert.ErrorIs(t, err, common.ErrTokenMalformed)
}

func TestCodec_RejectsOtherAlgorithms(t *testing.T) {
	c, _ := newTestCodec(t, "secret")

	claims := &Claims{UserID: 1, RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(t0.Add(time.Hour))}}

	hs384, err := jwt.NewWithClaims(jwt.SigningMethodHS384, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = c.Decode(hs384)
	assert.ErrorIs(t, err, common.ErrInvalidSignature)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = c.Decode(none)
	require.Error(t, err)
	assert.False(t, errors.Is(err, common.ErrTokenExpired))
}

func rewritePayload(t *testing.T, segment string, mutate func(map[string]any)) string {
	t.Helper()
	raw, err := base64.RawURLEncoding.DecodeString(segment)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	mutate(m)
	out, err := json.Marshal(m)
	require.NoError(t, err)
	return base64.RawURLEncoding.EncodeToString(out)
}

func itoa(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}
