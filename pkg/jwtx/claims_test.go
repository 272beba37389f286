package jwtx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/backoffice/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func validClaims(now time.Time) jwtx.Claims {
	c := jwtx.NewClaims(jwtx.TokenTypeAccess, "backoffice", 7, 1, time.Hour, now)
	dept := int64(3)
	c.DeptID = &dept
	c.Authorities = []string{"ROLE_ADMIN"}
	c.DataScopes = []jwtx.ScopeClaim{{RoleCode: "ADMIN", DataScope: 5, CustomDeptIDs: []int64{1, 2}}}
	return c
}

func TestClaimsValidate(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name   string
		mutate func(c *jwtx.Claims)
		ok     bool
	}{
		{"valid", func(c *jwtx.Claims) {}, true},
		{"unknown token type", func(c *jwtx.Claims) { c.TokenType = "id" }, false},
		{"missing user", func(c *jwtx.Claims) { c.UserID = 0 }, false},
		{"missing version", func(c *jwtx.Claims) { c.SecurityVersion = 0 }, false},
		{"missing exp", func(c *jwtx.Claims) { c.ExpiresAt = nil }, false},
		{"missing jti", func(c *jwtx.Claims) { c.ID = "" }, false},
		{"unknown scope value", func(c *jwtx.Claims) { c.DataScopes[0].DataScope = 9 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validClaims(now)
			tt.mutate(&c)
			err := c.Validate()
			if tt.ok {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, jwtx.ErrInvalidClaim)
			}
		})
	}
}

func TestNewClaimsUniqueJTI(t *testing.T) {
	now := time.Now()
	a := jwtx.NewClaims(jwtx.TokenTypeAccess, "iss", 1, 1, time.Minute, now)
	b := jwtx.NewClaims(jwtx.TokenTypeAccess, "iss", 1, 1, time.Minute, now)
	require.NotEqual(t, a.ID, b.ID)
}

func TestValidateIssuer(t *testing.T) {
	c := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{Issuer: "backoffice"}}

	require.NoError(t, c.ValidateIssuer("backoffice"))
	require.NoError(t, c.ValidateIssuer(""))
	require.ErrorIs(t, c.ValidateIssuer("other"), jwtx.ErrIssuer)
}

func TestRemaining(t *testing.T) {
	now := time.Now()
	c := jwtx.NewClaims(jwtx.TokenTypeRefresh, "iss", 1, 1, time.Hour, now)

	require.InDelta(t, time.Hour.Seconds(), c.Remaining(now).Seconds(), 1)
	require.Zero(t, c.Remaining(now.Add(2*time.Hour)))
	require.Zero(t, (&jwtx.Claims{}).Remaining(now))
}

func TestHS256RoundTrip(t *testing.T) {
	signer, err := jwtx.NewHS256Signer(testSecret)
	require.NoError(t, err)
	require.Equal(t, "HS256", signer.Alg())

	verifier, err := jwtx.NewHS256Verifier(testSecret, jwtx.VerifyOptions{Issuer: "backoffice"})
	require.NoError(t, err)

	in := validClaims(time.Now())
	token, err := signer.Sign(in)
	require.NoError(t, err)
	require.Len(t, strings.Split(token, "."), 3)

	out, err := verifier.Verify(token)
	require.NoError(t, err)
	require.Equal(t, in.UserID, out.UserID)
	require.Equal(t, *in.DeptID, *out.DeptID)
	require.Equal(t, in.DataScopes, out.DataScopes)
	require.Equal(t, in.Authorities, out.Authorities)
	require.Equal(t, in.ID, out.ID)
}

func TestHS256Verify_Failures(t *testing.T) {
	signer, err := jwtx.NewHS256Signer(testSecret)
	require.NoError(t, err)
	verifier, err := jwtx.NewHS256Verifier(testSecret, jwtx.VerifyOptions{Issuer: "backoffice"})
	require.NoError(t, err)

	t.Run("garbage", func(t *testing.T) {
		_, err := verifier.Verify("not.a.jwt")
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	})

	t.Run("tampered payload", func(t *testing.T) {
		token, err := signer.Sign(validClaims(time.Now()))
		require.NoError(t, err)

		other := validClaims(time.Now())
		other.UserID = 999
		forged, err := signer.Sign(other)
		require.NoError(t, err)

		parts := strings.Split(token, ".")
		forgedParts := strings.Split(forged, ".")
		_, err = verifier.Verify(parts[0] + "." + forgedParts[1] + "." + parts[2])
		require.ErrorIs(t, err, jwtx.ErrInvalidSig)
	})

	t.Run("wrong secret", func(t *testing.T) {
		otherSigner, err := jwtx.NewHS256Signer([]byte("ffffffffffffffffffffffffffffffff"))
		require.NoError(t, err)
		token, err := otherSigner.Sign(validClaims(time.Now()))
		require.NoError(t, err)

		_, err = verifier.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrInvalidSig)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := signer.Sign(validClaims(time.Now().Add(-2 * time.Hour)))
		require.NoError(t, err)

		_, err = verifier.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrExpired)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		c := validClaims(time.Now())
		c.Issuer = "someone-else"
		token, err := signer.Sign(c)
		require.NoError(t, err)

		_, err = verifier.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrIssuer)
	})

	t.Run("unsigned", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, validClaims(time.Now())).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = verifier.Verify(token)
		require.Error(t, err)
	})

	t.Run("missing custom claims", func(t *testing.T) {
		raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Issuer:    "backoffice",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}).SignedString(testSecret)
		require.NoError(t, err)

		_, err = verifier.Verify(raw)
		require.ErrorIs(t, err, jwtx.ErrInvalidClaim)
	})
}

func TestWeakSecret(t *testing.T) {
	_, err := jwtx.NewHS256Signer([]byte("change-me"))
	require.ErrorIs(t, err, jwtx.ErrWeakSecret)

	_, err = jwtx.NewHS256Verifier(nil, jwtx.VerifyOptions{})
	require.ErrorIs(t, err, jwtx.ErrWeakSecret)
}

func TestSignRejectsInvalidClaims(t *testing.T) {
	signer, err := jwtx.NewHS256Signer(testSecret)
	require.NoError(t, err)

	_, err = signer.Sign(jwtx.Claims{})
	require.ErrorIs(t, err, jwtx.ErrInvalidClaim)
}
