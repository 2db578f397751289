package utils_test

import (
    "testing"
    "time"

    "github.com/golang-jwt/jwt/v5"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/bus-trip-reservation/internal/utils"
)

func TestNewAccessToken(t *testing.T) {
    access, err := utils.NewAccessToken("secret", 99, "CUSTOMER", 30)
    require.NoError(t, err)
    require.NotEmpty(t, access.Token)
    assert.WithinDuration(t, time.Now().UTC().Add(30*time.Minute), access.Exp, 5*time.Second)

    tok, err := jwt.Parse(access.Token, func(t *jwt.Token) (interface{}, error) {
        return []byte("secret"), nil
    })
    require.NoError(t, err)
    require.True(t, tok.Valid)

    claims, ok := tok.Claims.(jwt.MapClaims)
    require.True(t, ok)
    assert.Equal(t, float64(99), claims["sub"])
    assert.Equal(t, "CUSTOMER", claims["role"])
}

func TestNewAccessTokenRejectedWithWrongSecret(t *testing.T) {
    access, err := utils.NewAccessToken("secret", 1, "ADMIN", 5)
    require.NoError(t, err)

    _, err = jwt.Parse(access.Token, func(t *jwt.Token) (interface{}, error) {
        return []byte("other"), nil
    })
    assert.Error(t, err)
}

func TestNewRefreshToken(t *testing.T) {
    a, err := utils.NewRefreshToken(7)
    require.NoError(t, err)
    b, err := utils.NewRefreshToken(7)
    require.NoError(t, err)

    assert.Len(t, a.Raw, 96) // 48 random bytes hex-encoded
    assert.NotEqual(t, a.Raw, b.Raw)
    assert.WithinDuration(t, time.Now().UTC().Add(7*24*time.Hour), a.Exp, 5*time.Second)
}

func TestHashRefreshRaw(t *testing.T) {
    h1 := utils.HashRefreshRaw("token-a")
    h2 := utils.HashRefreshRaw("token-a")
    h3 := utils.HashRefreshRaw("token-b")

    assert.Equal(t, h1, h2)
    assert.NotEqual(t, h1, h3)
    assert.Len(t, h1, 64) // SHA-256 hex
    assert.NotContains(t, h1, "token-a")
}

func TestPasswordHashing(t *testing.T) {
    hash, err := utils.HashPassword("s3cret", 4)
    require.NoError(t, err)
    assert.True(t, utils.VerifyPassword(hash, "s3cret"))
    assert.False(t, utils.VerifyPassword(hash, "wrong"))
}
