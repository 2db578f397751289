package middleware // middleware contains reusable HTTP middleware for the API

import (
    "net/http" // HTTP status codes for responses
    "strings"  // prefix checking and trimming on the Authorization header
    "time"     // building the typed session expiry

    "github.com/golang-jwt/jwt/v5" // JWT library for parsing and validating tokens
    "github.com/labstack/echo/v4"  // Echo framework used for defining middleware

    "github.com/iliyamo/bus-trip-reservation/internal/model"
)

// sessionKey is the context key under which JWTAuth stores the typed
// session for the authenticated request.
const sessionKey = "session"

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and stores a typed model.Session in the request context.  The provided
// secret must match the one used when issuing tokens.  Handlers on
// protected routes read the session via CurrentSession; the raw "user_id"
// and "role" keys are also set for middleware that only needs those.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            raw := strings.TrimPrefix(auth, "Bearer ")

            // Parse with HS256 only; any other signing method is rejected.
            tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
                if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
                    return nil, echo.ErrUnauthorized
                }
                return []byte(secret), nil
            })
            if err != nil || !tok.Valid {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }

            claims, ok := tok.Claims.(jwt.MapClaims)
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
            }

            sess, ok := sessionFromClaims(claims)
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
            }

            c.Set(sessionKey, sess)
            c.Set("user_id", sess.UserID)
            c.Set("role", sess.Role)
            return next(c)
        }
    }
}

// JWTAuthOptional behaves like JWTAuth when a valid Bearer token is
// present but never rejects the request.  It suits endpoints like
// logout that work with either an access token or a body credential.
func JWTAuthOptional(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return next(c)
            }
            raw := strings.TrimPrefix(auth, "Bearer ")
            tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
                if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
                    return nil, echo.ErrUnauthorized
                }
                return []byte(secret), nil
            })
            if err != nil || !tok.Valid {
                return next(c)
            }
            if claims, ok := tok.Claims.(jwt.MapClaims); ok {
                if sess, ok := sessionFromClaims(claims); ok {
                    c.Set(sessionKey, sess)
                    c.Set("user_id", sess.UserID)
                    c.Set("role", sess.Role)
                }
            }
            return next(c)
        }
    }
}

// CurrentSession returns the session stored by JWTAuth and false when
// the request carries no authenticated session.
func CurrentSession(c echo.Context) (model.Session, bool) {
    sess, ok := c.Get(sessionKey).(model.Session)
    return sess, ok
}

// sessionFromClaims converts raw JWT claims into a typed session.  The
// sub claim is serialized as a JSON number so it arrives as float64.
func sessionFromClaims(claims jwt.MapClaims) (model.Session, bool) {
    sub, ok := claims["sub"].(float64)
    if !ok || sub <= 0 {
        return model.Session{}, false
    }
    role, ok := claims["role"].(string)
    if !ok || role == "" {
        return model.Session{}, false
    }
    sess := model.Session{UserID: uint64(sub), Role: role}
    if exp, ok := claims["exp"].(float64); ok {
        sess.ExpiresAt = time.Unix(int64(exp), 0).UTC()
    }
    return sess, true
}
