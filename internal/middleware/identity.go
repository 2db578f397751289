package middleware

// identity.go holds helpers shared by the rate limiter and cache
// middleware.  They need a stable per-user identifier for key building
// but must also work on public routes where nobody is signed in.

import (
    "strconv"

    "github.com/labstack/echo/v4"
)

// userID returns the authenticated user's identifier as a string, or
// "guest" when the request carries no session.
func userID(c echo.Context) string {
    if sess, ok := CurrentSession(c); ok {
        return strconv.FormatUint(sess.UserID, 10)
    }
    return "guest"
}
