package model

import "time"

// Session is the authenticated-request value injected by the JWT
// middleware.  It holds exactly the identity fields handlers are
// allowed to see; claims never travel through the context as an
// untyped bag.
//
// Fields:
//  UserID    – authenticated user identifier (zero means absent).
//  Role      – role claim (CUSTOMER or ADMIN).
//  ExpiresAt – access token expiry.
type Session struct {
    UserID    uint64    // "sub" claim
    Role      string    // "role" claim
    ExpiresAt time.Time // "exp" claim
}
