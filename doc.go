// Package authkit implements the token lifecycle and authorization core for
// a multi-tenant admin application: credential login and registration,
// access/refresh token issuance and verification, store-backed refresh
// session revocation, and role/permission based access decisions.
//
// Key behaviors:
//   - Tokens are signed HS256 JWTs carrying a kind claim ("access" or
//     "refresh"); the codec verifies the signature before trusting any claim.
//   - Refresh sessions are persisted as TokenRecord rows. The store, not the
//     token signature, is authoritative for refresh expiry and revocation.
//   - Refresh tokens are not rotated on use: the same refresh token stays
//     valid until its own expiry or an explicit revoke. This is a deliberate
//     posture choice, documented on Auther.Refresh.
//   - Users carry a closed role enumeration plus independent permission
//     flags. The Gate re-reads flags fresh per check so a flag change takes
//     effect before the access token expires.
package authkit
