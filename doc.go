// Package signin turns Google issued ID tokens into locally signed
// sessions bound to persisted user records.
//
// Authentication flow:
//   - An IdentityVerifier (see provider/google) checks the assertion
//     against the provider's key set and extracts verified claims.
//   - Auther reconciles the claims with the Users store: first sight of
//     a provider subject creates a record, repeat sights refresh the
//     mutable profile fields. Email and subject never change after
//     creation.
//   - TokenService mints an HS256 session JWT carrying the internal
//     user id and email. Sessions are stateless; sign out is client
//     side and expiry is the only server side invalidation.
//
// Profiles:
//   - Profiles exposes read, partial update, and deactivation for the
//     record a validated session references. Records are never deleted,
//     deactivation flips the active flag and hides the record from
//     lookups. An active-only partial unique index lets a new signup
//     reclaim a deactivated record's email.
//
// HTTP:
//   - RegisterRoutes mounts the JSON surface on a fiber router; the
//     sessionware middleware gates the protected routes and stores
//     validated claims in request locals.
package signin
