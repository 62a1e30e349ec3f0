// Package google verifies Google issued ID tokens against Google's
// published JWKS and maps their claims for the authentication flow.
//
// Use this package as the IdentityVerifier for signin.NewAuthenticator
// to accept Google Sign-In assertions.
package google
