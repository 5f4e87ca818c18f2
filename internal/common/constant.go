// Package common contains shared constants, sentinel errors and small helpers
// used across the client and the gateway server.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// gateway access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// SaltLength is the number of random bytes in every credential salt.
const SaltLength = 16
