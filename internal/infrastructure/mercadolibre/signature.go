package mercadolibre

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"strings"
)

// SignatureHeaders are the request headers checked, in order, for a webhook
// signature
var SignatureHeaders = []string{
	"X-ML-Signature",
	"X-Meli-Signature",
	"X-Meli-Signature-V1",
}

// VerifySignature checks an inbound webhook signature against the shared
// secret. An empty secret disables verification and passes everything; a set
// secret with an empty header always fails. Three encodings are accepted,
// tried in order:
//
//  1. the literal secret itself (shared-token deployments);
//  2. "ts=<ts>,v1=<sig>" where sig is HMAC-SHA256 of "<ts>.<body>";
//  3. a bare HMAC-SHA256 of the body, optionally prefixed "v1=" or "sha256=".
//
// Digests may be hex or base64. Comparisons are constant-time.
func VerifySignature(header, secret string, rawBody []byte) bool {
	if secret == "" {
		return true
	}
	header = strings.TrimSpace(header)
	if header == "" {
		return false
	}

	if subtle.ConstantTimeEq(int32(len(header)), int32(len(secret))) == 1 &&
		subtle.ConstantTimeCompare([]byte(header), []byte(secret)) == 1 {
		return true
	}

	if ts, sig, ok := parseStructuredSignature(header); ok {
		signed := ts + "." + string(rawBody)
		if digestMatches(sig, hmacSHA256([]byte(secret), []byte(signed))) {
			return true
		}
	}

	sig := strings.TrimPrefix(strings.TrimPrefix(header, "sha256="), "v1=")
	return digestMatches(sig, hmacSHA256([]byte(secret), rawBody))
}

// parseStructuredSignature splits a "ts=<ts>,v1=<sig>" header into its parts
func parseStructuredSignature(header string) (ts, sig string, ok bool) {
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "ts":
			ts = value
		case "v1":
			sig = value
		}
	}
	return ts, sig, ts != "" && sig != ""
}

// digestMatches compares a hex- or base64-encoded signature against the
// expected MAC in constant time
func digestMatches(encoded string, mac []byte) bool {
	if decoded, err := hex.DecodeString(encoded); err == nil {
		if subtle.ConstantTimeEq(int32(len(decoded)), int32(len(mac))) == 1 &&
			subtle.ConstantTimeCompare(decoded, mac) == 1 {
			return true
		}
	}
	if decoded, err := base64.StdEncoding.DecodeString(encoded); err == nil {
		if subtle.ConstantTimeEq(int32(len(decoded)), int32(len(mac))) == 1 &&
			subtle.ConstantTimeCompare(decoded, mac) == 1 {
			return true
		}
	}
	return false
}

func hmacSHA256(key, message []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(message)
	return h.Sum(nil)
}
