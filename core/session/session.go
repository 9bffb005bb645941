// Package session signs and verifies the stateless party session token.
//
// A token is "<payload>.<signature>" where payload is the base64url encoded
// JSON of a Payload and signature is the base64url HMAC-SHA-256 of the
// encoded payload. Tokens carry no expiry: their lifetime is bounded by the
// cookie max-age, and a copied token stays valid until the secret is rotated.
package session

import (
	"crypto/subtle"
	"encoding/json"
	"strings"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
)

const CookieName = "party_session"

var (
	signingMethod = jwt.SigningMethodHS256

	errEmptyToken = errors.New("empty token")
	errMalformed  = errors.New("malformed token")
)

// Payload identifies the member a session belongs to.
type Payload struct {
	MemberID  string `json:"member_id"`
	Name      string `json:"name"`
	PartyCode string `json:"party_code"`
}

// Sign returns a signed token for p.
func Sign(p Payload, secret []byte) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", errors.Wrap(err, "marshalling session payload")
	}
	encoded := jwt.EncodeSegment(data)
	sig, err := signingMethod.Sign(encoded, secret)
	if err != nil {
		return "", errors.Wrap(err, "signing session payload")
	}
	return encoded + "." + sig, nil
}

// Verify returns the payload of token if its signature matches secret.
// Any malformed token is reported as invalid (ok == false).
func Verify(token string, secret []byte) (p Payload, ok bool) {
	p, err := parse(token, secret)
	if err != nil {
		return Payload{}, false
	}
	return p, true
}

func parse(token string, secret []byte) (Payload, error) {
	if token == "" {
		return Payload{}, errEmptyToken
	}
	i := strings.LastIndex(token, ".")
	if i <= 0 || i == len(token)-1 {
		return Payload{}, errMalformed
	}
	encoded, sig := token[:i], token[i+1:]

	// compare the encoded signatures: decoding first would accept
	// non-canonical base64 variants of the same bytes
	want, err := signingMethod.Sign(encoded, secret)
	if err != nil {
		return Payload{}, err
	}
	if subtle.ConstantTimeCompare([]byte(want), []byte(sig)) != 1 {
		return Payload{}, jwt.ErrSignatureInvalid
	}

	data, err := jwt.DecodeSegment(encoded)
	if err != nil {
		return Payload{}, err
	}
	var p Payload
	if err = json.Unmarshal(data, &p); err != nil {
		return Payload{}, err
	}
	return p, nil
}
