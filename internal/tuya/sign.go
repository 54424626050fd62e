package tuya

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// signMethod is the value of the sign_method header on every request.
const signMethod = "HMAC-SHA256"

// signRequest computes the HMAC-SHA256 signature the vendor expects.
//
// The signed string is:
//
//	client_id [+ access_token] + t + nonce + stringToSign
//
// where stringToSign is:
//
//	method + "\n" + sha256hex(body) + "\n" + "" + "\n" + pathWithQuery
//
// accessToken is empty for token-endpoint requests. The result is
// uppercase hex, sent in the sign header.
func signRequest(clientID, secret, accessToken, t, nonce, method, pathWithQuery string, body []byte) string {
	bodyHash := sha256.Sum256(body)

	var sb strings.Builder
	sb.WriteString(clientID)
	sb.WriteString(accessToken)
	sb.WriteString(t)
	sb.WriteString(nonce)
	sb.WriteString(method)
	sb.WriteString("\n")
	sb.WriteString(hex.EncodeToString(bodyHash[:]))
	sb.WriteString("\n")
	sb.WriteString("\n")
	sb.WriteString(pathWithQuery)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(sb.String()))
	return strings.ToUpper(hex.EncodeToString(mac.Sum(nil)))
}
