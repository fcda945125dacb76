package application

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Signature calcula o HMAC-SHA256 (hex minúsculo) da concatenação
// timestamp || path || corpo || sessionID com o segredo compartilhado.
//
// A fórmula precisa bater byte a byte com a dos clientes que assinam.
func Signature(secret []byte, timestamp, path string, body []byte, sessionID string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(timestamp))
	mac.Write([]byte(path))
	mac.Write(body)
	mac.Write([]byte(sessionID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature compara em tempo constante o valor recebido com o esperado.
func VerifySignature(secret []byte, timestamp, path string, body []byte, sessionID, provided string) bool {
	want := Signature(secret, timestamp, path, body, sessionID)
	return hmac.Equal([]byte(want), []byte(provided))
}
