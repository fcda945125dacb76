// Package infra contém as implementações concretas dos contratos do pacote
// domain: registry de sessões em memória, blocklist de IPs e o codec JWT das
// credenciais.
package infra
