// Package application contém os casos de uso do pipeline de autenticação:
// emissão de sessão (Issuer), gate ordenado de validação (Gate) e a varredura
// periódica de sessões vencidas (Reaper).
//
// Ele depende dos pacotes domain (auth e ratelimit) e não conhece net/http;
// a extração de headers/cookies e a tradução para status ficam no adapter.
package application
