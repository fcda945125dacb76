// Package domain define os tipos e contratos do pipeline de autenticação e
// mitigação de abuso: sessão, registry, blocklist, codec de credencial e a
// taxonomia fechada de falhas.
//
// Este pacote não depende de net/http nem de implementações concretas.
package domain
