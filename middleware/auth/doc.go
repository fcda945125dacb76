// Package auth fornece os adapters HTTP (net/http) do pipeline de
// autenticação e mitigação de abuso.
//
// Visão geral (camadas):
//
//   - domain: sessão, registry, blocklist, codec de credencial, taxonomia de falhas
//   - application: emissão de sessão, gate ordenado de validação, reaper
//   - infra: registry/blocklist em memória, codec JWT (HS256)
//   - auth (este pacote): handler de emissão, middleware do gate, cookie,
//     extração de token e tradução da taxonomia para status/JSON
//
// Ordem no gateway para rotas protegidas:
//
//  1. ratelimit.Middleware (tier global por IP)
//  2. auth.Middleware (blocklist → credencial → sessão → fingerprint →
//     tier por-sessão → assinatura opcional)
//  3. handler de negócio (proxy), com o id da sessão no contexto
package auth
