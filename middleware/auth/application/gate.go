package application

import (
	"sentinela-gateway/middleware/auth/domain"
	ratedomain "sentinela-gateway/middleware/ratelimit/domain"
)

// Request é o recorte da requisição que o gate enxerga, já extraído pelo
// adapter HTTP (token do header/cookie, corpo cru quando há assinatura).
type Request struct {
	ClientIP  string
	Token     string
	Path      string
	Body      []byte
	Timestamp string
	Signature string
}

// Gate é o pipeline ordenado aplicado a toda requisição protegida. Cada
// estágio pode encerrar com um resultado terminal; nenhum estágio tenta de
// novo sozinho.
//
// O tier global (por IP) roda antes, como middleware próprio na cadeia HTTP;
// os estágios daqui começam na consulta à blocklist.
type Gate struct {
	Blocklist   domain.Blocklist
	Registry    domain.Registry
	Tokens      domain.TokenCodec
	SessionTier ratedomain.Store

	// SignatureSecret assina o header opcional X-Request-Signature.
	SignatureSecret []byte
}

// Admit percorre os estágios na ordem fixa e retorna o id da sessão admitida.
func (g Gate) Admit(req Request) (string, error) {
	if g.Blocklist.Contains(req.ClientIP) {
		return "", domain.E(domain.KindForbidden)
	}

	if req.Token == "" {
		return "", domain.E(domain.KindUnauthenticated)
	}

	sid, err := g.Tokens.Verify(req.Token)
	if err != nil {
		return "", domain.E(domain.KindInvalidToken)
	}

	sess, ok := g.Registry.Lookup(sid)
	if !ok {
		// cobre sessões ceifadas e as que nunca existiram,
		// independente da expiração do próprio token
		return "", domain.E(domain.KindInvalidSession)
	}

	// fingerprint: o IP precisa bater com o registrado na emissão.
	// UserAgent é registrado mas não comparado.
	if sess.ClientIP != req.ClientIP {
		g.Blocklist.Add(req.ClientIP)
		return "", domain.E(domain.KindSecurityViolation)
	}

	if g.SessionTier != nil {
		if dec := g.SessionTier.Consume(ratedomain.Key(sid)); !dec.Allowed {
			return "", domain.RateLimited(dec.RetryAfter)
		}
	}

	// assinatura é opcional por requisição: header ausente pula o estágio
	if req.Signature != "" {
		if !VerifySignature(g.SignatureSecret, req.Timestamp, req.Path, req.Body, sid, req.Signature) {
			return "", domain.E(domain.KindInvalidSignature)
		}
	}

	return sid, nil
}
