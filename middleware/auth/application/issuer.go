package application

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"sentinela-gateway/middleware/auth/domain"
	ratedomain "sentinela-gateway/middleware/ratelimit/domain"
)

// Issuer emite sessões novas: confere o referrer, consome o tier auth do
// rate limit e registra a sessão com sua credencial assinada.
type Issuer struct {
	Registry domain.Registry
	Tokens   domain.TokenCodec

	// AuthTier é o limiter rígido por IP da emissão (proteção de brute force).
	AuthTier ratedomain.Consumer
	// SessionTier recebe a entrada da sessão recém-criada (Touch), que vive
	// junto com o registro até o reaper removê-los.
	SessionTier ratedomain.Store

	// AllowedOrigin precisa aparecer no referrer para a emissão prosseguir.
	AllowedOrigin string

	// Now permite travar o relógio em testes. nil usa time.Now.
	Now func() time.Time
}

type IssueRequest struct {
	Referrer  string
	ClientIP  string
	UserAgent string
}

// Issue valida e cria a sessão. O registro retornado é imutável.
func (i Issuer) Issue(req IssueRequest) (*domain.Session, error) {
	if i.AllowedOrigin == "" || !strings.Contains(req.Referrer, i.AllowedOrigin) {
		return nil, domain.E(domain.KindInvalidReferrer)
	}

	if i.AuthTier != nil {
		if dec := i.AuthTier.Consume(ratedomain.Key(req.ClientIP)); !dec.Allowed {
			return nil, domain.RateLimited(dec.RetryAfter)
		}
	}

	now := time.Now()
	if i.Now != nil {
		now = i.Now()
	}

	id := uuid.NewString()
	token, err := i.Tokens.Issue(id, now)
	if err != nil {
		return nil, err
	}

	sess := &domain.Session{
		ID:        id,
		Token:     token,
		CreatedAt: now,
		ClientIP:  req.ClientIP,
		UserAgent: req.UserAgent,
	}
	i.Registry.Insert(sess)

	if i.SessionTier != nil {
		i.SessionTier.Touch(ratedomain.Key(id))
	}

	return sess, nil
}
