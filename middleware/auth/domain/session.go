package domain

import "time"

// Session é o registro criado na emissão da credencial. Imutável após a
// criação; destruído apenas pelo reaper quando a idade passa do TTL.
//
// UserAgent é registrado para auditoria; só o IP participa da verificação
// de fingerprint.
type Session struct {
	ID        string
	Token     string
	CreatedAt time.Time
	ClientIP  string
	UserAgent string
}

// Registry guarda as sessões ativas do processo.
//
// Insert/Delete podem correr com Lookup para a mesma chave; um Lookup enxerga
// o registro completo ou ausência limpa, nunca um registro pela metade.
type Registry interface {
	Insert(s *Session)
	Lookup(id string) (*Session, bool)
	Delete(id string)
	// Sweep remove os registros criados antes de cutoff e retorna os ids removidos.
	Sweep(cutoff time.Time) []string
}

// Blocklist é o conjunto de IPs banidos. Add é idempotente; não existe
// remoção enquanto o processo vive.
type Blocklist interface {
	Add(ip string)
	Contains(ip string) bool
}

// TokenCodec emite e verifica credenciais assinadas com expiração absoluta,
// verificáveis sem consultar o registry.
type TokenCodec interface {
	Issue(sessionID string, now time.Time) (string, error)
	Verify(token string) (sessionID string, err error)
}
