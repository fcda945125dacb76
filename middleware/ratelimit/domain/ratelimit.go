package domain

// Camada de domínio do rate limit.
//
// Regras e contratos (interfaces/tipos) sem dependência de net/http.

import "time"

type Key string

// Decision é o resultado de uma tentativa de consumo.
//
// RetryAfter é o valor a ser retornado em Retry-After quando bloquear.
// Se 0, não há recomendação.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// Consumer decide, de forma atômica por chave, se uma operação pode acontecer
// agora. Nunca sinaliza por erro: bloqueio é um resultado, não uma exceção.
//
// Observação: a implementação pode ser janela fixa com bloqueio estendido,
// token-bucket, etc.
type Consumer interface {
	Consume(Key) Decision
}

// Store é um Consumer cujo ciclo de vida das entradas é controlável por fora.
//
// Touch garante que a entrada da chave exista sem consumir pontos
// (ex.: criar o limiter de uma sessão junto com a própria sessão).
// Remove descarta a entrada e todo o estado acumulado dela.
type Store interface {
	Consumer
	Touch(Key)
	Remove(Key)
}
