package cache

import (
	"context"
	"time"
)

// Store es el tier rápido del caché. Se elige el backend según el contexto
// de despliegue (Redis compartido o memoria del proceso) al construir los
// servicios, nada de singletons globales.
type Store interface {
	// GetJSON lee una key, si existe deserializa el JSON en dest y devuelve true.
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	// SetJSON serializa value a JSON y lo guarda con TTL (0 = sin expiración).
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	// Delete borra la key; borrar una key inexistente no es error.
	Delete(ctx context.Context, key string) error
}
