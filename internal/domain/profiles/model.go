package profiles

import (
	"context"
	"time"
)

// Role es el rol declarado en el perfil del pod.
// @Enum patient, doctor
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
)

func (r Role) Valid() bool {
	return r == RolePatient || r == RoleDoctor
}

// Profile se resuelve una vez por sesión y no cambia durante ella.
type Profile struct {
	WebID           string `json:"web_id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	StorageLocation string `json:"storage_location"`
	Role            Role   `json:"role"`
}

// Cache guarda perfiles resueltos por WebID.
type Cache interface {
	Get(ctx context.Context, webID string) (Profile, bool, error)
	Set(ctx context.Context, p Profile, ttl time.Duration) error
	Delete(ctx context.Context, webID string) error
}

type ctxKey struct{}

func WithProfile(ctx context.Context, p Profile) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// FromContext devuelve el perfil que dejó RequireRole en el request.
func FromContext(ctx context.Context) (Profile, bool) {
	p, ok := ctx.Value(ctxKey{}).(Profile)
	return p, ok
}
