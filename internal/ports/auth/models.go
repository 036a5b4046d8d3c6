package auth

// Claims representa la información extraída del token Solid-OIDC.
type Claims struct {
	// UserID es el WebID del usuario.
	UserID string
	Email  string

	// Token es el access token original; se reenvía al pod del usuario.
	Token string
}
