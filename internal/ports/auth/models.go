package auth

// Claims representa la información extraída del token.
// El core confía en estos ids; los permisos se validan afuera (gestor).
type Claims struct {
	UserID       string
	Nombre       string
	ComponenteID string
}
