package auth

// Role distingue lectores/autores de editores.
type Role string

const (
	RoleUser   Role = "user"
	RoleEditor Role = "editor"
)

// Claims representa la información extraída del token.
type Claims struct {
	UserID string
	Email  string
	Role   Role
}

func (c Claims) IsEditor() bool {
	return c.Role == RoleEditor
}
