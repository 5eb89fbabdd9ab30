package auth

// Role es el conjunto de capacidades que la capa de borde ya validó.
// El motor las re-verifica junto con ownership (defensa en profundidad).
type Role string

const (
	RoleOwner Role = "OWNER"
	RoleVet   Role = "VET"
	RoleAdmin Role = "ADMIN"
)

// Claims representa la información extraída del token.
type Claims struct {
	UserID string
	Email  string
	Roles  []Role
}

// HasRole responde si el principal tiene un rol.
func (c Claims) HasRole(r Role) bool {
	for _, have := range c.Roles {
		if have == r {
			return true
		}
	}
	return false
}

// HasAnyRole responde si el principal tiene al menos uno de los roles.
func (c Claims) HasAnyRole(roles ...Role) bool {
	for _, r := range roles {
		if c.HasRole(r) {
			return true
		}
	}
	return false
}

// ParseRole normaliza un rol textual; devuelve "" si no es conocido.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleOwner, RoleVet, RoleAdmin:
		return Role(s)
	default:
		return ""
	}
}
