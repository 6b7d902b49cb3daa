package models

// User est géré par le service d'identité — ici on ne fait que le lire
// pour résoudre buyer/seller sur les commandes.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}
