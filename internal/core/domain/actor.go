package domain

type Role string

const (
	RolePlayer     Role = "player"
	RoleGameMaster Role = "gamemaster"
)

// Actor is the authenticated identity performing an operation. How it is
// established (tokens, sessions) is the transport layer's concern.
type Actor struct {
	ID   string
	Role Role
}
