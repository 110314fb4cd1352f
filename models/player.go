package models

import "time"

type PlayerRole string

const (
	RolePlayer PlayerRole = "player"
	RoleAdmin  PlayerRole = "admin"
)

// Player is a club member. Rating and the aggregate counters are mutated
// only through validated match outcomes.
type Player struct {
	ID           int        `json:"id" db:"id"`
	DisplayName  string     `json:"display_name" db:"display_name"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Role         PlayerRole `json:"role" db:"role"`
	Rating       float64    `json:"rating" db:"rating"`
	Wins         int        `json:"wins" db:"wins"`
	Losses       int        `json:"losses" db:"losses"`
	Refereed     int        `json:"refereed" db:"refereed"`
	// Streak is signed: positive counts consecutive wins, negative
	// consecutive losses.
	Streak    int       `json:"streak" db:"streak"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
