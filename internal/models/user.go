package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the local profile mirror of an identity provider account.
// ID is the provider subject; Email is unique and used for lookups.
type User struct {
	bun.BaseModel `bun:"table:users" bson:"-" json:"-"`

	ID          string    `bun:"id,pk" bson:"_id" json:"id"`
	Email       string    `bun:"email,notnull,unique" bson:"email" json:"email"`
	Name        string    `bun:"name" bson:"name" json:"name"`
	Role        string    `bun:"role,notnull" bson:"role" json:"role"`
	IsOnboarded bool      `bun:"is_onboarded,notnull" bson:"isOnboarded" json:"isOnboarded"`
	CreatedAt   time.Time `bun:"created_at,notnull" bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bun:"updated_at,notnull" bson:"updatedAt" json:"updatedAt"`
}
