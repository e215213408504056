// Package permission provides the permission catalog and per-user
// permission resolution (custom grants vs. role defaults).
package permission

import (
	"time"
)

// Permission is a catalog entry. The catalog is seeded at deployment time
// and rarely mutated at runtime.
type Permission struct {
	ID          int64     `db:"id" json:"id"`
	Key         string    `db:"key" json:"key"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description,omitempty"`
	Category    string    `db:"category" json:"category"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// Grant is an explicit per-user permission override. Only consulted when
// the user has custom permissions enabled; a missing row means not granted.
type Grant struct {
	UserID       int64     `db:"user_id" json:"userId"`
	PermissionID int64     `db:"permission_id" json:"permissionId"`
	Granted      bool      `db:"granted" json:"granted"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}
