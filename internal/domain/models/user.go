package models

import "time"

// RoleAdmin - роль администратора магазина
const RoleAdmin = "admin"

// User представляет пользователя
type User struct {
	ID        int64
	Email     string
	PassHash  []byte
	CreatedAt time.Time
}
