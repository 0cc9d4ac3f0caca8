package model

import "time"

type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:250;not null"`
	Email     string    `json:"email" gorm:"size:250;uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"size:250;not null"`
	CreatedAt time.Time `json:"created_at"`
}
