package models

import "time"

// BaseModel holds the serial key and creation time shared by the request log tables
type BaseModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `gorm:"not null;index"`
}
