package passwordreset

import "time"

type Token struct {
	ID        int64     `gorm:"primaryKey"`
	UserID    int64     `gorm:"column:user_id;not null;index"`
	Email     string    `gorm:"column:email;not null"`
	Token     string    `gorm:"column:token;uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null"`
	Used      bool      `gorm:"column:used;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Token) TableName() string { return "password_reset_tokens" }

type RequestLog struct {
	ID          int64     `gorm:"primaryKey"`
	Email       string    `gorm:"column:email;not null;index"`
	RequestedAt time.Time `gorm:"column:requested_at;not null;index"`
	IPAddress   string    `gorm:"column:ip_address"`
}

func (RequestLog) TableName() string { return "password_reset_requests" }
