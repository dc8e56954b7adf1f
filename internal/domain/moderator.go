package domain

import "time"

// Moderator account statuses
const (
	ModeratorStatusActive   = "active"
	ModeratorStatusDisabled = "disabled"
)

// Moderator is a reviewer account. Role feeds the ActorIdentity the engine
// consumes; the engine itself never reads this table.
type Moderator struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Username    string    `gorm:"column:username;type:varchar(50);uniqueIndex" json:"username"`
	Email       string    `gorm:"column:email;type:varchar(255);uniqueIndex" json:"email"`
	Password    string    `gorm:"column:password;type:varchar(255)" json:"-"`
	DisplayName string    `gorm:"column:display_name;type:varchar(100)" json:"display_name"`
	Role        Role      `gorm:"column:role;type:varchar(20);default:'moderator'" json:"role"`
	Status      string    `gorm:"column:status;type:varchar(20);default:'active'" json:"status"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name
func (Moderator) TableName() string {
	return "moderators"
}

// CreateModeratorRequest registers a new reviewer account (admin only)
type CreateModeratorRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=50"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"display_name" binding:"required,max=100"`
	Role        Role   `json:"role" binding:"required"`
}

// UpdateModeratorRoleRequest changes a reviewer's role (admin only)
type UpdateModeratorRoleRequest struct {
	Role Role `json:"role" binding:"required"`
}
