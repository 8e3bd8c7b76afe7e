package model

// UserModel 用户数据模型
type UserModel struct {
	ID    int64  `gorm:"primaryKey;autoIncrement"`
	Name  string `gorm:"type:varchar(250);not null"`
	Email string `gorm:"type:varchar(254);not null;uniqueIndex:uq_users_email"`
}

// TableName 指定表名
func (UserModel) TableName() string {
	return "users"
}
