package db

import "gorm.io/gorm"

// User 定义了用户模型
// IsActive 控制账号可用性，找回密码等流程只作用于活跃账号
type User struct {
	gorm.Model
	Username   string `gorm:"uniqueIndex;size:150;not null"`
	Email      string `gorm:"uniqueIndex;size:254;not null"`
	Password   string `gorm:"not null"`
	FirstName  string `gorm:"size:150"`
	LastName   string `gorm:"size:150"`
	MiddleName string `gorm:"size:150"`
	Avatar     string
	BirthYear  int
	IsActive   bool `gorm:"default:true"`
}

// FullName 拼接用户全名，空字段跳过
func (u User) FullName() string {
	name := u.FirstName
	if u.MiddleName != "" {
		if name != "" {
			name += " "
		}
		name += u.MiddleName
	}
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	return name
}
