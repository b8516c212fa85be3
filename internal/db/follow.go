package db

import "time"

// Follow 表示作者关注关系（follower 关注 followee）
// 复合唯一键避免重复关注，自关注在服务层拒绝；
// 取关即物理删除，保证重新关注不受唯一索引残留影响
type Follow struct {
	ID         uint `gorm:"primaryKey"`
	FollowerID uint `gorm:"index:idx_follow_pair,unique;not null"`
	FolloweeID uint `gorm:"index:idx_follow_pair,unique;index;not null"`
	CreatedAt  time.Time
}

// TopicFollow 表示用户对主题的关注
type TopicFollow struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"index:idx_topic_follow_pair,unique;not null"`
	TopicID   uint `gorm:"index:idx_topic_follow_pair,unique;index;not null"`
	CreatedAt time.Time
}
