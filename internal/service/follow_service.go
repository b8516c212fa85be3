package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/inkstream/internal/db"
)

var (
	// ErrSelfFollow 在关注/取关自己时返回
	ErrSelfFollow = errors.New("cannot follow yourself")
	// ErrNotFollowing 在取关但关注关系不存在时返回
	ErrNotFollowing = errors.New("not following")
)

// FollowService 维护作者与主题的关注关系。
// 重复关注按成功处理（非错误），取关缺失的关系按未找到处理。
type FollowService struct {
	db *gorm.DB
}

// NewFollowService 构造 FollowService
func NewFollowService(gdb *gorm.DB) *FollowService {
	return &FollowService{db: gdb}
}

// FollowAuthor 关注作者，返回是否新建（false 表示早已关注，同样视为成功）
func (s *FollowService) FollowAuthor(followerID, followeeID uint) (bool, error) {
	if followerID == followeeID {
		return false, ErrSelfFollow
	}
	if err := s.requireActiveUser(followeeID); err != nil {
		return false, err
	}

	var existing db.Follow
	err := s.db.Where("follower_id = ? AND followee_id = ?", followerID, followeeID).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("check follow: %w", err)
	}

	if err := s.db.Create(&db.Follow{FollowerID: followerID, FolloweeID: followeeID}).Error; err != nil {
		return false, fmt.Errorf("create follow: %w", err)
	}
	return true, nil
}

// UnfollowAuthor 取关作者，关系不存在时报未找到
func (s *FollowService) UnfollowAuthor(followerID, followeeID uint) error {
	if followerID == followeeID {
		return ErrSelfFollow
	}
	if err := s.requireActiveUser(followeeID); err != nil {
		return err
	}

	res := s.db.Where("follower_id = ? AND followee_id = ?", followerID, followeeID).Delete(&db.Follow{})
	if res.Error != nil {
		return fmt.Errorf("delete follow: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFollowing
	}
	return nil
}

// Followers 返回关注了该用户的人
func (s *FollowService) Followers(userID uint) ([]db.User, error) {
	var users []db.User
	if err := s.db.Model(&db.User{}).
		Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.followee_id = ?", userID).
		Order("follows.created_at DESC").
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list followers: %w", err)
	}
	return users, nil
}

// Following 返回该用户关注的人
func (s *FollowService) Following(userID uint) ([]db.User, error) {
	var users []db.User
	if err := s.db.Model(&db.User{}).
		Joins("JOIN follows ON follows.followee_id = users.id").
		Where("follows.follower_id = ?", userID).
		Order("follows.created_at DESC").
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list following: %w", err)
	}
	return users, nil
}

// FollowTopic 关注主题，幂等语义与作者关注一致
func (s *FollowService) FollowTopic(userID, topicID uint) (bool, error) {
	if err := s.requireTopic(topicID); err != nil {
		return false, err
	}

	var existing db.TopicFollow
	err := s.db.Where("user_id = ? AND topic_id = ?", userID, topicID).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("check topic follow: %w", err)
	}

	if err := s.db.Create(&db.TopicFollow{UserID: userID, TopicID: topicID}).Error; err != nil {
		return false, fmt.Errorf("create topic follow: %w", err)
	}
	return true, nil
}

// UnfollowTopic 取关主题
func (s *FollowService) UnfollowTopic(userID, topicID uint) error {
	if err := s.requireTopic(topicID); err != nil {
		return err
	}

	res := s.db.Where("user_id = ? AND topic_id = ?", userID, topicID).Delete(&db.TopicFollow{})
	if res.Error != nil {
		return fmt.Errorf("delete topic follow: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFollowing
	}
	return nil
}

func (s *FollowService) requireActiveUser(userID uint) error {
	var count int64
	if err := s.db.Model(&db.User{}).Where("id = ? AND is_active = ?", userID, true).Count(&count).Error; err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	if count == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *FollowService) requireTopic(topicID uint) error {
	var count int64
	if err := s.db.Model(&db.Topic{}).Where("id = ?", topicID).Count(&count).Error; err != nil {
		return fmt.Errorf("check topic: %w", err)
	}
	if count == 0 {
		return ErrTopicNotFound
	}
	return nil
}
