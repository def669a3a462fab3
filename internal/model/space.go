package model

import "time"

// Role 空间内的成员角色
// admin 在审批动作上覆盖 approver 的能力,反之不成立
type Role string

const (
	RoleSubmitter Role = "submitter"
	RoleApprover  Role = "approver"
	RoleAdmin     Role = "admin"
)

// CanApprove 判断该角色是否具备审批能力
func (r Role) CanApprove() bool {
	return r == RoleApprover || r == RoleAdmin
}

// SpaceMember 空间成员,每个用户在一个空间内只有一个角色
type SpaceMember struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// Space 共享空间,包含成员、梦境与任务
type Space struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	IsDefault bool          `json:"is_default,omitempty"`
	Members   []SpaceMember `json:"members"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Member 查找指定用户的成员信息,不存在时返回 nil
func (s *Space) Member(userID string) *SpaceMember {
	for i := range s.Members {
		if s.Members[i].UserID == userID {
			return &s.Members[i]
		}
	}
	return nil
}
