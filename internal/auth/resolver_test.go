package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chen-001/tapirtwins-go/internal/model"
)

func sharedTask() *model.Task {
	return &model.Task{ID: "task-001", Title: "洗碗", RequiredImages: 1, SpaceID: "space-001"}
}

func spaceWith(members ...model.SpaceMember) *model.Space {
	return &model.Space{ID: "space-001", Name: "梦境小组", Members: members}
}

// TestResolveSubmitUnassigned 未指定提交人时任何成员均可提交
func TestResolveSubmitUnassigned(t *testing.T) {
	task := sharedTask()
	space := spaceWith(model.SpaceMember{UserID: "user-a", Role: model.RoleSubmitter})

	caps := Resolve("user-a", task, space)
	assert.Equal(t, CapabilityGranted, caps.Submit)
}

// TestResolveSubmitAssigned 指定了提交人时仅该用户可提交
func TestResolveSubmitAssigned(t *testing.T) {
	task := sharedTask()
	task.AssignedSubmitterID = "user-a"
	space := spaceWith(
		model.SpaceMember{UserID: "user-a", Role: model.RoleSubmitter},
		model.SpaceMember{UserID: "user-b", Role: model.RoleSubmitter},
	)

	assert.Equal(t, CapabilityGranted, Resolve("user-a", task, space).Submit)
	assert.Equal(t, CapabilityDenied, Resolve("user-b", task, space).Submit)
}

// TestResolveApproveAssignedList 指定了审批人列表时列表优先于空间角色
func TestResolveApproveAssignedList(t *testing.T) {
	task := sharedTask()
	task.AssignedApproverIDs = []string{"user-a"}

	// user-b 是空间 admin,但不在指定列表中,不可审批
	space := spaceWith(
		model.SpaceMember{UserID: "user-a", Role: model.RoleSubmitter},
		model.SpaceMember{UserID: "user-b", Role: model.RoleAdmin},
	)

	assert.Equal(t, CapabilityGranted, Resolve("user-a", task, space).Approve)
	assert.Equal(t, CapabilityDenied, Resolve("user-b", task, space).Approve)

	// 指定列表的判定不依赖空间成员,space 为 nil 也是确定结果
	assert.Equal(t, CapabilityGranted, Resolve("user-a", task, nil).Approve)
}

// TestResolveApproveByRole 未指定审批人时回退到空间角色
func TestResolveApproveByRole(t *testing.T) {
	task := sharedTask()
	space := spaceWith(
		model.SpaceMember{UserID: "user-a", Role: model.RoleSubmitter},
		model.SpaceMember{UserID: "user-b", Role: model.RoleApprover},
		model.SpaceMember{UserID: "user-c", Role: model.RoleAdmin},
	)

	assert.Equal(t, CapabilityDenied, Resolve("user-a", task, space).Approve)
	assert.Equal(t, CapabilityGranted, Resolve("user-b", task, space).Approve)
	assert.Equal(t, CapabilityGranted, Resolve("user-c", task, space).Approve)

	// 非成员不可审批
	assert.Equal(t, CapabilityDenied, Resolve("user-z", task, space).Approve)
}

// TestResolveApproveIndeterminate 空间成员未加载时审批能力无法判定
// 此时不应把"还不知道"当成"没有权限"
func TestResolveApproveIndeterminate(t *testing.T) {
	task := sharedTask()
	caps := Resolve("user-a", task, nil)
	assert.Equal(t, CapabilityIndeterminate, caps.Approve)
	assert.False(t, caps.Approve.Granted())
}

// TestResolvePersonalTask 个人任务没有空间,审批是确定的拒绝
func TestResolvePersonalTask(t *testing.T) {
	task := &model.Task{ID: "task-001", Title: "记梦", RequiredImages: 1}
	caps := Resolve("user-a", task, nil)
	assert.Equal(t, CapabilityGranted, caps.Submit)
	assert.Equal(t, CapabilityDenied, caps.Approve)
}
