package auth

import (
	"errors"

	"github.com/chen-001/tapirtwins-go/internal/model"
)

// ErrMembershipNotLoaded 空间成员尚未加载,能力无法判定
// 调用方应先拉取空间信息再重新判定,而不是默认拒绝或放行
var ErrMembershipNotLoaded = errors.New("space membership not loaded")

// Capability 能力判定结果
// 三态:空间成员未加载时返回 CapabilityIndeterminate,
// 避免启动阶段把"还不知道"当成"没有权限"
type Capability int

const (
	CapabilityDenied Capability = iota
	CapabilityGranted
	CapabilityIndeterminate
)

// Granted 判断能力是否已确认授予
func (c Capability) Granted() bool { return c == CapabilityGranted }

// Capabilities 用户对某个任务的提交与审批能力
type Capabilities struct {
	Submit  Capability
	Approve Capability
}

// Resolve 解析用户对任务的有效能力,纯函数、无副作用
//
// 提交: 任务指定了提交人时仅该用户可提交,否则任何成员均可。
// 审批: 任务指定了审批人列表时仅列表内用户可审批;未指定时
// 回退到空间角色(approver/admin),此时 space 为 nil 则判定为
// Indeterminate。
func Resolve(userID string, task *model.Task, space *model.Space) Capabilities {
	caps := Capabilities{}

	if task.AssignedSubmitterID == "" || task.AssignedSubmitterID == userID {
		caps.Submit = CapabilityGranted
	} else {
		caps.Submit = CapabilityDenied
	}

	if len(task.AssignedApproverIDs) > 0 {
		if task.IsAssignedApprover(userID) {
			caps.Approve = CapabilityGranted
		} else {
			caps.Approve = CapabilityDenied
		}
		return caps
	}

	// 个人任务没有可加载的空间,审批不适用,这里是确定的拒绝
	// 而不是成员未加载导致的误判
	if task.IsPersonal() {
		caps.Approve = CapabilityDenied
		return caps
	}

	if space == nil {
		caps.Approve = CapabilityIndeterminate
		return caps
	}

	member := space.Member(userID)
	if member != nil && member.Role.CanApprove() {
		caps.Approve = CapabilityGranted
	} else {
		caps.Approve = CapabilityDenied
	}
	return caps
}
