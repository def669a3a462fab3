package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

// TestRecordAPIRequestStatusLabel 状态标签使用数字状态码
func TestRecordAPIRequestStatusLabel(t *testing.T) {
	before := testutil.ToFloat64(apiRequestsTotal.WithLabelValues("GET", "404"))
	RecordAPIRequest("GET", 404, 0.01)
	assert.Equal(t, before+1, testutil.ToFloat64(apiRequestsTotal.WithLabelValues("GET", "404")))

	// 文本形式的状态不出现
	assert.Zero(t, testutil.ToFloat64(apiRequestsTotal.WithLabelValues("GET", "Not Found")))
}

// TestRecordApprovalAction 审批动作按类型计数
func TestRecordApprovalAction(t *testing.T) {
	before := testutil.ToFloat64(approvalActionsTotal.WithLabelValues("approve"))
	RecordApprovalAction("approve")
	RecordApprovalAction("approve")
	assert.Equal(t, before+2, testutil.ToFloat64(approvalActionsTotal.WithLabelValues("approve")))
}

// TestReconcileCounters 对账回读与放弃计数
func TestReconcileCounters(t *testing.T) {
	passes := testutil.ToFloat64(reconcilePassesTotal)
	giveups := testutil.ToFloat64(reconcileGiveupsTotal)

	RecordReconcilePass()
	RecordReconcileGiveup()

	assert.Equal(t, passes+1, testutil.ToFloat64(reconcilePassesTotal))
	assert.Equal(t, giveups+1, testutil.ToFloat64(reconcileGiveupsTotal))
}
