package api

import (
	"encoding/json"

	"github.com/chen-001/tapirtwins-go/internal/errs"
	"github.com/chen-001/tapirtwins-go/internal/metrics"
)

// Response 服务端统一响应格式
// Code 为 0 表示成功,非 0 表示失败
type Response struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// decodeEnvelope 解析响应信封并将 data 解码到 out
// 解码失败归类为数据完整性错误,携带出错字段路径,绝不静默吞掉
func decodeEnvelope(body []byte, out interface{}) error {
	var env Response
	if err := json.Unmarshal(body, &env); err != nil {
		metrics.RecordDecodeFailure()
		return errs.NewDecoding(fieldPath(err), err)
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		metrics.RecordDecodeFailure()
		return errs.NewDecoding(fieldPath(err), err)
	}
	return nil
}

// fieldPath 从 json 解码错误中提取字段路径
func fieldPath(err error) string {
	if typeErr, ok := err.(*json.UnmarshalTypeError); ok {
		if typeErr.Struct != "" {
			return typeErr.Struct + "." + typeErr.Field
		}
		return typeErr.Field
	}
	return ""
}
