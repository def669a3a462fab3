package model

// Dream 梦境日记条目
// 个人列表与默认空间列表可能包含同一条目,合并时按 (标题, 日期)
// 精确匹配去重;Date 为 "2006-01-02" 格式的日期字符串
type Dream struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content,omitempty"`
	Date    string `json:"date"`
	SpaceID string `json:"space_id,omitempty"`
	UserID  string `json:"user_id,omitempty"`
}
