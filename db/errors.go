// db/errors.go
package db

import "errors"

// 错误分类：controller 层按这组哨兵映射 HTTP 状态码。
// 包内统一用 fmt.Errorf("...: %w", Err...) 带上原因。
var (
	// ErrNotFound — unit / assignment / schedule / project 不存在。
	ErrNotFound = errors.New("not found")
	// ErrValidation — 入参缺失或非法（类型、日期、数量）。
	ErrValidation = errors.New("validation failed")
	// ErrPreconditionFailed — 实体当前状态不满足操作前置条件。
	ErrPreconditionFailed = errors.New("precondition failed")
	// ErrInvalidTransition — 维保状态机不允许的转移。
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrConcurrencyConflict — 并发竞争中输掉了对 unit 的独占。
	ErrConcurrencyConflict = errors.New("concurrency conflict")
)
