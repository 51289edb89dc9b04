package internal

// 处理结果状态
type OutcomeStatus string

const (
	StatusChanged   OutcomeStatus = "changed"
	StatusUnchanged OutcomeStatus = "unchanged"
	StatusSkipped   OutcomeStatus = "skipped"
	StatusFailed    OutcomeStatus = "failed"
)

// 改名日志记录
type JournalRecord struct {
	ID        int64
	RunID     string
	Dir       string
	Original  string
	Final     string
	Status    OutcomeStatus
	Reason    string
	Format    string
	Error     string
	CreatedAt int64
}
