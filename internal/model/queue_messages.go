package model

// OnboardingCompletedMessage 引导完成事件，最后一步落库后发布。
// 进度写入本身是同步的，事件只承载引导之外的副作用（激活、统计）。
type OnboardingCompletedMessage struct {
	MessageID   string `json:"message_id"`
	UserID      int64  `json:"user_id"`
	FinalStep   string `json:"final_step"`
	CompletedAt string `json:"completed_at"` // RFC3339
}

// OnboardingReminderMessage 引导停滞提醒消息（延迟投递）
type OnboardingReminderMessage struct {
	MessageID    string  `json:"message_id"`
	BatchID      string  `json:"batch_id"`
	ScheduledAt  string  `json:"scheduled_at"`
	UserIDs      []int64 `json:"user_ids"`
	DelaySeconds int     `json:"delay_seconds"`
}
