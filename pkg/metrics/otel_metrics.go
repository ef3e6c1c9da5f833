package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetrics OpenTelemetry 指标集合
type OTelMetrics struct {
	// 引导流程指标
	OnboardingStepCompletedTotal metric.Int64Counter
	OnboardingCompletedTotal     metric.Int64Counter
	OnboardingResumeTotal        metric.Int64Counter
	OnboardingReminderTotal      metric.Int64Counter

	// 会话指标
	SessionCreatedTotal metric.Int64Counter
}

var (
	// 全局指标实例
	metrics *OTelMetrics
	// meter 用于创建指标
	meter = otel.Meter("seasons")
)

// InitMetrics 初始化 OpenTelemetry 指标
func InitMetrics() error {
	var err error

	metrics = &OTelMetrics{}

	metrics.OnboardingStepCompletedTotal, err = meter.Int64Counter(
		"onboarding_step_completed_total",
		metric.WithDescription("Total number of onboarding steps completed"),
		metric.WithUnit("{step}"),
	)
	if err != nil {
		return err
	}

	metrics.OnboardingCompletedTotal, err = meter.Int64Counter(
		"onboarding_completed_total",
		metric.WithDescription("Total number of users who finished onboarding"),
		metric.WithUnit("{user}"),
	)
	if err != nil {
		return err
	}

	metrics.OnboardingResumeTotal, err = meter.Int64Counter(
		"onboarding_resume_total",
		metric.WithDescription("Total number of resume resolutions by outcome"),
		metric.WithUnit("{resolution}"),
	)
	if err != nil {
		return err
	}

	metrics.OnboardingReminderTotal, err = meter.Int64Counter(
		"onboarding_reminder_total",
		metric.WithDescription("Total number of stalled onboarding reminders processed"),
		metric.WithUnit("{reminder}"),
	)
	if err != nil {
		return err
	}

	metrics.SessionCreatedTotal, err = meter.Int64Counter(
		"session_created_total",
		metric.WithDescription("Total number of device sessions created"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return err
	}

	return nil
}

// GetMetrics 获取全局指标实例
func GetMetrics() *OTelMetrics {
	return metrics
}

// RecordStepCompleted 记录步骤完成
func RecordStepCompleted(stepName string, completed bool) {
	m := GetMetrics()
	if m == nil {
		return
	}

	ctx := context.Background()
	m.OnboardingStepCompletedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("step", stepName),
	))
	if completed {
		m.OnboardingCompletedTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("final_step", stepName),
		))
	}
}

// RecordResume 记录恢复导航结果
func RecordResume(state string) {
	m := GetMetrics()
	if m == nil {
		return
	}

	m.OnboardingResumeTotal.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("state", state),
	))
}

// RecordReminderProcessed 记录停滞提醒处理结果
func RecordReminderProcessed(outcome string) {
	m := GetMetrics()
	if m == nil {
		return
	}

	m.OnboardingReminderTotal.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}

// RecordSessionCreated 记录会话创建
func RecordSessionCreated(isNewUser bool) {
	m := GetMetrics()
	if m == nil {
		return
	}

	m.SessionCreatedTotal.Add(context.Background(), 1, metric.WithAttributes(
		attribute.Bool("new_user", isNewUser),
	))
}
