package logging

import (
	"bytes"
	"context"
	"log"
	"strings"
	"testing"
)

func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	var buf bytes.Buffer
	old := log.Writer()
	log.SetOutput(&buf)
	defer log.SetOutput(old)
	fn()
	return buf.String()
}

// TestParseLevel 测试日志级别解析
func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Level
	}{
		{name: "debug", input: "debug", want: DebugLevel},
		{name: "大小写不敏感", input: "WARN", want: WarnLevel},
		{name: "warning别名", input: "warning", want: WarnLevel},
		{name: "error", input: "error", want: ErrorLevel},
		{name: "未识别回退到info", input: "verbose", want: InfoLevel},
		{name: "空串回退到info", input: "", want: InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// TestStdLogger_LevelFilter 低于阈值的日志不应输出
func TestStdLogger_LevelFilter(t *testing.T) {
	ctx := context.Background()
	logger := NewStdLoggerAt("[test]", WarnLevel)

	out := captureOutput(t, func() {
		logger.Debug(ctx, "debug line")
		logger.Info(ctx, "info line")
		logger.Warn(ctx, "warn line")
		logger.Error(ctx, "error line")
	})

	if strings.Contains(out, "debug line") || strings.Contains(out, "info line") {
		t.Errorf("output should not contain filtered levels: %q", out)
	}
	if !strings.Contains(out, "warn line") || !strings.Contains(out, "error line") {
		t.Errorf("output missing expected lines: %q", out)
	}
}

// TestStdLogger_WithFields 预绑定字段应出现在每条日志中
func TestStdLogger_WithFields(t *testing.T) {
	ctx := context.Background()
	logger := NewStdLogger("[test]").WithFields(String("component", "ingest"))

	out := captureOutput(t, func() {
		logger.Info(ctx, "rows accepted", Int("count", 2))
	})

	if !strings.Contains(out, "component=ingest") {
		t.Errorf("output missing bound field: %q", out)
	}
	if !strings.Contains(out, "count=2") {
		t.Errorf("output missing call field: %q", out)
	}
}
