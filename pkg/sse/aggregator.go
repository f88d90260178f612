// Package sse reads server-sent-event streams from the upstream chat service
// and folds the text carried by each event into one response string.
package sse

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"
)

const (
	dataPrefix = "data:"
	doneMarker = "[DONE]"
)

var (
	ErrResponseTooLarge = errors.New("upstream response too large")
	ErrStreamTimeout    = errors.New("upstream stream timed out")
)

// Options 聚合参数
type Options struct {
	// Fields 按优先级检查的文本字段，同一事件中命中的字段都会被追加
	Fields []string
	// MaxBytes 读取字节上限，<= 0 表示不限制
	MaxBytes int64
	// OnText 每追加一段文本时回调，用于实时转发
	OnText func(text string)
	// OnSkip 某一行无法解析时回调
	OnSkip func(line string, err error)
}

// Aggregate 顺序读取 SSE 流并拼接所有事件中的文本字段。
// 行在多次读取之间被缓冲，chunk 边界不需要和行边界对齐。
// r 实现 io.Closer 时，ctx 结束会关闭 r 以打断阻塞中的读取。
func Aggregate(ctx context.Context, r io.Reader, opts Options) (string, error) {
	fields := opts.Fields
	if len(fields) == 0 {
		fields = DefaultFields
	}
	if closer, ok := r.(io.Closer); ok {
		stop := context.AfterFunc(ctx, func() { _ = closer.Close() })
		defer stop()
	}

	reader := bufio.NewReader(&limitedReader{r: r, limit: opts.MaxBytes})
	var full strings.Builder

	for {
		if err := ctx.Err(); err != nil {
			return full.String(), contextError(err)
		}

		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return full.String(), readError(ctx, err)
		}
		if line != "" && handleLine(line, fields, &full, opts) {
			return full.String(), nil
		}
		if err != nil {
			return full.String(), nil
		}
	}
}

// handleLine 处理一个完整的行，返回 true 表示遇到结束标记
func handleLine(line string, fields []string, full *strings.Builder, opts Options) bool {
	line = strings.TrimRight(line, "\r\n")
	if !strings.HasPrefix(line, dataPrefix) {
		return false
	}
	payload := strings.TrimSpace(strings.TrimPrefix(line, dataPrefix))
	if payload == "" {
		return false
	}
	if payload == doneMarker {
		return true
	}
	if !utf8.ValidString(payload) {
		payload = strings.ToValidUTF8(payload, "�")
	}

	event, err := ParseEvent([]byte(payload))
	if err != nil {
		log.WithError(err).WithField("line", preview(line)).Warn("skip unparsable SSE line")
		if opts.OnSkip != nil {
			opts.OnSkip(line, err)
		}
		return false
	}

	for _, field := range fields {
		text, ok := event.Field(field)
		if !ok {
			continue
		}
		full.WriteString(text)
		if opts.OnText != nil {
			opts.OnText(text)
		}
	}
	return false
}

func readError(ctx context.Context, err error) error {
	if errors.Is(err, ErrResponseTooLarge) {
		return err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return contextError(ctxErr)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrStreamTimeout, err)
	}
	return fmt.Errorf("read stream: %w", err)
}

func contextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrStreamTimeout, err)
	}
	return err
}

func preview(line string) string {
	const max = 120
	if len(line) <= max {
		return line
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(line[cut]) {
		cut--
	}
	return line[:cut] + "..."
}

// limitedReader 统计已读字节数，超过上限后返回 ErrResponseTooLarge
type limitedReader struct {
	r     io.Reader
	limit int64
	read  int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	l.read += int64(n)
	if l.limit > 0 && l.read > l.limit {
		return n, ErrResponseTooLarge
	}
	return n, err
}
