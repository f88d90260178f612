package sse

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate_ConcatenatesAnswersInOrder(t *testing.T) {
	stream := "data: {\"event\":\"message\",\"answer\":\"Hello\"}\n\n" +
		"data: {\"event\":\"message\",\"answer\":\", \"}\n\n" +
		"data: {\"event\":\"message\",\"answer\":\"world\"}\n\n" +
		"data: {\"event\":\"message_end\"}\n\n"

	got, err := Aggregate(context.Background(), strings.NewReader(stream), Options{Fields: []string{"answer"}})

	require.NoError(t, err)
	assert.Equal(t, "Hello, world", got)
}

func TestAggregate_IgnoresNonDataLines(t *testing.T) {
	stream := "event: ping\n" +
		": keep-alive\n" +
		"id: 7\n" +
		"data: {\"answer\":\"a\"}\n" +
		"retry: 1000\n" +
		"data: {\"answer\":\"b\"}\n"

	got, err := Aggregate(context.Background(), strings.NewReader(stream), Options{})

	require.NoError(t, err)
	assert.Equal(t, "ab", got)
}

func TestAggregate_SkipsInvalidJSONLines(t *testing.T) {
	var skipped []string
	stream := "data: {\"answer\":\"first \"}\n" +
		"data: {invalid json\n" +
		"data: [1,2,3]\n" +
		"data: {\"answer\":\"second\"}\n"

	got, err := Aggregate(context.Background(), strings.NewReader(stream), Options{
		OnSkip: func(line string, _ error) { skipped = append(skipped, line) },
	})

	require.NoError(t, err)
	assert.Equal(t, "first second", got)
	assert.Equal(t, []string{"data: {invalid json", "data: [1,2,3]"}, skipped)
}

func TestAggregate_BuffersLinesSplitAcrossReads(t *testing.T) {
	stream := "data: {\"answer\":\"héllo \"}\n" +
		"data: {\"answer\":\"wörld ✓\"}\n"

	// 每次只读一个字节，多字节字符和 JSON 都会被拆开
	got, err := Aggregate(context.Background(), iotest.OneByteReader(strings.NewReader(stream)), Options{})

	require.NoError(t, err)
	assert.Equal(t, "héllo wörld ✓", got)
}

func TestAggregate_AppendsEveryMatchingFieldOfAnEvent(t *testing.T) {
	stream := "data: {\"answer\":\"A\",\"text\":\"T\",\"message\":\"M\"}\n"

	got, err := Aggregate(context.Background(), strings.NewReader(stream), Options{
		Fields: []string{"answer", "text", "message"},
	})

	require.NoError(t, err)
	assert.Equal(t, "ATM", got)
}

func TestAggregate_FieldPriorityOrder(t *testing.T) {
	stream := "data: {\"message\":\"M\",\"answer\":\"A\"}\n"

	got, err := Aggregate(context.Background(), strings.NewReader(stream), Options{
		Fields: []string{"message", "answer"},
	})

	require.NoError(t, err)
	assert.Equal(t, "MA", got)
}

func TestAggregate_IgnoresNonStringFields(t *testing.T) {
	stream := "data: {\"answer\":42}\n" +
		"data: {\"answer\":null}\n" +
		"data: {\"answer\":\"ok\"}\n"

	got, err := Aggregate(context.Background(), strings.NewReader(stream), Options{})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}

func TestAggregate_LastLineWithoutNewline(t *testing.T) {
	got, err := Aggregate(context.Background(), strings.NewReader("data: {\"answer\":\"tail\"}"), Options{})

	require.NoError(t, err)
	assert.Equal(t, "tail", got)
}

func TestAggregate_StopsAtDoneMarker(t *testing.T) {
	stream := "data: {\"answer\":\"x\"}\n" +
		"data: [DONE]\n" +
		"data: {\"answer\":\"after\"}\n"

	got, err := Aggregate(context.Background(), strings.NewReader(stream), Options{})

	require.NoError(t, err)
	assert.Equal(t, "x", got)
}

func TestAggregate_EmptyStreamIsNotAnError(t *testing.T) {
	got, err := Aggregate(context.Background(), strings.NewReader("data: {\"event\":\"message_end\"}\n"), Options{})

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAggregate_HandlesCRLF(t *testing.T) {
	got, err := Aggregate(context.Background(), strings.NewReader("data: {\"answer\":\"a\"}\r\n\r\ndata:{\"answer\":\"b\"}\r\n"), Options{})

	require.NoError(t, err)
	assert.Equal(t, "ab", got)
}

func TestAggregate_OnTextReceivesFragments(t *testing.T) {
	var fragments []string
	stream := "data: {\"answer\":\"one\"}\ndata: {\"answer\":\"two\"}\n"

	_, err := Aggregate(context.Background(), strings.NewReader(stream), Options{
		OnText: func(text string) { fragments = append(fragments, text) },
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, fragments)
}

func TestAggregate_ResponseTooLarge(t *testing.T) {
	stream := strings.Repeat("data: {\"answer\":\"0123456789\"}\n", 100)

	_, err := Aggregate(context.Background(), strings.NewReader(stream), Options{MaxBytes: 64})

	assert.ErrorIs(t, err, ErrResponseTooLarge)
}

func TestAggregate_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Aggregate(ctx, strings.NewReader("data: {\"answer\":\"x\"}\n"), Options{})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestAggregate_DeadlineMapsToStreamTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	<-ctx.Done()

	_, err := Aggregate(ctx, strings.NewReader("data: {\"answer\":\"x\"}\n"), Options{})

	assert.ErrorIs(t, err, ErrStreamTimeout)
}

func TestAggregate_CancelInterruptsBlockedRead(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		_, _ = pw.Write([]byte("data: {\"answer\":\"first\"}\n"))
		cancel()
	}()

	done := make(chan struct{})
	var got string
	var err error
	go func() {
		got, err = Aggregate(ctx, pr, Options{})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Aggregate did not return after cancel")
	}
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "first", got)
}

func TestPreview_KeepsRunesWhole(t *testing.T) {
	line := strings.Repeat("a", 119) + "学习路线"

	got := preview(line)

	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("a", 119)+"...", got)
	assert.Equal(t, "short", preview("short"))
}

func TestAggregate_ReadErrorIsReturned(t *testing.T) {
	boom := errors.New("connection reset")
	r := io.MultiReader(strings.NewReader("data: {\"answer\":\"partial\"}\n"), iotest.ErrReader(boom))

	got, err := Aggregate(context.Background(), r, Options{})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "partial", got)
}

func TestParseEvent(t *testing.T) {
	event, err := ParseEvent([]byte(`{"event":"message","conversation_id":"c-1","answer":"hi"}`))
	require.NoError(t, err)

	assert.Equal(t, "message", event.Name())
	assert.Equal(t, "c-1", event.ConversationID())
	answer, ok := event.Field("answer")
	assert.True(t, ok)
	assert.Equal(t, "hi", answer)
	_, ok = event.Field("text")
	assert.False(t, ok)

	_, err = ParseEvent([]byte("null"))
	assert.Error(t, err)
}
