package notify

import (
	"context"
	"sync"
)

// Task - результат фоновой отправки. Можно дождаться через Wait или просто забыть.
type Task struct {
	done    chan struct{}
	err     error
	skipped bool
}

func newTask() *Task {
	return &Task{done: make(chan struct{})}
}

// SkippedTask - отправлять некому
func SkippedTask() *Task {
	t := newTask()
	t.skipped = true
	close(t.done)
	return t
}

// PendingTask - задача, которую завершит вызов finish. Для своих реализаций отправки.
func PendingTask() (task *Task, finish func(err error)) {
	t := newTask()
	var once sync.Once
	return t, func(err error) { once.Do(func() { t.finish(err) }) }
}

// CompletedTask - уже завершённая задача с готовым результатом
func CompletedTask(err error) *Task {
	t := newTask()
	t.finish(err)
	return t
}

func (t *Task) finish(err error) {
	t.err = err
	close(t.done)
}

func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait ждёт завершения отправки или отмены ctx.
// Отмена ctx не прерывает саму отправку.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Skipped - письмо не отправлялось, потому что нет адресата
func (t *Task) Skipped() bool {
	return t.skipped
}
