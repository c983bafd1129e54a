package syncer

import (
	"time"

	"github.com/google/uuid"
)

type options struct {
	now   func() time.Time
	newID func() string
}

// Option 引擎可选参数
type Option func(*options)

// WithClock 注入时钟
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithIDGenerator 注入本地标识生成器
func WithIDGenerator(newID func() string) Option {
	return func(o *options) {
		if newID != nil {
			o.newID = newID
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
