// Package lazy provides compute-once value cells. Config settings and
// requirement descriptors use them to implement snapshot semantics: a field
// is derived on first read and never refreshed afterwards, even if the
// underlying environment or filesystem changes.
package lazy

import "sync"

// Value 缓存一个不会出错的派生值，首次读取时计算，此后永不刷新。
type Value[T any] struct {
	once  sync.Once
	value T
}

// Get 在首次调用时执行 compute 并缓存结果。
func (v *Value[T]) Get(compute func() T) T {
	v.once.Do(func() { v.value = compute() })
	return v.value
}

// Result 缓存一个可能出错的派生值，值与错误都只计算一次。
type Result[T any] struct {
	once  sync.Once
	value T
	err   error
}

// Get 在首次调用时执行 compute，之后始终返回同一份值与错误。
func (r *Result[T]) Get(compute func() (T, error)) (T, error) {
	r.once.Do(func() { r.value, r.err = compute() })
	return r.value, r.err
}
