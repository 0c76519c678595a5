// Package contentrange 解析分片上传使用的 Content-Range 请求头.
//
// 支持两种形式:
//
//	bytes first-last/total   有界，total 为完整长度
//	bytes first-last/*       无界，完整长度未知
package contentrange

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalid Content-Range 格式错误.
var ErrInvalid = errors.New("invalid content range")

const unitPrefix = "bytes "

// Range 一个字节区间 [First, Last]，两端包含.
type Range struct {
	First uint64
	Last  uint64
	// Total 完整长度，Bounded 为 false 时无意义.
	Total   uint64
	Bounded bool
}

// Length 返回区间字节数.
func (r Range) Length() uint64 { return r.Last - r.First + 1 }

// String 以请求头格式输出.
func (r Range) String() string {
	if r.Bounded {
		return fmt.Sprintf("bytes %d-%d/%d", r.First, r.Last, r.Total)
	}

	return fmt.Sprintf("bytes %d-%d/*", r.First, r.Last)
}

// Parse 解析 Content-Range 头.
func Parse(header string) (Range, error) {
	h := strings.TrimSpace(header)
	if !strings.HasPrefix(h, unitPrefix) {
		return Range{}, fmt.Errorf("%w: unit must be bytes", ErrInvalid)
	}

	spec, total, ok := strings.Cut(strings.TrimSpace(h[len(unitPrefix):]), "/")
	if !ok {
		return Range{}, fmt.Errorf("%w: missing complete length", ErrInvalid)
	}

	first, last, ok := strings.Cut(spec, "-")
	if !ok {
		return Range{}, fmt.Errorf("%w: missing range", ErrInvalid)
	}

	var (
		r   Range
		err error
	)

	if r.First, err = parseUint(first); err != nil {
		return Range{}, err
	}

	if r.Last, err = parseUint(last); err != nil {
		return Range{}, err
	}

	if r.Last < r.First {
		return Range{}, fmt.Errorf("%w: last byte before first byte", ErrInvalid)
	}

	if total == "*" {
		return r, nil
	}

	if r.Total, err = parseUint(total); err != nil {
		return Range{}, err
	}

	if r.Last >= r.Total {
		return Range{}, fmt.Errorf("%w: range exceeds complete length", ErrInvalid)
	}

	r.Bounded = true

	return r, nil
}

func parseUint(s string) (uint64, error) {
	if s == "" || strings.TrimSpace(s) != s {
		return 0, fmt.Errorf("%w: bad number %q", ErrInvalid, s)
	}

	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad number %q", ErrInvalid, s)
	}

	return n, nil
}
