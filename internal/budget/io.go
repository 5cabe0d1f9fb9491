package budget

import (
	"context"
	"io"
)

// RateLimitedWriter wraps an io.Writer with rate limiting.
type RateLimitedWriter struct {
	ctx context.Context
	w   io.Writer
	b   *Budget
}

// NewRateLimitedWriter creates a new RateLimitedWriter. A nil budget writes unthrottled.
func NewRateLimitedWriter(ctx context.Context, w io.Writer, b *Budget) *RateLimitedWriter {
	return &RateLimitedWriter{
		ctx: ctx,
		w:   w,
		b:   b,
	}
}

func (w *RateLimitedWriter) Write(p []byte) (n int, err error) {
	if err := w.b.AcquireIO(w.ctx, len(p)); err != nil {
		return 0, err
	}
	return w.w.Write(p)
}

// RateLimitedReader wraps an io.Reader with rate limiting.
type RateLimitedReader struct {
	ctx context.Context
	r   io.Reader
	b   *Budget
}

// NewRateLimitedReader creates a new RateLimitedReader. A nil budget reads unthrottled.
func NewRateLimitedReader(ctx context.Context, r io.Reader, b *Budget) *RateLimitedReader {
	return &RateLimitedReader{
		ctx: ctx,
		r:   r,
		b:   b,
	}
}

func (r *RateLimitedReader) Read(p []byte) (n int, err error) {
	// Wait for the largest possible read up front.
	if err := r.b.AcquireIO(r.ctx, len(p)); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}
