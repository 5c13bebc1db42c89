package staticd

import "github.com/valyala/bytebufferpool"

// Pools for the per-connection header buffer and outbound write buffer,
// mirroring fasthttp's AcquireByteBuffer/ReleaseByteBuffer (bytebuffer.go)
// pair around a package-level bytebufferpool.Pool.
var (
	headerBufPool bytebufferpool.Pool
	outBufPool    bytebufferpool.Pool
)

func acquireHeaderBuf() *bytebufferpool.ByteBuffer { return headerBufPool.Get() }

func releaseHeaderBuf(b *bytebufferpool.ByteBuffer) {
	b.Reset()
	headerBufPool.Put(b)
}

func acquireOutBuf() *bytebufferpool.ByteBuffer { return outBufPool.Get() }

func releaseOutBuf(b *bytebufferpool.ByteBuffer) {
	b.Reset()
	outBufPool.Put(b)
}
