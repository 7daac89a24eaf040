package asn1x

import "sync"

// TimeFormat selects how Time values are rendered by the encoder when the
// schema does not otherwise dictate UTCTime vs GeneralizedTime.
type TimeFormat int

const (
	TimeFormatAuto TimeFormat = iota
	TimeFormatUTCTime
	TimeFormatGeneralizedTime
)

// Context carries ambient configuration explicitly, as a value passed to
// the entry points, rather than through package-level globals. The zero
// value is a strict, cache-respecting, depth-128 context; use NewContext
// for that default or construct one field at a time.
//
// A Context is not safe for concurrent mutation; concurrent reads are
// fine, matching the registry's own append-only/RWMutex discipline.
type Context struct {
	BlobsOnBadDecode bool
	InvalidateCache  bool
	IgnoreEncodedCache bool
	RecursionDepth   int
	TimeFormat       TimeFormat

	registry *Registry
}

// NewContext returns the default Context: cache invalidation enabled,
// blobs-on-bad-decode disabled (strict mode), recursion capped at 128,
// auto time format, and a private OID registry seeded from the built-in
// well-known table.
func NewContext() *Context {
	return &Context{
		BlobsOnBadDecode: false,
		InvalidateCache:  true,
		RecursionDepth:   128,
		TimeFormat:       TimeFormatAuto,
		registry:         defaultRegistry(),
	}
}

func (c *Context) Registry() *Registry {
	if c.registry == nil {
		c.registry = defaultRegistry()
	}
	return c.registry
}

func (c *Context) EnableBlobsOnBadDecode()  { c.BlobsOnBadDecode = true }
func (c *Context) DisableBlobsOnBadDecode() { c.BlobsOnBadDecode = false }
func (c *Context) EnableCacheInvalidation() { c.InvalidateCache = true }
func (c *Context) DisableCacheInvalidation() {
	c.InvalidateCache = false
}
func (c *Context) IgnoreCache()          { c.IgnoreEncodedCache = true }
func (c *Context) RespectCache()         { c.IgnoreEncodedCache = false }
// SetRecursionDepth sets the cap, clamped to a sane [1, 100000] window so
// a careless caller can't wedge the decoder with a non-positive cap or an
// effectively unbounded one.
func (c *Context) SetRecursionDepth(n int) { c.RecursionDepth = clamp(n, 1, 100000) }
func (c *Context) SetTimeFormat(f TimeFormat) { c.TimeFormat = f }

// withCacheInvalidationSuppressed runs fn with InvalidateCache temporarily
// false, restoring the prior value afterward, so mutations made inside fn
// do not dirty the ancestors of the mutated node. Nothing in this package
// calls it.
func (c *Context) withCacheInvalidationSuppressed(fn func()) {
	prev := c.InvalidateCache
	c.InvalidateCache = false
	defer func() { c.InvalidateCache = prev }()
	fn()
}

// defaultCtx is the convenience process-wide singleton the package-level
// helper functions (DecodeBER, EncodeDER, ...) use when the caller does
// not thread its own Context through. It is a thin wrapper, not the
// source of truth; library code should prefer the *Context-accepting
// entry points.
var (
	defaultCtxOnce sync.Once
	defaultCtx     *Context
)

func sharedContext() *Context {
	defaultCtxOnce.Do(func() { defaultCtx = NewContext() })
	return defaultCtx
}
