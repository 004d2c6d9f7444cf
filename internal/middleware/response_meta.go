package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	metaContextKey    = "response_meta"
	startedContextKey = "response_started"

	cacheHitField = "cache_hit"
	elapsedField  = "processing_time_ms"
)

// Meta is the free-form "meta" object of the response envelope.
type Meta map[string]interface{}

// WithResponseMeta gives every request an empty Meta and records when it started.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(startedContextKey, time.Now())
		c.Set(metaContextKey, Meta{})
		c.Next()
	}
}

// SetMeta stores one field on the request's Meta, creating it when needed.
func SetMeta(c *gin.Context, field string, value interface{}) {
	if c == nil {
		return
	}
	meta := lookupMeta(c)
	if meta == nil {
		meta = Meta{}
		c.Set(metaContextKey, meta)
	}
	meta[field] = value
}

// SetCacheHit reports whether the payload came from cache.
func SetCacheHit(c *gin.Context, hit bool) {
	SetMeta(c, cacheHitField, hit)
}

// SetElapsed records the time spent since start in milliseconds.
func SetElapsed(c *gin.Context, start time.Time) {
	SetMeta(c, elapsedField, time.Since(start).Milliseconds())
}

// ExtractMeta returns the request's Meta, or nil when nothing was recorded. Requests that went
// through WithResponseMeta get processing_time_ms stamped unless a handler set it already.
func ExtractMeta(c *gin.Context) Meta {
	if c == nil {
		return nil
	}
	meta := lookupMeta(c)
	if meta == nil {
		return nil
	}
	if _, ok := meta[elapsedField]; !ok {
		if started, ok := c.Get(startedContextKey); ok {
			if at, ok := started.(time.Time); ok {
				meta[elapsedField] = time.Since(at).Milliseconds()
			}
		}
	}
	return meta
}

func lookupMeta(c *gin.Context) Meta {
	value, ok := c.Get(metaContextKey)
	if !ok {
		return nil
	}
	meta, _ := value.(Meta)
	return meta
}
