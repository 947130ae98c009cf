package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"olympus.io/loot-of-olympus/pkg/errors"
	"olympus.io/loot-of-olympus/pkg/log"
	"olympus.io/loot-of-olympus/pkg/log/meta"
)

const requestIDHeader = "X-Request-Id"

// responseBodyWriter keeps a copy of the handler response for the request log.
type responseBodyWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (r responseBodyWriter) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

type httpInfo struct {
	Headers       map[string]string      `json:"headers"`
	Method        string                 `json:"method"`
	RequestAPI    string                 `json:"request_api,omitempty"`
	RemoteAddr    string                 `json:"remote_addr,omitempty"`
	Meta          map[string]interface{} `json:"meta,omitempty"`
	Response      *response              `json:"response,omitempty"`
	ExecutionTime string                 `json:"execution_time,omitempty"`
}

func (in *httpInfo) String() string {
	bts, err := json.Marshal(in)
	if err != nil {
		return fmt.Sprintf("%s %s", in.Method, in.RequestAPI)
	}
	return string(bts)
}

func newHTTPInfo(ctx *gin.Context) *httpInfo {
	return &httpInfo{
		Headers:    requestHeaderFilter(ctx.Request.Header),
		Method:     ctx.Request.Method,
		RequestAPI: ctx.Request.RequestURI,
		RemoteAddr: ctx.ClientIP(),
		Meta:       meta.All(ctx.Request.Context()),
	}
}

// RecoveredHTTPLog opens the request metadata bag, recovers handler panics and logs
// every request with its response once the handler chain returns.
func RecoveredHTTPLog() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		rctx := meta.Begin(ctx.Request.Context())
		requestID := ctx.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		meta.WithValue(rctx, meta.RequestIDKey, requestID)
		ctx.Request = ctx.Request.WithContext(rctx)
		ctx.Header(requestIDHeader, requestID)

		w := &responseBodyWriter{body: &bytes.Buffer{}, ResponseWriter: ctx.Writer}
		ctx.Writer = w

		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				err := errors.ErrorfAndReport("%v", r)
				log.Error(err)
			}
			logHTTP(ctx, w, start)
		}()
		ctx.Next()
	}
}

const defaultRequestTimeout = time.Second * 10

// TimeoutHTTP bounds the request context, every store round trip inherits it.
func TimeoutHTTP(timeout ...time.Duration) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		d := defaultRequestTimeout
		if len(timeout) != 0 && timeout[0] > 0 {
			d = timeout[0]
		}
		timeoutCtx, cancelFunc := context.WithTimeout(ctx.Request.Context(), d)
		defer cancelFunc()
		ctx.Request = ctx.Request.WithContext(timeoutCtx)
		ctx.Next()
	}
}

func logHTTP(ctx *gin.Context, w *responseBodyWriter, start time.Time) {
	// nothing written means the handler panicked before responding
	if !ctx.Writer.Written() {
		ctx.JSON(http.StatusInternalServerError, map[string]interface{}{
			"status":  "error",
			"message": "Server internal error",
		})
	}

	s := w.Status()
	info := newHTTPInfo(ctx)
	info.Response = decodeHandlerResponse(w.body.Bytes(), s)
	info.ExecutionTime = fmt.Sprintf("%vms", time.Since(start).Milliseconds())
	switch {
	case s < http.StatusBadRequest:
		log.Info(info)
	case s >= http.StatusInternalServerError:
		log.Error(info)
	default:
		log.Warn(info)
	}
}

type response struct {
	ProtocolCode int         `json:"protocol_code"`
	Status       interface{} `json:"status,omitempty"`
	Message      interface{} `json:"message,omitempty"`
}

func decodeHandlerResponse(respBody []byte, httpCode int) *response {
	var resp response
	_ = json.Unmarshal(respBody, &resp)
	resp.ProtocolCode = httpCode
	return &resp
}

var excludedHeaders = map[string]bool{
	"authorization":    true,
	"x-internal-token": true,
	"cookie":           true,
}

func requestHeaderFilter(headers map[string][]string) map[string]string {
	filtered := make(map[string]string)
	for k, v := range headers {
		k = strings.ToLower(k)
		if excludedHeaders[k] {
			continue
		}
		filtered[k] = strings.Join(v, ";")
	}
	return filtered
}
