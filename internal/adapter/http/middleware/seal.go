package middleware

import (
	"bytes"
	"net/http"

	"github.com/Drayarch/genlayer-intelligent-contracts/internal/security"
	"github.com/gin-gonic/gin"
)

// ResponseSealer wraps successful JSON responses in a signed AES-GCM
// envelope, so key material crosses the wire encrypted even inside TLS.
// Callers decrypt with the shared AES key and check the RSA signature.
type ResponseSealer struct {
	s security.Sealer
}

func NewResponseSealer(s security.Sealer) *ResponseSealer {
	return &ResponseSealer{s: s}
}

// sealWriter buffers the handler's output instead of forwarding it, so the
// middleware can replace the body after the handler returns.
type sealWriter struct {
	gin.ResponseWriter
	buf    bytes.Buffer
	status int
}

func (w *sealWriter) WriteHeader(code int) { w.status = code }

func (w *sealWriter) Write(b []byte) (int, error) { return w.buf.Write(b) }

func (w *sealWriter) WriteString(s string) (int, error) { return w.buf.WriteString(s) }

func (rs *ResponseSealer) Seal() gin.HandlerFunc {
	return func(c *gin.Context) {
		sw := &sealWriter{ResponseWriter: c.Writer, status: http.StatusOK}
		orig := c.Writer
		c.Writer = sw

		c.Next()

		c.Writer = orig

		// errors pass through unsealed so callers see plain error JSON
		if sw.status < 200 || sw.status >= 300 || sw.buf.Len() == 0 {
			orig.WriteHeader(sw.status)
			_, _ = orig.Write(sw.buf.Bytes())
			return
		}

		env, err := security.SealEnvelope(rs.s, sw.buf.Bytes())
		if err != nil {
			orig.Header().Set("Content-Type", "application/json; charset=utf-8")
			orig.WriteHeader(http.StatusInternalServerError)
			_, _ = orig.Write([]byte(`{"error":"seal_failed"}`))
			return
		}

		body, err := env.Marshal()
		if err != nil {
			orig.Header().Set("Content-Type", "application/json; charset=utf-8")
			orig.WriteHeader(http.StatusInternalServerError)
			_, _ = orig.Write([]byte(`{"error":"seal_failed"}`))
			return
		}

		orig.Header().Set("Content-Type", "application/json; charset=utf-8")
		orig.Header().Del("Content-Length")
		orig.WriteHeader(sw.status)
		_, _ = orig.Write(body)
	}
}
