package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/danmuck/bitsctl/internal/auth"
	"github.com/danmuck/bitsctl/internal/observability"
	"github.com/danmuck/bitsctl/internal/protocol"
	"github.com/danmuck/bitsctl/internal/protocol/packet"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type decodeRequest struct {
	Transmission string `json:"transmission" binding:"required"`
	Tree         bool   `json:"tree"`
}

type batchRequest struct {
	Transmissions []string `json:"transmissions" binding:"required"`
	Tree          bool     `json:"tree"`
}

type decodeResponse struct {
	VersionSum uint64 `json:"version_sum"`
	Value      string `json:"value"`
	Packets    int    `json:"packets"`
	Bits       int    `json:"bits"`
	Tree       string `json:"tree,omitempty"`
}

func (s *Server) RegisterRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.Appeared).String(),
			"service": nodeName,
			"version": version,
		})
	})

	s.router.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ready":   s.decoder != nil,
			"uptime":  time.Since(s.Appeared).String(),
			"service": nodeName,
			"version": version,
		})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	decode := s.router.Group("/decode")
	if s.token != "" {
		decode.Use(auth.Middleware(auth.StaticToken{Token: s.token}))
	}
	decode.POST("", s.handleDecode)
	decode.POST("/batch", s.handleBatch)
}

// Request body allowance on top of the hex digits themselves.
const (
	envelopeBytes     = 4 << 10
	itemOverheadBytes = 64
)

// bodyLimit bounds a decode request body by the decoder limits. Zero means
// unbounded.
func (s *Server) bodyLimit(batch bool) int64 {
	limits := s.decoder.Limits()
	if limits.MaxDigits <= 0 {
		return 0
	}
	item := int64(limits.MaxDigits) + itemOverheadBytes
	if !batch {
		return item + envelopeBytes
	}
	if limits.MaxBatch <= 0 {
		return 0
	}
	return item*int64(limits.MaxBatch) + envelopeBytes
}

// bindLimited decodes the JSON body into out, rejecting bodies over the
// limit with 413 before they are read in full.
func (s *Server) bindLimited(c *gin.Context, source string, batch bool, out any) bool {
	limit := s.bodyLimit(batch)
	if limit > 0 {
		if c.Request.ContentLength > limit {
			s.rejectTooLarge(c, source, limit)
			return false
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}
	if err := c.ShouldBindJSON(out); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.rejectTooLarge(c, source, tooLarge.Limit)
			return false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "bad_request"})
		return false
	}
	return true
}

func (s *Server) rejectTooLarge(c *gin.Context, source string, limit int64) {
	err := fmt.Errorf("%w: request body exceeds %d bytes", protocol.ErrTooLarge, limit)
	observability.RecordDecode(source, protocol.KindTooLarge, 0, 0)
	c.Set(observability.ErrorKindKey, protocol.KindTooLarge)
	c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error(), "kind": protocol.KindTooLarge})
}

func (s *Server) handleDecode(c *gin.Context) {
	var req decodeRequest
	if !s.bindLimited(c, "http", false, &req) {
		return
	}

	hex := strings.TrimSpace(req.Transmission)
	start := time.Now()
	res, err := s.decoder.Decode(hex)
	kind := protocol.ErrorKind(err)
	observability.RecordDecode("http", kind, 4*len(hex), time.Since(start))
	c.Set(observability.ErrorKindKey, kind)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error(), "kind": kind})
		return
	}
	out, err := render(res, req.Tree)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "kind": protocol.KindInternal})
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleBatch(c *gin.Context) {
	var req batchRequest
	if !s.bindLimited(c, "http_batch", true, &req) {
		return
	}

	inputs := make([]string, len(req.Transmissions))
	size := 0
	for i, in := range req.Transmissions {
		inputs[i] = strings.TrimSpace(in)
		size += 4 * len(inputs[i])
	}
	start := time.Now()
	results, err := s.decoder.DecodeAll(c.Request.Context(), inputs, s.Workers)
	kind := protocol.ErrorKind(err)
	observability.RecordDecode("http_batch", kind, size, time.Since(start))
	c.Set(observability.ErrorKindKey, kind)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error(), "kind": kind})
		return
	}

	out := make([]decodeResponse, len(results))
	for i, res := range results {
		if out[i], err = render(res, req.Tree); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "kind": protocol.KindInternal})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"results": out})
}

func render(res protocol.Result, tree bool) (decodeResponse, error) {
	out := decodeResponse{
		VersionSum: res.VersionSum,
		Value:      res.Value.String(),
		Packets:    len(res.Packets),
		Bits:       res.Bits,
	}
	if tree {
		var b strings.Builder
		for _, p := range res.Packets {
			if err := packet.Dump(&b, p); err != nil {
				return decodeResponse{}, fmt.Errorf("render tree: %w", err)
			}
		}
		out.Tree = b.String()
	}
	return out, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, protocol.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case protocol.ErrorKind(err) == protocol.KindInternal, protocol.ErrorKind(err) == protocol.KindCanceled:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
