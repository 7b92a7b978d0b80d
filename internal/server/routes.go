package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/danmuck/pngctl/internal/auth"
	"github.com/danmuck/pngctl/internal/message"
	"github.com/danmuck/pngctl/internal/png"
	"github.com/danmuck/pngctl/internal/png/chunk"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const contentTypePNG = "image/png"

func (s *Server) RegisterRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.Appeared).String(),
			"service": s.ID,
			"version": "0.1.0",
		})
	})

	s.router.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ready":   true,
			"uptime":  time.Since(s.Appeared).String(),
			"service": s.ID,
			"version": "0.1.0",
		})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.router.Group("/v1")
	if s.authToken != "" {
		v1.Use(auth.Require(auth.StaticToken(s.authToken)))
	}
	v1.POST("/encode", s.handleEncode)
	v1.POST("/decode", s.handleDecode)
	v1.POST("/remove", s.handleRemove)
	v1.POST("/chunks", s.handleChunks)
}

func (s *Server) handleEncode(c *gin.Context) {
	p, ok := s.readPng(c)
	if !ok {
		return
	}
	out, err := message.Encode(p, c.Query("type"), c.Query("message"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, contentTypePNG, out.Bytes())
}

func (s *Server) handleDecode(c *gin.Context) {
	p, ok := s.readPng(c)
	if !ok {
		return
	}
	typeText := c.Query("type")
	if typeText == "" {
		candidates, err := message.Scan(p)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"messages": candidates})
		return
	}
	text, err := message.Decode(p, typeText)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, message.Candidate{Type: typeText, Message: text})
}

func (s *Server) handleRemove(c *gin.Context) {
	p, ok := s.readPng(c)
	if !ok {
		return
	}
	out, _, err := message.Remove(p, c.Query("type"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, contentTypePNG, out.Bytes())
}

func (s *Server) handleChunks(c *gin.Context) {
	p, ok := s.readPng(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"chunks": message.List(p)})
}

func (s *Server) readPng(c *gin.Context) (*png.Png, bool) {
	p, err := png.Read(c.Request.Body, s.limits)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return p, true
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, png.ErrChunkNotFound), errors.Is(err, message.ErrNoMessages):
		return http.StatusNotFound
	case errors.Is(err, message.ErrInvalidChunkType):
		return http.StatusBadRequest
	case errors.Is(err, png.ErrInputTooLarge), errors.Is(err, chunk.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, chunk.ErrInvalidUTF8), png.IsStructural(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
