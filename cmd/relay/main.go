package main

import (
	"encoding/json"
	"flag"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/genesisreloop-alt/G3ZKPBETAFINAL-sub000/internal/domain"
)

// memoryStore holds published bundles and per-peer envelope queues. Everything
// lives in memory and is lost on exit.
type memoryStore struct {
	mu      sync.RWMutex
	bundles map[string]domain.PreKeyBundle
	queues  map[string][]json.RawMessage
	topics  map[string][]json.RawMessage
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		bundles: make(map[string]domain.PreKeyBundle),
		queues:  make(map[string][]json.RawMessage),
		topics:  make(map[string][]json.RawMessage),
	}
}

func receipt(method string) domain.Receipt {
	return domain.Receipt{Timestamp: time.Now().Unix(), DeliveryMethod: method}
}

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	ms := newMemoryStore()

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), accessLog())

	router.POST("/bundle", func(c *gin.Context) {
		var b domain.PreKeyBundle
		if err := c.ShouldBindJSON(&b); err != nil {
			c.String(http.StatusBadRequest, err.Error())
			return
		}
		if b.PeerID == "" {
			c.String(http.StatusBadRequest, "bundle missing peer id")
			return
		}
		ms.mu.Lock()
		ms.bundles[b.PeerID] = b
		ms.mu.Unlock()
		log.WithField("peer", b.PeerID).Info("bundle registered")
		c.JSON(http.StatusOK, receipt("relay"))
	})

	router.GET("/bundle/:peer", func(c *gin.Context) {
		ms.mu.RLock()
		b, ok := ms.bundles[c.Param("peer")]
		ms.mu.RUnlock()
		if !ok {
			c.String(http.StatusNotFound, "no bundle for peer")
			return
		}
		c.JSON(http.StatusOK, b)
	})

	router.POST("/msg/:peer", func(c *gin.Context) {
		var payload json.RawMessage
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.String(http.StatusBadRequest, err.Error())
			return
		}
		peer := c.Param("peer")
		ms.mu.Lock()
		ms.queues[peer] = append(ms.queues[peer], payload)
		depth := len(ms.queues[peer])
		ms.mu.Unlock()
		log.WithFields(log.Fields{"peer": peer, "queued": depth}).Info("message queued")
		c.JSON(http.StatusOK, receipt("relay"))
	})

	router.GET("/msg/:peer", func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.Query("limit"))
		ms.mu.RLock()
		queue := ms.queues[c.Param("peer")]
		if limit <= 0 || limit > len(queue) {
			limit = len(queue)
		}
		out := make([]json.RawMessage, limit)
		copy(out, queue[:limit])
		ms.mu.RUnlock()
		c.JSON(http.StatusOK, out)
	})

	router.POST("/msg/:peer/ack", func(c *gin.Context) {
		var body struct {
			Count int `json:"count"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.String(http.StatusBadRequest, err.Error())
			return
		}
		peer := c.Param("peer")
		ms.mu.Lock()
		queue := ms.queues[peer]
		if body.Count > len(queue) {
			body.Count = len(queue)
		}
		ms.queues[peer] = queue[body.Count:]
		ms.mu.Unlock()
		c.JSON(http.StatusOK, receipt("relay"))
	})

	router.POST("/topic/:topic", func(c *gin.Context) {
		var payload json.RawMessage
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.String(http.StatusBadRequest, err.Error())
			return
		}
		topic := c.Param("topic")
		ms.mu.Lock()
		ms.topics[topic] = append(ms.topics[topic], payload)
		ms.mu.Unlock()
		c.JSON(http.StatusOK, receipt("topic"))
	})

	router.GET("/topic/:topic", func(c *gin.Context) {
		ms.mu.RLock()
		out := append([]json.RawMessage(nil), ms.topics[c.Param("topic")]...)
		ms.mu.RUnlock()
		c.JSON(http.StatusOK, out)
	})

	log.WithField("addr", *addr).Info("relay listening")
	if err := router.Run(*addr); err != nil {
		log.WithError(err).Fatal("relay stopped")
	}
}

// accessLog records one line per request.
func accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(log.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"remote":   c.ClientIP(),
			"status":   c.Writer.Status(),
			"bytes":    c.Writer.Size(),
			"duration": time.Since(start).String(),
		}).Debug("request")
	}
}
