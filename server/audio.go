package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// defaultAudioTTL bounds how long a synthesized clip stays fetchable. Twilio
// fetches the clip right after receiving the TwiML, so a short window is
// plenty.
const defaultAudioTTL = 5 * time.Minute

type audioClip struct {
	data      []byte
	expiresAt time.Time
}

// audioCache hands out single-use-style tokens for synthesized utterances.
// Clips survive until their TTL so Twilio can re-fetch on a retry.
type audioCache struct {
	mu    sync.Mutex
	clips map[string]audioClip
	ttl   time.Duration
	now   func() time.Time
}

func newAudioCache(ttl time.Duration) *audioCache {
	if ttl <= 0 {
		ttl = defaultAudioTTL
	}
	return &audioCache{
		clips: make(map[string]audioClip),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Put stores a clip and returns its token.
func (c *audioCache) Put(data []byte) string {
	token := uuid.NewString()
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()
	for t, clip := range c.clips {
		if now.After(clip.expiresAt) {
			delete(c.clips, t)
		}
	}
	c.clips[token] = audioClip{data: data, expiresAt: now.Add(c.ttl)}
	return token
}

func (c *audioCache) Get(token string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	clip, ok := c.clips[token]
	if !ok || c.now().After(clip.expiresAt) {
		delete(c.clips, token)
		return nil, false
	}
	return clip.data, true
}

func (s *Server) handleAudio(c *gin.Context) {
	data, ok := s.audio.Get(c.Param("token"))
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}
	c.Data(http.StatusOK, "audio/mpeg", data)
}
