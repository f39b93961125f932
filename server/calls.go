package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	contractx "github.com/zaidtausif56/smart-calling-agent/agent/contract"
)

type makeCallRequest struct {
	Phone string `json:"phone" binding:"required"`
}

// handleMakeCall places an outbound call to the given number. Twilio will hit
// /calls/start once the customer picks up.
func (s *Server) handleMakeCall(c *gin.Context) {
	var req makeCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "phone is required"})
		return
	}

	sid, err := s.dialer.PlaceCall(c.Request.Context(), req.Phone, s.cfg.PublicBaseURL+"/calls/start")
	if err != nil {
		log.Error().Err(err).Str("phone", req.Phone).Msg("outbound call failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not place the call"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "calling", "call_sid": sid})
}

// handleCallStart answers Twilio's webhook for a freshly connected call.
func (s *Server) handleCallStart(c *gin.Context) {
	caller := callerNumber(c)
	if caller == "" {
		c.String(http.StatusBadRequest, "missing caller number")
		return
	}

	action, err := s.calls.StartCall(c.Request.Context(), caller)
	if err != nil {
		log.Error().Err(err).Str("caller", caller).Msg("start call failed")
		action = contractx.VoiceAction{Text: "Sorry, something went wrong. Goodbye!", EndCall: true}
	}
	s.respondVoice(c, action)
}

// handleCallContinue receives the caller's recognized speech (or nothing, on
// a silence timeout) and advances the session.
func (s *Server) handleCallContinue(c *gin.Context) {
	caller := callerNumber(c)
	if caller == "" {
		c.String(http.StatusBadRequest, "missing caller number")
		return
	}

	if status := c.PostForm("CallStatus"); status == "completed" || status == "failed" {
		s.calls.EndCall(caller)
		c.Status(http.StatusNoContent)
		return
	}

	speech := strings.TrimSpace(c.PostForm("SpeechResult"))
	action, err := s.calls.HandleEvent(c.Request.Context(), caller, speech)
	if err != nil {
		log.Error().Err(err).Str("caller", caller).Msg("handle event failed")
		action = contractx.VoiceAction{Text: "Sorry, something went wrong. Goodbye!", EndCall: true}
	}
	s.respondVoice(c, action)
}

// respondVoice synthesizes the utterance when a synthesizer is configured and
// writes the TwiML response. Synthesis failures degrade to Twilio's own
// voice.
func (s *Server) respondVoice(c *gin.Context, action contractx.VoiceAction) {
	var audioURL string
	if s.synth != nil && action.Text != "" {
		audio, err := s.synth.Synthesize(c.Request.Context(), action.Text)
		if err != nil {
			log.Warn().Err(err).Msg("speech synthesis failed, falling back to <Say>")
		} else {
			audioURL = s.cfg.PublicBaseURL + "/audio/" + s.audio.Put(audio)
		}
	}

	body, err := renderVoice(action, audioURL, s.cfg.PublicBaseURL+"/calls/continue")
	if err != nil {
		log.Error().Err(err).Msg("twiml rendering failed")
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, "application/xml", body)
}

// callerNumber resolves the customer's number from the webhook form. Calls we
// place have the customer in To; inbound calls carry it in From.
func callerNumber(c *gin.Context) string {
	if c.PostForm("Direction") == "inbound" {
		if from := strings.TrimSpace(c.PostForm("From")); from != "" {
			return from
		}
	}
	if to := strings.TrimSpace(c.PostForm("To")); to != "" {
		return to
	}
	return strings.TrimSpace(c.PostForm("From"))
}
