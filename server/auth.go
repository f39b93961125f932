package server

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/rs/zerolog/log"
)

const phoneContextKey = "auth.phone"

type sendOTPRequest struct {
	Phone string `json:"phone" binding:"required"`
}

type verifyOTPRequest struct {
	Phone string `json:"phone" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

// handleSendOTP issues a six-digit login code and texts it to the caller.
func (s *Server) handleSendOTP(c *gin.Context) {
	var req sendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "phone is required"})
		return
	}

	code, err := generateOTP()
	if err != nil {
		log.Error().Err(err).Msg("otp generation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue a code"})
		return
	}
	if err := s.otp.Put(c.Request.Context(), req.Phone, code); err != nil {
		log.Error().Err(err).Msg("otp store failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue a code"})
		return
	}
	if err := s.dialer.SendSMS(c.Request.Context(), req.Phone,
		fmt.Sprintf("Your V-I-T Marketplace login code is %s. It expires in 10 minutes.", code)); err != nil {
		log.Error().Err(err).Str("phone", req.Phone).Msg("otp sms failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not send the code"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "sent"})
}

// handleVerifyOTP exchanges a valid code for a bearer token.
func (s *Server) handleVerifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "phone and code are required"})
		return
	}

	ok, err := s.otp.Consume(c.Request.Context(), req.Phone, req.Code)
	if err != nil {
		log.Error().Err(err).Msg("otp consume failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not verify the code"})
		return
	}
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired code"})
		return
	}

	token, err := s.issueToken(req.Phone)
	if err != nil {
		log.Error().Err(err).Msg("token signing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue a token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (s *Server) issueToken(phone string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   phone,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
}

// authRequired validates the bearer token and stashes the authenticated phone
// number on the request context.
func (s *Server) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(raw) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims := new(jwt.RegisteredClaims)
		token, err := jwt.ParseWithClaims(strings.TrimSpace(raw), claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(s.cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid || claims.Subject == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(phoneContextKey, claims.Subject)
		c.Next()
	}
}

func authedPhone(c *gin.Context) string {
	return c.GetString(phoneContextKey)
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
