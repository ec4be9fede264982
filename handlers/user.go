package handlers

import (
	"errors"
	"net/http"

	"helper/models"
	userSvc "helper/services/user"

	"github.com/gin-gonic/gin"
)

// RegisterClientHandler creates a client account and returns a signed token.
func RegisterClientHandler(svc userSvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in userSvc.RegisterInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
			return
		}
		res, err := svc.RegisterClient(c.Request.Context(), in)
		if err != nil {
			if errors.Is(err, userSvc.ErrEmailTaken) {
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
			return
		}
		c.JSON(http.StatusCreated, res)
	}
}

// RegisterProviderHandler creates a provider account.
func RegisterProviderHandler(svc userSvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in userSvc.RegisterInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
			return
		}
		res, err := svc.RegisterProvider(c.Request.Context(), in)
		if err != nil {
			if errors.Is(err, userSvc.ErrEmailTaken) {
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, res)
	}
}

type loginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginHandler authenticates the given role.
func LoginHandler(svc userSvc.Service, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in loginInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
			return
		}
		res, err := svc.Login(c.Request.Context(), in.Email, in.Password, role)
		if err != nil {
			if errors.Is(err, userSvc.ErrInvalidCredentials) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// GetProfileHandler returns the authenticated caller's profile.
func GetProfileHandler(svc userSvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		callerID := c.GetString("callerID")
		if c.GetString("role") == models.RoleProvider {
			p, err := svc.GetProvider(c.Request.Context(), callerID)
			if err != nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
				return
			}
			c.JSON(http.StatusOK, p)
			return
		}
		u, err := svc.GetClient(c.Request.Context(), callerID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
			return
		}
		c.JSON(http.StatusOK, u)
	}
}

// UpdateFCMTokenHandler stores the caller's push token.
func UpdateFCMTokenHandler(svc userSvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in struct {
			Token string `json:"token" binding:"required"`
		}
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
			return
		}
		err := svc.UpdateFCMToken(c.Request.Context(), c.GetString("callerID"), c.GetString("role"), in.Token)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store token"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
