package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Shared response plumbing for the route handlers. Every handler tags its
// log lines with the method-and-path route string so failures can be traced
// back to an endpoint from the log alone.

func handlePanic(c *gin.Context, route string) {
	if r := recover(); r != nil {
		log.Printf("[%s] [ERROR] recovered from panic: %v", route, r)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func respondWithError(c *gin.Context, status int, route string, message string) {
	log.Printf("[%s] [ERROR] %d %s", route, status, message)
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}
