// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Virtuoso Contributors

package httpapi

import "github.com/gin-gonic/gin"

// envelope is the uniform response shape for every endpoint. Data is
// populated only on success, Error only on failure.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, envelope{Success: true, Message: message, Data: data})
}

func respondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, envelope{Success: false, Message: message, Error: message})
}
