package controllers

import (
	"commentflow/engine"

	"github.com/gin-gonic/gin"
	goerrors "github.com/goliatone/go-errors"
)

func RespondError(c *gin.Context, msg string, code int) {
	c.JSON(code, gin.H{"error": msg})
}

// RespondErr answers with the status and text code carried by err.
func RespondErr(c *gin.Context, err error) {
	body := gin.H{"error": err.Error()}
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		body["error"] = rich.Message
		if rich.TextCode != "" {
			body["code"] = rich.TextCode
		}
	}
	c.JSON(engine.StatusCode(err), body)
}

func RespondSuccess(c *gin.Context, payload any) {
	c.JSON(200, payload)
}
