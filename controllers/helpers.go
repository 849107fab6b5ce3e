package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

func ParamID(c *gin.Context, name string) (int64, bool) {
	v := c.Param(name)
	if v == "" {
		RespondError(c, name+" is required", http.StatusBadRequest)
		return 0, false
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		RespondError(c, "invalid "+name, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// TenantQuery reads the required ?tenant= parameter.
func TenantQuery(c *gin.Context) (string, bool) {
	tenant := strings.TrimSpace(c.Query("tenant"))
	if tenant == "" {
		RespondError(c, "tenant is required", http.StatusBadRequest)
		return "", false
	}
	return tenant, true
}

func QueryInt(c *gin.Context, name string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(c.Query(name)))
	if err != nil || n <= 0 {
		return def
	}
	return n
}
