package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// GET /api/runs?tenant=&limit=
func GetRuns(c *gin.Context) {
	store, ok := storeOrFail(c)
	if !ok {
		return
	}
	runs, err := store.ListRuns(c.Request.Context(), strings.TrimSpace(c.Query("tenant")), QueryInt(c, "limit", 200))
	if err != nil {
		RespondErr(c, err)
		return
	}
	RespondSuccess(c, gin.H{"runs": runs})
}

// GET /api/runs/:id
func GetRunByID(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	store, ok := storeOrFail(c)
	if !ok {
		return
	}
	run, err := store.FindRun(c.Request.Context(), id)
	if err != nil {
		RespondErr(c, err)
		return
	}
	results, err := run.ActionResults()
	if err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	RespondSuccess(c, gin.H{"run": run, "results": results})
}
