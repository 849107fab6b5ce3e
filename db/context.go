package db

import (
	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
)

const storeKey = "store"

// SetDBtoContext exposes a Store over database to gin handlers.
func SetDBtoContext(database *gorm.DB) gin.HandlerFunc {
	store := NewStore(database)
	return func(c *gin.Context) {
		c.Set(storeKey, store)
		c.Next()
	}
}

// StoreInstance returns the request's Store, or nil outside SetDBtoContext.
func StoreInstance(c *gin.Context) *Store {
	v, ok := c.Get(storeKey)
	if !ok {
		return nil
	}
	store, _ := v.(*Store)
	return store
}
