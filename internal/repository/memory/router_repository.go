package memory

import (
	"time"

	"contextllm-be/pkg/routing"

	"github.com/patrickmn/go-cache"
)

// RouterRepository holds one Router per caller identity. Per-caller
// instances are the isolation unit for conversation state; eviction
// after inactivity simply starts the next conversation fresh.
type RouterRepository struct {
	cache *cache.Cache
}

func NewRouterRepository() *RouterRepository {
	// Create a cache with a default expiration time of 1 hour, and which
	// purges expired items every 10 minutes
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &RouterRepository{
		cache: c,
	}
}

func (r *RouterRepository) Save(callerId string, router *routing.Router) {
	r.cache.Set(callerId, router, cache.DefaultExpiration)
}

func (r *RouterRepository) Get(callerId string) (*routing.Router, bool) {
	if x, found := r.cache.Get(callerId); found {
		return x.(*routing.Router), true
	}
	return nil, false
}

func (r *RouterRepository) Delete(callerId string) {
	r.cache.Delete(callerId)
}
