package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type MetricsModule struct {
	Gatherer prometheus.Gatherer
	Throttle gin.HandlerFunc
}

func NewMetricsModule(g prometheus.Gatherer, throttle gin.HandlerFunc) *MetricsModule {
	if throttle == nil {
		throttle = func(c *gin.Context) { c.Next() }
	}
	return &MetricsModule{Gatherer: g, Throttle: throttle}
}

func (m *MetricsModule) Register(rg *gin.RouterGroup) {
	rg.GET("/metrics", m.Throttle, gin.WrapH(promhttp.HandlerFor(m.Gatherer, promhttp.HandlerOpts{})))
}
