package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/alang8/Help-Restaurant-Review/internal/node"
	"github.com/alang8/Help-Restaurant-Review/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"github.com/sourcegraph/sitemap"
)

// RestaurantLister lists nodes of one type.
type RestaurantLister interface {
	ListByType(ctx context.Context, t node.Type) ([]*node.Node, error)
}

// RegisterSitemap serves /sitemap.xml with one entry per restaurant. Entries
// point at "<base>/restaurant/<nodeId>/<slug>". An empty baseURL uses the
// request host.
func RegisterSitemap(r gin.IRouter, nodes RestaurantLister, baseURL string) {
	r.GET("/sitemap.xml", func(c *gin.Context) {
		list, err := nodes.ListByType(c.Request.Context(), node.TypeRestaurant)
		if err != nil {
			logger.Errorf("sitemap: %v", err)
			c.Status(http.StatusInternalServerError)
			return
		}
		base := requestBase(c, baseURL)
		var urlSet sitemap.URLSet
		for _, n := range list {
			s := n.Slug
			if s == "" {
				s = slug.Make(n.Title)
			}
			created := n.DateCreated
			urlSet.URLs = append(urlSet.URLs, sitemap.URL{
				Loc:        base + "/restaurant/" + n.NodeID + "/" + s,
				LastMod:    &created,
				ChangeFreq: sitemap.Daily,
				Priority:   0.7,
			})
		}
		out, err := sitemap.Marshal(&urlSet)
		if err != nil {
			logger.Errorf("sitemap marshal: %v", err)
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Data(http.StatusOK, "application/xml", out)
	})
}

func requestBase(c *gin.Context, configured string) string {
	if configured != "" {
		return strings.TrimRight(configured, "/")
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}
