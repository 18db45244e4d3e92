package http

import (
	"context"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Sketch/internal/adapters/signal"
	"github.com/dkeye/Sketch/internal/app"
	"github.com/dkeye/Sketch/internal/config"
	"github.com/dkeye/Sketch/internal/domain"
)

func genClientToken() string {
	return uuid.NewString()
}

// ClientTokenMiddleware gives every browser a stable token for logs
// and future auth; the per-connection session id stays ephemeral.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

// SetupRouter wires HTTP routes (static UI + rooms REST + WS) with the
// orchestrator.
func SetupRouter(ctx context.Context, cfg *config.Config, orch *app.Orchestrator) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("SketchSessions", store))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	api := r.Group("/api")

	// GET /api/rooms — list rooms with member/stroke counts
	api.GET("/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rooms": orch.Rooms.List()})
	})

	// POST /api/rooms — create (or get) a room
	api.POST("/rooms", func(c *gin.Context) {
		var req struct {
			ID string `json:"id"`
		}
		if err := c.BindJSON(&req); err != nil || req.ID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}
		room := orch.Rooms.GetOrCreate(domain.RoomID(req.ID))
		c.JSON(http.StatusOK, gin.H{
			"id":           room.Room().ID,
			"member_count": room.MemberCount(),
			"stroke_count": room.Board().Len(),
		})
	})

	// GET /api/rooms/:id — room info
	api.GET("/rooms/:id", func(c *gin.Context) {
		room := orch.Rooms.GetOrCreate(domain.RoomID(c.Param("id")))
		c.JSON(http.StatusOK, gin.H{
			"id":           room.Room().ID,
			"member_count": room.MemberCount(),
			"stroke_count": room.Board().Len(),
		})
	})

	// DELETE /api/rooms/:id — kick members and drop the room
	api.DELETE("/rooms/:id", func(c *gin.Context) {
		orch.EvictRoom(domain.RoomID(c.Param("id")))
		c.Status(http.StatusNoContent)
	})

	ctrl := signal.NewController(orch, cfg)
	r.GET("/ws", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("client", c.GetString("client_token")).Msg("ws endpoint hit")
		ctrl.HandleSession(ctx, c)
	})

	return r
}
