package webserver

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/stake-plus/govboard/src/api/config"
	"github.com/stake-plus/govboard/src/api/data"
	"github.com/stake-plus/govboard/src/gov"
	"github.com/stake-plus/govboard/src/wallet"
)

// submissionTimeout bounds the signing wait below the server's write timeout
// so a slow wallet surfaces as a timeout response instead of a severed
// connection.
const submissionTimeout = 25 * time.Second

// Deps carries the constructor-injected state the handlers work against.
type Deps struct {
	Cfg        config.Config
	Rdb        *redis.Client
	Store      *data.Store
	Cache      *data.Cache
	Sessions   *wallet.Manager
	Signer     *wallet.RemoteSigner
	Service    *gov.Service
	Reconciler *gov.Reconciler
	Node       gov.Node
}

func New(d Deps) *gin.Engine {
	g := gin.New()
	g.Use(gin.Logger(), gin.Recovery())
	attachRoutes(g, d)
	return g
}

func attachRoutes(r *gin.Engine, d Deps) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     d.Cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	authH := NewAuth(d.Rdb, []byte(d.Cfg.JWTSecret), d.Sessions, d.Reconciler)
	propH := NewProposals(d.Service, d.Store, d.Reconciler)
	voteH := NewVotes(d.Service, d.Store)
	profileH := NewProfile(d.Store, d.Cache, d.Node, d.Sessions)
	bridgeH := NewWalletBridge(d.Signer)
	settingsH := NewSettings(d.Store, d.Cache)

	submitLimiter := NewRateLimiter(10, time.Minute)

	v1 := r.Group("/v1")
	{
		v1.POST("/auth/challenge", authH.Challenge)
		v1.POST("/auth/verify", authH.Verify)

		secured := v1.Group("")
		secured.Use(JWTMiddleware([]byte(d.Cfg.JWTSecret)))
		{
			secured.POST("/auth/disconnect", authH.Disconnect)

			secured.GET("/proposals", propH.List)
			secured.GET("/proposals/:id", propH.Get)
			secured.POST("/proposals", RateLimitMiddleware(submitLimiter), propH.Create)

			secured.POST("/proposals/:id/votes", RateLimitMiddleware(submitLimiter), voteH.Cast)
			secured.GET("/proposals/:id/votes", voteH.Summary)

			secured.GET("/profile", profileH.Show)

			secured.GET("/wallet/requests", bridgeH.Next)
			secured.POST("/wallet/requests/:id", bridgeH.Complete)

			secured.DELETE("/settings/cache", settingsH.ClearCache)
		}
	}
}
