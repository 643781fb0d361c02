package router

import (
	"time"

	"siso/internal/auth"
	"siso/internal/config"
	"siso/internal/handler"
	"siso/internal/middleware"
	"siso/internal/model"
	"siso/internal/realtime"
	"siso/internal/repository"
	"siso/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
//
// events receives every committed drawer event (nil drops them). hub is
// optional; without it /api/ws is not mounted.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, hub *realtime.Hub, events service.Publisher) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.AllowedOrigins()))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	tokens := auth.NewTokens(cfg.JWTSecret)

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	caixaRepo := repository.NewCaixaRepository(db)
	movimentoRepo := repository.NewItemMovimentoRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, tokens, cfg)
	usuarioSvc := service.NewUsuarioService(usuarioRepo)
	caixaSvc := service.NewCaixaService(caixaRepo, usuarioRepo, events)
	movimentoSvc := service.NewItemMovimentoService(movimentoRepo, caixaRepo, events)
	referenciaSvc := service.NewReferenciaService(
		repository.NewLookupRepository[model.Receita](db),
		repository.NewLookupRepository[model.Despesa](db),
		repository.NewLookupRepository[model.Fornecedor](db),
		repository.NewLookupRepository[model.Dentista](db),
	)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuarioH := handler.NewUsuarioHandler(usuarioSvc)
	caixaH := handler.NewCaixaHandler(caixaSvc, movimentoSvc)
	movimentoH := handler.NewItemMovimentoHandler(movimentoSvc, caixaSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	login := r.Group("/login")
	{
		login.POST("", middleware.LoginRateLimiter(), authH.Login)
		login.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	api := r.Group("/api", middleware.JWTAuth(tokens, usuarioRepo))
	{
		caixa := api.Group("/caixa")
		{
			caixa.GET("", caixaH.Listar)
			caixa.GET("/caixas", caixaH.Relatorio)
			caixa.GET("/periodo", caixaH.ListarPorPeriodo)
			// :id is the user id for the open-drawer routes
			caixa.GET("/:id", caixaH.ObterAberto)
			caixa.POST("/:id", caixaH.Abrir)
			caixa.PUT("/:id", caixaH.Fechar)
			// and the drawer id below
			caixa.GET("/:id/movimentos", caixaH.ListarMovimentos)
			caixa.POST("/:id/movimentos", caixaH.CriarMovimento)
		}

		mov := api.Group("/itemMovimento")
		{
			mov.GET("", movimentoH.Listar)
			mov.POST("", movimentoH.Criar)
			mov.GET("/periodo", movimentoH.ListarPorPeriodo)
			mov.GET("/caixa/:id", movimentoH.ListarPorCaixa)
			mov.GET("/:id", movimentoH.ObterPorID)
			mov.PUT("/:id", movimentoH.Atualizar)
			mov.DELETE("/:id", movimentoH.Excluir)
		}

		usuario := api.Group("/usuario")
		{
			usuario.POST("", usuarioH.Criar)
			usuario.GET("/username", usuarioH.BuscarIDPorUsername)
			usuario.GET("/:id", usuarioH.BuscarPorID)
			usuario.PUT("/:id", usuarioH.Atualizar)
			usuario.DELETE("/:id", usuarioH.Excluir)
		}

		for _, tipo := range []string{model.TipoReceita, model.TipoDespesa, model.TipoFornecedor, model.TipoDentista} {
			refH := handler.NewReferenciaHandler(referenciaSvc, tipo)
			ref := api.Group("/" + tipo)
			ref.GET("", refH.Listar)
			ref.POST("", refH.Criar)
			ref.GET("/:id", refH.ObterPorID)
		}

		if hub != nil {
			api.GET("/ws", hub.ServeWs)
		}
	}

	// Swagger UI, only outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
