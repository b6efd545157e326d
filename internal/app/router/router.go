package router

import (
	"github.com/gin-gonic/gin"

	authhandler "marketroach/internal/feature/auth/transport/handler"
	markethandler "marketroach/internal/feature/marketdata/transport/handler"
	symbolhandler "marketroach/internal/feature/symbols/transport/handler"
	platformhandler "marketroach/internal/platform/http/handler"
	jwtmw "marketroach/internal/platform/jwt"
)

func NewRouter(authHandler *authhandler.AuthHandler, records *markethandler.RecordsHandler,
	symbol *symbolhandler.SymbolHandler) *gin.Engine {
	r := gin.Default()

	// 認証不要
	// 導通確認用
	r.GET("/healthz", platformhandler.Health)
	r.HEAD("/healthz", platformhandler.Health)
	// 新規ユーザー登録
	r.POST("/signup", authHandler.Signup)
	// ログイン（JWT 発行）
	r.POST("/login", authHandler.Login)

	// 認証必須のルート
	auth := r.Group("/")
	auth.Use(jwtmw.AuthRequired())
	{
		auth.GET("/market-data/:symbol", records.Get)
		auth.GET("/symbols", symbol.List)
	}

	return r
}
