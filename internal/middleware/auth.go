package middleware

import (
	"strings"

	"github.com/kataras/iris/v12"

	"github.com/kashaudhan/qp-assessment/internal/auth"
	"github.com/kashaudhan/qp-assessment/internal/config"
	"github.com/kashaudhan/qp-assessment/internal/datamodels/account"
)

// Authenticate JWT 鉴权中间件。先查 Redis 缓存的解析结果，未命中再验签并回填。
// cache 可为 nil，此时每次都走完整验签。
func Authenticate(cfg *config.JWTConfig, cache *auth.TokenCache) iris.Handler {
	return func(ctx iris.Context) {
		token := ctx.GetHeader("Authorization")
		token = strings.TrimPrefix(token, "Bearer ")
		if token == "" {
			ctx.StopWithJSON(iris.StatusUnauthorized, iris.Map{"error": "missing token"})
			return
		}

		var claims *auth.Claims
		if cache != nil {
			if cached, ok, err := cache.Get(ctx.Request().Context(), token); err == nil && ok {
				claims = cached
			}
		}
		if claims == nil {
			parsed, err := auth.ParseToken(cfg, token)
			if err != nil {
				ctx.StopWithJSON(iris.StatusUnauthorized, iris.Map{"error": "invalid token"})
				return
			}
			claims = parsed
			if cache != nil {
				_ = cache.Set(ctx.Request().Context(), token, claims)
			}
		}

		ctx.Values().Set("user_id", claims.UserID)
		ctx.Values().Set("email", claims.Email)
		ctx.Values().Set("role", claims.Role)
		ctx.Next()
	}
}

// RequireAdmin 管理端角色门禁，必须挂在 Authenticate 之后
func RequireAdmin() iris.Handler {
	return func(ctx iris.Context) {
		if ctx.Values().GetString("role") != account.RoleAdmin {
			ctx.StopWithJSON(iris.StatusUnauthorized, iris.Map{"error": "admin only"})
			return
		}
		ctx.Next()
	}
}
