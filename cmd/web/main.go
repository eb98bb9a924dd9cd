package main

import (
	"github.com/kataras/iris/v12"
	"go.uber.org/zap"

	"github.com/kashaudhan/qp-assessment/internal/config"
	"github.com/kashaudhan/qp-assessment/internal/infra/log"
	"github.com/kashaudhan/qp-assessment/internal/server"
)

func main() {
	cfg, err := config.LoadConfig("./config")
	if err != nil {
		panic(err)
	}

	log.InitLogger()
	zap.L().Info("log init success")

	app := iris.New()
	server.RegisterRoutes(app, cfg)

	addr := cfg.Server.Addr()
	zap.L().Info("web server listening", zap.String("addr", addr))
	if err := app.Run(
		iris.Addr(addr),
		iris.WithCharset("UTF-8"),
		iris.WithOptimizations,
		iris.WithoutServerError(iris.ErrServerClosed),
	); err != nil {
		zap.L().Fatal("app run failed", zap.Error(err))
	}
}
