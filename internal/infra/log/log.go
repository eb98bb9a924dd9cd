package log

import (
	"sync"

	"go.uber.org/zap"
)

var once sync.Once

// InitLogger 初始化全局 zap logger，业务代码统一用 zap.L()
func InitLogger() {
	once.Do(func() {
		logger, err := zap.NewProduction()
		if err != nil {
			panic(err)
		}
		zap.ReplaceGlobals(logger)
	})
}
