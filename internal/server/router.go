package server

import (
	"errors"
	"time"

	"github.com/kataras/iris/v12"
	"go.uber.org/zap"

	"github.com/kashaudhan/qp-assessment/internal/auth"
	"github.com/kashaudhan/qp-assessment/internal/config"
	"github.com/kashaudhan/qp-assessment/internal/datamodels/item"
	"github.com/kashaudhan/qp-assessment/internal/infra/mq"
	"github.com/kashaudhan/qp-assessment/internal/infra/redis"
	"github.com/kashaudhan/qp-assessment/internal/middleware"
	"github.com/kashaudhan/qp-assessment/internal/repository/mysql"
	"github.com/kashaudhan/qp-assessment/internal/service"
)

// 对外只暴露一句笼统的失败信息，细节进日志
const genericError = "Something went wrong"

// RegisterRoutes 注册所有 HTTP 路由
func RegisterRoutes(app *iris.Application, cfg *config.Config) {
	// 初始化基础设施
	db := mysql.Init(&cfg.MySQL)
	redisClient := redis.Init(&cfg.Redis)
	mqConn := mq.Init(&cfg.RabbitMQ)

	// 仓储与服务
	accountRepo := mysql.NewAccountRepository(db)
	itemRepo := mysql.NewItemRepository(db)
	cartRepo := mysql.NewCartRepository(db)
	orderRepo := mysql.NewOrderRepository(db)

	accountSvc := service.NewAccountService(accountRepo, &cfg.JWT, cfg.Auth.BcryptCost)
	itemSvc := service.NewItemService(itemRepo)
	cartSvc := service.NewCartService(cartRepo, itemRepo)
	orderSvc := service.NewOrderService(db, orderRepo, mqConn, &cfg.Order)
	stockCache := service.NewStockCacheService(itemRepo, redisClient)

	ring := auth.NewConsistentHashRing(cfg.Auth.Nodes, cfg.Auth.HashReplicas)
	tokenCache := auth.NewTokenCache(redisClient, ring, time.Duration(cfg.Auth.TokenCacheTTLSeconds)*time.Second)

	api := app.Party("/api")

	// 健康检查
	api.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"message": "ok"})
	})

	// ---------- 公共接口 ----------

	// 注册
	api.Post("/sign-in", func(ctx iris.Context) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(iris.StatusBadRequest, iris.Map{"error": err.Error()})
			return
		}
		if _, err := accountSvc.SignUp(ctx.Request().Context(), req.Email, req.Password); err != nil {
			if errors.Is(err, service.ErrInvalidEmailOrPassword) {
				ctx.StopWithJSON(iris.StatusBadRequest, iris.Map{"error": "Email or password is invalid"})
				return
			}
			zap.L().Error("sign up failed", zap.Error(err))
			ctx.StopWithJSON(iris.StatusInternalServerError, iris.Map{"error": genericError})
			return
		}
		ctx.JSON(iris.Map{"message": "User created successfully!"})
	})

	// 登录
	api.Post("/login", func(ctx iris.Context) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(iris.StatusBadRequest, iris.Map{"error": err.Error()})
			return
		}
		result, err := accountSvc.Login(ctx.Request().Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, service.ErrBadCredentials) {
				ctx.StopWithJSON(iris.StatusUnauthorized, iris.Map{"error": "Email or password is invalid"})
				return
			}
			zap.L().Error("login failed", zap.Error(err))
			ctx.StopWithJSON(iris.StatusInternalServerError, iris.Map{"error": genericError})
			return
		}
		ctx.JSON(result)
	})

	// 商品列表（排除软删除）
	api.Get("/get-items", func(ctx iris.Context) {
		list, err := itemSvc.ListAvailable(ctx.Request().Context())
		if err != nil {
			zap.L().Error("list items failed", zap.Error(err))
			ctx.StopWithJSON(iris.StatusInternalServerError, iris.Map{"error": genericError})
			return
		}
		ctx.JSON(iris.Map{"data": list})
	})

	// ---------- 需要登录的接口 ----------

	authAPI := api.Party("/", middleware.Authenticate(&cfg.JWT, tokenCache))

	// 加购
	authAPI.Post("/user/add-to-cart", func(ctx iris.Context) {
		var req struct {
			ItemID   int64 `json:"itemId"`
			Quantity int64 `json:"quantity"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(iris.StatusBadRequest, iris.Map{"error": err.Error()})
			return
		}
		userID := ctx.Values().GetInt64Default("user_id", 0)
		if err := cartSvc.AddToCart(ctx.Request().Context(), userID, req.ItemID, req.Quantity); err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidCartLine), errors.Is(err, service.ErrItemsNotFound):
				ctx.StopWithJSON(iris.StatusBadRequest, iris.Map{"error": err.Error()})
			default:
				zap.L().Error("add to cart failed", zap.Int64("user_id", userID), zap.Error(err))
				ctx.StopWithJSON(iris.StatusInternalServerError, iris.Map{"error": genericError})
			}
			return
		}
		ctx.JSON(iris.Map{"message": "Item added to cart"})
	})

	// 购物车明细
	authAPI.Get("/user/get-cart", func(ctx iris.Context) {
		userID := ctx.Values().GetInt64Default("user_id", 0)
		detail, err := cartSvc.GetCart(ctx.Request().Context(), userID)
		if err != nil {
			if errors.Is(err, service.ErrItemsNotFound) {
				ctx.StopWithJSON(iris.StatusBadRequest, iris.Map{"error": err.Error()})
				return
			}
			zap.L().Error("get cart failed", zap.Int64("user_id", userID), zap.Error(err))
			ctx.StopWithJSON(iris.StatusInternalServerError, iris.Map{"error": genericError})
			return
		}
		ctx.JSON(iris.Map{"data": detail})
	})

	// 下单：核心接口，挂限流
	authAPI.Post("/user/place-order", middleware.PlaceOrderRateLimit(), func(ctx iris.Context) {
		userID := ctx.Values().GetInt64Default("user_id", 0)
		placed, err := orderSvc.PlaceOrder(ctx.Request().Context(), userID)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrEmptyCart),
				errors.Is(err, service.ErrItemsNotFound),
				errors.Is(err, service.ErrInsufficientStock):
				ctx.StopWithJSON(iris.StatusBadRequest, iris.Map{"error": err.Error()})
			default:
				zap.L().Error("place order failed", zap.Int64("user_id", userID), zap.Error(err))
				ctx.StopWithJSON(iris.StatusInternalServerError, iris.Map{"error": genericError})
			}
			return
		}
		ctx.JSON(iris.Map{
			"message": "Order placed successfully",
			"orderId": placed.OrderID,
			"amount":  placed.Amount,
		})
	})

	// 历史订单
	authAPI.Get("/user/orders", func(ctx iris.Context) {
		userID := ctx.Values().GetInt64Default("user_id", 0)
		list, err := orderSvc.ListByUser(ctx.Request().Context(), userID)
		if err != nil {
			zap.L().Error("list orders failed", zap.Int64("user_id", userID), zap.Error(err))
			ctx.StopWithJSON(iris.StatusInternalServerError, iris.Map{"error": genericError})
			return
		}
		ctx.JSON(iris.Map{"data": list})
	})

	// 单个订单明细
	authAPI.Get("/user/orders/{id:int64}", func(ctx iris.Context) {
		userID := ctx.Values().GetInt64Default("user_id", 0)
		orderID, _ := ctx.Params().GetInt64("id")
		detail, err := orderSvc.Detail(ctx.Request().Context(), userID, orderID)
		if err != nil {
			ctx.StopWithJSON(iris.StatusNotFound, iris.Map{"error": "order not found"})
			return
		}
		ctx.JSON(iris.Map{"data": detail})
	})

	// 库存快查：走 Redis 缓存，未命中回源数据库
	authAPI.Get("/items/{id:int64}/stock", func(ctx iris.Context) {
		itemID, _ := ctx.Params().GetInt64("id")
		stock, err := stockCache.Get(ctx.Request().Context(), itemID)
		if err != nil {
			ctx.StopWithJSON(iris.StatusNotFound, iris.Map{"error": "item not found"})
			return
		}
		ctx.JSON(iris.Map{"data": iris.Map{"id": itemID, "stock": stock}})
	})

	// ---------- 管理端接口 ----------

	adminAPI := authAPI.Party("/admin", middleware.RequireAdmin())

	// 创建管理员
	adminAPI.Post("/create-admin", func(ctx iris.Context) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(iris.StatusBadRequest, iris.Map{"error": err.Error()})
			return
		}
		if _, err := accountSvc.CreateAdmin(ctx.Request().Context(), req.Email, req.Password); err != nil {
			if errors.Is(err, service.ErrInvalidEmailOrPassword) {
				ctx.StopWithJSON(iris.StatusBadRequest, iris.Map{"error": "Email or password is invalid"})
				return
			}
			zap.L().Error("create admin failed", zap.Error(err))
			ctx.StopWithJSON(iris.StatusInternalServerError, iris.Map{"error": genericError})
			return
		}
		ctx.JSON(iris.Map{"message": "Admin created successfully!"})
	})

	// 入库单个商品
	adminAPI.Post("/add-item", func(ctx iris.Context) {
		var req itemRequest
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(iris.StatusBadRequest, iris.Map{"error": err.Error()})
			return
		}
		it := req.toItem()
		if err := itemSvc.Create(ctx.Request().Context(), it); err != nil {
			if errors.Is(err, service.ErrInvalidItem) {
				ctx.StopWithJSON(iris.StatusBadRequest, iris.Map{"error": "Please provide all required item detail"})
				return
			}
			zap.L().Error("add item failed", zap.Error(err))
			ctx.StopWithJSON(iris.StatusInternalServerError, iris.Map{"error": genericError})
			return
		}
		ctx.JSON(iris.Map{"message": "Item added to inventory", "data": it})
	})

	// 批量入库
	adminAPI.Post("/add-multiple-items", func(ctx iris.Context) {
		var reqs []itemRequest
		if err := ctx.ReadJSON(&reqs); err != nil {
			ctx.StopWithJSON(iris.StatusUnprocessableEntity, iris.Map{"error": "Invalid data format"})
			return
		}
		items := make([]*item.Item, 0, len(reqs))
		for _, r := range reqs {
			items = append(items, r.toItem())
		}
		if err := itemSvc.CreateBatch(ctx.Request().Context(), items); err != nil {
			if errors.Is(err, service.ErrInvalidItem) {
				ctx.StopWithJSON(iris.StatusBadRequest, iris.Map{"error": "Please provide all required item detail"})
				return
			}
			zap.L().Error("bulk add items failed", zap.Error(err))
			ctx.StopWithJSON(iris.StatusInternalServerError, iris.Map{"error": genericError})
			return
		}
		ctx.JSON(iris.Map{"message": "Items inserted successfully"})
	})

	// 更新商品
	adminAPI.Post("/update-item/{id:int64}", func(ctx iris.Context) {
		id, _ := ctx.Params().GetInt64("id")
		it, err := itemSvc.GetByID(ctx.Request().Context(), id)
		if err != nil {
			ctx.StopWithJSON(iris.StatusNotFound, iris.Map{"error": "item not found"})
			return
		}
		var req itemRequest
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(iris.StatusBadRequest, iris.Map{"error": err.Error()})
			return
		}
		req.applyTo(it)
		if err := itemSvc.Update(ctx.Request().Context(), it); err != nil {
			if errors.Is(err, service.ErrInvalidItem) {
				ctx.StopWithJSON(iris.StatusBadRequest, iris.Map{"error": "Please provide all required item detail"})
				return
			}
			zap.L().Error("update item failed", zap.Int64("item_id", id), zap.Error(err))
			ctx.StopWithJSON(iris.StatusInternalServerError, iris.Map{"error": genericError})
			return
		}
		ctx.JSON(iris.Map{"message": "Item updated successfully!", "data": it})
	})

	// 下架（软删除）
	adminAPI.Delete("/delete-item/{id:int64}", func(ctx iris.Context) {
		id, _ := ctx.Params().GetInt64("id")
		if err := itemSvc.SoftDelete(ctx.Request().Context(), id); err != nil {
			zap.L().Error("delete item failed", zap.Int64("item_id", id), zap.Error(err))
			ctx.StopWithJSON(iris.StatusInternalServerError, iris.Map{"error": genericError})
			return
		}
		ctx.JSON(iris.Map{"message": "Item deleted successfully"})
	})

	// 监控指标
	adminAPI.Get("/metrics", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"data": service.GetMonitor().GetStats()})
	})
}

// itemRequest 商品创建/更新入参
type itemRequest struct {
	Name     string `json:"name"`
	Price    *int64 `json:"price"`
	Stock    *int64 `json:"stock"`
	Category string `json:"category"`
}

func (r *itemRequest) toItem() *item.Item {
	it := &item.Item{
		Name:     r.Name,
		Category: r.Category,
	}
	if r.Price != nil {
		it.Price = *r.Price
	}
	if r.Stock != nil {
		it.Stock = *r.Stock
	}
	return it
}

// applyTo 把请求里带了的字段覆盖到已有商品上
func (r *itemRequest) applyTo(it *item.Item) {
	if r.Name != "" {
		it.Name = r.Name
	}
	if r.Category != "" {
		it.Category = r.Category
	}
	if r.Price != nil {
		it.Price = *r.Price
	}
	if r.Stock != nil {
		it.Stock = *r.Stock
	}
}
