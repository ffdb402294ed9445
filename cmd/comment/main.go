package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"UniShare.com/cmd/comment/dal"
	"UniShare.com/cmd/comment/dal/db"
	"UniShare.com/cmd/comment/infras/redis"
	"UniShare.com/cmd/comment/service"
	"UniShare.com/cmd/model"
	"UniShare.com/config"
	"UniShare.com/config/pprof"
	"UniShare.com/pkg/constants"
	"UniShare.com/pkg/errno"
	"UniShare.com/pkg/mq"
	"UniShare.com/pkg/utils"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/middlewares/server/recovery"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/cors"
	hertzjwt "github.com/hertz-contrib/jwt"
	"github.com/opentracing/opentracing-go"
	"github.com/uber/jaeger-client-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
)

const identityKey = "user_id"

func Init() {
	dal.Init()
	redis.Load()

	if err := utils.InitSnowflake(
		config.ConfigInfo.Snowflake.WorkerID,
		config.ConfigInfo.Snowflake.DatacenterID,
	); err != nil {
		panic(err)
	}
}

func initJaeger() io.Closer {
	cfg := jaegercfg.Configuration{
		ServiceName: constants.CommentServiceName,
		Sampler: &jaegercfg.SamplerConfig{
			Type:  jaeger.SamplerTypeConst,
			Param: 1,
		},
		Reporter: &jaegercfg.ReporterConfig{
			LogSpans:           false,
			LocalAgentHostPort: config.ConfigInfo.Jaeger.Addr,
		},
	}
	tracer, closer, err := cfg.NewTracer()
	if err != nil {
		hlog.Warnf("Failed to initialize jaeger tracer: %v", err)
		return nil
	}
	opentracing.SetGlobalTracer(tracer)
	return closer
}

func rabbitmqURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s/",
		config.ConfigInfo.RabbitMq.Username,
		config.ConfigInfo.RabbitMq.Password,
		config.ConfigInfo.RabbitMq.Addr,
	)
}

// initMessageQueue wires the producer the mutation paths publish on and
// the consumers that drive live subscriptions and like-count cache sync.
func initMessageQueue(ctx context.Context) *service.SubscriptionManager {
	producer, err := mq.NewProducer(rabbitmqURL())
	if err != nil {
		hlog.Fatalf("Failed to initialize message queue producer: %v", err)
		panic(err)
	}
	SetGlobalProducer(producer)

	consumer, err := mq.NewConsumer(rabbitmqURL())
	if err != nil {
		hlog.Fatalf("Failed to initialize message queue consumer: %v", err)
		panic(err)
	}

	manager := service.NewSubscriptionManager(func(ctx context.Context, publicationId int64) ([]*model.CommentNode, error) {
		return service.NewCommentService(ctx, producer).ListComments(ctx, publicationId)
	})
	if err := manager.Start(ctx, consumer); err != nil {
		hlog.Fatalf("Failed to start subscription manager: %v", err)
		panic(err)
	}
	SetGlobalSubscriptions(manager)

	if err := consumer.ConsumeLikeEvents(ctx, service.NewLikeCacheSyncer()); err != nil {
		hlog.Fatalf("Failed to start like cache syncer: %v", err)
		panic(err)
	}

	hlog.Info("Message queue producer and consumers initialized successfully")
	return manager
}

func newAuthMiddleware() *hertzjwt.HertzJWTMiddleware {
	mw, err := hertzjwt.New(&hertzjwt.HertzJWTMiddleware{
		Realm:       "unishare",
		Key:         []byte(config.ConfigInfo.Jwt.Secret),
		Timeout:     24 * time.Hour,
		MaxRefresh:  time.Hour,
		IdentityKey: identityKey,
		IdentityHandler: func(ctx context.Context, c *app.RequestContext) interface{} {
			claims := hertzjwt.ExtractClaims(ctx, c)
			if v, ok := claims[identityKey].(float64); ok {
				return int64(v)
			}
			return int64(0)
		},
		Unauthorized: func(ctx context.Context, c *app.RequestContext, code int, message string) {
			c.JSON(code, Response{
				Code:    errno.AuthorizationFailedCode,
				Message: message,
			})
		},
	})
	if err != nil {
		panic(err)
	}
	return mw
}

func register(r *server.Hertz, auth *hertzjwt.HertzJWTMiddleware) {
	v1 := r.Group("/v1")

	comment := v1.Group("/comment")
	comment.GET("/list", ListComment)
	comment.GET("/live", LiveComments)
	comment.POST("/create", auth.MiddlewareFunc(), CreateComment)
	comment.POST("/delete", auth.MiddlewareFunc(), DeleteComment)

	like := v1.Group("/like")
	like.GET("/count", LikeCount)
	like.POST("/action", auth.MiddlewareFunc(), LikeAction)
}

func main() {
	config.Init()
	pprof.Load()
	Init()

	if closer := initJaeger(); closer != nil {
		defer closer.Close()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	manager := initMessageQueue(ctx)
	defer manager.Close()

	addr := config.ConfigInfo.Server.Addr
	if addr == "" {
		addr = "0.0.0.0:8891"
	}
	r := server.New(
		server.WithHostPorts(addr),
		server.WithHandleMethodNotAllowed(true),
	)
	r.NoHijackConnPool = true

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:8870", "http://localhost:8888"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(recovery.Recovery(recovery.WithRecoveryHandler(
		func(ctx context.Context, c *app.RequestContext, err interface{}, stack []byte) {
			hlog.SystemLogger().CtxErrorf(ctx, "[Recovery] err=%v\nstack=%s", err, stack)
			c.JSON(consts.StatusInternalServerError, map[string]interface{}{
				"code":    errno.ServiceErrCode,
				"message": fmt.Sprintf("[Recovery] err=%v", err),
			})
		})))

	register(r, newAuthMiddleware())

	// Touch db handle once so a misconfigured DSN fails loudly at boot.
	if db.DB == nil {
		panic("database not initialized")
	}

	r.Spin()
}
