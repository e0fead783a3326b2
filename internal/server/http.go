// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-progression-engine/pkg/handler"
	"github.com/AccelByte/extend-progression-engine/pkg/pipeline"
	"github.com/AccelByte/extend-progression-engine/pkg/service"
)

// HTTPServer serves the progression API.
type HTTPServer struct {
	server  *http.Server
	port    int
	manager *pipeline.Manager
	checker *service.HealthChecker
	cfg     handler.RouterConfig
}

// NewHTTPServer creates a new HTTP server instance.
func NewHTTPServer(port int, manager *pipeline.Manager, checker *service.HealthChecker, cfg handler.RouterConfig) *HTTPServer {
	return &HTTPServer{
		port:    port,
		manager: manager,
		checker: checker,
		cfg:     cfg,
	}
}

// Setup builds the gin router.
func (s *HTTPServer) Setup(environment string) error {
	if environment == "dev" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	cfg := s.cfg
	if s.checker != nil {
		cfg.Ready = func(c *gin.Context) error {
			return s.checker.Check(c.Request.Context())
		}
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           handler.NewRouter(s.manager, cfg),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return nil
}

func (s *HTTPServer) Start(ctx context.Context) error {
	return listenAndServe("HTTP", s.server)
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return shutdownHTTP("HTTP", s.server, ctx)
}

// listenAndServe binds synchronously so a taken port fails startup,
// then serves in the background until Shutdown.
func listenAndServe(name string, srv *http.Server) error {
	lis, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("%s server failed to listen on %s: %w", name, srv.Addr, err)
	}

	go func() {
		logrus.Infof("%s server listening on %s", name, lis.Addr())
		if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Errorf("%s server stopped unexpectedly: %v", name, err)
		}
	}()
	return nil
}

func shutdownHTTP(name string, srv *http.Server, ctx context.Context) error {
	logrus.Infof("shutting down %s server...", name)
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("%s server shutdown: %w", name, err)
	}
	logrus.Infof("%s server stopped", name)
	return nil
}
