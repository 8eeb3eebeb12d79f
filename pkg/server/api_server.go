package server

import (
	"fmt"

	"github.com/NeuralTrust/TrustBook/pkg/config"
	"github.com/sirupsen/logrus"
)

type (
	APIServerDI struct {
		Config *config.Config
		Logger *logrus.Logger
	}
	APIServer struct {
		*BaseServer
	}
)

func NewAPIServer(di APIServerDI) *APIServer {
	return &APIServer{
		BaseServer: NewBaseServer(di.Config, di.Logger),
	}
}

func (s *APIServer) Run() error {
	s.setupMetricsEndpoint()

	addr := fmt.Sprintf("%s:%d", s.Config.Server.Host, s.Config.Server.Port)
	s.Logger.WithField("addr", addr).Info("starting api server")
	return s.Router.Listen(addr)
}

func (s *APIServer) Shutdown() error {
	s.shutdownMetrics()
	return s.Router.Shutdown()
}
