package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"contextllm-be/internal/dto"
	"contextllm-be/internal/pkg/logger"
	"contextllm-be/internal/repository/memory"
	"contextllm-be/pkg/agent"
	"contextllm-be/pkg/backend"
	"contextllm-be/pkg/contextmgr"
	"contextllm-be/pkg/llm"
	"contextllm-be/pkg/routing"
	"contextllm-be/pkg/vectorstore"
)

type IChatService interface {
	Query(ctx context.Context, callerId string, req *dto.QueryRequest) (*dto.QueryResponse, error)
	State(callerId string) *dto.StateResponse
	Reset(callerId string)
}

type chatService struct {
	routerRepo     *memory.RouterRepository
	classifier     routing.Classifier
	providers      map[routing.Family]llm.Provider
	toolProvider   llm.ToolProvider
	agentModel     string
	index          vectorstore.SimilarityIndex
	dispatcher     contextmgr.IngestDispatcher
	scheduler      agent.SchedulingExecutor
	mailer         agent.MessagingExecutor
	eventPublisher agent.EventPublisher
	sysLogger      logger.ILogger
	routerLogger   *log.Logger

	mu sync.Mutex
}

func NewChatService(
	routerRepo *memory.RouterRepository,
	classifier routing.Classifier,
	providers map[routing.Family]llm.Provider,
	toolProvider llm.ToolProvider,
	agentModel string,
	index vectorstore.SimilarityIndex,
	dispatcher contextmgr.IngestDispatcher,
	scheduler agent.SchedulingExecutor,
	mailer agent.MessagingExecutor,
	eventPublisher agent.EventPublisher,
	sysLogger logger.ILogger,
	routerLogger *log.Logger,
) IChatService {
	return &chatService{
		routerRepo:     routerRepo,
		classifier:     classifier,
		providers:      providers,
		toolProvider:   toolProvider,
		agentModel:     agentModel,
		index:          index,
		dispatcher:     dispatcher,
		scheduler:      scheduler,
		mailer:         mailer,
		eventPublisher: eventPublisher,
		sysLogger:      sysLogger,
		routerLogger:   routerLogger,
	}
}

// routerFor returns the caller's router, building it on first use. One
// router (and one context manager) per caller identity is the isolation
// invariant for multi-tenant operation.
func (s *chatService) routerFor(callerId string) (*routing.Router, error) {
	if callerId == "" {
		return nil, fmt.Errorf("caller identity is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if router, found := s.routerRepo.Get(callerId); found {
		return router, nil
	}

	contextMgr := contextmgr.NewManager(callerId, s.index, s.dispatcher, s.routerLogger)

	adapters := make(map[routing.Family]routing.Generator, len(s.providers))
	for family, provider := range s.providers {
		adapter, err := backend.NewAdapter(family, callerId, provider, contextMgr, s.routerLogger)
		if err != nil {
			return nil, err
		}
		adapters[family] = adapter
	}

	conversationAgent := agent.New(callerId, s.toolProvider, s.scheduler, s.mailer, contextMgr, s.eventPublisher, s.routerLogger)
	router := routing.NewRouter(adapters, conversationAgent, s.agentModel, s.routerLogger)

	s.routerRepo.Save(callerId, router)
	s.sysLogger.Info("chat", "Created router for caller", map[string]interface{}{"caller_id": callerId})
	return router, nil
}

func (s *chatService) Query(ctx context.Context, callerId string, req *dto.QueryRequest) (*dto.QueryResponse, error) {
	router, err := s.routerFor(callerId)
	if err != nil {
		return nil, err
	}

	var family routing.Family
	if req.Backend != "" && routing.IsKnownFamily(req.Backend) {
		family = routing.Family(req.Backend)
	} else {
		family = s.classifier.Classify(ctx, req.Prompt)
	}

	answer, snapshot := router.Route(ctx, family, req.Prompt)

	s.sysLogger.Info("chat", "Routed query", map[string]interface{}{
		"caller_id":      callerId,
		"family":         string(family),
		"active_backend": snapshot.ActiveBackend,
		"agent_mode":     snapshot.IsInAgentMode,
	})

	return &dto.QueryResponse{
		Answer:        answer,
		ChosenBackend: snapshot.ActiveBackend,
		State:         snapshot,
	}, nil
}

func (s *chatService) State(callerId string) *dto.StateResponse {
	router, found := s.routerRepo.Get(callerId)
	if !found {
		return &dto.StateResponse{State: routing.Snapshot{}}
	}
	return &dto.StateResponse{State: router.State()}
}

func (s *chatService) Reset(callerId string) {
	if router, found := s.routerRepo.Get(callerId); found {
		router.Reset()
	}
}
