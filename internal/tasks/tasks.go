package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/AnhAnhii/veterans-verify-system/internal/config"
	"github.com/AnhAnhii/veterans-verify-system/internal/logger"
	"github.com/AnhAnhii/veterans-verify-system/internal/models"
	"github.com/AnhAnhii/veterans-verify-system/internal/services"
)

// TaskType defines the type of a background task.
const (
	TypeStatusRefresh      = "verification:status:refresh"
	TypeAPILogWrite        = "apilog:write"
	TypeVerificationExpire = "verification:expire"
)

const (
	QueueDefault = "default"
	QueueLow     = "low"
)

// --- Task Client (Enqueuing tasks) ---

// redisOpt reuses the application's Redis settings, TLS included.
func redisOpt(rdb *redis.Client) asynq.RedisClientOpt {
	opts := rdb.Options()
	return asynq.RedisClientOpt{
		Addr:      opts.Addr,
		Username:  opts.Username,
		Password:  opts.Password,
		DB:        opts.DB,
		TLSConfig: opts.TLSConfig,
	}
}

func NewClient(rdb *redis.Client) *asynq.Client {
	return asynq.NewClient(redisOpt(rdb))
}

// TaskEnqueuer is satisfied by *asynq.Client.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Enqueuer builds and queues the application's tasks.
type Enqueuer struct {
	client       TaskEnqueuer
	refreshDelay time.Duration
}

func NewEnqueuer(client TaskEnqueuer, cfg *config.Config) *Enqueuer {
	return &Enqueuer{client: client, refreshDelay: cfg.StatusRefreshDelay}
}

type StatusRefreshPayload struct {
	VerificationID string `json:"verification_id"`
	Attempt        int    `json:"attempt"`
}

// ScheduleStatusRefresh queues a provider poll. The delay grows linearly with attempt.
func (e *Enqueuer) ScheduleStatusRefresh(ctx context.Context, verificationID string, attempt int) error {
	payload, err := json.Marshal(StatusRefreshPayload{VerificationID: verificationID, Attempt: attempt})
	if err != nil {
		return fmt.Errorf("failed to marshal status refresh payload: %w", err)
	}
	task := asynq.NewTask(TypeStatusRefresh, payload)
	_, err = e.client.EnqueueContext(ctx, task,
		asynq.ProcessIn(e.refreshDelay*time.Duration(attempt+1)),
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(3),
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue status refresh for %s: %w", verificationID, err)
	}
	return nil
}

func (e *Enqueuer) EnqueueAPILog(ctx context.Context, entry *models.APILog) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal api log payload: %w", err)
	}
	_, err = e.client.EnqueueContext(ctx, asynq.NewTask(TypeAPILogWrite, payload),
		asynq.Queue(QueueLow), asynq.MaxRetry(2))
	if err != nil {
		return fmt.Errorf("failed to enqueue api log: %w", err)
	}
	return nil
}

// EnqueueExpiry queues one expiry sweep. Concurrent sweeps are collapsed by asynq.Unique.
func (e *Enqueuer) EnqueueExpiry(ctx context.Context) error {
	_, err := e.client.EnqueueContext(ctx, asynq.NewTask(TypeVerificationExpire, nil),
		asynq.Queue(QueueLow), asynq.Unique(10*time.Minute))
	if err != nil && !errors.Is(err, asynq.ErrDuplicateTask) {
		return fmt.Errorf("failed to enqueue expiry sweep: %w", err)
	}
	return nil
}

// --- Task Server (Processing tasks) ---

// TaskProcessor handles the processing of tasks.
type TaskProcessor struct {
	cfg             *config.Config
	verificationSvc services.IVerificationService
	apiLogSvc       services.IAPILogService
	refresher       services.StatusRefreshScheduler
	log             *zap.Logger
}

func NewTaskProcessor(
	cfg *config.Config,
	verificationSvc services.IVerificationService,
	apiLogSvc services.IAPILogService,
	refresher services.StatusRefreshScheduler,
	log *zap.Logger,
) *TaskProcessor {
	return &TaskProcessor{
		cfg:             cfg,
		verificationSvc: verificationSvc,
		apiLogSvc:       apiLogSvc,
		refresher:       refresher,
		log:             logger.Named(log, "tasks"),
	}
}

// SetupServer configures an asynq server and its handler mux. The caller runs it.
func SetupServer(rdb *redis.Client, processor *TaskProcessor) (*asynq.Server, *asynq.ServeMux) {
	srv := asynq.NewServer(
		redisOpt(rdb),
		asynq.Config{
			Queues: map[string]int{
				QueueDefault: 6,
				QueueLow:     2,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				processor.log.Error("task failed",
					zap.String("type", task.Type()),
					zap.ByteString("payload", task.Payload()),
					zap.Error(err))
			}),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeStatusRefresh, processor.HandleStatusRefreshTask)
	mux.HandleFunc(TypeAPILogWrite, processor.HandleAPILogWriteTask)
	mux.HandleFunc(TypeVerificationExpire, processor.HandleVerificationExpireTask)
	return srv, mux
}

// --- Task Handlers ---

// HandleStatusRefreshTask polls the provider and re-queues itself while the verification
// is still processing, up to StatusRefreshMaxRuns polls.
func (p *TaskProcessor) HandleStatusRefreshTask(ctx context.Context, t *asynq.Task) error {
	var payload StatusRefreshPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal status refresh payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.VerificationID == "" {
		return fmt.Errorf("status refresh payload has no verification id: %w", asynq.SkipRetry)
	}

	status, err := p.verificationSvc.RefreshStatus(ctx, payload.VerificationID)
	if errors.Is(err, services.ErrNotFound) {
		return fmt.Errorf("verification %s not found: %w", payload.VerificationID, asynq.SkipRetry)
	}
	if err != nil {
		return fmt.Errorf("failed to refresh verification %s: %w", payload.VerificationID, err)
	}

	if status != models.StatusProcessing {
		p.log.Info("status refresh settled",
			zap.String("verification_id", payload.VerificationID),
			zap.String("status", string(status)))
		return nil
	}

	next := payload.Attempt + 1
	if next >= p.cfg.StatusRefreshMaxRuns {
		p.log.Info("status refresh gave up",
			zap.String("verification_id", payload.VerificationID),
			zap.Int("attempts", next))
		return nil
	}
	return p.refresher.ScheduleStatusRefresh(ctx, payload.VerificationID, next)
}

func (p *TaskProcessor) HandleAPILogWriteTask(ctx context.Context, t *asynq.Task) error {
	var entry models.APILog
	if err := json.Unmarshal(t.Payload(), &entry); err != nil {
		return fmt.Errorf("failed to unmarshal api log payload: %v: %w", err, asynq.SkipRetry)
	}
	return p.apiLogSvc.Record(ctx, &entry)
}

func (p *TaskProcessor) HandleVerificationExpireTask(ctx context.Context, t *asynq.Task) error {
	n, err := p.verificationSvc.ExpireStale(ctx, p.cfg.VerificationExpiry)
	if err != nil {
		return err
	}
	p.log.Info("expiry sweep finished", zap.Int64("expired", n))
	return nil
}
