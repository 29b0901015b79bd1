package handlers

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/Neo-sk01/newmatter-sub000/internal/cache"
	"github.com/Neo-sk01/newmatter-sub000/internal/importer"
	"github.com/Neo-sk01/newmatter-sub000/internal/logger"
	"github.com/Neo-sk01/newmatter-sub000/internal/models"
	"github.com/Neo-sk01/newmatter-sub000/internal/outreach"
	"github.com/Neo-sk01/newmatter-sub000/internal/store"
)

const companyKey = "company"

// DefaultMaxUploadBytes bounds multipart and raw CSV uploads.
const DefaultMaxUploadBytes = 10 << 20

// EmailDrafter writes one email for a lead.
type EmailDrafter interface {
	DraftEmail(ctx context.Context, prompt models.Prompt, lead models.Lead, sender string) (models.DraftedEmail, error)
}

// FollowUpRunner advances due sequence enrollments.
type FollowUpRunner interface {
	ProcessDue(ctx context.Context, now time.Time) (*outreach.RunResult, error)
}

// Deps are the collaborators of Handler. Drafter, FollowUps and Cache may be
// nil: the endpoints that need them answer 503, and lists go uncached.
type Deps struct {
	Store          *store.Store
	Importer       *importer.Service
	Drafter        EmailDrafter
	FollowUps      FollowUpRunner
	Cache          cache.Cache
	CacheTTL       time.Duration
	CronSecret     string
	MaxUploadBytes int64
}

// Handler serves the outreach HTTP API.
type Handler struct {
	store          *store.Store
	importer       *importer.Service
	drafter        EmailDrafter
	followUps      FollowUpRunner
	cache          cache.Cache
	cacheTTL       time.Duration
	cronSecret     string
	maxUploadBytes int64
	now            func() time.Time
}

func New(d Deps) *Handler {
	if d.MaxUploadBytes <= 0 {
		d.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if d.CacheTTL <= 0 {
		d.CacheTTL = time.Minute
	}
	return &Handler{
		store:          d.Store,
		importer:       d.Importer,
		drafter:        d.Drafter,
		followUps:      d.FollowUps,
		cache:          d.Cache,
		cacheTTL:       d.CacheTTL,
		cronSecret:     d.CronSecret,
		maxUploadBytes: d.MaxUploadBytes,
		now:            time.Now,
	}
}

// Register mounts every route on r.
func (h *Handler) Register(r *gin.Engine) {
	r.Use(RequestLogger())

	r.GET("/healthz", h.Health)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	v1.POST("/followups/run", h.requireCronSecret, h.RunFollowUps)

	companies := v1.Group("/companies")
	companies.POST("", h.CreateCompany)
	companies.GET("", h.ListCompanies)

	company := companies.Group("/:company_id", h.loadCompany)
	company.GET("", h.GetCompany)
	company.GET("/analytics", h.GetAnalytics)
	company.GET("/sent-emails", h.ListSentEmails)

	imports := company.Group("/imports")
	imports.POST("/parse", h.ParseImport)
	imports.POST("/analyze", h.AnalyzeImport)
	imports.POST("/suggest-mapping", h.SuggestMapping)
	imports.POST("/commit", h.CommitImport)

	leads := company.Group("/leads")
	leads.POST("", h.CreateLead)
	leads.GET("", h.ListLeads)
	leads.GET("/:lead_id", h.GetLead)
	leads.PATCH("/:lead_id", h.UpdateLead)
	leads.DELETE("/:lead_id", h.DeleteLead)
	leads.POST("/:lead_id/draft", h.DraftEmail)

	prompts := company.Group("/prompts")
	prompts.POST("", h.CreatePrompt)
	prompts.GET("", h.ListPrompts)
	prompts.GET("/:prompt_id", h.GetPrompt)
	prompts.PATCH("/:prompt_id", h.UpdatePrompt)
	prompts.DELETE("/:prompt_id", h.DeletePrompt)

	sequences := company.Group("/sequences")
	sequences.POST("", h.CreateSequence)
	sequences.GET("", h.ListSequences)
	sequences.GET("/:sequence_id", h.GetSequence)
	sequences.PATCH("/:sequence_id", h.UpdateSequence)
	sequences.DELETE("/:sequence_id", h.DeleteSequence)
	sequences.POST("/:sequence_id/steps", h.AddSequenceStep)
	sequences.POST("/:sequence_id/enrollments", h.EnrollLeads)
	sequences.GET("/:sequence_id/enrollments", h.ListEnrollments)
	sequences.POST("/:sequence_id/enrollments/:enrollment_id/stop", h.StopEnrollment)
}

// RequestLogger attaches a request-scoped logger to the request context and
// logs each completed request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-ID", requestID)

		log := logger.GetDefault().With("request_id", requestID)
		c.Request = c.Request.WithContext(logger.ContextWithLogger(c.Request.Context(), log))

		c.Next()

		log.Info("Request handled",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}

// Health godoc
// @Summary Liveness and database check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} models.APIError
// @Router /healthz [get]
func (h *Handler) Health(c *gin.Context) {
	sqlDB, err := h.store.DB().DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		RespondWithError(c, http.StatusServiceUnavailable, models.ErrorCodeServiceUnavailable, "Database unavailable", nil)
		return
	}
	RespondWithSuccess(c, http.StatusOK, gin.H{"status": "ok"})
}

// loadCompany resolves :company_id for every company-scoped route.
func (h *Handler) loadCompany(c *gin.Context) {
	id, ok := parseIDParam(c, "company_id", "company ID")
	if !ok {
		return
	}
	company, err := h.store.GetCompany(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			RespondWithError(c, http.StatusNotFound, models.ErrorCodeCompanyNotFound, "Company not found", gin.H{"id": id})
		} else {
			RespondWithError(c, http.StatusInternalServerError, models.ErrorCodeInternalServerError, "Failed to load company", nil)
		}
		return
	}
	c.Set(companyKey, company)
	c.Next()
}

func currentCompany(c *gin.Context) *models.Company {
	return c.MustGet(companyKey).(*models.Company)
}

// requireCronSecret checks the bearer token of scheduler calls. With no
// secret configured the endpoint is closed.
func (h *Handler) requireCronSecret(c *gin.Context) {
	token, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	if h.cronSecret == "" || !found || subtle.ConstantTimeCompare([]byte(token), []byte(h.cronSecret)) != 1 {
		RespondWithError(c, http.StatusUnauthorized, models.ErrorCodeUnauthorized, "Invalid or missing cron secret", nil)
		return
	}
	c.Next()
}

// cached serves key from the cache or stores what load returns. Cache
// failures are logged and bypassed.
func (h *Handler) cached(c *gin.Context, key string, dst any, load func() error) error {
	ctx := c.Request.Context()
	if h.cache != nil {
		hit, err := cache.GetJSON(ctx, h.cache, key, dst)
		if err != nil {
			logger.FromContext(ctx).Warn("Cache read failed", "key", key, "error", err)
		}
		if hit {
			c.Header("X-Cache", "HIT")
			return nil
		}
	}
	if err := load(); err != nil {
		return err
	}
	if h.cache != nil {
		c.Header("X-Cache", "MISS")
		if err := cache.SetJSON(ctx, h.cache, key, dst, h.cacheTTL); err != nil {
			logger.FromContext(ctx).Warn("Cache write failed", "key", key, "error", err)
		}
	}
	return nil
}

func (h *Handler) invalidate(ctx context.Context, prefix string) {
	if h.cache == nil {
		return
	}
	if err := h.cache.DeletePrefix(ctx, prefix); err != nil {
		logger.FromContext(ctx).Warn("Cache invalidation failed", "prefix", prefix, "error", err)
	}
}

func leadsCachePrefix(companyID uuid.UUID) string   { return "leads:" + companyID.String() + ":" }
func promptsCachePrefix(companyID uuid.UUID) string { return "prompts:" + companyID.String() + ":" }
