// internal/server/handlers.go
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	standarderrors "green-genie/internal/common/errors"
	"green-genie/internal/common/logger"
	"green-genie/internal/common/metrics"
	"green-genie/internal/common/validation"
	"green-genie/internal/llm"
	"green-genie/internal/models"
	"green-genie/internal/prompt"
	"green-genie/internal/recommend"
)

// Generator produces explanation text for a composed prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// DatasetProvider serves the current dataset snapshot and reloads it on demand.
type DatasetProvider interface {
	Snapshot() *models.Snapshot
	Refresh(ctx context.Context) error
}

// HistoryStore persists interactions.
type HistoryStore interface {
	Insert(ctx context.Context, it models.Interaction) error
	Recent(ctx context.Context, limit int) ([]models.Interaction, error)
	Get(ctx context.Context, id string) (models.Interaction, error)
}

// HistoryArchive offers full-text search over past interactions.
type HistoryArchive interface {
	Index(ctx context.Context, it models.Interaction) error
	Search(ctx context.Context, query string, limit int) ([]models.Interaction, error)
}

// Notifier delivers interaction emails and ops alerts.
type Notifier interface {
	SendInteractionEmail(ctx context.Context, to string, it models.Interaction) error
	PublishAlert(ctx context.Context, subject, message string)
}

// ResponseCache memoizes generated explanations by prompt and model.
type ResponseCache interface {
	Get(ctx context.Context, prompt, modelID string) (string, bool)
	Set(ctx context.Context, prompt, modelID, explanation string)
}

// Handler carries the wired dependencies for all HTTP endpoints. Optional
// collaborators (cache, store, archive, notifier) may be nil.
type Handler struct {
	datasets  DatasetProvider
	engine    *recommend.Engine
	generator Generator
	cache     ResponseCache
	store     HistoryStore
	archive   HistoryArchive
	notifier  Notifier
	modelID   string
	logger    logger.Logger
	errs      *standarderrors.HTTPHandler
	pingers   map[string]Pinger
}

func NewHandler(
	datasets DatasetProvider,
	engine *recommend.Engine,
	generator Generator,
	cache ResponseCache,
	store HistoryStore,
	archive HistoryArchive,
	notifier Notifier,
	modelID string,
	log logger.Logger,
) *Handler {
	return &Handler{
		datasets:  datasets,
		engine:    engine,
		generator: generator,
		cache:     cache,
		store:     store,
		archive:   archive,
		notifier:  notifier,
		modelID:   modelID,
		logger:    log.With(map[string]interface{}{"component": "http"}),
		errs:      standarderrors.NewHTTPHandler(log),
	}
}

// noMatchesMessage is returned when the sector and risk filters leave no
// companies to recommend. The model is never invoked for an empty list.
const noMatchesMessage = "No companies matched the selected sectors and risk level. Try a different sector or risk setting."

type recommendationRequest struct {
	Sector  string   `json:"sector"`
	Sectors []string `json:"sectors"`
	Risk    string   `json:"risk"`
	Text    string   `json:"text"`
}

// bindRecommendationRequest validates the raw payload against the schema
// before decoding it, so unknown fields and out-of-range values are
// rejected with field-level messages.
func (h *Handler) bindRecommendationRequest(c *gin.Context) (*recommendationRequest, bool) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(400, gin.H{"error": "unable to read request body"})
		return nil, false
	}

	result, err := validation.ValidateJSON(raw, validation.RecommendationRequestSchema)
	if err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return nil, false
	}
	if !result.Valid {
		c.JSON(400, gin.H{"error": "invalid request", "fields": result.Errors})
		return nil, false
	}

	var req recommendationRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		c.JSON(400, gin.H{"error": "invalid request body"})
		return nil, false
	}
	return &req, true
}

// toQuery normalizes a request into a UserQuery. Unset risk defaults to
// Medium; sector names are checked against the loaded dataset.
func (h *Handler) toQuery(req *recommendationRequest) (models.UserQuery, error) {
	sectors := append([]string(nil), req.Sectors...)
	if s := strings.TrimSpace(req.Sector); s != "" {
		sectors = append(sectors, s)
	}

	risk := models.RiskMedium
	if req.Risk != "" {
		parsed, ok := models.ParseRiskLevel(req.Risk)
		if !ok {
			return models.UserQuery{}, standarderrors.NewInvalidRiskLevelError(req.Risk)
		}
		risk = parsed
	}

	// Sector matching is case-insensitive; resolved names take the
	// dataset's casing so filtering, prompts and history agree.
	known := make(map[string]string)
	for _, s := range h.datasets.Snapshot().Sectors {
		known[strings.ToLower(s)] = s
	}
	for i, s := range sectors {
		name := strings.TrimSpace(s)
		if name == "" || strings.EqualFold(name, "All") {
			sectors[i] = name
			continue
		}
		canonical, ok := known[strings.ToLower(name)]
		if !ok {
			return models.UserQuery{}, standarderrors.NewUnknownSectorError(name)
		}
		sectors[i] = canonical
	}

	return models.UserQuery{FreeText: req.Text, Sectors: sectors, Risk: risk}, nil
}

// Recommend handles POST /api/v1/recommendations: compose the prompt,
// generate the explanation and persist the interaction.
func (h *Handler) Recommend(c *gin.Context) {
	req, ok := h.bindRecommendationRequest(c)
	if !ok {
		metrics.RequestsTotal.WithLabelValues("invalid").Inc()
		return
	}

	query, err := h.toQuery(req)
	if err != nil {
		metrics.RequestsTotal.WithLabelValues("invalid").Inc()
		h.errs.Respond(c, err)
		return
	}

	// A query with no input never reaches the model.
	if query.IsEmpty() {
		metrics.RequestsTotal.WithLabelValues("empty_query").Inc()
		h.errs.Respond(c, standarderrors.NewEmptyQueryError())
		return
	}

	snapshot := h.datasets.Snapshot()
	picks := h.engine.Recommend(query.Sectors, query.Risk, snapshot.ESG)

	// Nothing matched the filters: report that instead of asking the
	// model to explain an empty list.
	if len(picks) == 0 {
		metrics.RequestsTotal.WithLabelValues("no_matches").Inc()
		c.JSON(200, gin.H{
			"companies":   []models.Recommendation{},
			"explanation": noMatchesMessage,
			"cached":      false,
		})
		return
	}

	composed, err := prompt.Compose(query, picks)
	if err != nil {
		metrics.RequestsTotal.WithLabelValues("invalid").Inc()
		h.errs.Respond(c, err)
		return
	}

	explanation, cached := h.lookupCached(c.Request.Context(), composed)
	if !cached {
		explanation, err = h.generator.Generate(c.Request.Context(), composed)
		if err != nil {
			metrics.RequestsTotal.WithLabelValues("llm_error").Inc()
			h.respondGenerationError(c, err, picks)
			return
		}
		if h.cache != nil {
			h.cache.Set(c.Request.Context(), composed, h.modelID, explanation)
		}
	}

	interaction := models.Interaction{
		ID:          uuid.New().String(),
		Sector:      joinOrAll(query.Sectors),
		Risk:        string(query.Risk),
		FreeText:    query.FreeText,
		Prompt:      composed,
		Companies:   picks,
		Explanation: explanation,
		CreatedAt:   time.Now().UTC(),
	}
	h.persist(c.Request.Context(), interaction)

	metrics.RequestsTotal.WithLabelValues("success").Inc()
	c.JSON(200, gin.H{
		"interactionId": interaction.ID,
		"companies":     picks,
		"explanation":   explanation,
		"cached":        cached,
	})
}

func (h *Handler) lookupCached(ctx context.Context, composed string) (string, bool) {
	if h.cache == nil {
		return "", false
	}
	return h.cache.Get(ctx, composed, h.modelID)
}

// respondGenerationError keeps the recommendations usable even when the
// model call fails: the picks are included next to the error message.
func (h *Handler) respondGenerationError(c *gin.Context, err error, picks []models.Recommendation) {
	h.logger.Error("text generation failed", map[string]interface{}{"error": err.Error()})

	stdErr := standarderrors.NewLLMInvokeFailedError(err)
	if errors.Is(err, llm.ErrGenerationTimeout) {
		stdErr = standarderrors.NewLLMTimeoutError()
	}

	c.JSON(standarderrors.StatusCode(stdErr.Code), gin.H{
		"error":     stdErr.Message,
		"code":      string(stdErr.Code),
		"companies": picks,
	})
}

// persist writes the interaction to Postgres and Elasticsearch. Storage
// failures are logged; the response to the user is unaffected.
func (h *Handler) persist(ctx context.Context, it models.Interaction) {
	if h.store != nil {
		if err := h.store.Insert(ctx, it); err != nil {
			h.logger.Error("history write failed", map[string]interface{}{
				"interaction_id": it.ID,
				"error":          err.Error(),
			})
		}
	}
	if h.archive != nil {
		if err := h.archive.Index(ctx, it); err != nil {
			h.logger.Error("history index failed", map[string]interface{}{
				"interaction_id": it.ID,
				"error":          err.Error(),
			})
		}
	}
}

// PreviewPrompt handles POST /api/v1/prompt/preview: run selection and
// composition without touching the model.
func (h *Handler) PreviewPrompt(c *gin.Context) {
	req, ok := h.bindRecommendationRequest(c)
	if !ok {
		return
	}

	query, err := h.toQuery(req)
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	if query.IsEmpty() {
		h.errs.Respond(c, standarderrors.NewEmptyQueryError())
		return
	}

	picks := h.engine.Recommend(query.Sectors, query.Risk, h.datasets.Snapshot().ESG)
	composed, err := prompt.Compose(query, picks)
	if err != nil {
		h.errs.Respond(c, err)
		return
	}

	c.JSON(200, gin.H{"prompt": composed, "companies": picks})
}

// Sectors handles GET /api/v1/sectors.
func (h *Handler) Sectors(c *gin.Context) {
	c.JSON(200, gin.H{
		"sectors": h.datasets.Snapshot().Sectors,
		"risks":   models.RiskLevels,
	})
}

// History handles GET /api/v1/history.
func (h *Handler) History(c *gin.Context) {
	if h.store == nil {
		c.JSON(200, gin.H{"interactions": []models.Interaction{}})
		return
	}

	items, err := h.store.Recent(c.Request.Context(), queryLimit(c))
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	if items == nil {
		items = []models.Interaction{}
	}
	c.JSON(200, gin.H{"interactions": items})
}

// SearchHistory handles GET /api/v1/history/search.
func (h *Handler) SearchHistory(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(400, gin.H{"error": "query parameter 'q' is required"})
		return
	}
	if h.archive == nil {
		c.JSON(200, gin.H{"interactions": []models.Interaction{}})
		return
	}

	items, err := h.archive.Search(c.Request.Context(), q, queryLimit(c))
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	c.JSON(200, gin.H{"interactions": items})
}

// RefreshDatasets handles POST /api/v1/datasets/refresh. A failed reload
// raises an ops alert and leaves the previous snapshot in place.
func (h *Handler) RefreshDatasets(c *gin.Context) {
	if err := h.datasets.Refresh(c.Request.Context()); err != nil {
		if h.notifier != nil {
			h.notifier.PublishAlert(c.Request.Context(), "dataset refresh failed", err.Error())
		}
		h.errs.Respond(c, err)
		return
	}

	snapshot := h.datasets.Snapshot()
	c.JSON(200, gin.H{
		"sectors":   snapshot.Sectors,
		"companies": len(snapshot.ESG),
	})
}

type emailRequest struct {
	InteractionID string `json:"interactionId"`
	To            string `json:"to"`
}

// EmailInteraction handles POST /api/v1/notify/email: mail a stored
// interaction summary to the given address.
func (h *Handler) EmailInteraction(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(400, gin.H{"error": "unable to read request body"})
		return
	}

	result, err := validation.ValidateJSON(raw, validation.EmailRequestSchema)
	if err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	if !result.Valid {
		c.JSON(400, gin.H{"error": "invalid request", "fields": result.Errors})
		return
	}

	var req emailRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		c.JSON(400, gin.H{"error": "invalid request body"})
		return
	}

	if h.store == nil || h.notifier == nil {
		h.errs.Respond(c, standarderrors.NewNotificationSendFailedError("email",
			errors.New("email delivery is not configured")))
		return
	}

	it, err := h.store.Get(c.Request.Context(), req.InteractionID)
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	if err := h.notifier.SendInteractionEmail(c.Request.Context(), req.To, it); err != nil {
		h.errs.Respond(c, err)
		return
	}

	c.JSON(200, gin.H{"status": "sent"})
}

// Pinger checks one backing dependency.
type Pinger func(ctx context.Context) error

// RegisterPinger adds a named dependency check to the health endpoint.
func (h *Handler) RegisterPinger(name string, p Pinger) {
	if h.pingers == nil {
		h.pingers = map[string]Pinger{}
	}
	h.pingers[name] = p
}

// Healthz handles GET /healthz: liveness plus a ping of each registered
// dependency. Any failing dependency turns the response into a 503.
func (h *Handler) Healthz(c *gin.Context) {
	deps := gin.H{}
	healthy := true
	for name, ping := range h.pingers {
		if err := ping(c.Request.Context()); err != nil {
			deps[name] = "unavailable"
			healthy = false
			continue
		}
		deps[name] = "ok"
	}

	status := "ok"
	code := 200
	if !healthy {
		status = "degraded"
		code = 503
	}
	c.JSON(code, gin.H{"status": status, "dependencies": deps})
}

func queryLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		return 20
	}
	if limit > 100 {
		return 100
	}
	return limit
}

func joinOrAll(sectors []string) string {
	var kept []string
	for _, s := range sectors {
		if t := strings.TrimSpace(s); t != "" {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		return "All"
	}
	return strings.Join(kept, ", ")
}
